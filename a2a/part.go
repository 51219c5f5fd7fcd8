package a2a

import (
	"encoding/json"
	"fmt"
)

// Part kinds.
const (
	KindText = "text"
	KindData = "data"
	KindFile = "file"
)

// Part is one segment of a message: text, data or file.
type Part interface {
	partMarker()
	GetKind() string
}

// TextPart is a text segment.
type TextPart struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (TextPart) partMarker()     {}
func (TextPart) GetKind() string { return KindText }

// NewTextPart creates a text part.
func NewTextPart(text string) TextPart {
	return TextPart{Kind: KindText, Text: text}
}

// DataPart carries arbitrary JSON.
type DataPart struct {
	Kind     string         `json:"kind"`
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (DataPart) partMarker()     {}
func (DataPart) GetKind() string { return KindData }

// NewDataPart creates a data part.
func NewDataPart(data any, metadata map[string]any) DataPart {
	return DataPart{Kind: KindData, Data: data, Metadata: metadata}
}

// Object returns the payload as a JSON object, if it is one.
func (p DataPart) Object() (map[string]any, bool) {
	m, ok := p.Data.(map[string]any)
	return m, ok
}

// FilePart references a file. The bridge accepts these but never sends them.
type FilePart struct {
	Kind     string         `json:"kind"`
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (FilePart) partMarker()     {}
func (FilePart) GetKind() string { return KindFile }

// FileContent is either inline base64 bytes or a URI.
type FileContent struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// UnmarshalPart decodes a part by its kind. Parts without a kind field are
// rejected; unknown kinds decode as data parts.
func UnmarshalPart(data []byte) (Part, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Kind {
	case KindText:
		var p TextPart
		err := json.Unmarshal(data, &p)
		return p, err
	case KindFile:
		var p FilePart
		err := json.Unmarshal(data, &p)
		return p, err
	case "":
		return nil, fmt.Errorf("a2a: part without kind")
	default:
		var p DataPart
		err := json.Unmarshal(data, &p)
		p.Kind = KindData
		return p, err
	}
}

func unmarshalParts(raw []json.RawMessage) ([]Part, error) {
	parts := make([]Part, 0, len(raw))
	for i, r := range raw {
		p, err := UnmarshalPart(r)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}
