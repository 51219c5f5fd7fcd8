package a2ui

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/spetersoncode/tablebridge/a2a"
)

// Delimiter separates conversational text from the UI payload in agent
// output.
const Delimiter = "---a2ui_JSON---"

// SplitFinalResponse converts the agent's final content into message parts.
//
// Text before the first Delimiter becomes a text part. The payload after it
// is decoded into one data part per UI message. A payload that does not
// parse is sent as text, unchanged, and the decode error is returned so the
// caller can log it; the parts are usable either way.
func SplitFinalResponse(content string) ([]a2a.Part, error) {
	left, right, found := strings.Cut(content, Delimiter)
	if !found {
		if text := strings.TrimSpace(content); text != "" {
			return []a2a.Part{a2a.NewTextPart(text)}, nil
		}
		return nil, nil
	}

	var parts []a2a.Part
	if text := strings.TrimSpace(left); text != "" {
		parts = append(parts, a2a.NewTextPart(text))
	}
	if strings.TrimSpace(right) == "" {
		return parts, nil
	}

	messages, err := decodePayload(right)
	if err != nil {
		return append(parts, a2a.NewTextPart(right)), err
	}
	for _, m := range messages {
		parts = append(parts, a2a.NewDataPart(m, PartMetadata()))
	}
	return parts, nil
}

// decodePayload strips code fences and decodes the UI messages. An array
// yields its elements; any other value yields itself.
func decodePayload(raw string) ([]any, error) {
	var v any
	if err := json.Unmarshal([]byte(StripFences(raw)), &v); err != nil {
		return nil, err
	}
	if arr, ok := v.([]any); ok {
		return arr, nil
	}
	return []any{v}, nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		end := strings.IndexFunc(rest, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
		})
		if end < 0 {
			end = len(rest)
		}
		s = rest[end:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
