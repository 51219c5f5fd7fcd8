package a2ui

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// Schema returns the JSON schema every A2UI message must satisfy.
func Schema() string { return schemaJSON }

// ErrNoMessages is returned when a UI payload holds no messages.
var ErrNoMessages = errors.New("a2ui: payload has no UI messages")

// ValidationError lists schema violations of one UI message.
type ValidationError struct {
	Index    int
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("a2ui: message %d is invalid: %s", e.Index, strings.Join(e.Problems, "; "))
}

// Validator checks UI messages against the A2UI schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("a2ui: compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustNewValidator is like NewValidator but panics on error.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks each message and reports the first invalid one.
func (v *Validator) Validate(messages []any) error {
	if len(messages) == 0 {
		return ErrNoMessages
	}
	for i, m := range messages {
		result, err := v.schema.Validate(gojsonschema.NewGoLoader(m))
		if err != nil {
			return fmt.Errorf("a2ui: validate message %d: %w", i, err)
		}
		if !result.Valid() {
			problems := make([]string, len(result.Errors()))
			for j, desc := range result.Errors() {
				problems[j] = desc.String()
			}
			return &ValidationError{Index: i, Problems: problems}
		}
	}
	return nil
}

// ValidateResponse checks the UI payload of agent output. Output without
// the delimiter carries no UI and is accepted as is.
func (v *Validator) ValidateResponse(content string) error {
	_, right, found := strings.Cut(content, Delimiter)
	if !found {
		return nil
	}
	if strings.TrimSpace(right) == "" {
		return ErrNoMessages
	}
	messages, err := decodePayload(right)
	if err != nil {
		return fmt.Errorf("a2ui: payload is not valid JSON: %w", err)
	}
	return v.Validate(messages)
}
