package finder

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/spetersoncode/tablebridge/a2ui"
	"github.com/spetersoncode/tablebridge/restaurant"
)

//go:embed prompts/*
var promptFS embed.FS

// singleColumnMax is the largest list rendered with the single column template.
const singleColumnMax = 5

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

type promptData struct {
	Delimiter       string
	ToolName        string
	SingleColumnMax int
	Examples        string
	Schema          string
}

// UIPrompt renders the system prompt for A2UI turns. Links in the UI
// templates point at baseURL.
func UIPrompt(baseURL string) (string, error) {
	examples, err := promptFS.ReadFile("prompts/examples.txt")
	if err != nil {
		return "", fmt.Errorf("finder: read examples: %w", err)
	}
	text := string(examples)
	if baseURL != "" {
		text = strings.ReplaceAll(text, restaurant.DefaultBaseURL, strings.TrimRight(baseURL, "/"))
	}
	return render("ui.tmpl", promptData{
		Delimiter:       a2ui.Delimiter,
		ToolName:        restaurant.ToolName,
		SingleColumnMax: singleColumnMax,
		Examples:        text,
		Schema:          a2ui.Schema(),
	})
}

// TextPrompt renders the system prompt for plain-text turns.
func TextPrompt() (string, error) {
	return render("text.tmpl", promptData{ToolName: restaurant.ToolName})
}

func render(name string, data promptData) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("finder: render %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}
