// Package a2ui implements the A2UI (agent-to-UI) extension of A2A: deciding
// whether a caller wants UI output, turning UI events back into queries,
// and splitting agent output into conversational text and UI messages.
package a2ui

import (
	"strings"

	"github.com/spetersoncode/tablebridge/a2a"
)

// Extension identifiers recognized in capability declarations.
const (
	ExtensionURI       = "https://a2ui.org/a2a-extension/a2ui/v0.8"
	LegacyExtensionURI = "tag:copilotkit.ai,2025:a2ui"

	extensionToken = "a2ui"
)

// MimeType marks data parts that carry A2UI messages.
const MimeType = "application/json+a2ui"

// Extensions returns the agent card entries for the extension.
func Extensions() []a2a.AgentExtension {
	return []a2a.AgentExtension{
		{URI: ExtensionURI, Description: "Provides agent driven UI using the A2UI JSON format."},
		{URI: LegacyExtensionURI, Description: "Agent-to-UI extension for rich UI responses"},
	}
}

// ShouldActivate reports whether any declared extension names A2UI.
func ShouldActivate(declared []string) bool {
	for _, ext := range declared {
		if ext == ExtensionURI || ext == LegacyExtensionURI || strings.Contains(ext, extensionToken) {
			return true
		}
	}
	return false
}

// PartMetadata returns the metadata attached to every A2UI data part.
func PartMetadata() map[string]any {
	return map[string]any{"mimeType": MimeType}
}

// IsUIPart reports whether p carries an A2UI message.
func IsUIPart(p a2a.Part) bool {
	dp, ok := p.(a2a.DataPart)
	return ok && dp.Metadata["mimeType"] == MimeType
}
