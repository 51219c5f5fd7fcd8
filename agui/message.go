package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
)

// Role constants matching AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// LastUserText returns the content of the last user message with text.
func LastUserText(msgs []events.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Role != RoleUser || msg.Content == nil || *msg.Content == "" {
			continue
		}
		return *msg.Content, true
	}
	return "", false
}
