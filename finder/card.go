package finder

import (
	"strings"

	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/a2ui"
)

// Version is reported in the agent card.
const Version = "1.0.0"

// ContentTypes are the input and output modes of the agent.
var ContentTypes = []string{"text", "text/plain"}

// Card describes the restaurant agent served at baseURL.
func Card(baseURL string) a2a.AgentCard {
	return a2a.AgentCard{
		ProtocolVersion:    "0.3.0",
		Name:               "Restaurant Agent",
		Description:        "This agent helps find restaurants based on user criteria.",
		URL:                strings.TrimRight(baseURL, "/"),
		Version:            Version,
		PreferredTransport: "JSONRPC",
		Capabilities: a2a.AgentCapabilities{
			Streaming:  true,
			Extensions: a2ui.Extensions(),
		},
		DefaultInputModes:  ContentTypes,
		DefaultOutputModes: ContentTypes,
		Skills: []a2a.AgentSkill{{
			ID:          "find_restaurants",
			Name:        "Find Restaurants Tool",
			Description: "Helps find restaurants based on user criteria (e.g., cuisine, location).",
			Tags:        []string{"restaurant", "finder"},
			Examples:    []string{"Find me the top 10 chinese restaurants in the US"},
		}},
	}
}
