package restaurant

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spetersoncode/tablebridge/tool"
)

// ToolName is the name the model uses to call the lookup.
const ToolName = "get_restaurants"

// FindArgs are the get_restaurants arguments.
type FindArgs struct {
	Cuisine  string `json:"cuisine" jsonschema:"description=The type of cuisine to search for (e.g. Chinese, Italian, Mexican)"`
	Location string `json:"location" jsonschema:"description=The location to search for restaurants (e.g. New York, NY)"`
	Count    int    `json:"count,omitempty" jsonschema:"description=The number of restaurants to return (default: 5)"`
}

// Tool builds the get_restaurants registration over c.
func Tool(c *Catalog, logger *slog.Logger) tool.Registration {
	if logger == nil {
		logger = slog.Default()
	}
	return tool.Func(ToolName,
		"Get a list of restaurants based on a cuisine and location. 'count' is the number of restaurants to return.",
		func(_ context.Context, args FindArgs) (string, error) {
			found := c.Find(args.Cuisine, args.Location, args.Count)
			logger.Info("restaurant lookup",
				"cuisine", args.Cuisine,
				"location", args.Location,
				"count", args.Count,
				"returned", len(found),
			)
			data, err := json.Marshal(found)
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
	)
}
