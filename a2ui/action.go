package a2ui

import (
	"encoding/json"
	"fmt"

	"github.com/spetersoncode/tablebridge/a2a"
)

// Action names with dedicated query templates.
const (
	ActionBookRestaurant = "book_restaurant"
	ActionSubmitBooking  = "submit_booking"
)

// UserAction is an interaction a UI surface sent back to the agent.
type UserAction struct {
	ActionName string
	Context    map[string]any
}

// ExtractUserAction returns the action carried by the first data part whose
// payload has a userAction field. Both the actionName and the v0.8 name
// spelling are accepted.
func ExtractUserAction(parts []a2a.Part) (*UserAction, bool) {
	for _, p := range parts {
		dp, ok := p.(a2a.DataPart)
		if !ok {
			continue
		}
		obj, ok := dp.Object()
		if !ok {
			continue
		}
		raw, ok := obj["userAction"]
		if !ok {
			continue
		}

		action := &UserAction{}
		if m, ok := raw.(map[string]any); ok {
			action.ActionName, _ = m["actionName"].(string)
			if action.ActionName == "" {
				action.ActionName, _ = m["name"].(string)
			}
			action.Context, _ = m["context"].(map[string]any)
		}
		return action, true
	}
	return nil, false
}

type queryBuilder func(ctx map[string]any) string

var queryBuilders = map[string]queryBuilder{
	ActionBookRestaurant: func(ctx map[string]any) string {
		return fmt.Sprintf("USER_WANTS_TO_BOOK: %s, Address: %s, ImageURL: %s",
			field(ctx, "restaurantName", "Unknown Restaurant"),
			field(ctx, "address", "Address not provided"),
			field(ctx, "imageUrl", ""),
		)
	},
	ActionSubmitBooking: func(ctx map[string]any) string {
		return fmt.Sprintf("User submitted a booking for %s for %s people at %s with dietary requirements: %s. The image URL is %s",
			field(ctx, "restaurantName", "Unknown Restaurant"),
			field(ctx, "partySize", "Unknown Size"),
			field(ctx, "reservationTime", "Unknown Time"),
			field(ctx, "dietary", "None"),
			field(ctx, "imageUrl", ""),
		)
	},
}

// BuildQuery renders the natural-language query for action. Unknown action
// names fall back to a generic description with the context as JSON.
func BuildQuery(action UserAction) string {
	if build, ok := queryBuilders[action.ActionName]; ok {
		return build(action.Context)
	}

	ctx := action.Context
	if ctx == nil {
		ctx = map[string]any{}
	}
	data, err := json.Marshal(ctx)
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf("User submitted an event: %s with data: %s", action.ActionName, data)
}

// field renders ctx[key], using def when the value is absent, null or "".
func field(ctx map[string]any, key, def string) string {
	v, ok := ctx[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return def
		}
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return def
	}
	return string(data)
}
