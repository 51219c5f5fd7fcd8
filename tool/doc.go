// Package tool manages the functions an agent may call.
//
// Arguments are declared as Go structs. The JSON schema sent to the model is
// reflected from the struct with invopop/jsonschema: fields without
// omitempty are required and descriptions come from jsonschema tags.
//
//	type LookupArgs struct {
//	    Cuisine  string `json:"cuisine" jsonschema:"description=Type of food"`
//	    Location string `json:"location" jsonschema:"description=City or neighborhood"`
//	    Count    int    `json:"count,omitempty" jsonschema:"description=How many results"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("lookup", "Find places", func(ctx context.Context, args LookupArgs) (string, error) {
//	        return find(args), nil
//	    }),
//	)
package tool
