// Package agent runs the tool-calling loop.
//
// Each step streams one model response. When the response asks for tools,
// the calls are executed through the registry, the results are appended to
// the conversation and another step begins. The run ends when the model
// answers without tool calls or a limit is hit.
//
//	a := agent.New(client, registry)
//	for ev := range a.RunStream(ctx, messages, agent.WithMaxSteps(5)) {
//	    switch ev.Type {
//	    case event.ToolCallStart:
//	        fmt.Println("calling", ev.ToolCall.Name)
//	    case event.RunEnd:
//	        fmt.Println(ev.Response.Content)
//	    }
//	}
package agent
