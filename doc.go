// Package tablebridge connects a tool-calling restaurant-finder agent to the
// A2A protocol and its A2UI rich-interface extension.
//
// The root package holds the provider-neutral chat types shared by every
// layer: [Message], [Tool], [ToolCall], [ToolResult], [Response] and the
// categorized [Error]. Streaming providers implement [ChatProvider]; agents
// that serve A2A turns produce [StreamItem] values.
//
// # Layers
//
//   - [github.com/spetersoncode/tablebridge/a2ui]: extension negotiation, user
//     action decoding and response splitting
//   - [github.com/spetersoncode/tablebridge/executor]: the per-turn state
//     machine that publishes A2A task events
//   - [github.com/spetersoncode/tablebridge/finder]: the restaurant agent
//   - [github.com/spetersoncode/tablebridge/server]: JSON-RPC, SSE and AG-UI
//     transports
//
// # Streaming
//
// Providers stream [StreamEvent] values and close the channel when done:
//
//	stream, err := p.ChatStream(ctx, messages, tablebridge.WithTools(tools))
//	if err != nil {
//	    return err
//	}
//	for ev := range stream {
//	    if ev.Err != nil {
//	        return ev.Err
//	    }
//	    fmt.Print(ev.Delta)
//	}
package tablebridge
