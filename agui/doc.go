// Package agui serves the restaurant agent to AG-UI frontends.
//
// A POST to the handler carries a RunAgentInput. The input is turned into an
// A2A message with the A2UI extension requested, the turn runs on the shared
// executor and a [Sink] translates the turn's events into AG-UI events
// streamed back as server-sent events:
//
//   - the first event opens the run with RUN_STARTED
//   - working updates become short assistant text messages
//   - text parts of the final message become assistant text messages
//   - A2UI data parts become a render_a2ui frontend tool call whose
//     arguments are {"messages": [...]}
//   - a failed terminal status ends the run with RUN_ERROR, any other
//     terminal status with RUN_FINISHED
//
// A Sink is used by one turn at a time. The executor serializes its calls.
package agui
