// Package a2a defines the A2A (Agent-to-Agent) protocol surface of the bridge.
//
// A2A is JSON-RPC 2.0 over HTTP, with Server-Sent Events for streaming.
// This package holds the wire types, the agent card, the JSON-RPC envelope
// and a small client. Turn execution lives in the executor package; this
// package only describes what goes over the wire.
//
// # Events and Sinks
//
// A turn reports progress by publishing [Event] values to an [EventSink].
// Two event kinds exist: a [TaskStatusUpdateEvent] and a standalone agent
// [Message]. A sink is finished exactly once, after which nothing more may
// be published. [NewGuardedSink] enforces that contract around any sink:
//
//	sink := a2a.NewGuardedSink(sse)
//	defer sink.Finish()
//
// # Task Lifecycle
//
// A task starts in [TaskStateSubmitted] (store only), moves to
// [TaskStateWorking] while the agent streams, and ends in one of
// completed, input-required, failed or canceled. Use a [Mapper] to stamp
// status updates with the task and context ids of one task.
//
// # Thread Safety
//
// The Mapper is not safe for concurrent use. GuardedSink and Recorder are.
package a2a
