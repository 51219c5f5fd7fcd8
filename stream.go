package tablebridge

// StreamItem is one unit of progress produced by an agent serving a turn.
//
// Intermediate items carry a human-readable progress line in Updates. The
// last item of a turn has IsComplete set and carries the full final output in
// Content. An item with Err set reports a fault in the agent; no item follows
// it.
type StreamItem struct {
	IsComplete bool
	Updates    string
	Content    string
	Err        error
}

// Progress creates an intermediate item.
func Progress(updates string) StreamItem {
	return StreamItem{Updates: updates}
}

// Complete creates the final item of a turn.
func Complete(content string) StreamItem {
	return StreamItem{IsComplete: true, Content: content}
}

// Failure creates an item reporting an agent fault.
func Failure(err error) StreamItem {
	return StreamItem{Err: err}
}
