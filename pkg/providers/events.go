package providers

// EventType discriminates normalized events on the wire.
type EventType string

// Normalized event types.
const (
	EventStart   EventType = "start"
	EventContent EventType = "content"
	EventEnd     EventType = "end"
	EventError   EventType = "error"
)

// Event is the provider-agnostic vocabulary crossing the relay's outbound
// boundary. Content carries text for EventContent; Message carries the
// failure description for EventError. Err keeps the original error for
// classification and never leaves the process.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
	Message string    `json:"message,omitempty"`
	Err     error     `json:"-"`
}

// StartEvent opens a stream.
func StartEvent() Event { return Event{Type: EventStart} }

// ContentEvent carries one text delta.
func ContentEvent(text string) Event { return Event{Type: EventContent, Content: text} }

// EndEvent closes a stream normally.
func EndEvent() Event { return Event{Type: EventEnd} }

// ErrorEvent closes a stream with a failure.
func ErrorEvent(err error) Event { return Event{Type: EventError, Message: err.Error(), Err: err} }

// IsTerminal reports whether the event ends a stream.
func (e Event) IsTerminal() bool {
	return e.Type == EventEnd || e.Type == EventError
}
