// Package notify carries model lifecycle events to an external sink, best effort.
package notify

// EventType classifies a model state transition.
type EventType string

const (
	EventLoadingStarted   EventType = "loading_started"
	EventLoadingCompleted EventType = "loading_completed"
	EventLoadingFailed    EventType = "loading_failed"
	EventUnloaded         EventType = "unloaded"
)

// Event is the payload delivered to a sink on each model state change.
type Event struct {
	Type      EventType `json:"event_type"`
	ModelID   string    `json:"model_id,omitempty"`
	ModelName string    `json:"model_name,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Sink receives lifecycle events. Delivery is fire-and-forget; sinks must
// not block and their failures are never observed by the emitter.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Emit(event Event) {
	f(event)
}

// Noop discards all events. It is the default when no sink is wired.
type Noop struct{}

func (Noop) Emit(Event) {}
