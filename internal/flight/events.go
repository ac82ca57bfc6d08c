package flight

import "time"

// EventType identifies the kind of controller event.
type EventType string

const (
	EventTakeoff       EventType = "takeoff"
	EventCollapse      EventType = "collapse"
	EventReset         EventType = "reset"
	EventStartRejected EventType = "start_rejected"
	EventBoundChanged  EventType = "bound_changed"
	EventBoundRejected EventType = "bound_rejected"
)

// Event is delivered to listeners after every state change and every
// rejected operator action.
type Event struct {
	Type          EventType `json:"type"`
	Phase         Phase     `json:"phase"`
	Cycle         Cycle     `json:"cycle"`
	Source        Source    `json:"source,omitempty"`
	Bound         int       `json:"bound"`
	PreviousBound int       `json:"previous_bound,omitempty"`
	Message       string    `json:"message,omitempty"`
	At            time.Time `json:"ts"`
}

// Listener receives controller events. Listeners run one at a time, in the
// order the events happened, and may call back into the controller.
type Listener func(Event)
