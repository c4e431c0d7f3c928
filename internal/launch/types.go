package launch

import "fmt"

// Source identifies what kind of external trigger produced an event.
type Source int

const (
	// SourceNotification marks an event caused by a tapped notification.
	SourceNotification Source = iota + 1
	// SourceDeepLink marks an event caused by an opened deep link.
	SourceDeepLink
)

// String returns the wire name of the source.
func (s Source) String() string {
	switch s {
	case SourceNotification:
		return "notification"
	case SourceDeepLink:
		return "deep_link"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// ParseSource converts a wire name back into a Source.
func ParseSource(name string) (Source, error) {
	switch name {
	case "notification":
		return SourceNotification, nil
	case "deep_link":
		return SourceDeepLink, nil
	default:
		return 0, fmt.Errorf("unknown source %q", name)
	}
}

// Event is a classified launch/resume trigger.
//
// Events are immutable after creation: the classifier builds one per
// OS-delivered signal and hands it to exactly one of the persistence
// path or the live push stream.
type Event struct {
	// ID is a unique identifier for the event (UUID).
	ID string

	// Source is what kind of trigger produced the event.
	Source Source

	// Payload is the assembled payload serialized as a JSON object.
	// Never empty: a notification with no data carries "{}".
	Payload string

	// RawURL is the original deep link URL, empty for notifications.
	RawURL string

	// DuringInit records whether the event arrived while the process
	// was still inside its startup window.
	DuringInit bool
}

// State is the answer to "did an external trigger cause the current
// foreground state". It is the unit of both the pull query and the
// push stream.
type State struct {
	IsFromNotification bool   `json:"isFromNotification"`
	Payload            string `json:"payload"`
}

// EmptyState is the canonical "no event" answer: a normal launch.
func EmptyState() State {
	return State{IsFromNotification: false, Payload: "{}"}
}

// StateFromEvent converts a classified event into its delivery form.
func StateFromEvent(ev Event) State {
	payload := ev.Payload
	if payload == "" {
		payload = "{}"
	}
	return State{
		IsFromNotification: ev.Source == SourceNotification,
		Payload:            payload,
	}
}
