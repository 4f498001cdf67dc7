package reducer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
)

// Event validation errors.
var (
	ErrMalformedPayload = errors.New("malformed update payload")
	ErrMissingURI       = errors.New("event has no target URI")
	ErrUnknownEventType = errors.New("unknown event type")
)

// EventType identifies a state transition.
type EventType uint8

const (
	// EventUnknown is the zero value; reducers treat it as a no-op.
	EventUnknown EventType = iota

	// EventStartListening adds one listener to the target owner.
	EventStartListening

	// EventStopListening removes one listener from the target owner.
	EventStopListening

	// EventUpdateProperty replaces the target owner with the event's node.
	EventUpdateProperty
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventStartListening:
		return "START_LISTENING"
	case EventStopListening:
		return "STOP_LISTENING"
	case EventUpdateProperty:
		return "UPDATE_PROPERTY"
	default:
		return "UNKNOWN"
	}
}

// ParseEventType parses a wire name (case-insensitive). The optional
// "SCENEGRAPH_" prefix is accepted.
func ParseEventType(s string) (EventType, error) {
	name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "SCENEGRAPH_")
	switch name {
	case "START_LISTENING":
		return EventStartListening, nil
	case "STOP_LISTENING":
		return EventStopListening, nil
	case "UPDATE_PROPERTY":
		return EventUpdateProperty, nil
	default:
		return EventUnknown, fmt.Errorf("%w: %q", ErrUnknownEventType, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(text []byte) error {
	v, err := ParseEventType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Event is an incremental update to the tree.
type Event struct {
	Type EventType `json:"type" yaml:"type" toml:"type"`

	// URI addresses the target owner when the event is applied to a forest.
	// For UpdateProperty an empty URI targets the top-level owner named by
	// the node.
	URI string `json:"uri,omitempty" yaml:"uri,omitempty" toml:"uri,omitempty"`

	// Node is the payload of UpdateProperty.
	Node *model.Node `json:"node,omitempty" yaml:"node,omitempty" toml:"node,omitempty"`
}

// StartListening returns a StartListening event for the owner at uri.
func StartListening(uri string) Event {
	return Event{Type: EventStartListening, URI: uri}
}

// StopListening returns a StopListening event for the owner at uri.
func StopListening(uri string) Event {
	return Event{Type: EventStopListening, URI: uri}
}

// UpdateProperty returns an UpdateProperty event carrying node.
func UpdateProperty(node *model.Node) Event {
	return Event{Type: EventUpdateProperty, Node: node}
}

// withNode returns a copy of the event carrying a different node.
func (e Event) withNode(n *model.Node) Event {
	e.Node = n
	return e
}

// Validate checks the preconditions the reducers assume of an event applied
// to a forest. UpdateProperty needs a node whose owners are all named;
// listening events need a target URI.
func Validate(ev Event) error {
	switch ev.Type {
	case EventStartListening, EventStopListening:
		if ev.URI == "" {
			return fmt.Errorf("%w: %s", ErrMissingURI, ev.Type)
		}
		return nil
	case EventUpdateProperty:
		if ev.Node == nil {
			return fmt.Errorf("%w: missing node", ErrMalformedPayload)
		}
		return validateNode(ev.Node, "")
	default:
		return fmt.Errorf("%w: %d", ErrUnknownEventType, ev.Type)
	}
}

func validateNode(n *model.Node, parent string) error {
	if n.Name == "" {
		if parent == "" {
			return fmt.Errorf("%w: unnamed root owner", ErrMalformedPayload)
		}
		return fmt.Errorf("%w: unnamed sub-owner of %s", ErrMalformedPayload, parent)
	}
	path := n.Name
	if parent != "" {
		path = parent + "." + n.Name
	}
	for i, p := range n.Properties {
		if p.ID == "" {
			return fmt.Errorf("%w: property %d of %s has no id", ErrMalformedPayload, i, path)
		}
	}
	for i := range n.Subowners {
		if err := validateNode(&n.Subowners[i], path); err != nil {
			return err
		}
	}
	return nil
}
