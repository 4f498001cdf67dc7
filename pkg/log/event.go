package log

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
)

// Event records one dispatch to a tree store.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event was dispatched (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// EventID uniquely identifies the dispatch (UUID).
	EventID string `cbor:"2,keyasint"`

	// Sequence is the store's dispatch counter after this event.
	Sequence uint64 `cbor:"3,keyasint"`

	// Type is the reducer event type.
	Type reducer.EventType `cbor:"4,keyasint"`

	// URI is the target URI of the event, if any.
	URI string `cbor:"5,keyasint,omitempty"`

	// Owner is the name of the owner carried by an update.
	Owner string `cbor:"6,keyasint,omitempty"`

	// Outcome tells whether the event changed the tree.
	Outcome Outcome `cbor:"7,keyasint"`

	// Listeners is the target owner's listener count after a listening event.
	Listeners *int `cbor:"8,keyasint,omitempty"`

	// Properties is the number of properties in an update payload, subtree included.
	Properties int `cbor:"9,keyasint,omitempty"`

	// Error describes why the event was rejected.
	Error string `cbor:"10,keyasint,omitempty"`
}

// NewEventID returns a fresh event identifier.
func NewEventID() string {
	return uuid.NewString()
}

// Outcome tells what a dispatch did to the tree.
type Outcome uint8

const (
	// OutcomeApplied indicates the event produced a new snapshot.
	OutcomeApplied Outcome = 0
	// OutcomeUnchanged indicates the event did not apply (unknown target).
	OutcomeUnchanged Outcome = 1
	// OutcomeRejected indicates the event failed validation.
	OutcomeRejected Outcome = 2
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "APPLIED"
	case OutcomeUnchanged:
		return "UNCHANGED"
	case OutcomeRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// ParseOutcome parses an outcome name (case-insensitive).
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToUpper(s) {
	case "APPLIED":
		return OutcomeApplied, true
	case "UNCHANGED":
		return OutcomeUnchanged, true
	case "REJECTED":
		return OutcomeRejected, true
	default:
		return 0, false
	}
}
