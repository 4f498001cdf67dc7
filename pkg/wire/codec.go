package wire

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
)

// Codec errors.
var (
	ErrDecodeEvent    = errors.New("failed to decode event")
	ErrDecodeSnapshot = errors.New("failed to decode snapshot")
	ErrInvalidEvent   = errors.New("invalid event")
)

// encMode is the CBOR encoder mode for events and snapshots.
// Configured for deterministic encoding.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for events and snapshots.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical, // Deterministic key ordering
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient for forward compatibility; generic maps decode with text keys
	// so property values look the same as after a JSON or YAML load.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
		DefaultMapType:    reflect.TypeOf(map[string]any(nil)),
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder creates a new CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a new CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// eventFrame is the integer-keyed wire shape of an event.
type eventFrame struct {
	Type     reducer.EventType `cbor:"1,keyasint"`
	URI      string            `cbor:"2,keyasint,omitempty"`
	Node     *model.Node       `cbor:"3,keyasint,omitempty"`
	Sequence uint64            `cbor:"4,keyasint,omitempty"`
}

// EncodeEvent validates ev and encodes it with sequence number seq.
func EncodeEvent(ev reducer.Event, seq uint64) ([]byte, error) {
	if err := reducer.Validate(ev); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return Marshal(eventFrame{Type: ev.Type, URI: ev.URI, Node: ev.Node, Sequence: seq})
}

// DecodeEvent decodes and validates an event, returning it with its
// sequence number.
func DecodeEvent(data []byte) (reducer.Event, uint64, error) {
	var f eventFrame
	if err := Unmarshal(data, &f); err != nil {
		return reducer.Event{}, 0, fmt.Errorf("%w: %v", ErrDecodeEvent, err)
	}
	ev := reducer.Event{Type: f.Type, URI: f.URI, Node: f.Node}
	if err := reducer.Validate(ev); err != nil {
		return reducer.Event{}, 0, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return ev, f.Sequence, nil
}

// EncodeSnapshot encodes a forest.
func EncodeSnapshot(forest model.Forest) ([]byte, error) {
	return Marshal(forest)
}

// DecodeSnapshot decodes a forest.
func DecodeSnapshot(data []byte) (model.Forest, error) {
	var forest model.Forest
	if err := Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeSnapshot, err)
	}
	return forest, nil
}

// WriteEvents encodes events to w as a sequence of frames numbered from 1.
func WriteEvents(w io.Writer, events []reducer.Event) error {
	enc := NewEncoder(w)
	for i, ev := range events {
		if err := reducer.Validate(ev); err != nil {
			return fmt.Errorf("%w: event %d: %w", ErrInvalidEvent, i, err)
		}
		f := eventFrame{Type: ev.Type, URI: ev.URI, Node: ev.Node, Sequence: uint64(i + 1)}
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// ReadEvents decodes a sequence of frames written by WriteEvents until EOF.
// Every event is validated.
func ReadEvents(r io.Reader) ([]reducer.Event, error) {
	dec := NewDecoder(r)
	var events []reducer.Event
	for {
		var raw cbor.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, fmt.Errorf("%w: frame %d: %v", ErrDecodeEvent, len(events), err)
		}
		ev, _, err := DecodeEvent(raw)
		if err != nil {
			return events, fmt.Errorf("frame %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
}
