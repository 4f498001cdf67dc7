package wire

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
)

func testNode() *model.Node {
	return &model.Node{
		Name: "Scene",
		Properties: []model.Property{
			{ID: "Time", Type: "StringProperty", Value: "2020-01-01T00:00:00"},
		},
		Subowners: []model.Node{
			{
				Name: "Earth",
				Properties: []model.Property{
					{
						ID:       "Color",
						Value:    []any{1.0, 0.5, 0.25},
						MetaData: map[string]any{"ViewOptions": map[string]any{"Color": true}},
					},
				},
				Tag: []string{"planet"},
			},
		},
	}
}

func TestEventRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ev   reducer.Event
		seq  uint64
	}{
		{"update", reducer.UpdateProperty(testNode()), 7},
		{"start listening", reducer.StartListening("Scene.Earth"), 1},
		{"stop listening", reducer.StopListening("Scene"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeEvent(tt.ev, tt.seq)
			if err != nil {
				t.Fatalf("EncodeEvent() error = %v", err)
			}

			got, seq, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}
			if seq != tt.seq {
				t.Errorf("sequence = %d, want %d", seq, tt.seq)
			}
			if !reflect.DeepEqual(got, tt.ev) {
				t.Errorf("DecodeEvent() =\n%+v\nwant\n%+v", got, tt.ev)
			}
		})
	}
}

func TestEncodeEventIsDeterministic(t *testing.T) {
	a, err := EncodeEvent(reducer.UpdateProperty(testNode()), 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncodeEvent(reducer.UpdateProperty(testNode()), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding the same event twice produced different bytes")
	}
}

func TestEncodeEventRejectsInvalid(t *testing.T) {
	_, err := EncodeEvent(reducer.Event{Type: reducer.EventUpdateProperty}, 0)
	if !errors.Is(err, ErrInvalidEvent) || !errors.Is(err, reducer.ErrMalformedPayload) {
		t.Errorf("EncodeEvent() error = %v, want ErrInvalidEvent wrapping ErrMalformedPayload", err)
	}
}

func TestDecodeEventErrors(t *testing.T) {
	if _, _, err := DecodeEvent([]byte{0xff, 0x00}); !errors.Is(err, ErrDecodeEvent) {
		t.Errorf("garbage: error = %v, want ErrDecodeEvent", err)
	}

	// Well-formed CBOR, but a listening event without a URI.
	data, err := Marshal(eventFrame{Type: reducer.EventStartListening})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := DecodeEvent(data); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("missing uri: error = %v, want ErrInvalidEvent", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	forest := reducer.ReduceForest(nil, reducer.UpdateProperty(testNode()))
	forest = reducer.ReduceForest(forest, reducer.StartListening("Scene.Earth"))

	data, err := EncodeSnapshot(forest)
	if err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}
	got, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(got, forest) {
		t.Errorf("DecodeSnapshot() =\n%+v\nwant\n%+v", got, forest)
	}
}

func TestStreamEncoding(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, name := range []string{"A", "B"} {
		if err := enc.Encode(model.Node{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	dec := NewDecoder(&buf)
	for _, want := range []string{"A", "B"} {
		var n model.Node
		if err := dec.Decode(&n); err != nil {
			t.Fatal(err)
		}
		if n.Name != want {
			t.Errorf("Name = %q, want %q", n.Name, want)
		}
	}
}

func TestEventStream(t *testing.T) {
	events := []reducer.Event{
		reducer.UpdateProperty(testNode()),
		reducer.StartListening("Scene.Earth"),
		reducer.StopListening("Scene.Earth"),
	}

	var buf bytes.Buffer
	if err := WriteEvents(&buf, events); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}

	got, err := ReadEvents(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadEvents() error = %v", err)
	}
	if !reflect.DeepEqual(got, events) {
		t.Errorf("ReadEvents() = %+v, want %+v", got, events)
	}

	// Frames carry their position in the stream.
	dec := NewDecoder(bytes.NewReader(buf.Bytes()))
	for want := uint64(1); want <= 3; want++ {
		var f eventFrame
		if err := dec.Decode(&f); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if f.Sequence != want {
			t.Errorf("Sequence = %d, want %d", f.Sequence, want)
		}
	}
}

func TestEventStreamErrors(t *testing.T) {
	var buf bytes.Buffer
	err := WriteEvents(&buf, []reducer.Event{reducer.StartListening("Scene"), {Type: reducer.EventStopListening}})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("WriteEvents() error = %v, want ErrInvalidEvent", err)
	}

	got, err := ReadEvents(bytes.NewReader(nil))
	if err != nil || len(got) != 0 {
		t.Errorf("ReadEvents(empty) = %v, %v", got, err)
	}

	// A valid frame followed by a truncated one.
	buf.Reset()
	if err := WriteEvents(&buf, []reducer.Event{reducer.StartListening("Scene"), reducer.StartListening("Scene.Earth")}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()[:buf.Len()-3]
	got, err = ReadEvents(bytes.NewReader(data))
	if !errors.Is(err, ErrDecodeEvent) {
		t.Errorf("ReadEvents(truncated) error = %v, want ErrDecodeEvent", err)
	}
	if len(got) != 1 {
		t.Errorf("ReadEvents(truncated) returned %d events, want 1", len(got))
	}
}
