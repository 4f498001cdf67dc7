package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sglog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func testEvents(base time.Time) []Event {
	two := 2
	return []Event{
		{Timestamp: base, EventID: "ev-1", Sequence: 1, Type: reducer.EventUpdateProperty, Owner: "Scene", Outcome: OutcomeApplied, Properties: 4},
		{Timestamp: base.Add(time.Second), EventID: "ev-2", Sequence: 2, Type: reducer.EventStartListening, URI: "Scene.Earth", Outcome: OutcomeApplied, Listeners: &two},
		{Timestamp: base.Add(2 * time.Second), EventID: "ev-3", Sequence: 2, Type: reducer.EventStartListening, URI: "Mars", Outcome: OutcomeUnchanged},
		{Timestamp: base.Add(3 * time.Second), EventID: "ev-4", Sequence: 2, Type: reducer.EventUpdateProperty, Outcome: OutcomeRejected, Error: "malformed update payload: missing node"},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	path := createTestLogFile(t, testEvents(time.Now()))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}

	if len(read) != 4 {
		t.Fatalf("got %d events, want 4", len(read))
	}
	if read[0].EventID != "ev-1" {
		t.Errorf("first event EventID = %q, want %q", read[0].EventID, "ev-1")
	}
	if read[1].Listeners == nil || *read[1].Listeners != 2 {
		t.Errorf("second event Listeners = %v, want 2", read[1].Listeners)
	}
	if read[3].Error == "" {
		t.Error("rejected event lost its error message")
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Next on empty file = %v, want io.EOF", err)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.sglog")); err == nil {
		t.Error("NewReader on a missing file should fail")
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Now()
	path := createTestLogFile(t, testEvents(base))

	start := reducer.EventStartListening
	rejected := OutcomeRejected
	after := base.Add(500 * time.Millisecond)
	before := base.Add(2 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"ev-1", "ev-2", "ev-3", "ev-4"}},
		{"by type", Filter{Type: &start}, []string{"ev-2", "ev-3"}},
		{"by outcome", Filter{Outcome: &rejected}, []string{"ev-4"}},
		{"by uri prefix", Filter{URIPrefix: "Scene"}, []string{"ev-1", "ev-2"}},
		{"by time window", Filter{TimeStart: &after, TimeEnd: &before}, []string{"ev-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			events, err := reader.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}

			if got := reader.Skipped(); got != 4-len(tt.want) {
				t.Errorf("Skipped() = %d, want %d", got, 4-len(tt.want))
			}

			var ids []string
			for _, e := range events {
				ids = append(ids, e.EventID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("event %d = %q, want %q", i, ids[i], tt.want[i])
				}
			}
		})
	}
}

func TestFileLoggerAppendsAndIgnoresAfterClose(t *testing.T) {
	path := createTestLogFile(t, testEvents(time.Now())[:1])

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	logger.Log(Event{EventID: "appended"})
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	logger.Log(Event{EventID: "after-close"})
	if n := logger.Dropped(); n != 0 {
		t.Errorf("Dropped() = %d, want 0", n)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[1].EventID != "appended" {
		t.Errorf("events = %+v, want original plus appended", events)
	}
}
