package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	sglog "github.com/scenegraph-protocol/scenegraph-go/pkg/log"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
)

// LogFormat selects the output of the log command.
type LogFormat string

// Log output formats.
const (
	LogFormatText  LogFormat = "text"
	LogFormatJSONL LogFormat = "jsonl"
)

// ParseTypeFlag parses an event type flag value.
func ParseTypeFlag(s string) (reducer.EventType, error) {
	return reducer.ParseEventType(s)
}

// ParseOutcomeFlag parses an outcome flag value.
func ParseOutcomeFlag(s string) (sglog.Outcome, error) {
	o, ok := sglog.ParseOutcome(s)
	if !ok {
		return 0, fmt.Errorf("invalid outcome: %s (use applied, unchanged, rejected)", s)
	}
	return o, nil
}

// jsonEvent is the JSONL shape of a log event.
type jsonEvent struct {
	Timestamp  string `json:"timestamp"`
	EventID    string `json:"event_id"`
	Sequence   uint64 `json:"seq"`
	Type       string `json:"type"`
	URI        string `json:"uri,omitempty"`
	Owner      string `json:"owner,omitempty"`
	Outcome    string `json:"outcome"`
	Listeners  *int   `json:"listeners,omitempty"`
	Properties int    `json:"properties,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunLog prints the events of a log file that match filter.
func RunLog(path string, filter sglog.Filter, format LogFormat, w io.Writer) error {
	reader, err := sglog.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		switch format {
		case LogFormatJSONL:
			if err := enc.Encode(toJSONEvent(event)); err != nil {
				return err
			}
		default:
			formatEvent(w, event)
		}
	}
}

// formatEvent writes a one-line representation of the event to w.
func formatEvent(w io.Writer, event sglog.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	target := event.URI
	if target == "" {
		target = event.Owner
	}

	var details []string
	if event.Owner != "" && event.URI != "" {
		details = append(details, "owner="+event.Owner)
	}
	if event.Properties > 0 {
		details = append(details, fmt.Sprintf("properties=%d", event.Properties))
	}
	if event.Listeners != nil {
		details = append(details, fmt.Sprintf("listeners=%d", *event.Listeners))
	}
	if event.Error != "" {
		details = append(details, "error="+event.Error)
	}

	fmt.Fprintf(w, "%s #%-4d %-15s %-9s %s", ts, event.Sequence, event.Type, event.Outcome, target)
	if len(details) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(details, ", "))
	}
	fmt.Fprintln(w)
}

func toJSONEvent(event sglog.Event) jsonEvent {
	return jsonEvent{
		Timestamp:  event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z"),
		EventID:    event.EventID,
		Sequence:   event.Sequence,
		Type:       event.Type.String(),
		URI:        event.URI,
		Owner:      event.Owner,
		Outcome:    event.Outcome.String(),
		Listeners:  event.Listeners,
		Properties: event.Properties,
		Error:      event.Error,
	}
}
