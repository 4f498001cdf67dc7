package log

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
)

// Filter selects log events. The zero Filter matches everything; each set
// field narrows the selection.
type Filter struct {
	Type    *reducer.EventType
	Outcome *Outcome

	// URIPrefix matches against the event URI and the updated owner name.
	URIPrefix string

	// TimeStart is inclusive, TimeEnd exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time
}

// Match reports whether event passes the filter.
func (f Filter) Match(event Event) bool {
	switch {
	case f.Type != nil && *f.Type != event.Type:
		return false
	case f.Outcome != nil && *f.Outcome != event.Outcome:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}
	if f.URIPrefix == "" {
		return true
	}
	return strings.HasPrefix(event.URI, f.URIPrefix) || strings.HasPrefix(event.Owner, f.URIPrefix)
}

// Reader streams events out of a log file.
type Reader struct {
	src     io.ReadCloser
	dec     *cbor.Decoder
	filter  Filter
	skipped int
}

// NewReader opens the log at path.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens the log at path and yields only events matching
// filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{src: f, dec: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF at the end of the log.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		err := r.dec.Decode(&event)
		if errors.Is(err, io.EOF) {
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, err
		}
		if r.filter.Match(event) {
			return event, nil
		}
		r.skipped++
	}
}

// ReadAll collects the remaining matching events. On a decode error it
// returns the events read so far together with the error.
func (r *Reader) ReadAll() ([]Event, error) {
	var events []Event
	for {
		event, err := r.Next()
		switch {
		case err == io.EOF:
			return events, nil
		case err != nil:
			return events, err
		}
		events = append(events, event)
	}
}

// Skipped returns how many events the filter has rejected so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Close closes the log file.
func (r *Reader) Close() error {
	return r.src.Close()
}
