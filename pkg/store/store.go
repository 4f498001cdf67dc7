// Package store holds the current property tree and serializes updates to it.
//
// The reducers in package reducer are pure and assume their caller applies
// events one at a time. Store is that caller: Dispatch validates an event,
// reduces it against the current snapshot under a lock, publishes the result
// and notifies change callbacks outside the lock. Readers take the current
// snapshot without locking.
//
// # Snapshots
//
// A published snapshot is never modified. Every applied event publishes a new
// forest, so callbacks and readers may compare snapshots by identity.
//
// # Listeners
//
// Listen and Unlisten keep the per-owner listener counts and hand out
// handles so a caller can release exactly what it acquired. An update that
// rebuilds an owner resets its count to zero and turns every handle on that
// owner or below it stale. Releasing a stale handle only forgets it, so it
// never takes away a listener acquired after the update. Restore resets all
// counts because no handle survives it.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	sglog "github.com/scenegraph-protocol/scenegraph-go/pkg/log"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/tree"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/uri"
)

// Store errors.
var (
	ErrOwnerNotFound = errors.New("owner not found")
	ErrUnknownHandle = errors.New("unknown listener handle")
)

// Config holds store configuration.
type Config struct {
	// EventLogger receives one event per dispatch. Nil disables event logging.
	EventLogger sglog.Logger

	// Logger is the operational logger. Nil uses slog.Default().
	Logger *slog.Logger

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		EventLogger: sglog.NoopLogger{},
		Logger:      slog.Default(),
		Now:         time.Now,
	}
}

// Change describes an applied event.
type Change struct {
	// Event is the event that was applied.
	Event reducer.Event

	// Sequence is the store sequence number after the event.
	Sequence uint64

	// Previous and Current are the snapshots before and after the event.
	Previous model.Forest
	Current  model.Forest
}

// ChangeFunc is called after every applied event.
type ChangeFunc func(Change)

type snapshot struct {
	forest model.Forest
	seq    uint64
}

type listenHandle struct {
	path string

	// stale is set under mu once an update rebuilt the owner at path.
	stale bool
}

// Store holds the current snapshot of a property forest.
type Store struct {
	// mu serializes dispatch.
	mu sync.Mutex

	current atomic.Pointer[snapshot]

	config Config

	// handlesMu nests inside mu.
	handlesMu sync.Mutex
	handles   map[string]*listenHandle

	callbacksMu sync.RWMutex
	callbacks   []ChangeFunc
}

// New creates an empty store with default configuration.
func New() *Store {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an empty store with custom configuration.
func NewWithConfig(config Config) *Store {
	if config.EventLogger == nil {
		config.EventLogger = sglog.NoopLogger{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	s := &Store{
		config:  config,
		handles: make(map[string]*listenHandle),
	}
	s.current.Store(&snapshot{})
	return s
}

// OnChange registers a callback for applied events. Callbacks run on the
// dispatching goroutine after the new snapshot is published.
func (s *Store) OnChange(fn ChangeFunc) {
	s.callbacksMu.Lock()
	defer s.callbacksMu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Snapshot returns the current forest. The result must not be modified.
func (s *Store) Snapshot() model.Forest {
	return s.current.Load().forest
}

// Sequence returns the number of events applied so far.
func (s *Store) Sequence() uint64 {
	return s.current.Load().seq
}

// Restore replaces the current snapshot with a copy of forest and sets the
// sequence number. Outstanding listener handles are dropped and every
// listener count in the copy is reset to zero.
func (s *Store) Restore(forest model.Forest, seq uint64) {
	restored := forest.Clone()
	resetListeners(restored)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Store(&snapshot{forest: restored, seq: seq})

	s.handlesMu.Lock()
	clear(s.handles)
	s.handlesMu.Unlock()

	s.config.Logger.Info("snapshot restored", "owners", len(forest), "seq", seq)
}

// Get returns a copy of the property at path.
func (s *Store) Get(path string) (model.Property, bool) {
	p, ok := tree.Resolve(s.Snapshot(), path)
	if !ok {
		return model.Property{}, false
	}
	return p.Clone(), true
}

// Owner returns a copy of the owner at path.
func (s *Store) Owner(path string) (*model.Owner, bool) {
	o, ok := tree.FindOwner(s.Snapshot(), path)
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Dispatch validates ev and applies it to the current snapshot.
// An event whose target does not exist is not an error; it leaves the
// snapshot unchanged.
func (s *Store) Dispatch(ctx context.Context, ev reducer.Event) error {
	_, err := s.apply(ctx, ev, nil)
	return err
}

// Replay dispatches events in order and stops at the first error.
func (s *Store) Replay(ctx context.Context, events []reducer.Event) error {
	for i, ev := range events {
		if err := s.Dispatch(ctx, ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
		}
	}
	return nil
}

// Listen registers a listener on the owner at path and returns a handle for
// Unlisten.
func (s *Store) Listen(ctx context.Context, path string) (string, error) {
	handle := uuid.NewString()
	found := false
	_, err := s.apply(ctx, reducer.StartListening(path), func(forest model.Forest) bool {
		if _, found = tree.FindOwner(forest, path); found {
			s.handlesMu.Lock()
			s.handles[handle] = &listenHandle{path: path}
			s.handlesMu.Unlock()
		}
		return true
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrOwnerNotFound, path)
	}
	return handle, nil
}

// Unlisten releases a handle returned by Listen. A stale handle is forgotten
// without touching the tree.
func (s *Store) Unlisten(ctx context.Context, handle string) error {
	s.handlesMu.Lock()
	h, ok := s.handles[handle]
	s.handlesMu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}

	released := false
	_, err := s.apply(ctx, reducer.StopListening(h.path), func(model.Forest) bool {
		s.handlesMu.Lock()
		defer s.handlesMu.Unlock()

		// A concurrent Unlisten of the same handle may have won.
		if _, released = s.handles[handle]; !released {
			return false
		}
		delete(s.handles, handle)
		return !h.stale
	})
	if err != nil {
		return err
	}
	if !released {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	return nil
}

// Handles returns the number of outstanding listener handles, stale ones
// included.
func (s *Store) Handles() int {
	s.handlesMu.Lock()
	defer s.handlesMu.Unlock()
	return len(s.handles)
}

// apply runs one event through validation and reduction and reports whether
// it produced a new snapshot. A non-nil locked runs under mu against the
// current forest before the reduction; returning false drops the event
// without reducing or logging it.
func (s *Store) apply(ctx context.Context, ev reducer.Event, locked func(model.Forest) bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	entry := sglog.Event{
		Timestamp: s.config.Now(),
		EventID:   sglog.NewEventID(),
		Type:      ev.Type,
		URI:       ev.URI,
	}
	if ev.Node != nil {
		entry.Owner = ev.Node.Name
		entry.Properties = countProperties(ev.Node)
	}

	if err := reducer.Validate(ev); err != nil {
		entry.Sequence = s.Sequence()
		entry.Outcome = sglog.OutcomeRejected
		entry.Error = err.Error()
		s.config.EventLogger.Log(entry)
		s.config.Logger.Warn("event rejected", "type", ev.Type.String(), "uri", ev.URI, "error", err)
		return false, err
	}

	s.mu.Lock()
	prev := s.current.Load()
	if locked != nil && !locked(prev.forest) {
		s.mu.Unlock()
		return false, nil
	}
	next := reducer.ReduceForest(prev.forest, ev)
	applied := reducer.Changed(prev.forest, next)

	cur := prev
	if applied {
		cur = &snapshot{forest: next, seq: prev.seq + 1}
		s.current.Store(cur)
		if ev.Type == reducer.EventUpdateProperty {
			s.invalidateHandles(uri.Join(ev.URI, ev.Node.Name))
		}
	}
	s.mu.Unlock()

	entry.Sequence = cur.seq
	entry.Outcome = sglog.OutcomeUnchanged
	if applied {
		entry.Outcome = sglog.OutcomeApplied
		if ev.Type == reducer.EventStartListening || ev.Type == reducer.EventStopListening {
			if o, ok := tree.FindOwner(cur.forest, ev.URI); ok {
				n := o.Listeners
				entry.Listeners = &n
			}
		}
	}
	s.config.EventLogger.Log(entry)

	if !applied {
		s.config.Logger.Debug("event did not apply", "type", ev.Type.String(), "uri", ev.URI)
		return false, nil
	}

	s.notify(Change{
		Event:    ev,
		Sequence: cur.seq,
		Previous: prev.forest,
		Current:  cur.forest,
	})
	return true, nil
}

func (s *Store) notify(c Change) {
	s.callbacksMu.RLock()
	callbacks := make([]ChangeFunc, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.callbacksMu.RUnlock()

	for _, fn := range callbacks {
		fn(c)
	}
}

// invalidateHandles marks handles on the owner at path, or below it, stale.
// The caller holds mu.
func (s *Store) invalidateHandles(path string) {
	s.handlesMu.Lock()
	defer s.handlesMu.Unlock()

	for _, h := range s.handles {
		if h.path == path || strings.HasPrefix(h.path, path+uri.Separator) {
			h.stale = true
		}
	}
}

func resetListeners(owners []model.Owner) {
	for i := range owners {
		owners[i].Listeners = 0
		resetListeners(owners[i].Subowners)
	}
}

func countProperties(n *model.Node) int {
	count := len(n.Properties)
	for i := range n.Subowners {
		count += countProperties(&n.Subowners[i])
	}
	return count
}
