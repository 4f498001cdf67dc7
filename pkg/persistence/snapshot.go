package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/version"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/wire"
)

// Persistence errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrCorruptSnapshot    = errors.New("corrupt snapshot file")
)

// Snapshot is a saved forest.
type Snapshot struct {
	// Version is the snapshot file format version ("major.minor").
	Version string `json:"version"`

	// SavedAt is when the snapshot was saved.
	SavedAt time.Time `json:"saved_at"`

	// Sequence is the store sequence number the forest corresponds to.
	Sequence uint64 `json:"sequence"`

	// Forest is the saved tree.
	Forest model.Forest `json:"forest"`
}

// SnapshotStore manages a snapshot file.
type SnapshotStore struct {
	mu   sync.Mutex
	path string
}

// NewSnapshotStore creates a snapshot store backed by path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path returns the snapshot file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

func (s *SnapshotStore) binary() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".cbor")
}

// Save writes snap to disk. Version is set to version.Current and a zero
// SavedAt is set to the current time.
func (s *SnapshotStore) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	snap.Version = version.Current
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}

	var data []byte
	var err error
	if s.binary() {
		data, err = wire.Marshal(snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return err
	}

	// Replace the file atomically.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the snapshot from disk.
// Returns nil, nil if the file doesn't exist.
func (s *SnapshotStore) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	if s.binary() {
		err = wire.Unmarshal(data, snap)
	} else {
		err = json.Unmarshal(data, snap)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, s.path, err)
	}

	if _, err := version.Check(snap.Version); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedVersion, err)
	}
	return snap, nil
}

// Clear removes the snapshot file.
func (s *SnapshotStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
