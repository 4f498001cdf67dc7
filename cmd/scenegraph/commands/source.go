// Package commands implements the scenegraph CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/loader"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/persistence"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/store"
)

// Command errors.
var (
	ErrNotFound   = errors.New("not found")
	ErrNoSource   = errors.New("a scene file or a snapshot is required")
	ErrNoSnapshot = errors.New("snapshot file does not exist")
)

// Source names where the initial tree comes from. At most one of Scene and
// Snapshot is used; Snapshot wins when both are set.
type Source struct {
	// Scene is a YAML, TOML or JSON scene file.
	Scene string

	// Snapshot is a snapshot file written by replay -o or the shell's save command.
	Snapshot string
}

// IsZero reports whether no source is set.
func (s Source) IsZero() bool {
	return s.Scene == "" && s.Snapshot == ""
}

// openStore creates a store with config and fills it from src.
// An empty source yields an empty store.
func openStore(ctx context.Context, src Source, config store.Config) (*store.Store, error) {
	s := store.NewWithConfig(config)

	switch {
	case src.Snapshot != "":
		snap, err := persistence.NewSnapshotStore(src.Snapshot).Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		if snap == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, src.Snapshot)
		}
		s.Restore(snap.Forest, snap.Sequence)

	case src.Scene != "":
		scene, err := loader.LoadScene(src.Scene)
		if err != nil {
			return nil, err
		}
		if err := s.Replay(ctx, scene.Events()); err != nil {
			return nil, fmt.Errorf("failed to build scene: %w", err)
		}
	}

	return s, nil
}

// requireStore is openStore for commands that need a populated tree.
func requireStore(ctx context.Context, src Source) (*store.Store, error) {
	if src.IsZero() {
		return nil, ErrNoSource
	}
	return openStore(ctx, src, store.DefaultConfig())
}

// saveSnapshot writes the current tree of s to path.
func saveSnapshot(s *store.Store, path string) error {
	snap := &persistence.Snapshot{
		Sequence: s.Sequence(),
		Forest:   s.Snapshot(),
	}
	if err := persistence.NewSnapshotStore(path).Save(snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
