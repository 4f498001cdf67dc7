package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/inspect"
	sglog "github.com/scenegraph-protocol/scenegraph-go/pkg/log"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/loader"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/store"
)

// ReplayOptions controls the replay command.
type ReplayOptions struct {
	// Source is the starting tree. Empty starts from an empty forest.
	Source Source

	// Scripts are event files applied in order.
	Scripts []string

	// LogPath receives a CBOR event log of every dispatch.
	LogPath string

	// SnapshotPath receives the final tree.
	SnapshotPath string

	// RecordPath receives all script events as one script, in the format
	// implied by its extension (.cbor for a binary frame stream).
	RecordPath string

	// Quiet suppresses the final tree.
	Quiet bool

	// Logger, if set, also receives every dispatch.
	Logger *slog.Logger
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Events   int
	Applied  int
	Sequence uint64
}

// RunReplay applies event scripts to a store and prints the resulting tree.
func RunReplay(ctx context.Context, opts ReplayOptions, w io.Writer) (*ReplayResult, error) {
	var loggers []sglog.Logger
	if opts.LogPath != "" {
		fl, err := sglog.NewFileLogger(opts.LogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create event log: %w", err)
		}
		defer fl.Close()
		loggers = append(loggers, fl)
	}
	if opts.Logger != nil {
		loggers = append(loggers, sglog.NewSlogAdapter(opts.Logger))
	}

	config := store.DefaultConfig()
	config.EventLogger = sglog.NewMultiLogger(loggers...)
	if opts.Logger != nil {
		config.Logger = opts.Logger
	}

	s, err := openStore(ctx, opts.Source, config)
	if err != nil {
		return nil, err
	}

	result := &ReplayResult{}
	start := s.Sequence()
	var recorded []reducer.Event
	for _, path := range opts.Scripts {
		script, err := loader.LoadScript(path)
		if err != nil {
			return nil, err
		}
		if err := s.Replay(ctx, script.Events); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		result.Events += len(script.Events)
		recorded = append(recorded, script.Events...)
	}
	result.Sequence = s.Sequence()
	result.Applied = int(result.Sequence - start)

	if opts.RecordPath != "" {
		if err := loader.WriteScript(opts.RecordPath, &loader.Script{Events: recorded}); err != nil {
			return nil, fmt.Errorf("failed to record events: %w", err)
		}
	}

	if opts.SnapshotPath != "" {
		if err := saveSnapshot(s, opts.SnapshotPath); err != nil {
			return nil, err
		}
	}

	if !opts.Quiet {
		fmt.Fprint(w, inspect.NewInspector(s).FormatTree(nil))
		fmt.Fprintf(w, "---\n%d events, %d applied, sequence %d\n", result.Events, result.Applied, result.Sequence)
	}
	return result, nil
}
