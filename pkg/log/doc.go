// Package log provides structured event logging for the property tree.
//
// This package defines the Logger interface and the Event type for recording
// every event dispatched to a tree store: what was requested, what it
// targeted, and whether it changed the tree. It is separate from operational
// logging (slog) - the event log is a complete machine-readable trace that
// can be replayed or inspected after the fact.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/scenegraph/tree.sglog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .sglog extension.
// The "scenegraph log" command views them; Reader iterates them with an
// optional Filter.
package log
