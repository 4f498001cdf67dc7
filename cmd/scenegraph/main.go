// Command scenegraph is a tool for building, inspecting and replaying
// property trees.
//
// Usage:
//
//	scenegraph <command> [flags] <args>
//
// Commands:
//
//	tree     Print the tree of a scene file or snapshot
//	get      Print one property
//	replay   Apply event scripts and print the resulting tree
//	log      View a binary event log written by replay -log
//	convert  Convert editor envelopes to transport JSON
//	lua      Print the script that sets a property
//	shell    Interactive shell over a tree
//
// Examples:
//
//	# Print a scene
//	scenegraph tree scene.yaml
//
//	# Read one property
//	scenegraph get scene.yaml Scene.Earth.Renderable.Opacity
//
//	# Replay events on top of a scene, logging every dispatch
//	scenegraph replay -scene scene.yaml -log run.sglog events.yaml
//
//	# Show only rejected events
//	scenegraph log -outcome rejected run.sglog
//
//	# Explore interactively
//	scenegraph shell scene.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/scenegraph-protocol/scenegraph-go/cmd/scenegraph/commands"
	sglog "github.com/scenegraph-protocol/scenegraph-go/pkg/log"
)

const usage = `scenegraph - Property Tree Tool

Usage:
  scenegraph <command> [flags] <args>

Commands:
  tree     Print the tree of a scene file or snapshot
  get      Print one property
  replay   Apply event scripts and print the resulting tree
  log      View a binary event log written by replay -log
  convert  Convert editor envelopes to transport JSON
  lua      Print the script that sets a property
  shell    Interactive shell over a tree

Use "scenegraph <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "tree":
		runTree(ctx, args)
	case "get":
		runGet(ctx, args)
	case "replay":
		runReplay(ctx, args)
	case "log":
		runLog(args)
	case "convert":
		runConvert(args)
	case "lua":
		runLua(args)
	case "shell":
		runShell(ctx, args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// sourceFlags registers the snapshot flag shared by commands that read a tree.
func sourceFlags(fs *flag.FlagSet) *string {
	return fs.String("snapshot", "", "Read the tree from a snapshot file instead of a scene file")
}

func runTree(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `scenegraph tree - Print the tree of a scene file or snapshot

Usage:
  scenegraph tree [flags] <scene-file>
  scenegraph tree -snapshot <file> [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	snapshot := sourceFlags(fs)
	root := fs.String("root", "", "Only print the owner at this path")
	ids := fs.Bool("ids", false, "Show property IDs instead of names")
	brief := fs.Bool("brief", false, "Hide types, tags and listener counts")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	src := commands.Source{Snapshot: *snapshot, Scene: fs.Arg(0)}
	if src.IsZero() {
		fmt.Fprintln(os.Stderr, "Error: scene file or -snapshot required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.TreeOptions{Root: *root, ShowMetadata: !*brief, ShowIDs: *ids}
	if err := commands.RunTree(ctx, src, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runGet(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `scenegraph get - Print one property

Usage:
  scenegraph get [flags] <scene-file> <path>
  scenegraph get -snapshot <file> [flags] <path>

Flags:
`)
		fs.PrintDefaults()
	}

	snapshot := sourceFlags(fs)
	asJSON := fs.Bool("json", false, "Print the whole property as JSON")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	var src commands.Source
	var path string
	switch {
	case *snapshot != "" && fs.NArg() == 1:
		src.Snapshot = *snapshot
		path = fs.Arg(0)
	case *snapshot == "" && fs.NArg() == 2:
		src.Scene = fs.Arg(0)
		path = fs.Arg(1)
	default:
		fmt.Fprintln(os.Stderr, "Error: expected a tree source and a property path")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunGet(ctx, src, path, *asJSON, os.Stdout); err != nil {
		if errors.Is(err, commands.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "not found")
			os.Exit(1)
		}
		fail(err)
	}
}

func runReplay(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `scenegraph replay - Apply event scripts and print the resulting tree

Usage:
  scenegraph replay [flags] <events-file>...

Flags:
`)
		fs.PrintDefaults()
	}

	scene := fs.String("scene", "", "Start from this scene file")
	snapshot := sourceFlags(fs)
	logPath := fs.String("log", "", "Write a CBOR event log to this file (.sglog)")
	output := fs.String("o", "", "Save the resulting tree as a snapshot (.json or .cbor)")
	record := fs.String("record", "", "Write all script events to one file (.yaml, .toml, .json or .cbor)")
	quiet := fs.Bool("q", false, "Do not print the resulting tree")
	verbose := fs.Bool("v", false, "Log every dispatch to stderr")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: events file required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.ReplayOptions{
		Source:       commands.Source{Scene: *scene, Snapshot: *snapshot},
		Scripts:      fs.Args(),
		LogPath:      *logPath,
		SnapshotPath: *output,
		RecordPath:   *record,
		Quiet:        *quiet,
	}
	if *verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if _, err := commands.RunReplay(ctx, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runLog(args []string) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `scenegraph log - View a binary event log

Usage:
  scenegraph log [flags] <file.sglog>

Flags:
`)
		fs.PrintDefaults()
	}

	eventType := fs.String("type", "", "Filter by event type (start_listening, stop_listening, update_property)")
	outcome := fs.String("outcome", "", "Filter by outcome (applied, unchanged, rejected)")
	prefix := fs.String("uri", "", "Filter by URI or owner prefix")
	format := fs.String("format", "text", "Output format (text, jsonl)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter := sglog.Filter{URIPrefix: *prefix}

	if *eventType != "" {
		t, err := commands.ParseTypeFlag(*eventType)
		if err != nil {
			fail(err)
		}
		filter.Type = &t
	}

	if *outcome != "" {
		o, err := commands.ParseOutcomeFlag(*outcome)
		if err != nil {
			fail(err)
		}
		filter.Outcome = &o
	}

	f := commands.LogFormat(strings.ToLower(*format))
	if f != commands.LogFormatText && f != commands.LogFormatJSONL {
		fail(fmt.Errorf("invalid format: %s (use text, jsonl)", *format))
	}

	if err := commands.RunLog(fs.Arg(0), filter, f, os.Stdout); err != nil {
		fail(err)
	}
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `scenegraph convert - Convert editor envelopes to transport JSON

Usage:
  scenegraph convert [flags] <envelopes.json>

Flags:
`)
		fs.PrintDefaults()
	}

	asLua := fs.Bool("lua", false, "Strip the outer list brackets for use as Lua arguments")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: envelopes file required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunConvert(fs.Arg(0), *asLua, os.Stdout); err != nil {
		fail(err)
	}
}

func runLua(args []string) {
	fs := flag.NewFlagSet("lua", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `scenegraph lua - Print the script that sets a property

Usage:
  scenegraph lua <path> <value-json>

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: property path and JSON value required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunLua(fs.Arg(0), fs.Arg(1), os.Stdout); err != nil {
		fail(err)
	}
}

func runShell(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `scenegraph shell - Interactive shell over a tree

Usage:
  scenegraph shell [flags] [scene-file]

Flags:
`)
		fs.PrintDefaults()
	}

	snapshot := sourceFlags(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	src := commands.Source{Snapshot: *snapshot, Scene: fs.Arg(0)}
	if err := commands.RunShell(ctx, src); err != nil {
		fail(err)
	}
}
