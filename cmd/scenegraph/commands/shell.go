package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/chzyer/readline"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/convert"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/inspect"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/loader"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/store"
)

// Shell is an interactive session over a store.
type Shell struct {
	store     *store.Store
	inspector *inspect.Inspector
	formatter *inspect.Formatter

	// handles maps listener handles acquired in this session to their URI.
	handles map[string]string

	// watch prints store changes to out when set.
	watch bool
	out   io.Writer
}

// NewShell creates a shell over s.
func NewShell(s *store.Store) *Shell {
	sh := &Shell{
		store:     s,
		inspector: inspect.NewInspector(s),
		formatter: inspect.NewFormatter(),
		handles:   make(map[string]string),
		out:       io.Discard,
	}
	s.OnChange(sh.handleChange)
	return sh
}

// RunShell opens src and runs an interactive shell until EOF.
func RunShell(ctx context.Context, src Source) error {
	s, err := openStore(ctx, src, store.DefaultConfig())
	if err != nil {
		return err
	}
	return NewShell(s).Run(ctx)
}

// Run starts the interactive command loop.
func (sh *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "scenegraph> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    sh.completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	sh.out = rl.Stdout()
	sh.printHelp(sh.out)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}

		if !sh.Execute(ctx, line, rl.Stdout()) {
			return nil
		}
	}
}

func (sh *Shell) completer() *readline.PrefixCompleter {
	paths := readline.PcItemDynamic(func(string) []string {
		return sh.inspector.Paths()
	})
	owners := readline.PcItemDynamic(func(string) []string {
		return sh.ownerPaths()
	})
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("ls", owners),
		readline.PcItem("tree", owners),
		readline.PcItem("get", paths),
		readline.PcItem("lua", paths),
		readline.PcItem("listen", owners),
		readline.PcItem("unlisten"),
		readline.PcItem("handles"),
		readline.PcItem("apply"),
		readline.PcItem("save"),
		readline.PcItem("watch"),
		readline.PcItem("exit"),
	)
}

// ownerPaths returns the paths of all owners, in tree order.
func (sh *Shell) ownerPaths() []string {
	var paths []string
	var visit func(infos []inspect.OwnerInfo)
	visit = func(infos []inspect.OwnerInfo) {
		for _, o := range infos {
			paths = append(paths, o.Path)
			visit(o.Subowners)
		}
	}
	visit(sh.inspector.InspectTree())
	return paths
}

// Execute runs one command line and reports whether the session continues.
func (sh *Shell) Execute(ctx context.Context, line string, w io.Writer) bool {
	sh.out = w

	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		sh.printHelp(w)
	case "ls":
		sh.cmdList(w, args)
	case "tree", "t":
		sh.cmdTree(w, args)
	case "get", "g":
		sh.cmdGet(w, args)
	case "lua":
		sh.cmdLua(w, args)
	case "listen", "l":
		sh.cmdListen(ctx, w, args)
	case "unlisten", "u":
		sh.cmdUnlisten(ctx, w, args)
	case "handles":
		sh.cmdHandles(w)
	case "apply":
		sh.cmdApply(ctx, w, args)
	case "save":
		sh.cmdSave(w, args)
	case "watch":
		sh.watch = !sh.watch
		fmt.Fprintf(w, "watch %s\n", onOff(sh.watch))
	case "exit", "quit", "q":
		return false
	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (sh *Shell) printHelp(w io.Writer) {
	fmt.Fprint(w, `Commands:
  ls [owner]            List sub-owners and properties
  tree [owner]          Print the tree
  get <path>            Print a property
  lua <path>            Print the script that sets a property to its value
  listen <owner>        Start listening on an owner
  unlisten <handle>     Stop listening
  handles               List listener handles of this session
  apply <events-file>   Apply an event script
  save <file>           Save a snapshot (.json or .cbor)
  watch                 Toggle printing of changes
  exit                  Leave the shell
`)
}

func (sh *Shell) cmdList(w io.Writer, args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	names, err := sh.inspector.List(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}

func (sh *Shell) cmdTree(w io.Writer, args []string) {
	if len(args) == 0 {
		fmt.Fprint(w, sh.inspector.FormatTree(sh.formatter))
		return
	}
	info, err := sh.inspector.InspectOwner(args[0])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprint(w, sh.formatter.FormatOwner(*info, 0))
}

func (sh *Shell) cmdGet(w io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: get <path>")
		return
	}
	p, err := sh.inspector.ReadProperty(args[0])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, sh.formatter.FormatProperty(*p))
	if sh.formatter.ShowMetadata && len(p.MetaData) > 0 {
		data, err := json.Marshal(p.MetaData)
		if err == nil {
			fmt.Fprintf(w, "  metadata: %s\n", data)
		}
	}
}

func (sh *Shell) cmdLua(w io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: lua <path>")
		return
	}
	p, ok := sh.store.Get(args[0])
	if !ok {
		fmt.Fprintf(w, "Error: %v: %s\n", ErrNotFound, args[0])
		return
	}
	script, err := convert.SetPropertyScript(args[0], p.Value)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, script)
}

func (sh *Shell) cmdListen(ctx context.Context, w io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: listen <owner>")
		return
	}
	handle, err := sh.store.Listen(ctx, args[0])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	sh.handles[handle] = args[0]
	fmt.Fprintf(w, "Listening on %s (handle %s)\n", args[0], handle)
}

func (sh *Shell) cmdUnlisten(ctx context.Context, w io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: unlisten <handle>")
		return
	}
	handle := sh.resolveHandle(args[0])
	if err := sh.store.Unlisten(ctx, handle); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	uri := sh.handles[handle]
	delete(sh.handles, handle)
	fmt.Fprintf(w, "Stopped listening on %s\n", uri)
}

// resolveHandle expands a unique handle prefix.
func (sh *Shell) resolveHandle(prefix string) string {
	var match string
	for h := range sh.handles {
		if strings.HasPrefix(h, prefix) {
			if match != "" {
				return prefix
			}
			match = h
		}
	}
	if match == "" {
		return prefix
	}
	return match
}

func (sh *Shell) cmdHandles(w io.Writer) {
	if len(sh.handles) == 0 {
		fmt.Fprintln(w, "(no handles)")
		return
	}
	for _, h := range slices.Sorted(maps.Keys(sh.handles)) {
		fmt.Fprintf(w, "%s  %s\n", h, sh.handles[h])
	}
}

func (sh *Shell) cmdApply(ctx context.Context, w io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: apply <events-file>")
		return
	}
	script, err := loader.LoadScript(args[0])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	before := sh.store.Sequence()
	if err := sh.store.Replay(ctx, script.Events); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%d events, %d applied\n", len(script.Events), sh.store.Sequence()-before)
}

func (sh *Shell) cmdSave(w io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: save <file>")
		return
	}
	if err := saveSnapshot(sh.store, args[0]); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Saved sequence %d to %s\n", sh.store.Sequence(), args[0])
}

func (sh *Shell) handleChange(c store.Change) {
	if !sh.watch {
		return
	}
	target := c.Event.URI
	if target == "" && c.Event.Node != nil {
		target = c.Event.Node.Name
	}
	fmt.Fprintf(sh.out, "[#%d] %s %s\n", c.Sequence, c.Event.Type, target)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
