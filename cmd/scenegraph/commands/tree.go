package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/inspect"
)

// TreeOptions controls the tree command.
type TreeOptions struct {
	// Root limits the output to the owner at this path.
	Root string

	ShowMetadata bool
	ShowIDs      bool
}

// RunTree prints the tree of src to w.
func RunTree(ctx context.Context, src Source, opts TreeOptions, w io.Writer) error {
	s, err := requireStore(ctx, src)
	if err != nil {
		return err
	}

	insp := inspect.NewInspector(s)
	formatter := inspect.NewFormatter()
	formatter.ShowMetadata = opts.ShowMetadata
	formatter.ShowIDs = opts.ShowIDs

	if opts.Root == "" {
		fmt.Fprint(w, insp.FormatTree(formatter))
		return nil
	}

	info, err := insp.InspectOwner(opts.Root)
	if err != nil {
		return err
	}
	fmt.Fprint(w, formatter.FormatOwner(*info, 0))
	return nil
}
