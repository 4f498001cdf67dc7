package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/inspect"
)

// RunGet prints the property at path. With asJSON the whole property is
// written as a JSON object, otherwise only its formatted value.
// A missing property returns ErrNotFound.
func RunGet(ctx context.Context, src Source, path string, asJSON bool, w io.Writer) error {
	s, err := requireStore(ctx, src)
	if err != nil {
		return err
	}

	p, ok := s.Get(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	fmt.Fprintln(w, inspect.NewFormatter().FormatValue(p.Value))
	return nil
}
