package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/convert"
)

// RunConvert reads editor envelopes from path and prints them in transport
// form. With asLua the bracket adaptation for Lua argument lists is applied.
func RunConvert(path string, asLua bool, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read envelopes: %w", err)
	}

	envelopes, err := convert.ParseEnvelopes(data)
	if err != nil {
		return err
	}

	out, err := convert.ConvertEnvelopes(envelopes)
	if err != nil {
		return err
	}
	if asLua {
		out = convert.JSONToLua(out)
	}
	fmt.Fprintln(w, out)
	return nil
}

// RunLua prints the script that sets the property at path to the JSON value
// valueJSON, after checking that it compiles.
func RunLua(path, valueJSON string, w io.Writer) error {
	var value any
	if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
		return fmt.Errorf("invalid JSON value: %w", err)
	}

	script, err := convert.SetPropertyScript(path, value)
	if err != nil {
		return err
	}
	if err := convert.ValidateLua(script); err != nil {
		return err
	}
	fmt.Fprintln(w, script)
	return nil
}
