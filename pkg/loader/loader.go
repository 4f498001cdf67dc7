// Package loader reads scene descriptions and event scripts from YAML, TOML,
// JSON or CBOR files.
//
// The format is chosen by file extension (.yaml/.yml, .toml, .json, .cbor).
// A CBOR event script is the frame stream written by wire.WriteEvents. Every
// loaded owner and event is validated before it is returned, so callers can
// fold the result without further checks.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/wire"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseScene parses a scene document and validates its owners.
func ParseScene(data []byte, format Format) (*Scene, error) {
	var scene Scene
	if err := decode(data, format, &scene); err != nil {
		return nil, err
	}

	for i := range scene.Owners {
		if err := reducer.Validate(reducer.UpdateProperty(&scene.Owners[i])); err != nil {
			return nil, &LoadError{
				Message: fmt.Sprintf("owner %d", i),
				Cause:   err,
			}
		}
	}
	return &scene, nil
}

// ParseScript parses an event script and validates its events.
func ParseScript(data []byte, format Format) (*Script, error) {
	var script Script
	if format == FormatCBOR {
		events, err := wire.ReadEvents(bytes.NewReader(data))
		if err != nil {
			return nil, &LoadError{Message: "failed to read event stream", Cause: err}
		}
		return &Script{Events: events}, nil
	}
	if err := decode(data, format, &script); err != nil {
		return nil, err
	}

	for i, ev := range script.Events {
		if err := reducer.Validate(ev); err != nil {
			return nil, &LoadError{
				Message: fmt.Sprintf("event %d (%s)", i, ev.Type),
				Cause:   err,
			}
		}
	}
	return &script, nil
}

// LoadScene loads a scene file.
func LoadScene(path string) (*Scene, error) {
	format, data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	scene, err := ParseScene(data, format)
	if err != nil {
		return nil, withFile(err, path)
	}
	return scene, nil
}

// LoadScript loads an event script file.
func LoadScript(path string) (*Script, error) {
	format, data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	script, err := ParseScript(data, format)
	if err != nil {
		return nil, withFile(err, path)
	}
	return script, nil
}

// LoadDirectory loads all event scripts in dir, in file name order.
// Files with unsupported extensions are skipped.
func LoadDirectory(dir string) ([]*Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := FormatOf(entry.Name()); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	scripts := make([]*Script, 0, len(names))
	for _, name := range names {
		script, err := LoadScript(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

// Events returns the update events that build the scene from an empty forest.
func (s *Scene) Events() []reducer.Event {
	events := make([]reducer.Event, len(s.Owners))
	for i := range s.Owners {
		events[i] = reducer.UpdateProperty(&s.Owners[i])
	}
	return events
}

// Forest folds the scene into a forest.
func (s *Scene) Forest() model.Forest {
	var forest model.Forest
	for _, ev := range s.Events() {
		forest = reducer.ReduceForest(forest, ev)
	}
	return forest
}

func readFile(path string) (Format, []byte, error) {
	format, err := FormatOf(path)
	if err != nil {
		return "", nil, &LoadError{File: path, Message: "cannot load", Cause: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}
	return format, data, nil
}

func withFile(err error, path string) error {
	var le *LoadError
	if errors.As(err, &le) {
		le.File = path
		return le
	}
	return &LoadError{File: path, Message: err.Error()}
}

func decode(data []byte, format Format, v any) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return &LoadError{Line: yamlLine(err), Message: "failed to parse YAML", Cause: err}
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), v); err != nil {
			le := &LoadError{Message: "failed to parse TOML", Cause: err}
			var pe toml.ParseError
			if errors.As(err, &pe) {
				le.Line = pe.Position.Line
			}
			return le
		}
	case FormatJSON:
		if err := json.Unmarshal(data, v); err != nil {
			le := &LoadError{Message: "failed to parse JSON", Cause: err}
			var se *json.SyntaxError
			if errors.As(err, &se) {
				le.Line = lineAt(data, se.Offset)
			}
			return le
		}
	case FormatCBOR:
		if err := wire.Unmarshal(data, v); err != nil {
			return &LoadError{Message: "failed to parse CBOR", Cause: err}
		}
	default:
		return &LoadError{Message: "cannot decode", Cause: fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)}
	}
	return nil
}

// yamlLine extracts the first line number from a yaml.v3 error.
func yamlLine(err error) int {
	var te *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &te) && len(te.Errors) > 0 {
		msg = te.Errors[0]
	}
	var line int
	if i := strings.Index(msg, "line "); i >= 0 {
		fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return line
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

// WriteScript writes events to path in the format implied by its extension.
func WriteScript(path string, script *Script) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatCBOR:
		var buf bytes.Buffer
		if err := wire.WriteEvents(&buf, script.Events); err != nil {
			return err
		}
		data = buf.Bytes()
	case FormatYAML:
		data, err = yaml.Marshal(script)
	case FormatTOML:
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(script)
		data = buf.Bytes()
	case FormatJSON:
		data, err = json.MarshalIndent(script, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
