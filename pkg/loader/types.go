package loader

import (
	"errors"
	"strconv"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/reducer"
)

// ErrUnsupportedFormat is returned for files whose extension names no known format.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Scene is the document shape of a scene file: the top-level owners of a
// tree, in order.
type Scene struct {
	Owners []model.Node `json:"owners" yaml:"owners" toml:"owners"`
}

// Script is the document shape of an event file.
type Script struct {
	// Description is free text shown by tools.
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`

	// Events are applied in order.
	Events []reducer.Event `json:"events" yaml:"events" toml:"events"`
}

// LoadError provides details about a file loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	prefix := e.File
	if e.Line > 0 {
		prefix += ":" + strconv.Itoa(e.Line)
	}
	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
