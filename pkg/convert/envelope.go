// Package convert turns tree-adjacent data into the textual forms consumed
// outside the tree: transport JSON for transfer-function envelopes and Lua
// for property scripts.
package convert

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
)

// Canvas dimensions of the envelope editor the points are drawn on.
const (
	CanvasHeight = 600
	CanvasWidth  = 800
)

// Conversion errors.
var (
	ErrCloneFailed      = errors.New("failed to clone envelopes")
	ErrInvalidEnvelopes = errors.New("invalid envelope data")
)

// Position is a point position in editor coordinates (origin top-left).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is a colored control point of an envelope.
type Point struct {
	Color    string   `json:"color"`
	Position Position `json:"position"`
}

// Envelope is a sequence of control points.
type Envelope struct {
	Points []Point `json:"points"`
}

// transportEnvelope is the wire shape of a converted envelope.
type transportEnvelope struct {
	Points []Point `json:"points"`
	Height int     `json:"height"`
	Width  int     `json:"width"`
}

// FlipY converts an editor position to the transport coordinate system,
// whose vertical axis points up.
func FlipY(p Position) Position {
	return Position{X: p.X, Y: CanvasHeight - p.Y}
}

// CloneEnvelopes returns a deep copy of envelopes.
func CloneEnvelopes(envelopes []Envelope) ([]Envelope, error) {
	if envelopes == nil {
		return nil, nil
	}
	var out []Envelope
	if err := copier.CopyWithOption(&out, envelopes, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCloneFailed, err)
	}
	return out, nil
}

// ConvertEnvelopes clones envelopes, flips every point into the transport
// coordinate system, attaches the canvas size and encodes the result as JSON.
// The input is left untouched.
func ConvertEnvelopes(envelopes []Envelope) (string, error) {
	cloned, err := CloneEnvelopes(envelopes)
	if err != nil {
		return "", err
	}

	converted := make([]transportEnvelope, len(cloned))
	for i, env := range cloned {
		points := make([]Point, len(env.Points))
		for j, p := range env.Points {
			points[j] = Point{Color: p.Color, Position: FlipY(p.Position)}
		}
		converted[i] = transportEnvelope{
			Points: points,
			Height: CanvasHeight,
			Width:  CanvasWidth,
		}
	}

	data, err := json.Marshal(converted)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseEnvelopes decodes a JSON array of envelopes.
func ParseEnvelopes(data []byte) ([]Envelope, error) {
	var envelopes []Envelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelopes, err)
	}
	return envelopes, nil
}
