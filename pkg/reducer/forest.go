package reducer

import (
	"slices"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/uri"
)

// ReduceForest applies ev to a whole forest.
//
// Listening events target the owner addressed by ev.URI. UpdateProperty
// places ev.Node under the owner addressed by ev.URI, or at the top level
// when ev.URI is empty, replacing the sibling with the same name or
// appending a new owner. Only the owners on the path to the target are
// copied; untouched siblings are carried over. If the target cannot be
// found, or the event does not apply, forest itself is returned.
func ReduceForest(forest model.Forest, ev Event) model.Forest {
	switch ev.Type {
	case EventStartListening, EventStopListening:
		if ev.URI == "" {
			return forest
		}
		out, ok := replaceAt(forest, ev.URI, func(o *model.Owner) *model.Owner {
			return ReduceOwner(o, ev)
		})
		if !ok {
			return forest
		}
		return out

	case EventUpdateProperty:
		if ev.Node == nil {
			return forest
		}
		if ev.URI == "" {
			return placeOwner(forest, ev)
		}
		out, ok := replaceAt(forest, ev.URI, func(parent *model.Owner) *model.Owner {
			next := *parent
			next.Subowners = placeOwner(parent.Subowners, ev)
			return &next
		})
		if !ok {
			return forest
		}
		return out

	default:
		return forest
	}
}

// replaceAt rebuilds the chain of owners leading to path, substituting the
// owner found there with fn's result. It reports false when path does not
// resolve or fn leaves the owner unchanged.
func replaceAt(owners []model.Owner, path string, fn func(*model.Owner) *model.Owner) ([]model.Owner, bool) {
	split := uri.Decompose(path)
	for i := range owners {
		if owners[i].Name != split.Segment {
			continue
		}

		var next *model.Owner
		if split.Leaf {
			next = fn(&owners[i])
			if next == nil || next == &owners[i] {
				return owners, false
			}
		} else {
			subs, ok := replaceAt(owners[i].Subowners, split.Remainder, fn)
			if !ok {
				return owners, false
			}
			parent := owners[i]
			parent.Subowners = subs
			next = &parent
		}

		out := slices.Clone(owners)
		out[i] = *next
		return out, true
	}
	return owners, false
}

// placeOwner reduces ev into the sibling named like its node, or appends a
// new owner when there is none.
func placeOwner(owners []model.Owner, ev Event) []model.Owner {
	for i := range owners {
		if owners[i].Name == ev.Node.Name {
			out := slices.Clone(owners)
			out[i] = *ReduceOwner(&owners[i], ev)
			return out
		}
	}
	out := make([]model.Owner, len(owners), len(owners)+1)
	copy(out, owners)
	return append(out, *ReduceOwner(nil, ev))
}

// Changed reports whether next is a different snapshot than prev, i.e. the
// reduction that produced next did not return prev itself.
func Changed(prev, next model.Forest) bool {
	if len(prev) != len(next) {
		return true
	}
	return len(prev) > 0 && &prev[0] != &next[0]
}
