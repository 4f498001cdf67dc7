// Package tree resolves URIs against a property forest.
//
// Lookups are depth-first and name-exact. A miss at any segment yields
// "not found"; there is no separate error channel, so a malformed URI and a
// missing property are indistinguishable to the caller.
package tree

import (
	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/uri"
)

// Resolve returns the property addressed by path.
//
// The first segment is matched against the names of the top-level owners;
// the rest of the path is resolved below the first owner that matches.
func Resolve(forest model.Forest, path string) (*model.Property, bool) {
	split := uri.Decompose(path)
	for i := range forest {
		if forest[i].Name == split.Segment {
			return ResolveIn(&forest[i], split.Remainder)
		}
	}
	return nil, false
}

// ResolveIn resolves path relative to owner.
func ResolveIn(owner *model.Owner, path string) (*model.Property, bool) {
	for owner != nil {
		split := uri.Decompose(path)
		if split.Leaf {
			return owner.PropertyByID(uri.PropertyID(path))
		}
		owner, _ = owner.SubownerByName(split.Segment)
		path = split.Remainder
	}
	return nil, false
}

// FindOwner returns the owner addressed by path, where every segment is an
// owner name.
func FindOwner(forest model.Forest, path string) (*model.Owner, bool) {
	split := uri.Decompose(path)
	owner, ok := forest.Owner(split.Segment)
	if !ok {
		return nil, false
	}
	return FindOwnerIn(owner, split.Remainder)
}

// FindOwnerIn returns the owner addressed by path relative to owner.
// The empty path addresses owner itself.
func FindOwnerIn(owner *model.Owner, path string) (*model.Owner, bool) {
	for path != "" {
		split := uri.Decompose(path)
		next, ok := owner.SubownerByName(split.Segment)
		if !ok {
			return nil, false
		}
		owner = next
		path = split.Remainder
	}
	return owner, true
}

// WalkFunc is called for every property visited by Walk with the property's
// full URI. Returning false stops the walk.
type WalkFunc func(path string, prop *model.Property) bool

// Walk visits every property of the forest depth-first: an owner's own
// properties first, then its sub-owners in order.
func Walk(forest model.Forest, fn WalkFunc) {
	for i := range forest {
		if !walkOwner(&forest[i], forest[i].Name, fn) {
			return
		}
	}
}

// WalkOwner visits every property below owner, whose URI is prefix.
func WalkOwner(owner *model.Owner, prefix string, fn WalkFunc) {
	walkOwner(owner, prefix, fn)
}

func walkOwner(owner *model.Owner, prefix string, fn WalkFunc) bool {
	for i := range owner.Properties {
		if !fn(uri.Join(prefix, owner.Properties[i].ID), &owner.Properties[i]) {
			return false
		}
	}
	for i := range owner.Subowners {
		sub := &owner.Subowners[i]
		if !walkOwner(sub, uri.Join(prefix, sub.Name), fn) {
			return false
		}
	}
	return true
}
