// Package inspect provides read access to a property tree for display.
package inspect

import (
	"errors"
	"fmt"
	"slices"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/store"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/tree"
	"github.com/scenegraph-protocol/scenegraph-go/pkg/uri"
)

// Inspector errors.
var (
	ErrOwnerNotFound    = errors.New("owner not found")
	ErrPropertyNotFound = errors.New("property not found")
)

// Inspector provides inspection of the tree held by a store.
type Inspector struct {
	store *store.Store
}

// NewInspector creates a new Inspector for the given store.
func NewInspector(s *store.Store) *Inspector {
	return &Inspector{store: s}
}

// Store returns the underlying store.
func (i *Inspector) Store() *store.Store {
	return i.store
}

// OwnerInfo represents an owner for display.
type OwnerInfo struct {
	Path       string
	Name       string
	Tags       []string
	Listeners  int
	Properties []PropertyInfo
	Subowners  []OwnerInfo
}

// PropertyInfo represents a property for display.
type PropertyInfo struct {
	Path     string
	ID       string
	Name     string
	Type     string
	Value    any
	MetaData map[string]any
}

// InspectTree returns the whole tree of the current snapshot.
func (i *Inspector) InspectTree() []OwnerInfo {
	forest := i.store.Snapshot()
	owners := make([]OwnerInfo, 0, len(forest))
	for idx := range forest {
		owners = append(owners, inspectOwner(&forest[idx], forest[idx].Name))
	}
	return owners
}

// InspectOwner returns the owner at path with its subtree.
func (i *Inspector) InspectOwner(path string) (*OwnerInfo, error) {
	o, ok := tree.FindOwner(i.store.Snapshot(), path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOwnerNotFound, path)
	}
	info := inspectOwner(o, path)
	return &info, nil
}

// ReadProperty returns the property at path.
func (i *Inspector) ReadProperty(path string) (*PropertyInfo, error) {
	p, ok := i.store.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, path)
	}
	info := propertyInfo(&p, path)
	return &info, nil
}

// List returns the names of the sub-owners and the IDs of the properties
// directly under path. An empty path lists the top-level owners.
func (i *Inspector) List(path string) ([]string, error) {
	forest := i.store.Snapshot()
	if path == "" {
		return forest.Names(), nil
	}

	o, ok := tree.FindOwner(forest, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOwnerNotFound, path)
	}

	names := make([]string, 0, len(o.Subowners)+len(o.Properties))
	for _, sub := range o.Subowners {
		names = append(names, sub.Name+"/")
	}
	for _, p := range o.Properties {
		names = append(names, p.ID)
	}
	return names, nil
}

// Paths returns the paths of all properties in the tree, sorted.
func (i *Inspector) Paths() []string {
	var paths []string
	tree.Walk(i.store.Snapshot(), func(path string, _ *model.Property) bool {
		paths = append(paths, path)
		return true
	})
	slices.Sort(paths)
	return paths
}

// FormatTree formats the whole tree for display.
func (i *Inspector) FormatTree(formatter *Formatter) string {
	if formatter == nil {
		formatter = NewFormatter()
	}
	return formatter.FormatTree(i.InspectTree())
}

func inspectOwner(o *model.Owner, path string) OwnerInfo {
	info := OwnerInfo{
		Path:      path,
		Name:      o.Name,
		Tags:      slices.Clone(o.Tag),
		Listeners: o.Listeners,
	}
	for idx := range o.Properties {
		p := &o.Properties[idx]
		info.Properties = append(info.Properties, propertyInfo(p, uri.Join(path, p.ID)))
	}
	for idx := range o.Subowners {
		sub := &o.Subowners[idx]
		info.Subowners = append(info.Subowners, inspectOwner(sub, uri.Join(path, sub.Name)))
	}
	return info
}

func propertyInfo(p *model.Property, path string) PropertyInfo {
	c := p.Clone()
	return PropertyInfo{
		Path:     path,
		ID:       c.ID,
		Name:     c.DisplayName(),
		Type:     c.Type,
		Value:    c.Value,
		MetaData: c.MetaData,
	}
}
