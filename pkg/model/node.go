package model

import "slices"

// Node is the description of an owner carried by an update event.
// It has the shape of an Owner without the listener count.
type Node struct {
	Name       string     `json:"name" yaml:"name" toml:"name"`
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
	Subowners  []Node     `json:"subowners,omitempty" yaml:"subowners,omitempty" toml:"subowners,omitempty"`

	// Tag is optional; nil means no tags.
	Tag []string `json:"tag,omitempty" yaml:"tag,omitempty" toml:"tag,omitempty"`
}

// Clone returns a deep copy of the node description.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Name:       n.Name,
		Properties: CloneProperties(n.Properties),
		Tag:        slices.Clone(n.Tag),
	}
	if n.Subowners != nil {
		out.Subowners = make([]Node, len(n.Subowners))
		for i := range n.Subowners {
			out.Subowners[i] = *n.Subowners[i].Clone()
		}
	}
	return out
}

// NodeOf describes an existing owner, dropping its listener count.
func NodeOf(o *Owner) *Node {
	if o == nil {
		return nil
	}
	n := &Node{
		Name:       o.Name,
		Properties: CloneProperties(o.Properties),
		Tag:        slices.Clone(o.Tag),
		Subowners:  make([]Node, len(o.Subowners)),
	}
	for i := range o.Subowners {
		n.Subowners[i] = *NodeOf(&o.Subowners[i])
	}
	return n
}
