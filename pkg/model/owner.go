package model

import "slices"

// Owner is a named node of the property tree.
type Owner struct {
	// Name identifies the owner among its siblings.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Properties are the leaves directly held by this owner, in order.
	Properties []Property `json:"properties" yaml:"properties" toml:"properties"`

	// Subowners are the nested owners, in order.
	Subowners []Owner `json:"subowners" yaml:"subowners" toml:"subowners"`

	// Tag is the list of user tags attached to the owner.
	Tag []string `json:"tag" yaml:"tag" toml:"tag"`

	// Listeners counts active listeners on this owner. Never negative.
	Listeners int `json:"listeners" yaml:"listeners" toml:"listeners"`
}

// Clone returns a deep copy of the owner and its whole subtree.
func (o *Owner) Clone() *Owner {
	if o == nil {
		return nil
	}
	out := o.cloneValue()
	return &out
}

func (o *Owner) cloneValue() Owner {
	out := Owner{
		Name:       o.Name,
		Properties: CloneProperties(o.Properties),
		Tag:        slices.Clone(o.Tag),
		Listeners:  o.Listeners,
	}
	if o.Subowners != nil {
		out.Subowners = make([]Owner, len(o.Subowners))
		for i := range o.Subowners {
			out.Subowners[i] = o.Subowners[i].cloneValue()
		}
	}
	return out
}

// PropertyByID returns the first property of this owner with the given ID.
func (o *Owner) PropertyByID(id string) (*Property, bool) {
	for i := range o.Properties {
		if o.Properties[i].ID == id {
			return &o.Properties[i], true
		}
	}
	return nil, false
}

// SubownerByName returns the first direct sub-owner with the given name.
func (o *Owner) SubownerByName(name string) (*Owner, bool) {
	for i := range o.Subowners {
		if o.Subowners[i].Name == name {
			return &o.Subowners[i], true
		}
	}
	return nil, false
}

// HasListeners reports whether anyone is listening to this owner.
func (o *Owner) HasListeners() bool {
	return o.Listeners > 0
}

// HasTag reports whether the owner carries the given tag.
func (o *Owner) HasTag(tag string) bool {
	return slices.Contains(o.Tag, tag)
}

// Forest is the ordered collection of top-level owners.
type Forest []Owner

// Clone returns a deep copy of the forest.
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, len(f))
	for i := range f {
		out[i] = f[i].cloneValue()
	}
	return out
}

// Owner returns the first top-level owner with the given name.
func (f Forest) Owner(name string) (*Owner, bool) {
	for i := range f {
		if f[i].Name == name {
			return &f[i], true
		}
	}
	return nil, false
}

// Names returns the names of the top-level owners in order.
func (f Forest) Names() []string {
	names := make([]string, len(f))
	for i := range f {
		names[i] = f[i].Name
	}
	return names
}
