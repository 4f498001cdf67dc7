package model

// Property is a leaf value node identified by its ID.
// The tree logic only looks at ID; the remaining fields are carried through.
type Property struct {
	// ID identifies the property among its owner's properties.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Name is the human-readable name shown by inspectors.
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`

	// Type is the property class, e.g. "FloatProperty" or "BoolProperty".
	Type string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`

	// Value is the current value as plain data.
	Value any `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`

	// MetaData holds display hints (view options, min/max, read-only).
	MetaData map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
}

// Clone returns a deep copy of the property.
func (p Property) Clone() Property {
	out := p
	out.Value = CloneValue(p.Value)
	out.MetaData = cloneMap(p.MetaData)
	return out
}

// DisplayName returns Name, falling back to ID.
func (p Property) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// CloneProperties deep-copies a property list, preserving nil.
func CloneProperties(props []Property) []Property {
	if props == nil {
		return nil
	}
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = p.Clone()
	}
	return out
}
