package model

import "slices"

// CloneValue returns a structural deep copy of a plain-data value.
//
// Ordered sequences ([]any, []map[string]any, []string, numeric slices) and
// key-to-value mappings (map[string]any, map[any]any) are copied recursively.
// Every other value is returned as is; scalars are immutable and opaque values
// are not the tree's to copy.
func CloneValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = CloneValue(e)
		}
		return out
	case map[string]any:
		return cloneMap(v)
	case map[any]any:
		if v == nil {
			return v
		}
		out := make(map[any]any, len(v))
		for k, e := range v {
			out[k] = CloneValue(e)
		}
		return out
	case []map[string]any:
		if v == nil {
			return v
		}
		out := make([]map[string]any, len(v))
		for i, m := range v {
			out[i] = cloneMap(m)
		}
		return out
	case []string:
		return slices.Clone(v)
	case []float64:
		return slices.Clone(v)
	case []float32:
		return slices.Clone(v)
	case []int:
		return slices.Clone(v)
	case []int64:
		return slices.Clone(v)
	case []bool:
		return slices.Clone(v)
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}
