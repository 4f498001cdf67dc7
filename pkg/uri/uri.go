// Package uri implements the dot-separated addressing scheme of the property tree.
//
// A URI is a sequence of segments joined by ".":
//
//	Scene.Earth.Renderable.Opacity
//
// Every segment but the last names an owner; the last segment names either a
// sub-owner or a leaf property. The empty string addresses the current node.
//
// All functions are pure and total over any input string. Leading and
// trailing dots are not special-cased: they produce empty segments.
package uri

import "strings"

// Separator joins the segments of a URI.
const Separator = "."

// Split is the result of decomposing a URI at its first separator.
type Split struct {
	// Segment is the text before the first separator, or the whole URI.
	Segment string

	// Remainder is the text after the first separator (empty if none).
	Remainder string

	// LastOwner is true when Remainder contains no further separator,
	// i.e. Segment is the last owner on the way to a leaf.
	LastOwner bool

	// Leaf is true when Remainder is empty: the URI was a single segment
	// naming a property directly under the current node.
	Leaf bool
}

// Decompose splits uri at its first separator.
func Decompose(uri string) Split {
	segment, remainder, _ := strings.Cut(uri, Separator)
	return Split{
		Segment:   segment,
		Remainder: remainder,
		LastOwner: !strings.Contains(remainder, Separator),
		Leaf:      remainder == "",
	}
}

// PropertyID returns the final segment of uri: the text after the last
// separator, or the whole URI when it has none.
func PropertyID(uri string) string {
	if i := strings.LastIndex(uri, Separator); i >= 0 {
		return uri[i+len(Separator):]
	}
	return uri
}

// OwnerPath returns everything before the last separator, or "" when uri
// has a single segment.
func OwnerPath(uri string) string {
	if i := strings.LastIndex(uri, Separator); i >= 0 {
		return uri[:i]
	}
	return ""
}

// Segments returns all segments of uri. The empty URI has no segments.
func Segments(uri string) []string {
	if uri == "" {
		return nil
	}
	return strings.Split(uri, Separator)
}

// Join builds a URI from segments, skipping empty ones.
func Join(segments ...string) string {
	var sb strings.Builder
	for _, s := range segments {
		if s == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(s)
	}
	return sb.String()
}
