package inspect

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes property type, tags and listener counts
	ShowMetadata bool

	// ShowIDs shows property IDs instead of display names
	ShowIDs bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		ShowIDs:      false,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a property value for display.
func (f *Formatter) FormatValue(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"

	case string:
		return strconv.Quote(v)

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)

	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)

	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = f.FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"

	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + f.FormatValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"

	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatProperty formats one property line without indentation.
func (f *Formatter) FormatProperty(p PropertyInfo) string {
	label := p.Name
	if f.ShowIDs || label == "" {
		label = p.ID
	}
	line := fmt.Sprintf("%s = %s", label, f.FormatValue(p.Value))
	if f.ShowMetadata && p.Type != "" {
		line += fmt.Sprintf(" (%s)", p.Type)
	}
	return line
}

// FormatOwner formats an owner and its subtree starting at depth.
func (f *Formatter) FormatOwner(o OwnerInfo, depth int) string {
	var sb strings.Builder
	f.writeOwner(&sb, o, depth)
	return sb.String()
}

// FormatTree formats a list of owners.
func (f *Formatter) FormatTree(owners []OwnerInfo) string {
	if len(owners) == 0 {
		return "(empty)\n"
	}

	var sb strings.Builder
	for _, o := range owners {
		f.writeOwner(&sb, o, 0)
	}
	return sb.String()
}

func (f *Formatter) writeOwner(sb *strings.Builder, o OwnerInfo, depth int) {
	header := o.Name + "/"
	if f.ShowMetadata {
		var meta []string
		if len(o.Tags) > 0 {
			meta = append(meta, "tags: "+strings.Join(o.Tags, ","))
		}
		if o.Listeners > 0 {
			meta = append(meta, fmt.Sprintf("listeners: %d", o.Listeners))
		}
		if len(meta) > 0 {
			header += " [" + strings.Join(meta, "; ") + "]"
		}
	}
	sb.WriteString(f.Indent(depth, header))
	sb.WriteString("\n")

	for _, p := range o.Properties {
		sb.WriteString(f.Indent(depth+1, f.FormatProperty(p)))
		sb.WriteString("\n")
	}
	for _, sub := range o.Subowners {
		f.writeOwner(sb, sub, depth+1)
	}
}
