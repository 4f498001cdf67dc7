package convert

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Shopify/go-lua"
)

// Lua errors.
var (
	ErrUnsupportedValue = errors.New("value has no Lua representation")
	ErrInvalidScript    = errors.New("invalid Lua script")
)

// SetPropertyFunction is the scripting call that assigns a property value.
const SetPropertyFunction = "openspace.setPropertyValueSingle"

// JSONToLua adapts bracketed list text to a Lua argument list by removing the
// first "[" and the first "]". Later brackets are left alone, so nested lists
// keep their JSON brackets.
func JSONToLua(s string) string {
	s = strings.Replace(s, "[", "", 1)
	return strings.Replace(s, "]", "", 1)
}

// SetPropertyScript returns the Lua call that sets the property at uri to
// value.
func SetPropertyScript(uri string, value any) (string, error) {
	lit, err := LuaLiteral(value)
	if err != nil {
		return "", fmt.Errorf("property %s: %w", uri, err)
	}
	return fmt.Sprintf("%s(%s, %s)", SetPropertyFunction, luaString(uri), lit), nil
}

// ValidateLua compiles script without running it.
func ValidateLua(script string) error {
	l := lua.NewState()
	if err := lua.LoadString(l, script); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	return nil
}

// LuaLiteral renders plain data as a Lua expression. Lists become sequence
// tables and maps become tables with sorted keys.
func LuaLiteral(v any) (string, error) {
	var sb strings.Builder
	if err := writeLiteral(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeLiteral(sb *strings.Builder, v any) error {
	switch v := v.(type) {
	case nil:
		sb.WriteString("nil")
	case bool:
		sb.WriteString(strconv.FormatBool(v))
	case string:
		sb.WriteString(luaString(v))
	case int:
		sb.WriteString(strconv.Itoa(v))
	case int32:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	case uint8:
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint16:
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint32:
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		sb.WriteString(strconv.FormatUint(v, 10))
	case float32:
		return writeFloat(sb, float64(v))
	case float64:
		return writeFloat(sb, v)
	case []any:
		return writeList(sb, len(v), func(i int) any { return v[i] })
	case []string:
		return writeList(sb, len(v), func(i int) any { return v[i] })
	case []float64:
		return writeList(sb, len(v), func(i int) any { return v[i] })
	case []int:
		return writeList(sb, len(v), func(i int) any { return v[i] })
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("[")
			sb.WriteString(luaString(k))
			sb.WriteString("] = ")
			if err := writeLiteral(sb, v[k]); err != nil {
				return err
			}
		}
		sb.WriteString("}")
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return nil
}

func writeFloat(sb *strings.Builder, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
	}
	sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

func writeList(sb *strings.Builder, n int, at func(int) any) error {
	sb.WriteString("{")
	for i := range n {
		if i > 0 {
			sb.WriteString(", ")
		}
		if err := writeLiteral(sb, at(i)); err != nil {
			return err
		}
	}
	sb.WriteString("}")
	return nil
}

// luaString quotes s as a Lua string literal. Control bytes use decimal
// escapes, which every Lua version accepts.
func luaString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\%03d`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
