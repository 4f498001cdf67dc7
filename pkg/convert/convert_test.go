package convert

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/Shopify/go-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlipY(t *testing.T) {
	tests := []struct {
		in   Position
		want Position
	}{
		{Position{X: 10, Y: 50}, Position{X: 10, Y: 550}},
		{Position{X: 0, Y: 0}, Position{X: 0, Y: 600}},
		{Position{X: 800, Y: 600}, Position{X: 800, Y: 0}},
		{Position{X: 1.5, Y: 700}, Position{X: 1.5, Y: -100}},
	}
	for _, tt := range tests {
		if got := FlipY(tt.in); got != tt.want {
			t.Errorf("FlipY(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestConvertEnvelopes(t *testing.T) {
	input := []Envelope{
		{Points: []Point{
			{Color: "red", Position: Position{X: 10, Y: 50}},
			{Color: "#00ff00", Position: Position{X: 20, Y: 600}},
		}},
		{Points: []Point{}},
	}

	out, err := ConvertEnvelopes(input)
	require.NoError(t, err)

	want := `[{"points":[{"color":"red","position":{"x":10,"y":550}},` +
		`{"color":"#00ff00","position":{"x":20,"y":0}}],"height":600,"width":800},` +
		`{"points":[],"height":600,"width":800}]`
	assert.JSONEq(t, want, out)

	// The input is not flipped in place.
	assert.Equal(t, 50.0, input[0].Points[0].Position.Y)
}

func TestConvertEnvelopesEmpty(t *testing.T) {
	out, err := ConvertEnvelopes(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestCloneEnvelopesIsDeep(t *testing.T) {
	input := []Envelope{{Points: []Point{{Color: "red", Position: Position{X: 1, Y: 2}}}}}

	clone, err := CloneEnvelopes(input)
	require.NoError(t, err)
	require.Equal(t, input, clone)

	clone[0].Points[0].Color = "blue"
	clone[0].Points[0].Position.Y = 99
	assert.Equal(t, "red", input[0].Points[0].Color)
	assert.Equal(t, 2.0, input[0].Points[0].Position.Y)
}

func TestParseEnvelopes(t *testing.T) {
	envs, err := ParseEnvelopes([]byte(`[{"points":[{"color":"red","position":{"x":10,"y":50}}]}]`))
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, Point{Color: "red", Position: Position{X: 10, Y: 50}}, envs[0].Points[0])

	_, err = ParseEnvelopes([]byte(`{"points":`))
	assert.True(t, errors.Is(err, ErrInvalidEnvelopes))
}

func TestJSONToLua(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[1,2,3]`, `1,2,3`},
		{`["a","b"]`, `"a","b"`},
		{`[[1,2],[3,4]]`, `[1,2,[3,4]]`},
		{`no brackets`, `no brackets`},
		{``, ``},
	}
	for _, tt := range tests {
		if got := JSONToLua(tt.in); got != tt.want {
			t.Errorf("JSONToLua(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSONToLuaOnConvertedEnvelopes(t *testing.T) {
	out, err := ConvertEnvelopes([]Envelope{{Points: []Point{{Color: "red", Position: Position{X: 10, Y: 50}}}}})
	require.NoError(t, err)

	got := JSONToLua(out)
	assert.Equal(t, `{"points":[{"color":"red","position":{"x":10,"y":550}},"height":600,"width":800}]`, got)
}

func TestLuaLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "nil"},
		{"true", true, "true"},
		{"int", 42, "42"},
		{"float", 0.5, "0.5"},
		{"whole float", 1.0, "1"},
		{"string", `say "hi"`, `"say \"hi\""`},
		{"control bytes", "a\x01b\n", `"a\001b\n"`},
		{"list", []any{1.0, "x", false}, `{1, "x", false}`},
		{"float list", []float64{0.1, 0.2}, `{0.1, 0.2}`},
		{"map", map[string]any{"b": 2, "a": []any{}}, `{["a"] = {}, ["b"] = 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LuaLiteral(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLuaLiteralUnsupported(t *testing.T) {
	for _, v := range []any{struct{}{}, math.NaN(), math.Inf(1), []any{make(chan int)}} {
		_, err := LuaLiteral(v)
		assert.ErrorIs(t, err, ErrUnsupportedValue, "value %v", v)
	}
}

func TestSetPropertyScript(t *testing.T) {
	script, err := SetPropertyScript("Scene.Earth.Renderable.Opacity", 0.5)
	require.NoError(t, err)
	assert.Equal(t, `openspace.setPropertyValueSingle("Scene.Earth.Renderable.Opacity", 0.5)`, script)
	assert.NoError(t, ValidateLua(script))

	_, err = SetPropertyScript("Scene.X", struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestValidateLua(t *testing.T) {
	assert.NoError(t, ValidateLua(`return 1`))
	assert.NoError(t, ValidateLua(`return {`+JSONToLua(`[1, 2, 3]`)+`}`))
	assert.ErrorIs(t, ValidateLua(`openspace.setPropertyValueSingle("x", `), ErrInvalidScript)
	assert.ErrorIs(t, ValidateLua(`local = 3`), ErrInvalidScript)
}

// runScript executes script against a stub openspace table and returns the
// URI and value passed to setPropertyValueSingle.
func runScript(t *testing.T, script string) (string, any) {
	t.Helper()

	var gotURI string
	var gotValue any

	l := lua.NewState()
	lua.OpenLibraries(l)
	l.NewTable()
	l.PushGoFunction(func(l *lua.State) int {
		gotURI = lua.CheckString(l, 1)
		gotValue = toGo(l, 2)
		return 0
	})
	l.SetField(-2, "setPropertyValueSingle")
	l.SetGlobal("openspace")

	require.NoError(t, lua.DoString(l, script))
	return gotURI, gotValue
}

func toGo(l *lua.State, index int) any {
	index = l.AbsIndex(index)
	switch l.TypeOf(index) {
	case lua.TypeNumber:
		f, _ := l.ToNumber(index)
		return f
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeTable:
		n := l.RawLength(index)
		list := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			l.RawGetInt(index, i)
			list = append(list, toGo(l, -1))
			l.Pop(1)
		}
		return list
	default:
		return nil
	}
}

func TestSetPropertyScriptExecutes(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"number", 0.25, 0.25},
		{"string", `quoted "name"`, `quoted "name"`},
		{"bool", true, true},
		{"vector", []any{1.0, 2.0, 3.0}, []any{1.0, 2.0, 3.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := SetPropertyScript("Scene.Earth.Renderable.Color", tt.value)
			require.NoError(t, err)

			gotURI, gotValue := runScript(t, script)
			assert.Equal(t, "Scene.Earth.Renderable.Color", gotURI)
			assert.Equal(t, tt.want, gotValue)
		})
	}
}

func TestConvertedEnvelopesAreValidJSON(t *testing.T) {
	out, err := ConvertEnvelopes([]Envelope{{Points: []Point{{Color: "red"}}}})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 600.0, decoded[0]["height"])
	assert.Equal(t, 800.0, decoded[0]["width"])
}
