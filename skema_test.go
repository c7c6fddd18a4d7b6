package skema_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	g "github.com/reoring/skema/dsl"
)

func userObject() *g.ObjectSchema {
	return g.Object(skema.Shape{
		"name": g.String().MinLength(1),
		"age":  g.Number().Int(),
		"tags": g.Array[string](g.String()),
	}, nil).Required("name")
}

func TestParseFrom_JSONAndYAMLAgree(t *testing.T) {
	ctx := context.Background()
	s := userObject()

	fromJSON, err := skema.ParseFrom[map[string]any](ctx, s, skema.JSONBytes([]byte(`{"name":"reo","age":30,"tags":["a"]}`)))
	require.NoError(t, err)
	fromYAML, err := skema.ParseFrom[map[string]any](ctx, s, skema.YAMLReader(strings.NewReader("name: reo\nage: 30\ntags: [a]\n")))
	require.NoError(t, err)

	want := map[string]any{"name": "reo", "age": 30.0, "tags": []string{"a"}}
	assert.Equal(t, want, fromJSON)
	assert.Equal(t, want, fromYAML)
}

func TestParseFrom_ValidationError(t *testing.T) {
	_, err := skema.ParseFrom[map[string]any](context.Background(), userObject(), skema.JSONBytes([]byte(`{"name":"reo","tags":["a",1]}`)))
	require.Error(t, err)

	var pe *skema.ParseError
	require.True(t, errors.As(err, &pe))
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/tags/1", iss[0].Path)
	assert.Equal(t, skema.CodeInvalidType, iss[0].Code)
}

func TestParseFrom_DecodeErrors(t *testing.T) {
	ctx := context.Background()
	cases := map[string]skema.Source{
		"broken json":    skema.JSONBytes([]byte(`{"name":`)),
		"trailing data":  skema.JSONBytes([]byte(`{} {}`)),
		"broken yaml":    skema.YAMLBytes([]byte("a: [1, 2\n")),
		"nil source":     nil,
		"reader failure": skema.JSONReader(failingReader{}),
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := skema.ParseFrom[map[string]any](ctx, userObject(), src)
			iss, ok := skema.AsIssues(err)
			require.True(t, ok, "%v", err)
			assert.Equal(t, skema.CodeParseError, iss[0].Code)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParseFrom_MaxBytes(t *testing.T) {
	ctx := context.Background()
	doc := `{"name":"reo"}`

	_, err := skema.ParseFrom[map[string]any](ctx, userObject(), skema.JSONReader(strings.NewReader(doc)), skema.ParseOpt{MaxBytes: 4})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeTruncated, iss[0].Code)
	assert.EqualValues(t, 4, iss[0].Params["maxBytes"])

	// the limit applies to in-memory documents as well
	_, err = skema.ParseFrom[map[string]any](ctx, userObject(), skema.JSONBytes([]byte(doc)), skema.ParseOpt{MaxBytes: 4})
	assert.Error(t, err)

	_, err = skema.ParseFrom[map[string]any](ctx, userObject(), skema.JSONReader(strings.NewReader(doc)), skema.ParseOpt{MaxBytes: int64(len(doc))})
	assert.NoError(t, err)
}

func TestParseFrom_MaxDepth(t *testing.T) {
	ctx := context.Background()
	s := g.Array[[]string](g.Array[string](g.String()))
	src := func() skema.Source { return skema.JSONBytes([]byte(`[["a"]]`)) }

	_, err := skema.ParseFrom[[][]string](ctx, s, src())
	require.NoError(t, err)

	_, err = skema.ParseFrom[[][]string](ctx, s, src(), skema.ParseOpt{MaxDepth: 1})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/0", iss[0].Path)
	assert.Equal(t, "max depth exceeded", iss[0].Message)
}

func TestParseFrom_DuplicateKeys(t *testing.T) {
	ctx := context.Background()
	doc := []byte(`{"name":"a","name":"b"}`)

	// last occurrence wins unless duplicates are rejected
	v, err := skema.ParseFrom[map[string]any](ctx, userObject(), skema.JSONBytes(doc))
	require.NoError(t, err)
	assert.Equal(t, "b", v["name"])

	_, err = skema.ParseFrom[map[string]any](ctx, userObject(), skema.JSONBytes(doc), skema.ParseOpt{RejectDuplicateKeys: true})
	iss, ok := skema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, skema.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/name", iss[0].Path)

	_, err = skema.ParseFrom[map[string]any](ctx, userObject(), skema.YAMLBytes([]byte("name: a\nname: b\n")))
	assert.Error(t, err)
}

func TestDetectJSONDuplicateKeys(t *testing.T) {
	cases := []struct {
		doc   string
		paths []string
	}{
		{`{"a":1,"b":2}`, nil},
		{`{"a":1,"a":2}`, []string{"/a"}},
		{`{"a":{"b":1,"b":2}}`, []string{"/a/b"}},
		{`[{"x":1},{"x":1,"y":[0,{"z":1,"z":2}],"x":3}]`, []string{"/1/y/1/z", "/1/x"}},
		{`{"a/b":1,"a/b":2}`, []string{"/a~1b"}},
		{`{"a":[{"k":1}],"b":{"k":2}}`, nil},
		{`{"a":`, nil},
	}
	for _, c := range cases {
		t.Run(c.doc, func(t *testing.T) {
			iss := skema.DetectJSONDuplicateKeys([]byte(c.doc))
			var got []string
			for _, it := range iss {
				assert.Equal(t, skema.CodeDuplicateKey, it.Code)
				got = append(got, it.Path)
			}
			assert.Equal(t, c.paths, got)
		})
	}
}

func TestSafeParseFrom(t *testing.T) {
	ctx := context.Background()
	r := skema.SafeParseFrom(ctx, userObject(), skema.JSONBytes([]byte(`{"name":"reo","age":1.5}`)))
	require.False(t, r.Success)
	assert.Equal(t, "/age", r.Issues[0].Path)

	r = skema.SafeParseFrom(ctx, userObject(), skema.JSONBytes([]byte(`nope`)))
	require.False(t, r.Success)
	assert.Error(t, r.Err)
	assert.NotEmpty(t, r.Errors)

	r = skema.SafeParseFrom(ctx, userObject(), skema.YAMLBytes([]byte("name: reo\n")))
	assert.True(t, r.Success)
}

func TestJSONNumbersKeepPrecisionUntilParsed(t *testing.T) {
	v, err := skema.JSONBytes([]byte(`{"n":9007199254740993}`)).Decode()
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), v.(map[string]any)["n"])

	v, err = skema.YAMLBytes([]byte("1: one\nnested: {2: two}\n")).Decode()
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, "one", m["1"])
	assert.Equal(t, map[string]any{"2": "two"}, m["nested"])
}

func TestTypeOf(t *testing.T) {
	cases := map[string]any{
		"undefined": skema.Undefined,
		"null":      nil,
		"string":    "x",
		"number":    json.Number("1"),
		"boolean":   true,
		"symbol":    skema.NewSymbol("s"),
		"date":      time.Now(),
		"array":     []int{1},
		"object":    map[string]any{},
		"function":  func() {},
	}
	for want, v := range cases {
		assert.Equal(t, want, skema.TypeOf(v), "%#v", v)
	}
	assert.Equal(t, "null", skema.TypeOf((*time.Time)(nil)))
	assert.Equal(t, "number", skema.TypeOf(uint8(3)))
	assert.Equal(t, "number", skema.TypeOf(json.Number("1e400")))
	assert.Equal(t, "string", skema.TypeOf(json.Number("12abc")))
}

func TestJSONNumberOutOfRange(t *testing.T) {
	f, ok := skema.AsNumber(json.Number("1e400"))
	require.True(t, ok)
	assert.True(t, math.IsInf(f, 1))
	f, ok = skema.AsNumber(json.Number("-1e400"))
	require.True(t, ok)
	assert.True(t, math.IsInf(f, -1))
	_, ok = skema.AsNumber(json.Number("12abc"))
	assert.False(t, ok)

	ctx := context.Background()
	assert.True(t, g.Number().SafeParse(ctx, json.Number("1e400")).Success)
	assert.False(t, g.Number().Max(30).SafeParse(ctx, json.Number("1e400")).Success)
	assert.False(t, g.Number().Negative().SafeParse(ctx, json.Number("1e400")).Success)
	assert.False(t, g.Number().Finite().SafeParse(ctx, json.Number("1e400")).Success)

	r := g.Number().SafeParse(ctx, json.Number("12abc"))
	require.False(t, r.Success)
	assert.Equal(t, []string{"Expected number, received string"}, r.Errors)

	v, err := skema.ParseFrom(ctx, g.Number().Finite(), skema.JSONBytes([]byte("1e400")), skema.ParseOpt{})
	require.Error(t, err)
	assert.Zero(t, v)
}

func TestSymbolIdentity(t *testing.T) {
	a, b := skema.NewSymbol("k"), skema.NewSymbol("k")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, a)
	assert.Equal(t, "Symbol(k)", a.String())
	assert.Equal(t, "", skema.Symbol{}.Description())
}

func TestErase(t *testing.T) {
	ctx := context.Background()
	s := g.Number().Max(3).Describe("small")
	e := skema.Erase(s)

	v, err := e.Parse(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = e.Parse(ctx, 4)
	assert.Error(t, err)
	assert.Equal(t, "small", e.Description())

	js, err := e.JSONSchema()
	require.NoError(t, err)
	require.NotNil(t, js.Maximum)
	assert.Equal(t, 3.0, *js.Maximum)

	assert.Same(t, e, skema.Erase(e))
}

func TestPropertyMap(t *testing.T) {
	props := skema.PropertyMap(skema.Shape{"b": g.String(), "a": g.String()}, skema.Remap{"b": "B"})
	require.Len(t, props, 2)
	assert.Equal(t, "a", props[0].OutputKey)
	assert.Equal(t, "a", props[0].InputKey)
	assert.Equal(t, "b", props[1].OutputKey)
	assert.Equal(t, "B", props[1].InputKey)
}

func TestRebaseIssues(t *testing.T) {
	in := skema.Issues{{Path: ""}, {Path: "/x"}, {Path: "y"}}
	out := skema.RebaseIssues("/a", in)
	assert.Equal(t, "/a", out[0].Path)
	assert.Equal(t, "/a/x", out[1].Path)
	assert.Equal(t, "/a/y", out[2].Path)
	assert.Equal(t, "", in[0].Path, "input must not be modified")
}
