package schemafile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	"github.com/reoring/skema/schemafile"
)

const userDoc = `
type: object
description: user
rename: {createdAt: created_at}
rules:
  - required: [id, email]
  - cel: "!has(value.age) || value.age >= 18"
    message: adults only
    key: adult
properties:
  id:    {type: string, rules: [{format: uuid}]}
  email: {type: string, rules: [{format: email}]}
  age:   {type: number, coerce: true, rules: [int, {min: 0}]}
  createdAt: {type: date, coerce: true}
  tags:
    type: array
    items: {type: string, rules: [{minLength: 2}]}
    rules: [noEmpty, {max: 3}]
`

func TestLoad_User(t *testing.T) {
	ctx := context.Background()
	s, err := schemafile.Load([]byte(userDoc))
	require.NoError(t, err)
	assert.Equal(t, "user", s.Description())

	id := uuid.NewString()
	r := s.SafeParseAny(ctx, map[string]any{
		"id": id, "email": "a@example.com", "age": "30",
		"created_at": "2024-05-01T00:00:00Z", "tags": []any{"go", "zod"},
	})
	require.True(t, r.Success, "%v", r.Errors)
	m := r.Data.(map[string]any)
	assert.Equal(t, 30.0, m["age"])
	created, ok := m["createdAt"].(time.Time)
	require.True(t, ok)
	assert.True(t, created.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []any{"go", "zod"}, m["tags"])

	r = s.SafeParseAny(ctx, map[string]any{"id": id, "email": "a@example.com", "age": 12})
	require.False(t, r.Success)
	assert.Equal(t, []string{"adults only"}, r.Errors)
	assert.Equal(t, "adult", r.Issues[0].Rule)

	r = s.SafeParseAny(ctx, map[string]any{"email": "a@example.com"})
	require.False(t, r.Success)
	assert.Equal(t, skema.CodeRequired, r.Issues[0].Code)
	assert.Contains(t, r.Errors[0], "id")
}

func TestLoad_ArrayElementFailure(t *testing.T) {
	s, err := schemafile.Load([]byte(userDoc))
	require.NoError(t, err)
	r := s.SafeParseAny(context.Background(), map[string]any{
		"id": uuid.NewString(), "email": "a@example.com", "tags": []any{"go", "x"},
	})
	require.False(t, r.Success)
	require.Error(t, r.Err)
	assert.Equal(t, "/tags/1", r.Issues[0].Path)
	assert.Equal(t, skema.CodeTooShort, r.Issues[0].Code)
}

func TestLoad_JSONDocument(t *testing.T) {
	s, err := schemafile.Load([]byte(`{"type":"string","nullable":true,"rules":["notEmpty",{"maxLength":3}]}`))
	require.NoError(t, err)
	ctx := context.Background()
	assert.True(t, s.SafeParseAny(ctx, nil).Success)
	assert.True(t, s.SafeParseAny(ctx, "abc").Success)
	assert.False(t, s.SafeParseAny(ctx, "abcd").Success)
	assert.False(t, s.SafeParseAny(ctx, "").Success)
}

func TestLoad_NumberRules(t *testing.T) {
	s, err := schemafile.Load([]byte("type: number\nrules:\n  - between: [1, 10]\n  - positive\n  - cel: 'value != 7'\n"))
	require.NoError(t, err)
	ctx := context.Background()
	assert.True(t, s.SafeParseAny(ctx, 5).Success)
	assert.False(t, s.SafeParseAny(ctx, 11).Success)
	assert.False(t, s.SafeParseAny(ctx, 7).Success)
}

func TestLoad_RulesMapping(t *testing.T) {
	s, err := schemafile.Load([]byte("type: string\nrules: {startsWith: ab, endsWith: yz}\n"))
	require.NoError(t, err)
	ctx := context.Background()
	assert.True(t, s.SafeParseAny(ctx, "abxyz").Success)
	r := s.SafeParseAny(ctx, "zz")
	assert.Len(t, r.Issues, 2)
}

func TestLoad_DatetimeFormat(t *testing.T) {
	s, err := schemafile.Load([]byte("type: string\nrules:\n  - format: {datetime: {offset: true, precision: 0}}\n"))
	require.NoError(t, err)
	ctx := context.Background()
	assert.True(t, s.SafeParseAny(ctx, "2024-01-02T03:04:05+09:00").Success)
	assert.False(t, s.SafeParseAny(ctx, "2024-01-02T03:04:05.123Z").Success)
}

func TestLoad_UniqueItems(t *testing.T) {
	s, err := schemafile.Load([]byte(`
type: array
items:
  type: object
  properties: {sku: {type: string}}
rules:
  - unique: sku
    message: duplicate sku
`))
	require.NoError(t, err)
	ctx := context.Background()
	ok := s.SafeParseAny(ctx, []any{map[string]any{"sku": "a"}, map[string]any{"sku": "b"}})
	assert.True(t, ok.Success, "%v", ok.Errors)
	bad := s.SafeParseAny(ctx, []any{map[string]any{"sku": "a"}, map[string]any{"sku": "a"}})
	assert.Equal(t, []string{"duplicate sku"}, bad.Errors)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown type":       "type: uuid\n",
		"missing type":       "description: x\n",
		"unknown field":      "type: string\nmaxLen: 3\n",
		"unknown rule":       "type: string\nrules: [positive]\n",
		"bad argument":       "type: string\nrules: [{minLength: -1}]\n",
		"bad pattern":        "type: string\nrules: [{pattern: '('}]\n",
		"bad cel":            "type: boolean\nrules: [{cel: 'value +'}]\n",
		"array without item": "type: array\n",
		"nested":             "type: object\nproperties: {a: {type: nope}}\n",
		"rename unknown":     "type: object\nproperties: {a: {type: string}}\nrename: {b: c}\n",
		"two rules in entry": "type: number\nrules: [{min: 1, max: 2}]\n",
		"non-string unique":  "type: array\nitems: {type: string}\nrules: [{unique: 3}]\n",
		"empty":              "",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := schemafile.Load([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_DatetimePrecisionRange(t *testing.T) {
	cases := map[string]string{
		"too large": "type: object\nproperties:\n  at:\n    type: string\n    rules:\n      - format: {datetime: {precision: 1500}}\n",
		"negative":  "type: object\nproperties:\n  at:\n    type: string\n    rules:\n      - format: {datetime: {precision: -3}}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = schemafile.Load([]byte(doc)) })
			require.Error(t, err)
			assert.Contains(t, err.Error(), "/properties/at")
		})
	}
}

func TestLoad_BareUnique(t *testing.T) {
	s, err := schemafile.Load([]byte("type: array\nitems: {type: string}\nrules: [unique]\n"))
	require.NoError(t, err)
	ctx := context.Background()
	assert.True(t, s.SafeParseAny(ctx, []any{"a", "b"}).Success)
	assert.False(t, s.SafeParseAny(ctx, []any{"a", "a"}).Success)
}

func TestLoad_NestedErrorLocation(t *testing.T) {
	_, err := schemafile.Load([]byte("type: object\nproperties: {a: {type: array, items: {type: nope}}}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/properties/a/items")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: boolean\ncoerce: true\n"), 0o600))
	s, err := schemafile.LoadFile(path)
	require.NoError(t, err)
	r := s.SafeParseAny(context.Background(), "yes")
	require.True(t, r.Success)
	assert.Equal(t, true, r.Data)

	_, err = schemafile.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
