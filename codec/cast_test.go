package codec_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	"github.com/reoring/skema/codec"
)

func TestString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{42, "42"},
		{42.5, "42.5"},
		{-0.0, "0"},
		{1e21, "1e+21"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
		{true, "true"},
		{nil, "null"},
		{skema.Undefined, "undefined"},
		{"x", "x"},
		{[]any{1, "a", nil, true}, "1,a,,true"},
		{map[string]any{"a": 1}, "[object Object]"},
		{json.Number("12"), "12"},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2025-01-01T00:00:00Z"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, codec.String(tc.in), "%#v", tc.in)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"42", 42},
		{"  3.5 ", 3.5},
		{"", 0},
		{"1e3", 1000},
		{"0x1f", 31},
		{"0b101", 5},
		{"Infinity", math.Inf(1)},
		{nil, 0},
		{true, 1},
		{false, 0},
		{int8(-3), -3},
		{[]any{}, 0},
		{[]any{"7"}, 7},
		{time.UnixMilli(1500).UTC(), 1500},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, codec.Number(tc.in), "%#v", tc.in)
	}

	for _, in := range []any{"abc", "inf", "NaN", "1_000", skema.Undefined, map[string]any{}, []any{1, 2}} {
		f, ok := codec.Number(in).(float64)
		require.True(t, ok)
		assert.True(t, math.IsNaN(f), "%#v", in)
	}
}

func TestBool(t *testing.T) {
	falsy := []any{nil, skema.Undefined, false, 0, 0.0, math.NaN(), "", (*int)(nil)}
	truthy := []any{true, 1, -0.5, "0", "false", []any{}, map[string]any{}, skema.NewSymbol("")}
	for _, v := range falsy {
		assert.Equal(t, false, codec.Bool(v), "%#v", v)
	}
	for _, v := range truthy {
		assert.Equal(t, true, codec.Bool(v), "%#v", v)
	}
}

func TestDate(t *testing.T) {
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	got, ok := codec.Date("2025-01-01T00:00:00Z").(time.Time)
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = codec.Date("2025-01-01").(time.Time)
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = codec.Date(float64(want.UnixMilli())).(time.Time)
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = codec.Date(nil).(time.Time)
	require.True(t, ok)
	assert.Equal(t, int64(0), got.UnixMilli())

	// dates pass through, garbage stays raw
	assert.Equal(t, want, codec.Date(want))
	assert.Equal(t, "yesterday", codec.Date("yesterday"))
	assert.Equal(t, skema.Undefined, codec.Date(skema.Undefined))
}

func TestParseTime_FormatTime(t *testing.T) {
	in := "2025-01-01T09:30:00.5+09:00"
	tm, err := codec.ParseTime(in)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:30:00.5Z", codec.FormatTime(tm))

	_, err = codec.ParseTime("01/02/2025")
	assert.Error(t, err)
}

func TestSymbol(t *testing.T) {
	s, ok := codec.Symbol(42).(skema.Symbol)
	require.True(t, ok)
	assert.Equal(t, "42", s.Description())

	// each cast creates a distinct symbol
	assert.True(t, codec.Symbol("a") != codec.Symbol("a"))

	orig := skema.NewSymbol("keep")
	assert.Equal(t, orig, codec.Symbol(orig))
}
