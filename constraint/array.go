package constraint

import (
	"reflect"
	"strconv"

	"github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
	js "github.com/reoring/skema/jsonschema"
)

// Array validates slices and arrays.
type Array struct {
	fluent[*Array]
}

// NewArray returns an empty array constraint.
func NewArray() *Array {
	a := &Array{}
	a.fluent = fluent[*Array]{Base: newBase(Matching("array", skema.IsArray), "array"), self: a}
	return a
}

func length(v any) int { return reflect.ValueOf(v).Len() }

// Min requires at least n elements.
func (a *Array) Min(n int) *Array {
	a.Set("min", &Rule{
		Predicate: func(v any) bool { return length(v) >= n },
		Message:   i18n.T(i18n.MsgArrayMin, map[string]string{"min": strconv.Itoa(n)}),
		Code:      skema.CodeTooShort,
		Params:    map[string]any{"min": n},
		Annotate:  func(s *js.Schema) { s.MinItems = &n },
	})
	return a
}

// Max allows at most n elements.
func (a *Array) Max(n int) *Array {
	a.Set("max", &Rule{
		Predicate: func(v any) bool { return length(v) <= n },
		Message:   i18n.T(i18n.MsgArrayMax, map[string]string{"max": strconv.Itoa(n)}),
		Code:      skema.CodeTooLong,
		Params:    map[string]any{"max": n},
		Annotate:  func(s *js.Schema) { s.MaxItems = &n },
	})
	return a
}

// Length requires exactly n elements.
func (a *Array) Length(n int) *Array {
	a.Set("length", &Rule{
		Predicate: func(v any) bool { return length(v) == n },
		Message:   i18n.T(i18n.MsgArrayLength, map[string]string{"length": strconv.Itoa(n)}),
		Code:      skema.CodeTooShort,
		Params:    map[string]any{"length": n},
		Annotate:  func(s *js.Schema) { s.MinItems, s.MaxItems = &n, &n },
	})
	return a
}

// NoEmpty requires at least one element.
func (a *Array) NoEmpty() *Array {
	one := 1
	a.Set("noempty", &Rule{
		Predicate: func(v any) bool { return length(v) > 0 },
		Message:   i18n.T(i18n.MsgArrayNoEmpty, nil),
		Code:      skema.CodeTooShort,
		Annotate:  func(s *js.Schema) { s.MinItems = &one },
	})
	return a
}
