package constraint

import (
	"math"

	"github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
	js "github.com/reoring/skema/jsonschema"
)

// MaxSafeInteger is the largest integer a float64 represents exactly along
// with all smaller ones.
const MaxSafeInteger = 1<<53 - 1

// Number validates numeric values: every Go integer and float kind plus
// json.Number, compared as float64.
type Number struct {
	fluent[*Number]
}

// NewNumber returns an empty number constraint.
func NewNumber() *Number {
	n := &Number{}
	n.fluent = fluent[*Number]{Base: newBase(Tag("number"), "number"), self: n}
	return n
}

func num(v any) float64 {
	f, _ := skema.AsNumber(v)
	return f
}

// Min requires v >= min.
func (n *Number) Min(min float64) *Number {
	n.Set("min", &Rule{
		Predicate: func(v any) bool { return num(v) >= min },
		Message:   i18n.T(i18n.MsgNumberMin, map[string]string{"min": formatNumber(min)}),
		Code:      skema.CodeTooSmall,
		Params:    map[string]any{"min": min},
		Annotate:  func(s *js.Schema) { s.Minimum = js.Float(min) },
	})
	return n
}

// Max requires v <= max.
func (n *Number) Max(max float64) *Number {
	n.Set("max", &Rule{
		Predicate: func(v any) bool { return num(v) <= max },
		Message:   i18n.T(i18n.MsgNumberMax, map[string]string{"max": formatNumber(max)}),
		Code:      skema.CodeTooBig,
		Params:    map[string]any{"max": max},
		Annotate:  func(s *js.Schema) { s.Maximum = js.Float(max) },
	})
	return n
}

// Between requires min <= v <= max.
func (n *Number) Between(min, max float64) *Number {
	n.Set("between", &Rule{
		Predicate: func(v any) bool { f := num(v); return f >= min && f <= max },
		Message: i18n.T(i18n.MsgNumberBetween, map[string]string{
			"min": formatNumber(min), "max": formatNumber(max),
		}),
		Code:   skema.CodeTooBig,
		Params: map[string]any{"min": min, "max": max},
		Annotate: func(s *js.Schema) {
			s.Minimum, s.Maximum = js.Float(min), js.Float(max)
		},
	})
	return n
}

// Positive requires v > 0.
func (n *Number) Positive() *Number {
	n.Set("positive", &Rule{
		Predicate: func(v any) bool { f := num(v); return math.Max(0, f) == f && f != 0 },
		Message:   i18n.T(i18n.MsgNumberPositive, nil),
		Code:      skema.CodeTooSmall,
		Annotate:  func(s *js.Schema) { s.ExclusiveMinimum = js.Float(0) },
	})
	return n
}

// Negative requires v <= 0. Zero is accepted.
func (n *Number) Negative() *Number {
	n.Set("negative", &Rule{
		Predicate: func(v any) bool { f := num(v); return math.Min(0, f) == f },
		Message:   i18n.T(i18n.MsgNumberNegative, nil),
		Code:      skema.CodeTooBig,
		Annotate:  func(s *js.Schema) { s.Maximum = js.Float(0) },
	})
	return n
}

// Int requires a safe integer.
func (n *Number) Int() *Number {
	n.Set("int", &Rule{
		Predicate: func(v any) bool { return isSafeInteger(num(v)) },
		Message:   i18n.T(i18n.MsgNumberInt, nil),
		Code:      skema.CodeNotInteger,
		Annotate:  func(s *js.Schema) { s.Type = "integer" },
	})
	return n
}

// Float requires a finite value with a fractional part.
func (n *Number) Float() *Number {
	n.Set("float", &Rule{
		Predicate: func(v any) bool {
			f := num(v)
			return !math.IsNaN(f) && !math.IsInf(f, 0) && f != math.Trunc(f)
		},
		Message: i18n.T(i18n.MsgNumberFloat, nil),
		Code:    skema.CodeInvalidType,
	})
	return n
}

// Finite rejects NaN and infinities.
func (n *Number) Finite() *Number {
	n.Set("finite", &Rule{
		Predicate: func(v any) bool { f := num(v); return !math.IsNaN(f) && !math.IsInf(f, 0) },
		Message:   i18n.T(i18n.MsgNumberFinite, nil),
		Code:      skema.CodeNotFinite,
	})
	return n
}

func isSafeInteger(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f) && math.Abs(f) <= MaxSafeInteger
}
