package dsl

import (
	"regexp"
	"time"

	"github.com/reoring/skema"
	"github.com/reoring/skema/codec"
	"github.com/reoring/skema/constraint"
	"github.com/reoring/skema/patterns"
)

// ---- string ----

// StringSchema is a string Type with the fluent rules of constraint.String.
// Rule setters mutate the shared constraint and return the receiver.
type StringSchema struct {
	*skema.Type[string]
	c *constraint.String
}

// String returns a string Type. With Coerce, input is cast with codec.String.
func String(opts ...Option) *StringSchema {
	c := constraint.NewString()
	return &StringSchema{Type: skema.NewType[string](buildOptions(opts).def(c, codec.String)), c: c}
}

// Rules exposes the underlying constraint.
func (s *StringSchema) Rules() *constraint.String { return s.c }
// MinLength requires at least n characters.
func (s *StringSchema) MinLength(n int) *StringSchema { s.c.MinLength(n); return s }
func (s *StringSchema) MaxLength(n int) *StringSchema { s.c.MaxLength(n); return s }
func (s *StringSchema) Length(n int) *StringSchema { s.c.Length(n); return s }
func (s *StringSchema) NotEmpty() *StringSchema { s.c.NotEmpty(); return s }
// Pattern requires a match of re.
func (s *StringSchema) Pattern(re *regexp.Regexp) *StringSchema { s.c.Pattern(re); return s }
func (s *StringSchema) StartsWith(p string) *StringSchema { s.c.StartsWith(p); return s }
func (s *StringSchema) EndsWith(p string) *StringSchema { s.c.EndsWith(p); return s }
// Email, UUID, CUID and Datetime check the formats in package patterns.
func (s *StringSchema) Email() *StringSchema { s.c.Email(); return s }
func (s *StringSchema) UUID() *StringSchema { s.c.UUID(); return s }
func (s *StringSchema) CUID() *StringSchema { s.c.CUID(); return s }
func (s *StringSchema) Datetime(opt patterns.DatetimeOptions) *StringSchema {
	s.c.Datetime(opt)
	return s
}
// Nullable also accepts nil.
func (s *StringSchema) Nullable() *StringSchema { s.c.Nullable(); return s }
func (s *StringSchema) Nullish() *StringSchema { s.c.Nullish(); return s }
// Refine appends a custom rule under key; msg is its failure message.
func (s *StringSchema) Refine(key string, p constraint.Predicate, msg string) *StringSchema {
	s.c.Refine(key, p, msg)
	return s
}

// Describe returns a copy carrying text; the copy shares rules with s.
func (s *StringSchema) Describe(text string) *StringSchema {
	return &StringSchema{Type: s.Type.Describe(text), c: s.c}
}

// ---- number ----

// NumberSchema is a float64 Type. Any Go numeric kind or json.Number is
// accepted and widened.
type NumberSchema struct {
	*skema.Type[float64]
	c *constraint.Number
}

// Number returns a number Type. With Coerce, input is cast with codec.Number.
func Number(opts ...Option) *NumberSchema {
	c := constraint.NewNumber()
	return &NumberSchema{Type: skema.NewType[float64](buildOptions(opts).def(c, codec.Number)), c: c}
}

// Rules exposes the underlying constraint.
func (s *NumberSchema) Rules() *constraint.Number { return s.c }
// Min requires v >= n.
func (s *NumberSchema) Min(n float64) *NumberSchema { s.c.Min(n); return s }
func (s *NumberSchema) Max(n float64) *NumberSchema { s.c.Max(n); return s }
func (s *NumberSchema) Between(lo, hi float64) *NumberSchema { s.c.Between(lo, hi); return s }
// Positive requires v > 0. Negative requires v <= 0.
func (s *NumberSchema) Positive() *NumberSchema { s.c.Positive(); return s }
func (s *NumberSchema) Negative() *NumberSchema { s.c.Negative(); return s }
// Int requires a safe integer.
func (s *NumberSchema) Int() *NumberSchema { s.c.Int(); return s }
func (s *NumberSchema) Float() *NumberSchema { s.c.Float(); return s }
func (s *NumberSchema) Finite() *NumberSchema { s.c.Finite(); return s }
// Nullable also accepts nil.
func (s *NumberSchema) Nullable() *NumberSchema { s.c.Nullable(); return s }
func (s *NumberSchema) Nullish() *NumberSchema { s.c.Nullish(); return s }
func (s *NumberSchema) Refine(key string, p constraint.Predicate, msg string) *NumberSchema {
	s.c.Refine(key, p, msg)
	return s
}

// Describe returns a copy carrying text; the copy shares rules with s.
func (s *NumberSchema) Describe(text string) *NumberSchema {
	return &NumberSchema{Type: s.Type.Describe(text), c: s.c}
}

// ---- boolean ----

// BooleanSchema is a bool Type. Any bool kind is accepted.
type BooleanSchema struct {
	*skema.Type[bool]
	c *constraint.Boolean
}

// Boolean returns a bool Type. With Coerce, input is cast by truthiness.
func Boolean(opts ...Option) *BooleanSchema {
	c := constraint.NewBoolean()
	return &BooleanSchema{Type: skema.NewType[bool](buildOptions(opts).def(c, codec.Bool)), c: c}
}

// Rules exposes the underlying constraint.
func (s *BooleanSchema) Rules() *constraint.Boolean { return s.c }
func (s *BooleanSchema) Nullable() *BooleanSchema { s.c.Nullable(); return s }
func (s *BooleanSchema) Nullish() *BooleanSchema { s.c.Nullish(); return s }
func (s *BooleanSchema) Refine(key string, p constraint.Predicate, msg string) *BooleanSchema {
	s.c.Refine(key, p, msg)
	return s
}

func (s *BooleanSchema) Describe(text string) *BooleanSchema {
	return &BooleanSchema{Type: s.Type.Describe(text), c: s.c}
}

// ---- symbol ----

// SymbolSchema is a skema.Symbol Type. Symbols compare by identity.
type SymbolSchema struct {
	*skema.Type[skema.Symbol]
	c *constraint.Symbol
}

// SymbolType returns a skema.Symbol Type. With Coerce, non-symbols are
// wrapped in a new Symbol.
func SymbolType(opts ...Option) *SymbolSchema {
	c := constraint.NewSymbol()
	return &SymbolSchema{Type: skema.NewType[skema.Symbol](buildOptions(opts).def(c, codec.Symbol)), c: c}
}

// Rules exposes the underlying constraint.
func (s *SymbolSchema) Rules() *constraint.Symbol { return s.c }
func (s *SymbolSchema) Nullable() *SymbolSchema { s.c.Nullable(); return s }
func (s *SymbolSchema) Nullish() *SymbolSchema { s.c.Nullish(); return s }
func (s *SymbolSchema) Refine(key string, p constraint.Predicate, msg string) *SymbolSchema {
	s.c.Refine(key, p, msg)
	return s
}

func (s *SymbolSchema) Describe(text string) *SymbolSchema {
	return &SymbolSchema{Type: s.Type.Describe(text), c: s.c}
}

// ---- date ----

// DateSchema is a time.Time Type. *time.Time and skema.DateLike inputs are
// accepted and unwrapped.
type DateSchema struct {
	*skema.Type[time.Time]
	c *constraint.Date
}

// Date returns a date Type. With Coerce, strings and Unix milliseconds are
// converted with codec.Date.
func Date(opts ...Option) *DateSchema {
	c := constraint.NewDate()
	return &DateSchema{Type: skema.NewType[time.Time](buildOptions(opts).def(c, codec.Date)), c: c}
}

// Rules exposes the underlying constraint.
func (s *DateSchema) Rules() *constraint.Date { return s.c }
func (s *DateSchema) Nullable() *DateSchema { s.c.Nullable(); return s }
func (s *DateSchema) Nullish() *DateSchema { s.c.Nullish(); return s }
func (s *DateSchema) Refine(key string, p constraint.Predicate, msg string) *DateSchema {
	s.c.Refine(key, p, msg)
	return s
}

func (s *DateSchema) Describe(text string) *DateSchema {
	return &DateSchema{Type: s.Type.Describe(text), c: s.c}
}
