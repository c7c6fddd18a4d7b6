package skema

import (
	"context"
	"reflect"
	"strings"
	"time"

	js "github.com/reoring/skema/jsonschema"
)

// Def is the definition record shared by every Type.
type Def struct {
	Description string
	// Coerce, when set, casts the raw input before structural parsing and
	// constraint evaluation.
	Coerce     func(any) any
	Constraint Constraint
}

// ParseFunc performs the structural part of parsing: identity for scalars,
// element mapping for arrays and property extraction for objects. A non-nil
// error aborts the parse (a hard error).
type ParseFunc func(ctx context.Context, v any) (any, error)

// Result is the outcome of SafeParse. Data is meaningful only when Success is
// true. Err is non-nil when structural parsing aborted, for example on the
// first invalid array element; Errors then carries that element's messages.
type Result[T any] struct {
	Data    T
	Success bool
	Errors  []string
	Issues  Issues
	Err     error
}

// Type is a schema node: a Constraint paired with an optional coercion and a
// structural parse function. A Type is immutable once built, except that the
// fluent setters of its constraint may still be called during construction.
type Type[T any] struct {
	def    Def
	parse  ParseFunc
	schema func(*js.Schema) error // adds children to the constraint projection
}

// NewType builds a scalar Type whose structural parse is the identity.
func NewType[T any](def Def) *Type[T] {
	return newType[T](def, func(_ context.Context, v any) (any, error) { return v, nil }, nil)
}

func newType[T any](def Def, parse ParseFunc, schema func(*js.Schema) error) *Type[T] {
	if def.Coerce != nil {
		coerce, inner := def.Coerce, parse
		parse = func(ctx context.Context, v any) (any, error) { return inner(ctx, coerce(v)) }
	}
	return &Type[T]{def: def, parse: parse, schema: schema}
}

// Description returns the text attached with Describe or at construction.
func (t *Type[T]) Description() string { return t.def.Description }

// Schema returns the receiver. Wrappers that embed *Type expose it so
// factories can accept either form.
func (t *Type[T]) Schema() *Type[T] { return t }

// Constraint returns the rule set owned by this Type.
func (t *Type[T]) Constraint() Constraint { return t.def.Constraint }

// SafeParse validates v without returning an error value; failures are
// reported through the Result.
func (t *Type[T]) SafeParse(ctx context.Context, v any) Result[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	nv, err := t.parse(ctx, v)
	if err != nil {
		iss := toIssues(err)
		return Result[T]{Errors: iss.Messages(), Issues: iss, Err: err}
	}
	if iss := t.def.Constraint.Check(nv); len(iss) > 0 {
		return Result[T]{Errors: iss.Messages(), Issues: iss}
	}
	out, ok := as[T](nv)
	if !ok {
		iss := Issues{{Code: CodeInvalidType, Message: "Expected " + typeName[T]() + ", received " + TypeOf(nv)}}
		return Result[T]{Errors: iss.Messages(), Issues: iss}
	}
	return Result[T]{Data: out, Success: true, Errors: []string{}}
}

// Parse validates v and returns the typed value, or a *ParseError carrying
// every collected issue.
func (t *Type[T]) Parse(ctx context.Context, v any) (T, error) {
	r := t.SafeParse(ctx, v)
	if r.Success {
		return r.Data, nil
	}
	var zero T
	return zero, &ParseError{Description: t.def.Description, Issues: r.Issues}
}

// ParseAny is Parse with the result boxed in any.
func (t *Type[T]) ParseAny(ctx context.Context, v any) (any, error) {
	out, err := t.Parse(ctx, v)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SafeParseAny is SafeParse with the data boxed in any.
func (t *Type[T]) SafeParseAny(ctx context.Context, v any) Result[any] {
	r := t.SafeParse(ctx, v)
	out := Result[any]{Success: r.Success, Errors: r.Errors, Issues: r.Issues, Err: r.Err}
	if r.Success {
		out.Data = r.Data
	}
	return out
}

// IsOptional reports whether the Type accepts Undefined.
func (t *Type[T]) IsOptional() bool {
	return t.SafeParse(context.Background(), Undefined).Success
}

// IsNullable reports whether the Type accepts nil.
func (t *Type[T]) IsNullable() bool {
	return t.SafeParse(context.Background(), nil).Success
}

// Describe returns a copy of the Type with a new description. The copy
// shares the constraint and parse function with the receiver.
func (t *Type[T]) Describe(description string) *Type[T] {
	def := t.def
	def.Description = description
	return &Type[T]{def: def, parse: t.parse, schema: t.schema}
}

// JSONSchema projects the Type into JSON Schema.
func (t *Type[T]) JSONSchema() (*js.Schema, error) {
	s := t.def.Constraint.JSONSchema()
	if s == nil {
		s = &js.Schema{}
	}
	if t.def.Description != "" {
		s.Description = t.def.Description
	}
	if t.schema != nil {
		if err := t.schema(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// as converts a validated value into T. Besides a direct assertion it
// accepts the kinds the constraints accept: any string kind, any numeric
// kind or json.Number for float64, any bool kind, and date values for
// time.Time. nil becomes the zero T (a nullable Type accepted it).
func as[T any](v any) (T, bool) {
	if out, ok := v.(T); ok {
		return out, true
	}
	var zero T
	if v == nil {
		return zero, true
	}
	var (
		out any
		ok  bool
	)
	switch any(zero).(type) {
	case string:
		out, ok = AsString(v)
	case float64:
		out, ok = AsNumber(v)
	case bool:
		out, ok = AsBool(v)
	case time.Time:
		out, ok = AsTime(v)
	}
	if !ok {
		return zero, false
	}
	return out.(T), true
}

// typeName names T in the vocabulary of TypeOf.
func typeName[T any]() string {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	switch rt {
	case reflect.TypeOf(time.Time{}):
		return "date"
	case reflect.TypeOf(Symbol{}):
		return "symbol"
	}
	switch rt.Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct, reflect.Pointer, reflect.Interface:
		return "object"
	}
	return TypeOf(reflect.Zero(rt).Interface())
}

// keyPointer escapes a property name as a JSON Pointer segment.
func keyPointer(k string) string {
	k = strings.ReplaceAll(k, "~", "~0")
	k = strings.ReplaceAll(k, "/", "~1")
	return "/" + k
}

// Erase adapts t to *Type[any] so that schemas built at run time, whose Go
// type is unknown, can serve as array elements. Every failure of t becomes a
// hard error of the erased Type.
func Erase(t AnyType) *Type[any] {
	if e, ok := t.(*Type[any]); ok {
		return e
	}
	parse := func(ctx context.Context, v any) (any, error) { return t.ParseAny(ctx, v) }
	return newType[any](Def{Description: t.Description(), Constraint: erased{t}}, parse, nil)
}

type erased struct{ t AnyType }

func (erased) Check(any) Issues { return nil }

func (e erased) JSONSchema() *js.Schema {
	s, err := e.t.JSONSchema()
	if err != nil {
		return nil
	}
	return s
}
