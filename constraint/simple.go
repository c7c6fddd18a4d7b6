package constraint

import (
	"github.com/reoring/skema"
	js "github.com/reoring/skema/jsonschema"
)

// Boolean accepts bool values and nothing else.
type Boolean struct {
	fluent[*Boolean]
}

// NewBoolean returns a boolean constraint.
func NewBoolean() *Boolean {
	b := &Boolean{}
	b.fluent = fluent[*Boolean]{Base: newBase(Tag("boolean"), "boolean"), self: b}
	return b
}

// Symbol accepts skema.Symbol values.
type Symbol struct {
	fluent[*Symbol]
}

// NewSymbol returns a symbol constraint. Symbols have no JSON Schema type;
// the projection is an empty schema.
func NewSymbol() *Symbol {
	s := &Symbol{}
	s.fluent = fluent[*Symbol]{Base: newBase(Tag("symbol"), ""), self: s}
	return s
}

// Date accepts time.Time, non-nil *time.Time and skema.DateLike values.
type Date struct {
	fluent[*Date]
}

// NewDate returns a date constraint.
func NewDate() *Date {
	d := &Date{}
	d.fluent = fluent[*Date]{Base: newBase(Matching("date", skema.IsDate), "string"), self: d}
	return d
}

// JSONSchema projects dates as RFC 3339 strings.
func (d *Date) JSONSchema() *js.Schema {
	s := d.Base.JSONSchema()
	s.Format = "date-time"
	return s
}
