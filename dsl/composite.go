package dsl

import (
	"maps"

	"github.com/reoring/skema"
	"github.com/reoring/skema/constraint"
)

// ArraySchema is a []E Type whose elements parse through an element Type.
type ArraySchema[E any] struct {
	*skema.Type[[]E]
	c    *constraint.Array
	elem *skema.Type[E]
}

// Array returns a Type for slices of elem. The first element that fails
// aborts the parse. Coerce is ignored.
func Array[E any](elem Of[E], opts ...Option) *ArraySchema[E] {
	c := constraint.NewArray()
	o := buildOptions(opts)
	o.coerce = false
	el := elem.Schema()
	return &ArraySchema[E]{Type: skema.NewArray(el, o.def(c, nil)), c: c, elem: el}
}

// Element returns the element Type.
func (s *ArraySchema[E]) Element() *skema.Type[E] { return s.elem }
func (s *ArraySchema[E]) Rules() *constraint.Array { return s.c }
func (s *ArraySchema[E]) Min(n int) *ArraySchema[E] { s.c.Min(n); return s }
func (s *ArraySchema[E]) Max(n int) *ArraySchema[E] { s.c.Max(n); return s }
func (s *ArraySchema[E]) Length(n int) *ArraySchema[E] {
	s.c.Length(n)
	return s
}
func (s *ArraySchema[E]) NoEmpty() *ArraySchema[E] { s.c.NoEmpty(); return s }
func (s *ArraySchema[E]) Nullable() *ArraySchema[E] { s.c.Nullable(); return s }
func (s *ArraySchema[E]) Nullish() *ArraySchema[E] { s.c.Nullish(); return s }
func (s *ArraySchema[E]) Refine(key string, p constraint.Predicate, msg string) *ArraySchema[E] {
	s.c.Refine(key, p, msg)
	return s
}

func (s *ArraySchema[E]) Describe(text string) *ArraySchema[E] {
	return &ArraySchema[E]{Type: s.Type.Describe(text), c: s.c, elem: s.elem}
}

// ObjectSchema is a map[string]any Type built from a Shape.
type ObjectSchema struct {
	*skema.Type[map[string]any]
	c     *constraint.Object
	shape skema.Shape
	remap skema.Remap
}

// Object returns a Type that reads each shape key (or its remapped input
// key) from the input and parses it through the child Type. Declared keys
// missing from the input are left out of the result; use Required to
// reject them. remap may be nil. Coerce is ignored.
func Object(shape skema.Shape, remap skema.Remap, opts ...Option) *ObjectSchema {
	c := constraint.NewObject()
	o := buildOptions(opts)
	o.coerce = false
	shape, remap = maps.Clone(shape), maps.Clone(remap)
	return &ObjectSchema{
		Type:  skema.NewObject(shape, remap, o.def(c, nil)),
		c:     c,
		shape: shape,
		remap: remap,
	}
}

// Properties resolves the property map for the current shape.
func (s *ObjectSchema) Properties() []skema.Property { return skema.PropertyMap(s.shape, s.remap) }
func (s *ObjectSchema) Rules() *constraint.Object { return s.c }

// Required lists output keys that must be present after parsing.
func (s *ObjectSchema) Required(keys ...string) *ObjectSchema { s.c.Required(keys...); return s }
func (s *ObjectSchema) Nullable() *ObjectSchema { s.c.Nullable(); return s }
func (s *ObjectSchema) Nullish() *ObjectSchema { s.c.Nullish(); return s }
func (s *ObjectSchema) Refine(key string, p constraint.Predicate, msg string) *ObjectSchema {
	s.c.Refine(key, p, msg)
	return s
}

func (s *ObjectSchema) Describe(text string) *ObjectSchema {
	return &ObjectSchema{Type: s.Type.Describe(text), c: s.c, shape: s.shape, remap: s.remap}
}
