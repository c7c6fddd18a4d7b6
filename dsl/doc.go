// Package dsl is the schema factory for skema.
//
// Overview
//   - Primitives: String(), Number(), Boolean(), SymbolType(), Date().
//   - Composites: Array(elem), Object(shape, remap).
//   - Options: Description(text) and Coerce() (primitives only).
//   - Rules: each constructor returns a typed wrapper (StringSchema,
//     NumberSchema, ...) whose setters configure the owned constraint and
//     return the wrapper, so rules chain.
//   - Binding: Bind[T](obj) decodes a parsed object into struct T and runs
//     its `validate` tags.
//
// Every wrapper embeds *skema.Type, so Parse, SafeParse, IsOptional,
// IsNullable and JSONSchema are available directly, and any wrapper can be
// used as a value of skema.Shape.
//
// Example
//
//	user := dsl.Object(skema.Shape{
//	    "id":        dsl.String().UUID(),
//	    "email":     dsl.String().Email(),
//	    "age":       dsl.Number().Int().Min(0),
//	    "birthdate": dsl.Date(dsl.Coerce()),
//	    "tags":      dsl.Array(dsl.String().NotEmpty()).Max(10),
//	}, skema.Remap{"birthdate": "birth_date"}, dsl.Description("user")).
//	    Required("id", "email")
//
//	out, err := user.Parse(ctx, input)
//
// Semantics
//   - Rules run in registration order and every failing rule reports a
//     message. A type mismatch reports one message and stops.
//   - Calling a setter twice keeps the last value.
//   - Nullable() lets nil through every rule. The parsed value is the zero
//     value of the output type.
//   - Arrays abort on the first invalid element; objects abort on the first
//     invalid property. Paths are rebased under "/<index>" or "/<key>".
//   - Object keys declared in the shape but absent from the input are
//     skipped. Keys not in the shape are dropped.
package dsl
