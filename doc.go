// Package skema is a runtime schema and validation engine. A schema is a
// Type: a constraint (a registry of named predicate rules) plus an optional
// coercion and a structural parse step for arrays and objects.
//
// Parsing coerces the input when coercion is enabled, parses nested values
// (the first failing array element or object property aborts with its issues
// rebased under its JSON Pointer) and finally checks the constraint's rules,
// collecting every failure as an Issue.
//
// Schemas are normally built with the dsl package:
//
//	user := dsl.Object(skema.Shape{
//		"name": dsl.String().MinLength(1),
//		"age":  dsl.Number().Int().Min(0),
//	}, nil).Required("name")
//
//	v, err := skema.ParseFrom[map[string]any](ctx, user, skema.JSONBytes(data))
//	if iss, ok := skema.AsIssues(err); ok {
//		// iss[i].Path, iss[i].Code, iss[i].Message
//	}
//
// Layout:
//   - constraint: rule registries per data category
//   - dsl: fluent builders, struct binding
//   - rules: cross-field predicates and CEL expressions for Refine
//   - codec: coercion casts
//   - schemafile, openapi: schemas loaded from YAML/JSON documents and CRDs
//   - middleware: net/http and gin request validation
//   - cmd/skema: the command line tool
package skema
