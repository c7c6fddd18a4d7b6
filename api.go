package skema

import (
	"context"
	"strconv"

	js "github.com/reoring/skema/jsonschema"
)

// Constraint is the rule set a Type evaluates after structural parsing.
// Implementations live in the constraint package.
type Constraint interface {
	// Check validates v and returns the issues it produced. It must not
	// retain or mutate state, so one Constraint can serve concurrent parses.
	Check(v any) Issues
	// JSONSchema projects the expected type and rules into JSON Schema.
	JSONSchema() *js.Schema
}

// AnyType is the type-erased view of a Type[T], used for object shapes and
// for callers that handle schemas generically.
type AnyType interface {
	ParseAny(ctx context.Context, v any) (any, error)
	SafeParseAny(ctx context.Context, v any) Result[any]
	Description() string
	JSONSchema() (*js.Schema, error)
}

// ---- Parse-time context options ----

type contextKey int

const (
	_ctxKeyMaxDepth contextKey = iota
	_ctxKeyDepth
)

// WithMaxDepth returns a child context limiting nesting of arrays and objects
// to n levels. Values <= 0 restore DefaultMaxDepth.
func WithMaxDepth(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, _ctxKeyMaxDepth, n)
}

// MaxDepth reports the nesting limit in effect for ctx.
func MaxDepth(ctx context.Context) int {
	if n, ok := ctx.Value(_ctxKeyMaxDepth).(int); ok && n > 0 {
		return n
	}
	return DefaultMaxDepth
}

func depth(ctx context.Context) int {
	n, _ := ctx.Value(_ctxKeyDepth).(int)
	return n
}

// descend marks entry into a nested value. It fails when the context is done
// or the nesting limit is exceeded.
func descend(ctx context.Context) (context.Context, error) {
	if err := ctx.Err(); err != nil {
		return ctx, singleIssue(CodeParseError, err.Error())
	}
	d := depth(ctx) + 1
	if limit := MaxDepth(ctx); d > limit {
		return ctx, Issues{{Code: CodeParseError, Message: "max depth exceeded", Params: map[string]any{"maxDepth": limit}}}
	}
	return context.WithValue(ctx, _ctxKeyDepth, d), nil
}

func indexPointer(i int) string { return "/" + strconv.Itoa(i) }
