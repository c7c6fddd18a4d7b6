package rules

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/google/cel-go/cel"

	"github.com/reoring/skema"
	"github.com/reoring/skema/constraint"
)

var celEnv = mustEnv()

func mustEnv() *cel.Env {
	env, err := cel.NewEnv(
		cel.Variable("value", cel.DynType),
		cel.Variable("self", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		panic(fmt.Errorf("rules: cel env: %w", err))
	}
	return env
}

// CEL compiles expr into a predicate. The validated value is bound to the
// variables `value` and `self` (the name Kubernetes validation rules use);
// objects are maps keyed by output key. The expression
// must produce a bool. Evaluation errors (missing keys, bad operand types)
// count as failures.
func CEL(expr string) (constraint.Predicate, error) {
	ast, iss := celEnv.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("rules: compile %q: %w", expr, iss.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("rules: %q yields %s, want bool", expr, out)
	}
	prg, err := celEnv.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("rules: program %q: %w", expr, err)
	}
	return func(v any) bool {
		cv := toCEL(v)
		out, _, err := prg.Eval(map[string]any{"value": cv, "self": cv})
		if err != nil {
			return false
		}
		b, ok := out.Value().(bool)
		return ok && b
	}, nil
}

// MustCEL is like CEL but panics on a bad expression.
func MustCEL(expr string) constraint.Predicate {
	p, err := CEL(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// toCEL converts parsed values into the native shapes cel-go adapts:
// integral numbers become int64, other numbers float64, symbols their
// description and Undefined null.
func toCEL(v any) any {
	switch x := v.(type) {
	case nil, string, bool:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case skema.Symbol:
		return x.Description()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = toCEL(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toCEL(e)
		}
		return out
	}
	if skema.IsUndefined(v) {
		return nil
	}
	if t, ok := skema.AsTime(v); ok {
		return t
	}
	if f, ok := skema.AsNumber(v); ok {
		if f == math.Trunc(f) && math.Abs(f) <= constraint.MaxSafeInteger {
			return int64(f)
		}
		return f
	}
	if s, ok := skema.AsString(v); ok {
		return s
	}
	if b, ok := skema.AsBool(v); ok {
		return b
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = toCEL(rv.Index(i).Interface())
		}
		return out
	}
	return v
}
