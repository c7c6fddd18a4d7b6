package schemafile

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/reoring/skema"
	"github.com/reoring/skema/constraint"
	g "github.com/reoring/skema/dsl"
	"github.com/reoring/skema/patterns"
	"github.com/reoring/skema/rules"
)

// rule is one normalized entry of Definition.Rules.
type rule struct {
	name    string
	arg     any
	message string
	key     string
}

// Build turns a Definition into a Type.
func Build(def *Definition) (skema.AnyType, error) {
	return build(def, "")
}

func build(def *Definition, at string) (skema.AnyType, error) {
	if def == nil {
		return nil, fmt.Errorf("schemafile: %s: missing definition", where(at))
	}
	rs, err := parseRules(def.Rules)
	if err != nil {
		return nil, &buildError{at: at, err: err}
	}
	opts := []g.Option{g.Description(def.Description)}
	if def.Coerce {
		opts = append(opts, g.Coerce())
	}

	var t skema.AnyType
	switch def.Type {
	case "string":
		t, err = buildString(def, rs, opts)
	case "number":
		t, err = buildNumber(def, rs, opts)
	case "boolean":
		s := g.Boolean(opts...)
		if def.Nullable {
			s.Nullable()
		}
		t, err = s, onlyCustom(rs, "boolean", s.Refine)
	case "symbol":
		s := g.SymbolType(opts...)
		if def.Nullable {
			s.Nullable()
		}
		t, err = s, onlyCustom(rs, "symbol", s.Refine)
	case "date":
		s := g.Date(opts...)
		if def.Nullable {
			s.Nullable()
		}
		t, err = s, onlyCustom(rs, "date", s.Refine)
	case "array":
		t, err = buildArray(def, rs, opts, at)
	case "object":
		t, err = buildObject(def, rs, opts, at)
	case "":
		err = fmt.Errorf("missing type")
	default:
		err = fmt.Errorf("unknown type %q", def.Type)
	}
	if err != nil {
		var be *buildError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, &buildError{at: at, err: err}
	}
	return t, nil
}

type buildError struct {
	at  string
	err error
}

func (e *buildError) Error() string { return "schemafile: " + where(e.at) + ": " + e.err.Error() }
func (e *buildError) Unwrap() error { return e.err }

func where(at string) string {
	if at == "" {
		return "/"
	}
	return at
}

func buildString(def *Definition, rs []rule, opts []g.Option) (skema.AnyType, error) {
	s := g.String(opts...)
	if def.Nullable {
		s.Nullable()
	}
	for _, r := range rs {
		switch r.name {
		case "minLength", "maxLength", "length":
			n, err := intArg(r)
			if err != nil {
				return nil, err
			}
			switch r.name {
			case "minLength":
				s.MinLength(n)
			case "maxLength":
				s.MaxLength(n)
			default:
				s.Length(n)
			}
		case "notEmpty":
			s.NotEmpty()
		case "pattern":
			str, err := stringArg(r)
			if err != nil {
				return nil, err
			}
			re, err := regexp.Compile(str)
			if err != nil {
				return nil, fmt.Errorf("pattern: %w", err)
			}
			s.Pattern(re)
		case "startsWith", "endsWith":
			str, err := stringArg(r)
			if err != nil {
				return nil, err
			}
			if r.name == "startsWith" {
				s.StartsWith(str)
			} else {
				s.EndsWith(str)
			}
		case "format":
			if err := applyFormat(s, r); err != nil {
				return nil, err
			}
		case "cel":
			if err := applyCEL(r, s.Refine); err != nil {
				return nil, err
			}
		default:
			return nil, notApplicable(r, "string")
		}
	}
	return s, nil
}

func applyFormat(s *g.StringSchema, r rule) error {
	name, ok := r.arg.(string)
	var dt map[string]any
	if !ok {
		// {format: {datetime: {offset: true, precision: 3}}}
		m, isMap := r.arg.(map[string]any)
		if !isMap || len(m) != 1 {
			return fmt.Errorf("format: want a format name")
		}
		for k, v := range m {
			name = k
			dt, _ = v.(map[string]any)
		}
	}
	switch name {
	case "email":
		s.Email()
	case "uuid":
		s.UUID()
	case "cuid":
		s.CUID()
	case "datetime":
		var opt patterns.DatetimeOptions
		if off, ok := dt["offset"].(bool); ok {
			opt.Offset = off
		}
		if p, ok := dt["precision"]; ok {
			n, err := intArg(rule{name: "precision", arg: p})
			if err != nil {
				return err
			}
			opt.Precision = patterns.Precision(n)
		}
		if err := opt.Validate(); err != nil {
			return fmt.Errorf("format: %w", err)
		}
		s.Datetime(opt)
	default:
		return fmt.Errorf("format: unknown format %q", name)
	}
	return nil
}

func buildNumber(def *Definition, rs []rule, opts []g.Option) (skema.AnyType, error) {
	s := g.Number(opts...)
	if def.Nullable {
		s.Nullable()
	}
	for _, r := range rs {
		switch r.name {
		case "min", "max":
			f, err := numberArg(r)
			if err != nil {
				return nil, err
			}
			if r.name == "min" {
				s.Min(f)
			} else {
				s.Max(f)
			}
		case "between":
			lo, hi, err := pairArg(r)
			if err != nil {
				return nil, err
			}
			s.Between(lo, hi)
		case "positive":
			s.Positive()
		case "negative":
			s.Negative()
		case "int":
			s.Int()
		case "float":
			s.Float()
		case "finite":
			s.Finite()
		case "cel":
			if err := applyCEL(r, s.Refine); err != nil {
				return nil, err
			}
		default:
			return nil, notApplicable(r, "number")
		}
	}
	return s, nil
}

func buildArray(def *Definition, rs []rule, opts []g.Option, at string) (skema.AnyType, error) {
	if def.Items == nil {
		return nil, fmt.Errorf("array without items")
	}
	elem, err := build(def.Items, at+"/items")
	if err != nil {
		return nil, err
	}
	s := g.Array[any](skema.Erase(elem), opts...)
	if def.Nullable {
		s.Nullable()
	}
	for _, r := range rs {
		switch r.name {
		case "min", "max", "length":
			n, err := intArg(r)
			if err != nil {
				return nil, err
			}
			switch r.name {
			case "min":
				s.Min(n)
			case "max":
				s.Max(n)
			default:
				s.Length(n)
			}
		case "noEmpty":
			s.NoEmpty()
		case "unique":
			var key string
			if r.arg != nil {
				k, err := stringArg(r)
				if err != nil {
					return nil, err
				}
				key = k
			}
			s.Refine(customKey(r, "unique"), rules.UniqueBy("/", key), r.message)
		case "cel":
			if err := applyCEL(r, s.Refine); err != nil {
				return nil, err
			}
		default:
			return nil, notApplicable(r, "array")
		}
	}
	return s, nil
}

func buildObject(def *Definition, rs []rule, opts []g.Option, at string) (skema.AnyType, error) {
	shape := make(skema.Shape, len(def.Properties))
	names := make([]string, 0, len(def.Properties))
	for k := range def.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		t, err := build(def.Properties[k], at+"/properties/"+k)
		if err != nil {
			return nil, err
		}
		shape[k] = t
	}
	for out := range def.Rename {
		if _, ok := shape[out]; !ok {
			return nil, fmt.Errorf("rename: %q is not a property", out)
		}
	}
	s := g.Object(shape, skema.Remap(def.Rename), opts...)
	if def.Nullable {
		s.Nullable()
	}
	for _, r := range rs {
		switch r.name {
		case "required":
			keys, err := stringsArg(r)
			if err != nil {
				return nil, err
			}
			s.Required(keys...)
		case "cel":
			if err := applyCEL(r, s.Refine); err != nil {
				return nil, err
			}
		default:
			return nil, notApplicable(r, "object")
		}
	}
	return s, nil
}

func onlyCustom[S any](rs []rule, kind string, refine func(string, constraint.Predicate, string) S) error {
	for _, r := range rs {
		if r.name != "cel" {
			return notApplicable(r, kind)
		}
		if err := applyCEL(r, refine); err != nil {
			return err
		}
	}
	return nil
}

func applyCEL[S any](r rule, refine func(string, constraint.Predicate, string) S) error {
	expr, err := stringArg(r)
	if err != nil {
		return err
	}
	p, err := rules.CEL(expr)
	if err != nil {
		return err
	}
	refine(customKey(r, "cel:"+expr), p, r.message)
	return nil
}

func customKey(r rule, fallback string) string {
	if r.key != "" {
		return r.key
	}
	return fallback
}

func notApplicable(r rule, kind string) error {
	return fmt.Errorf("rule %q does not apply to %s", r.name, kind)
}

// ---- rule decoding ----

func parseRules(raw any) ([]rule, error) {
	switch x := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]rule, 0, len(x))
		for i, e := range x {
			r, err := parseRule(e)
			if err != nil {
				return nil, fmt.Errorf("rules[%d]: %w", i, err)
			}
			out = append(out, r)
		}
		return out, nil
	case map[string]any:
		// A mapping has no order of its own; apply rules by name.
		names := make([]string, 0, len(x))
		for k := range x {
			names = append(names, k)
		}
		sort.Strings(names)
		out := make([]rule, 0, len(x))
		for _, k := range names {
			out = append(out, rule{name: k, arg: x[k]})
		}
		return out, nil
	}
	return nil, fmt.Errorf("rules: want a list or a mapping, got %T", raw)
}

func parseRule(e any) (rule, error) {
	switch x := e.(type) {
	case string:
		return rule{name: x}, nil
	case map[string]any:
		var r rule
		for k, v := range x {
			switch k {
			case "message":
				s, ok := v.(string)
				if !ok {
					return r, fmt.Errorf("message must be a string")
				}
				r.message = s
			case "key":
				s, ok := v.(string)
				if !ok {
					return r, fmt.Errorf("key must be a string")
				}
				r.key = s
			default:
				if r.name != "" {
					return r, fmt.Errorf("more than one rule in entry (%s, %s)", r.name, k)
				}
				r.name, r.arg = k, v
			}
		}
		if r.name == "" {
			return r, fmt.Errorf("entry names no rule")
		}
		return r, nil
	}
	return rule{}, fmt.Errorf("want a rule name or mapping, got %T", e)
}

func numberArg(r rule) (float64, error) {
	f, ok := skema.AsNumber(r.arg)
	if !ok {
		return 0, fmt.Errorf("%s: want a number, got %v", r.name, r.arg)
	}
	return f, nil
}

func intArg(r rule) (int, error) {
	f, err := numberArg(r)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 0 {
		return 0, fmt.Errorf("%s: want a non-negative integer, got %v", r.name, r.arg)
	}
	return int(f), nil
}

func stringArg(r rule) (string, error) {
	s, ok := r.arg.(string)
	if !ok {
		return "", fmt.Errorf("%s: want a string, got %v", r.name, r.arg)
	}
	return s, nil
}

func stringsArg(r rule) ([]string, error) {
	switch x := r.arg.(type) {
	case string:
		return []string{x}, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%s: want strings, got %v", r.name, e)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: want a list of strings, got %v", r.name, r.arg)
}

func pairArg(r rule) (float64, float64, error) {
	list, ok := r.arg.([]any)
	if !ok || len(list) != 2 {
		return 0, 0, fmt.Errorf("%s: want [low, high]", r.name)
	}
	lo, err := numberArg(rule{name: r.name, arg: list[0]})
	if err != nil {
		return 0, 0, err
	}
	hi, err := numberArg(rule{name: r.name, arg: list[1]})
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}
