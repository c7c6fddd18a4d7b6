// Package codec holds the coercion casts applied by Types built with the
// Coerce option. Each cast takes a raw value and returns the value to
// validate; a cast never fails on its own, the constraint that follows does.
package codec

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/skema"
)

// String casts v to its textual form: nil is "null", Undefined is
// "undefined", numbers use the shortest round-trip form, slices are joined
// with commas and maps render as "[object Object]".
func String(v any) any {
	return toString(v)
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case skema.Symbol:
		return x.String()
	case fmt.Stringer:
		if !skema.IsDate(v) {
			return x.String()
		}
	}
	if skema.IsUndefined(v) {
		return "undefined"
	}
	if t, ok := skema.AsTime(v); ok {
		return FormatTime(t)
	}
	if s, ok := skema.AsString(v); ok {
		return s
	}
	if b, ok := skema.AsBool(v); ok {
		return strconv.FormatBool(b)
	}
	if f, ok := skema.AsNumber(v); ok {
		return formatFloat(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			ev := rv.Index(i).Interface()
			if ev == nil || skema.IsUndefined(ev) {
				continue
			}
			parts[i] = toString(ev)
		}
		return strings.Join(parts, ",")
	case reflect.Map, reflect.Struct, reflect.Pointer:
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "null"
		}
		return "[object Object]"
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if a := math.Abs(f); a != 0 && (a >= 1e21 || a < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Number casts v to float64: nil and "" give 0, Undefined gives NaN,
// booleans give 0 or 1, dates give Unix milliseconds and strings are parsed
// after trimming (decimal, exponent, "Infinity" and 0x/0o/0b integers).
// Unparseable input gives NaN.
func Number(v any) any {
	return toNumber(v)
}

func toNumber(v any) float64 {
	if v == nil {
		return 0
	}
	if skema.IsUndefined(v) {
		return math.NaN()
	}
	if f, ok := skema.AsNumber(v); ok {
		return f
	}
	if b, ok := skema.AsBool(v); ok {
		if b {
			return 1
		}
		return 0
	}
	if t, ok := skema.AsTime(v); ok {
		return float64(t.UnixMilli())
	}
	if s, ok := skema.AsString(v); ok {
		return parseNumber(s)
	}
	if skema.IsArray(v) {
		return parseNumber(toString(v))
	}
	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	if len(lower) > 2 && lower[0] == '0' && strings.ContainsRune("xob", rune(lower[1])) {
		n, err := strconv.ParseUint(lower[2:], map[byte]int{'x': 16, 'o': 8, 'b': 2}[lower[1]], 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// Bool casts v by truthiness: nil, Undefined, false, 0, NaN, "" and nil
// pointers are false, everything else is true.
func Bool(v any) any {
	if v == nil || skema.IsUndefined(v) {
		return false
	}
	if b, ok := skema.AsBool(v); ok {
		return b
	}
	if f, ok := skema.AsNumber(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	if s, ok := skema.AsString(v); ok {
		return s != ""
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		if rv.IsNil() {
			return false
		}
	}
	return true
}

// Symbol wraps v in a fresh skema.Symbol described by its string form.
// Symbols pass through unchanged.
func Symbol(v any) any {
	switch x := v.(type) {
	case skema.Symbol:
		return x
	case nil:
		return skema.NewSymbol("null")
	}
	if skema.IsUndefined(v) {
		return skema.NewSymbol("")
	}
	return skema.NewSymbol(toString(v))
}
