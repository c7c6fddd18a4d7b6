package skema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"time"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the sentinel for "no value at all", as opposed to nil which
// stands for an explicit null. Object parsing never produces it; it exists so
// callers (and IsOptional) can probe how a Type treats a missing value.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Symbol is a unique, comparable token with an optional description. Two
// symbols created by separate NewSymbol calls never compare equal, even with
// the same description.
type Symbol struct{ *symbol }

type symbol struct{ desc string }

// NewSymbol creates a fresh Symbol.
func NewSymbol(description string) Symbol { return Symbol{&symbol{desc: description}} }

// Description returns the text the symbol was created with.
func (s Symbol) Description() string {
	if s.symbol == nil {
		return ""
	}
	return s.desc
}

func (s Symbol) String() string { return "Symbol(" + s.Description() + ")" }

// DateLike is implemented by values that carry a point in time without being a
// time.Time themselves.
type DateLike interface {
	Time() time.Time
}

// IsDate reports whether v is a time.Time, a non-nil *time.Time or a DateLike.
func IsDate(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case *time.Time:
		return t != nil
	case DateLike:
		return !isNilPointer(v)
	}
	return false
}

// AsTime extracts the time carried by a date value.
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case DateLike:
		if isNilPointer(v) {
			return time.Time{}, false
		}
		return t.Time(), true
	}
	return time.Time{}, false
}

// AsString returns the text of v when v is a string or has string kind.
func AsString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// AsNumber widens any Go numeric kind or json.Number to float64. A
// json.Number outside the float64 range widens to ±Inf.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		return jsonNumber(n)
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func jsonNumber(n json.Number) (float64, bool) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// AsBool returns the value of v when v has bool kind.
func AsBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

// TypeOf names the category of v the way error messages refer to it:
// "undefined", "null", "string", "number", "boolean", "symbol", "date",
// "array", "object" or "function".
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case Symbol:
		return "symbol"
	case json.Number:
		if _, ok := jsonNumber(v.(json.Number)); !ok {
			return "string"
		}
		return "number"
	}
	if IsDate(v) {
		return "date"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Func:
		return "function"
	case reflect.Pointer, reflect.Interface, reflect.Map:
		if rv.IsNil() {
			return "null"
		}
		return "object"
	default:
		return "object"
	}
}

// IsObject reports whether v is a non-nil, non-primitive value (maps,
// structs, slices, dates and non-nil pointers all qualify).
func IsObject(v any) bool {
	switch TypeOf(v) {
	case "object", "array", "date":
		return true
	}
	return false
}

// IsArray reports whether v is a slice or array.
func IsArray(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
