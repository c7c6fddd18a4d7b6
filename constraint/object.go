package constraint

import (
	"reflect"
	"strings"

	"github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
	js "github.com/reoring/skema/jsonschema"
)

// Object validates non-primitive values: maps, structs, pointers, slices
// and dates all pass the type check.
type Object struct {
	fluent[*Object]
	required []string
}

// NewObject returns an empty object constraint.
func NewObject() *Object {
	o := &Object{}
	o.fluent = fluent[*Object]{Base: newBase(Matching("object", skema.IsObject), "object"), self: o}
	return o
}

// Required lists keys that must be present. One message names every missing
// key. Calling Required again replaces the list.
func (o *Object) Required(keys ...string) *Object {
	keys = append([]string(nil), keys...)
	o.required = keys
	o.Set("required", &Rule{
		Predicate: func(v any) bool { return len(missingKeys(v, keys)) == 0 },
		Message:   i18n.T(i18n.MsgObjectRequired, map[string]string{"keys": strings.Join(keys, ", ")}),
		Code:      skema.CodeRequired,
		Params:    map[string]any{"keys": keys},
		Annotate:  func(s *js.Schema) { s.Required = append([]string(nil), keys...) },
	})
	return o
}

// Check reports the required rule with the keys actually missing rather
// than the full list.
func (o *Object) Check(v any) skema.Issues {
	iss := o.Base.Check(v)
	for i := range iss {
		if iss[i].Rule != "required" {
			continue
		}
		miss := missingKeys(v, o.required)
		iss[i].Message = i18n.T(i18n.MsgObjectRequired, map[string]string{"keys": strings.Join(miss, ", ")})
		iss[i].Params = map[string]any{"keys": miss}
	}
	return iss
}

// Apply evaluates v through Check and records the outcome.
func (o *Object) Apply(v any) *Object {
	iss := o.Check(v)
	o.lastMu.Lock()
	o.last = iss
	o.lastMu.Unlock()
	return o
}

func missingKeys(v any, keys []string) []string {
	var miss []string
	for _, k := range keys {
		if !hasKey(v, k) {
			miss = append(miss, k)
		}
	}
	return miss
}

func hasKey(v any, key string) bool {
	if m, ok := v.(map[string]any); ok {
		_, exists := m[key]
		return exists
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		return rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).IsValid()
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			if sf := rt.Field(i); sf.IsExported() && skema.ResolveStructKey(sf) == key {
				return true
			}
		}
	}
	return false
}
