// Package rules builds predicates for constraint.Refine: path conditionals
// over parsed objects, collection checks, boolean combinators and CEL
// expressions.
package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/skema"
	"github.com/reoring/skema/constraint"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional selects when rules attached with Then apply.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If compares the value at a JSON Pointer (output keys, "/status") against
// want. Numbers compare by value regardless of Go kind.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against v. A missing path never holds.
func (c Conditional) Holds(v any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(v) {
				return true
			}
		}
		return false
	}
	cur, ok := ValueAt(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then returns a predicate that passes when the condition does not hold,
// and otherwise requires every predicate to pass.
func (c Conditional) Then(preds ...constraint.Predicate) constraint.Predicate {
	all := And(preds...)
	return func(v any) bool {
		if !c.Holds(v) {
			return true
		}
		return all(v)
	}
}

// Present requires the JSON Pointer path to resolve.
func Present(path string) constraint.Predicate {
	p := normalizePath(path)
	return func(v any) bool {
		_, ok := ValueAt(v, p)
		return ok
	}
}

// AtLeastOne requires the collection at path to be non-empty. A missing path
// or a non-collection passes.
func AtLeastOne(path string) constraint.Predicate {
	p := normalizePath(path)
	return func(v any) bool {
		val, ok := ValueAt(v, p)
		if !ok {
			return true
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return rv.Len() > 0
		}
		return true
	}
}

// UniqueBy requires elements of the collection at collectionPath to have
// distinct values at keyPath (relative to each element). Keys compare by
// their fmt.Sprint form.
func UniqueBy(collectionPath, keyPath string) constraint.Predicate {
	cp := normalizePath(collectionPath)
	kp := strings.TrimPrefix(keyPath, "/")
	return func(v any) bool {
		val, ok := ValueAt(v, cp)
		if !ok {
			return true
		}
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return true
		}
		seen := map[string]struct{}{}
		for i := 0; i < rv.Len(); i++ {
			kv, ok := valueAtPathWithin(rv.Index(i).Interface(), kp)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			if _, dup := seen[key]; dup {
				return false
			}
			seen[key] = struct{}{}
		}
		return true
	}
}

// ---------- combinators ----------

// And passes when every predicate passes. nil entries are ignored.
func And(preds ...constraint.Predicate) constraint.Predicate {
	return func(v any) bool {
		for _, p := range preds {
			if p != nil && !p(v) {
				return false
			}
		}
		return true
	}
}

// Or passes when any predicate passes. With no non-nil predicate it passes.
func Or(preds ...constraint.Predicate) constraint.Predicate {
	return func(v any) bool {
		seen := false
		for _, p := range preds {
			if p == nil {
				continue
			}
			seen = true
			if p(v) {
				return true
			}
		}
		return !seen
	}
}

// Not negates p.
func Not(p constraint.Predicate) constraint.Predicate {
	return func(v any) bool { return !p(v) }
}

// ------- helpers -------

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

// ValueAt navigates maps, structs (by skema.ResolveStructKey) and slices by
// JSON Pointer. "/" is v itself.
func ValueAt(v any, pointer string) (any, bool) {
	return valueAtPathWithin(v, strings.TrimPrefix(pointer, "/"))
}

func valueAtPathWithin(v any, rel string) (any, bool) {
	if rel == "" {
		return v, true
	}
	cur := reflect.ValueOf(v)
	for _, seg := range strings.Split(rel, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		for cur.IsValid() && (cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Struct:
			found := false
			rt := cur.Type()
			for i := 0; i < rt.NumField(); i++ {
				sf := rt.Field(i)
				if sf.IsExported() && skema.ResolveStructKey(sf) == seg {
					cur = cur.Field(i)
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	for cur.Kind() == reflect.Interface && !cur.IsNil() {
		cur = cur.Elem()
	}
	if cur.Kind() == reflect.Pointer && !cur.IsNil() {
		cur = cur.Elem()
	}
	if !cur.IsValid() || ((cur.Kind() == reflect.Interface || cur.Kind() == reflect.Pointer) && cur.IsNil()) {
		return nil, true
	}
	return cur.Interface(), true
}

func compare(cur any, op Op, want any) bool {
	a, aNum := skema.AsNumber(cur)
	b, bNum := skema.AsNumber(want)
	if aNum && bNum {
		switch op {
		case Eq:
			return a == b
		case Ne:
			return a != b
		case Lt:
			return a < b
		case Le:
			return a <= b
		case Gt:
			return a > b
		case Ge:
			return a >= b
		}
		return false
	}
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	}
	as, aStr := skema.AsString(cur)
	bs, bStr := skema.AsString(want)
	if !aStr || !bStr {
		return false
	}
	switch op {
	case Lt:
		return as < bs
	case Le:
		return as <= bs
	case Gt:
		return as > bs
	case Ge:
		return as >= bs
	}
	return false
}
