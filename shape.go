package skema

import (
	"context"
	"sort"

	js "github.com/reoring/skema/jsonschema"
)

// Shape maps an output property name to the Type that parses it.
type Shape map[string]AnyType

// Remap renames input keys: Remap{"birthdate": "birth_date"} reads the
// "birth_date" input key into the "birthdate" output key. Keys without an
// entry are read under their own name.
type Remap map[string]string

// Property is one resolved entry of a property map.
type Property struct {
	InputKey  string
	Type      AnyType
	OutputKey string
}

// PropertyMap resolves a shape and remap table into properties ordered by
// output key. It is cheap and recomputed on every object parse.
func PropertyMap(shape Shape, remap Remap) []Property {
	keys := make([]string, 0, len(shape))
	for k := range shape {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([]Property, 0, len(keys))
	for _, k := range keys {
		in := k
		if r, ok := remap[k]; ok && r != "" {
			in = r
		}
		props = append(props, Property{InputKey: in, Type: shape[k], OutputKey: k})
	}
	return props
}

// NewObject builds a Type producing map[string]any from shape. Only declared
// properties present in the input are copied; declared properties absent
// from the input are skipped without error. The first property that fails to
// parse aborts the object with issues rebased under "/<outputKey>".
// Inputs that are not objects pass through so the constraint reports them.
func NewObject(shape Shape, remap Remap, def Def) *Type[map[string]any] {
	parse := func(ctx context.Context, v any) (any, error) {
		if !IsObject(v) {
			return v, nil
		}
		cctx, err := descend(ctx)
		if err != nil {
			return nil, err
		}
		props := PropertyMap(shape, remap)
		out := make(map[string]any, len(props))
		for _, p := range props {
			raw, exists := lookupKey(v, p.InputKey)
			if !exists {
				continue
			}
			pv, err := p.Type.ParseAny(cctx, raw)
			if err != nil {
				return nil, RebaseIssues(keyPointer(p.OutputKey), toIssues(err))
			}
			out[p.OutputKey] = pv
		}
		return out, nil
	}
	schema := func(s *js.Schema) error {
		if len(shape) == 0 {
			return nil
		}
		s.Properties = make(map[string]*js.Schema, len(shape))
		for k, t := range shape {
			ps, err := t.JSONSchema()
			if err != nil {
				return err
			}
			s.Properties[k] = ps
		}
		return nil
	}
	def.Coerce = nil
	return newType[map[string]any](def, parse, schema)
}
