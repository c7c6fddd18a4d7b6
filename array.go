package skema

import (
	"context"
	"reflect"

	js "github.com/reoring/skema/jsonschema"
)

// NewArray builds a Type for slices whose elements parse through elem.
// Element failures are not aggregated: the first invalid element aborts the
// whole parse with its issues rebased under "/<index>". Inputs that are not
// slices pass through untouched so the constraint reports the mismatch.
func NewArray[E any](elem *Type[E], def Def) *Type[[]E] {
	parse := func(ctx context.Context, v any) (any, error) {
		if !IsArray(v) {
			return v, nil
		}
		if src, ok := v.([]E); ok {
			return parseElems(ctx, elem, len(src), func(i int) any { return src[i] })
		}
		rv := reflect.ValueOf(v)
		return parseElems(ctx, elem, rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	}
	schema := func(s *js.Schema) error {
		es, err := elem.JSONSchema()
		if err != nil {
			return err
		}
		s.Items = es
		return nil
	}
	// Coercion is a primitive-only concept.
	def.Coerce = nil
	return newType[[]E](def, parse, schema)
}

func parseElems[E any](ctx context.Context, elem *Type[E], n int, at func(int) any) (any, error) {
	cctx, err := descend(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]E, 0, n)
	for i := 0; i < n; i++ {
		ev, err := elem.Parse(cctx, at(i))
		if err != nil {
			return nil, RebaseIssues(indexPointer(i), toIssues(err))
		}
		res = append(res, ev)
	}
	return res, nil
}
