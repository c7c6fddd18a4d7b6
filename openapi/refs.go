package openapi

import (
	"fmt"
	"strings"
)

var refPrefixes = []string{"#/$defs/", "#/definitions/", "#/components/schemas/"}

// collectDefs indexes the local definition tables of the document root by
// their full reference ("#/$defs/Name").
func collectDefs(root map[string]any) map[string]any {
	defs := map[string]any{}
	add := func(prefix string, m any) {
		if mm, ok := m.(map[string]any); ok {
			for k, v := range mm {
				defs[prefix+k] = v
			}
		}
	}
	add("#/$defs/", root["$defs"])
	add("#/definitions/", root["definitions"])
	if comps, ok := root["components"].(map[string]any); ok {
		add("#/components/schemas/", comps["schemas"])
	}
	return defs
}

// resolveRef expands a local $ref with a shallow merge; fields set next to
// the $ref win over the referenced schema. The returned name is the
// reference that was expanded ("" when s has no $ref).
func resolveRef(s map[string]any, defs map[string]any, seen map[string]bool) (map[string]any, string, error) {
	ref, ok := s["$ref"].(string)
	if !ok {
		return s, "", nil
	}
	local := false
	for _, p := range refPrefixes {
		if strings.HasPrefix(ref, p) {
			local = true
			break
		}
	}
	if !local {
		return nil, ref, fmt.Errorf("$ref %q not supported (local definitions only)", ref)
	}
	base, ok := defs[ref].(map[string]any)
	if !ok {
		return nil, ref, fmt.Errorf("$ref to unknown definition %s", ref)
	}
	if seen[ref] {
		return nil, ref, fmt.Errorf("cyclic $ref %s", ref)
	}
	seen[ref] = true
	base, _, err := resolveRef(base, defs, seen)
	delete(seen, ref)
	if err != nil {
		return nil, ref, err
	}
	out := make(map[string]any, len(base)+len(s))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range s {
		if k != "$ref" {
			out[k] = v
		}
	}
	return out, ref, nil
}
