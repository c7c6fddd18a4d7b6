// Package openapi imports JSON Schema / OpenAPI v3 schemas, including
// Kubernetes CRD documents, as skema Types.
//
// The schema is first translated into a schemafile.Definition, so anything
// the importer produces can also be written as a schema document. Keywords
// without a skema counterpart are reported through Diag.
package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/skema"
	"github.com/reoring/skema/schemafile"
)

// Import compiles schema into a Type. schema is a decoded map[string]any or
// raw JSON/YAML bytes, holding either a schema, an object with an
// openAPIV3Schema field or a whole CustomResourceDefinition.
func Import(schema any, opts Options) (skema.AnyType, Diag, error) {
	def, d, err := Convert(schema, opts)
	if err != nil {
		return nil, d, err
	}
	t, err := schemafile.Build(def)
	if err != nil {
		return nil, d, fmt.Errorf("openapi: %w", err)
	}
	return t, d, nil
}

// Convert translates schema into a schema document definition without
// building it.
func Convert(schema any, opts Options) (*schemafile.Definition, Diag, error) {
	d := &simpleDiag{}
	if schema == nil {
		return nil, d, errors.New("openapi: nil schema")
	}
	var root map[string]any
	switch t := schema.(type) {
	case []byte:
		var v any
		if err := yaml.Unmarshal(t, &v); err != nil {
			return nil, d, fmt.Errorf("openapi: invalid document: %w", err)
		}
		root = toStringMap(v)
		if root == nil {
			return nil, d, errors.New("openapi: document is not a mapping")
		}
	case map[string]any:
		root = t
	default:
		return nil, d, fmt.Errorf("openapi: unsupported input %T", schema)
	}

	if spec, ok := root["openAPIV3Schema"].(map[string]any); ok {
		root = spec
	} else if unwrapped := unwrapCRDSchema(root); unwrapped != nil {
		root = unwrapped
	}

	c := &converter{opts: opts, diag: d, defs: collectDefs(root), stack: map[string]bool{}}
	def, err := c.convert(root, "")
	if err != nil {
		return nil, d, fmt.Errorf("openapi: %w", err)
	}
	if opts.Strict && d.HasWarnings() {
		return nil, d, fmt.Errorf("openapi: strict import: %s", strings.Join(d.Warnings(), "; "))
	}
	return def, d, nil
}

// unwrapCRDSchema extracts openAPIV3Schema from a CustomResourceDefinition.
// It prefers the first served version under spec.versions and falls back to
// the legacy spec.validation.
func unwrapCRDSchema(root map[string]any) map[string]any {
	spec, ok := root["spec"].(map[string]any)
	if !ok {
		return nil
	}
	if vers, ok := spec["versions"].([]any); ok {
		var first map[string]any
		for _, v := range vers {
			vm, _ := v.(map[string]any)
			sch, _ := vm["schema"].(map[string]any)
			oas, _ := sch["openAPIV3Schema"].(map[string]any)
			if oas == nil {
				continue
			}
			served := true
			if sv, ok := vm["served"].(bool); ok {
				served = sv
			}
			if served {
				return oas
			}
			if first == nil {
				first = oas
			}
		}
		if first != nil {
			return first
		}
	}
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	return nil
}

type converter struct {
	opts  Options
	diag  *simpleDiag
	defs  map[string]any
	stack map[string]bool // refs being expanded on the current path
}

// ignored keywords carry no validation in skema.
var ignored = map[string]bool{
	"$schema": true, "$id": true, "$defs": true, "definitions": true, "components": true,
	"title": true, "example": true, "examples": true, "default": true, "deprecated": true,
	"readOnly": true, "writeOnly": true, "externalDocs": true, "xml": true, "discriminator": true,
	"x-kubernetes-list-map-keys": true, "x-kubernetes-map-type": true,
}

func (c *converter) convert(s map[string]any, at string) (*schemafile.Definition, error) {
	if s == nil {
		return nil, fmt.Errorf("%s: schema is not a mapping", where(at))
	}
	if _, ok := s["$ref"]; ok {
		resolved, ref, err := resolveRef(s, c.defs, map[string]bool{})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", where(at), err)
		}
		if c.stack[ref] {
			return nil, fmt.Errorf("%s: recursive schema through %s", where(at), ref)
		}
		c.stack[ref] = true
		defer delete(c.stack, ref)
		s = resolved
	}

	typ, nullable := schemaType(s)
	def := &schemafile.Definition{Type: typ, Nullable: nullable}
	def.Description, _ = s["description"].(string)
	if n, ok := s["nullable"].(bool); ok && n {
		def.Nullable = true
	}
	if b, _ := s["x-kubernetes-int-or-string"].(bool); b {
		c.diag.warnf(at, "int-or-string imported as a coerced string")
		def.Type, def.Coerce = "string", true
	}

	var rules ruleList
	add := rules.add
	handled := map[string]bool{
		"type": true, "description": true, "nullable": true, "x-kubernetes-int-or-string": true,
	}
	use := func(keys ...string) {
		for _, k := range keys {
			handled[k] = true
		}
	}

	switch def.Type {
	case "string":
		use("minLength", "maxLength", "pattern", "format")
		if v, ok := s["minLength"]; ok {
			add("minLength", v)
		}
		if v, ok := s["maxLength"]; ok {
			add("maxLength", v)
		}
		if v, ok := s["pattern"].(string); ok {
			add("pattern", v)
		}
		if f, ok := s["format"].(string); ok {
			switch f {
			case "email", "uuid", "cuid":
				add("format", f)
			case "date-time":
				add("format", map[string]any{"datetime": map[string]any{"offset": true}})
			default:
				c.diag.warnf(at, "format %q is not checked", f)
			}
		}
	case "number", "integer":
		use("minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf", "format")
		if def.Type == "integer" {
			def.Type = "number"
			rules.flag("int")
		}
		if v, ok := s["minimum"]; ok {
			if ex, _ := s["exclusiveMinimum"].(bool); ex {
				c.exclusive(at, v, ">", &rules)
			} else {
				add("min", v)
			}
		}
		if v, ok := s["maximum"]; ok {
			if ex, _ := s["exclusiveMaximum"].(bool); ex {
				c.exclusive(at, v, "<", &rules)
			} else {
				add("max", v)
			}
		}
		// JSON Schema 2019+ numeric form
		if v, ok := s["exclusiveMinimum"]; ok {
			if _, isBool := v.(bool); !isBool {
				c.exclusive(at, v, ">", &rules)
			}
		}
		if v, ok := s["exclusiveMaximum"]; ok {
			if _, isBool := v.(bool); !isBool {
				c.exclusive(at, v, "<", &rules)
			}
		}
		if v, ok := s["multipleOf"]; ok {
			c.celRule(at, "multipleOf", fmt.Sprintf("double(value) / double(%s) == double(int(double(value) / double(%s)))", numLit(v), numLit(v)), "must be a multiple of "+numLit(v), &rules)
		}
	case "boolean":
	case "array":
		use("items", "minItems", "maxItems", "uniqueItems", "x-kubernetes-list-type")
		items, ok := s["items"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: array without a single items schema", where(at))
		}
		elem, err := c.convert(items, at+"/items")
		if err != nil {
			return nil, err
		}
		def.Items = elem
		if v, ok := s["minItems"]; ok {
			add("min", v)
		}
		if v, ok := s["maxItems"]; ok {
			add("max", v)
		}
		c.listType(s, at, &rules)
	case "object":
		use("properties", "required", "additionalProperties", "x-kubernetes-preserve-unknown-fields", "x-kubernetes-embedded-resource")
		if props, ok := s["properties"].(map[string]any); ok {
			def.Properties = make(map[string]*schemafile.Definition, len(props))
			for _, name := range sortedKeys(props) {
				ps, _ := props[name].(map[string]any)
				pd, err := c.convert(ps, at+"/properties/"+name)
				if err != nil {
					return nil, err
				}
				def.Properties[name] = pd
			}
		}
		if req, ok := s["required"].([]any); ok && len(req) > 0 {
			add("required", req)
		}
		if ap, ok := s["additionalProperties"]; ok && ap != false {
			c.diag.warnf(at, "additionalProperties: undeclared keys are dropped")
		}
		if b, _ := s["x-kubernetes-preserve-unknown-fields"].(bool); b {
			c.diag.warnf(at, "x-kubernetes-preserve-unknown-fields: undeclared keys are dropped")
		}
		if b, _ := s["x-kubernetes-embedded-resource"].(bool); b {
			c.diag.warnf(at, "x-kubernetes-embedded-resource is not checked")
		}
	case "":
		return nil, fmt.Errorf("%s: schema without a type", where(at))
	default:
		return nil, fmt.Errorf("%s: unsupported type %q", where(at), def.Type)
	}

	use("enum", "const", "x-kubernetes-validations", "$ref")
	if v, ok := s["enum"].([]any); ok {
		c.celRule(at, "enum", "value in "+listLit(v), "must be one of "+listLit(v), &rules)
	}
	if v, ok := s["const"]; ok {
		c.celRule(at, "const", "value == "+lit(v), "must equal "+lit(v), &rules)
	}
	if vs, ok := s["x-kubernetes-validations"].([]any); ok {
		for i, raw := range vs {
			vm, _ := raw.(map[string]any)
			expr, _ := vm["rule"].(string)
			if expr == "" {
				c.diag.warnf(at, "x-kubernetes-validations[%d] without rule", i)
				continue
			}
			msg, _ := vm["message"].(string)
			c.celRule(at, "x-kubernetes-validations", expr, msg, &rules)
		}
	}

	for _, k := range sortedKeys(s) {
		if !handled[k] && !ignored[k] {
			c.diag.warnf(at, "keyword %q is not supported", k)
		}
	}
	if len(rules) > 0 {
		def.Rules = []any(rules)
	}
	return def, nil
}

func (c *converter) exclusive(at string, v any, op string, rs *ruleList) {
	if f, ok := skema.AsNumber(v); ok && f == 0 && op == ">" {
		rs.flag("positive")
		return
	}
	c.celRule(at, "exclusive bound", "value "+op+" "+numLit(v), "must be "+op+" "+numLit(v), rs)
}

func (c *converter) celRule(at, keyword, expr, message string, rs *ruleList) {
	if !c.opts.EnableCEL {
		c.diag.warnf(at, "%s needs CEL (EnableCEL is off)", keyword)
		return
	}
	e := map[string]any{"cel": expr}
	if message != "" {
		e["message"] = message
	}
	*rs = append(*rs, e)
}

// ruleList accumulates schemafile rule entries in document order.
type ruleList []any

func (r *ruleList) add(name string, arg any) { *r = append(*r, map[string]any{name: arg}) }
func (r *ruleList) flag(name string)         { *r = append(*r, name) }

// listType maps uniqueItems and x-kubernetes-list-type onto the unique rule.
func (c *converter) listType(s map[string]any, at string, rs *ruleList) {
	lt, _ := s["x-kubernetes-list-type"].(string)
	switch {
	case lt == "set" || s["uniqueItems"] == true:
		rs.add("unique", "")
	case lt == "map":
		keys, _ := s["x-kubernetes-list-map-keys"].([]any)
		if len(keys) == 0 {
			c.diag.warnf(at, "list-type map without list-map-keys")
			return
		}
		if len(keys) > 1 {
			c.diag.warnf(at, "list-map-keys: only %v is checked", keys[0])
		}
		k, _ := keys[0].(string)
		rs.add("unique", k)
	}
}

// schemaType reads "type", accepting the ["T", "null"] form. A schema with
// properties and no type is an object.
func schemaType(s map[string]any) (string, bool) {
	switch t := s["type"].(type) {
	case string:
		return t, false
	case []any:
		var typ string
		nullable := false
		for _, e := range t {
			if e == "null" {
				nullable = true
				continue
			}
			if str, ok := e.(string); ok && typ == "" {
				typ = str
			}
		}
		return typ, nullable
	}
	if _, ok := s["properties"]; ok {
		return "object", false
	}
	if _, ok := s["items"]; ok {
		return "array", false
	}
	return "", false
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func where(at string) string {
	if at == "" {
		return "/"
	}
	return at
}

// lit renders a decoded JSON value as a CEL literal.
func lit(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		return listLit(x)
	}
	if _, ok := skema.AsNumber(v); ok {
		return numLit(v)
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func listLit(vs []any) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = lit(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// numLit renders numbers as CEL doubles so comparisons never mix int and
// uint operands.
func numLit(v any) string {
	f, _ := skema.AsNumber(v)
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func toStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	}
	return nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return toStringMap(t)
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	}
	return v
}
