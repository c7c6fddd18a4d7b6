package openapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/skema"
)

// DuplicateKeyError reports a mapping key that occurs twice, with both
// positions.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// DocumentReader decodes a multi-document YAML stream into JSON-like values
// (map[string]any, []any, scalars), rejecting duplicate keys.
type DocumentReader struct {
	dec *yaml.Decoder
}

// NewDocumentReader reads documents from r.
func NewDocumentReader(r io.Reader) *DocumentReader {
	return &DocumentReader{dec: yaml.NewDecoder(r)}
}

// Next returns the next document, or io.EOF when the stream is exhausted.
func (s *DocumentReader) Next() (any, error) {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		return nil, err
	}
	return nodeValue(&root)
}

// ImportYAMLForCRDKind imports the CustomResourceDefinition whose
// spec.names.kind is kind from a multi-document YAML bundle.
func ImportYAMLForCRDKind(data []byte, kind string, opts Options) (skema.AnyType, Diag, error) {
	return importCRD(data, opts, "kind "+kind, func(m map[string]any) bool {
		spec, _ := m["spec"].(map[string]any)
		names, _ := spec["names"].(map[string]any)
		k, _ := names["kind"].(string)
		return k == kind
	})
}

// ImportYAMLForCRDName imports the CustomResourceDefinition with the given
// metadata.name from a multi-document YAML bundle.
func ImportYAMLForCRDName(data []byte, name string, opts Options) (skema.AnyType, Diag, error) {
	return importCRD(data, opts, "name "+name, func(m map[string]any) bool {
		meta, _ := m["metadata"].(map[string]any)
		n, _ := meta["name"].(string)
		return n == name
	})
}

func importCRD(data []byte, opts Options, what string, match func(map[string]any) bool) (skema.AnyType, Diag, error) {
	r := NewDocumentReader(bytes.NewReader(data))
	for {
		doc, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &simpleDiag{}, fmt.Errorf("openapi: %w", err)
		}
		m, ok := doc.(map[string]any)
		if !ok {
			continue
		}
		if k, _ := m["kind"].(string); k != "CustomResourceDefinition" {
			continue
		}
		if match(m) {
			return Import(m, opts)
		}
	}
	return nil, &simpleDiag{}, fmt.Errorf("openapi: no CustomResourceDefinition with %s", what)
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if pos, dup := first[k.Value]; dup {
				return nil, &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
			val, err := nodeValue(v)
			if err != nil {
				return nil, err
			}
			m[k.Value] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			if b, err := strconv.ParseBool(n.Value); err == nil {
				return b, nil
			}
		case "!!int":
			if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
				return i, nil
			}
		case "!!float":
			if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
				return f, nil
			}
		}
		return n.Value, nil
	}
	return nil, nil
}
