package skema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Source produces the untyped value a Type validates.
type Source interface {
	Decode() (any, error)
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func (f format) String() string {
	if f == formatYAML {
		return "yaml"
	}
	return "json"
}

// docSource is the Source returned by the constructors below. Exactly one of
// data and r is set.
type docSource struct {
	format format
	data   []byte
	r      io.Reader
}

// JSONBytes wraps a JSON document. Numbers decode as json.Number so that
// integers keep their text.
func JSONBytes(b []byte) Source { return &docSource{format: formatJSON, data: b} }

// JSONReader wraps a reader holding one JSON document.
func JSONReader(r io.Reader) Source { return &docSource{format: formatJSON, r: r} }

// YAMLBytes wraps a YAML document. Only the first document is read; mapping
// keys are stringified.
func YAMLBytes(b []byte) Source { return &docSource{format: formatYAML, data: b} }

// YAMLReader wraps a reader holding a YAML document.
func YAMLReader(r io.Reader) Source { return &docSource{format: formatYAML, r: r} }

func (s *docSource) Decode() (any, error) { return s.decode(ParseOpt{}) }

// decode reads the document, failing with CodeTruncated when it is larger
// than opt.MaxBytes (0 = unlimited).
func (s *docSource) decode(opt ParseOpt) (any, error) {
	maxBytes := opt.MaxBytes
	data := s.data
	if s.r != nil {
		rd := s.r
		if maxBytes > 0 {
			rd = io.LimitReader(rd, maxBytes+1)
		}
		b, err := io.ReadAll(rd)
		if err != nil {
			return nil, singleIssue(CodeParseError, err.Error())
		}
		data = b
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, Issues{{
			Code:    CodeTruncated,
			Message: "input exceeds " + strconv.FormatInt(maxBytes, 10) + " bytes",
			Params:  map[string]any{"maxBytes": maxBytes},
		}}
	}
	switch s.format {
	case formatYAML:
		return decodeYAML(data)
	default:
		if opt.RejectDuplicateKeys {
			if iss := DetectJSONDuplicateKeys(data); len(iss) > 0 {
				return nil, iss
			}
		}
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, singleIssue(CodeParseError, "invalid json: "+err.Error())
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, singleIssue(CodeParseError, "invalid json: unexpected data after top-level value")
	}
	return normalize(v), nil
}

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, singleIssue(CodeParseError, "invalid yaml: "+err.Error())
	}
	return normalize(v), nil
}

type numberText interface {
	String() string
	Float64() (float64, error)
}

// normalize rewrites decoded documents into the shapes the constraints
// understand: map[string]any for every mapping and encoding/json.Number for
// textual numbers.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	case json.Number:
		return x
	case numberText:
		return json.Number(x.String())
	}
	return v
}
