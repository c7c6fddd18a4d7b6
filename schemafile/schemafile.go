// Package schemafile builds skema Types from YAML or JSON documents.
//
// A document describes one Type:
//
//	type: object
//	description: user
//	rename: {createdAt: created_at}
//	rules:
//	  - required: [id, email]
//	  - cel: "!has(value.age) || value.age >= 18"
//	    message: adults only
//	properties:
//	  id:    {type: string, rules: [{format: uuid}]}
//	  email: {type: string, rules: [{format: email}]}
//	  age:   {type: number, coerce: true, rules: [int, {min: 0}]}
//	  createdAt: {type: date, coerce: true}
//	  tags:
//	    type: array
//	    items: {type: string}
//	    rules: [noEmpty, {max: 10}]
//
// Rules apply in document order. A rule is a bare name (flag rules), a
// single-key map {name: argument}, or such a map with an extra "message"
// and "key" overriding the message and the registry key of custom rules.
package schemafile

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/reoring/skema"
)

// Definition is the decoded form of a schema document.
type Definition struct {
	Type        string                 `mapstructure:"type"`
	Description string                 `mapstructure:"description"`
	Coerce      bool                   `mapstructure:"coerce"`
	Nullable    bool                   `mapstructure:"nullable"`
	Rules       any                    `mapstructure:"rules"`
	Items       *Definition            `mapstructure:"items"`
	Properties  map[string]*Definition `mapstructure:"properties"`
	// Rename maps output keys to the input keys they are read from.
	Rename map[string]string `mapstructure:"rename"`
}

// Load decodes a YAML (or JSON) document and builds its Type.
func Load(data []byte) (skema.AnyType, error) {
	def, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Build(def)
}

// LoadFile is Load on the contents of path.
func LoadFile(path string) (skema.AnyType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Decode parses a document into a Definition without building it. Unknown
// fields are rejected.
func Decode(data []byte) (*Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("schemafile: empty document")
	}
	return FromMap(raw)
}

// FromMap decodes an already parsed document.
func FromMap(raw map[string]any) (*Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &def,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return &def, nil
}
