package dsl

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/reoring/skema"
)

// BoundSchema parses through an object Type and then decodes the result into
// struct T. Fields are matched by json tag name, then by field name. After
// decoding, `validate` struct tags are enforced.
type BoundSchema[T any] struct {
	obj      *ObjectSchema
	validate *validator.Validate
}

// Bind binds obj to struct type T (or a pointer to one).
func Bind[T any](obj *ObjectSchema) (*BoundSchema[T], error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, skema.Issues{{Path: "/", Code: skema.CodeParseError, Message: "Bind[T] requires struct T"}}
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := skema.ResolveStructKey(sf)
		if name == "-" {
			return ""
		}
		return name
	})
	return &BoundSchema[T]{obj: obj, validate: v}, nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](obj *ObjectSchema) *BoundSchema[T] {
	s, err := Bind[T](obj)
	if err != nil {
		panic(err)
	}
	return s
}

// Object returns the underlying object Type.
func (s *BoundSchema[T]) Object() *ObjectSchema { return s.obj }

// Parse validates v against the object Type, decodes it into T and runs the
// struct validator. Decoding and validator failures are reported as Issues.
func (s *BoundSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	var out T
	m, err := s.obj.Parse(ctx, v)
	if err != nil {
		return out, err
	}
	if err := decode(m, &out); err != nil {
		return out, skema.Issues{{Path: "/", Code: skema.CodeInvalidType, Message: err.Error()}}
	}
	if err := s.ValidateValue(out); err != nil {
		return out, &skema.ParseError{Description: s.obj.Description(), Issues: err.(skema.Issues)}
	}
	return out, nil
}

// ValidateValue runs the `validate` struct tags against an already typed
// value. It returns skema.Issues or nil.
func (s *BoundSchema[T]) ValidateValue(v T) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	err := s.validate.Struct(rv.Interface())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return skema.Issues{{Path: "/", Code: skema.CodeParseError, Message: err.Error()}}
	}
	iss := make(skema.Issues, 0, len(verrs))
	for _, fe := range verrs {
		iss = append(iss, skema.Issue{
			Path:    namespacePointer(fe.Namespace()),
			Code:    skema.CodeCustom,
			Rule:    fe.Tag(),
			Message: "failed on the '" + fe.Tag() + "' tag",
			Params:  map[string]any{"tag": fe.Tag(), "param": fe.Param()},
		})
	}
	return iss
}

// namespacePointer turns "User.address.city" into "/address/city".
func namespacePointer(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return "/"
	}
	return "/" + strings.ReplaceAll(rest, ".", "/")
}

func decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
