package dsl

import "github.com/reoring/skema"

// Option configures a Type at construction.
type Option func(*options)

type options struct {
	description string
	coerce      bool
}

// Description attaches text to the Type. It is reported by Description() and
// prefixes the message of errors returned by Parse.
func Description(text string) Option {
	return func(o *options) { o.description = text }
}

// Coerce enables the category's cast before validation. Array and Object
// ignore it.
func Coerce() Option {
	return func(o *options) { o.coerce = true }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) def(c skema.Constraint, cast func(any) any) skema.Def {
	d := skema.Def{Description: o.description, Constraint: c}
	if o.coerce {
		d.Coerce = cast
	}
	return d
}

// Of is satisfied by *skema.Type[T] and by every typed wrapper in this
// package, so element types can be passed either way.
type Of[T any] interface {
	Schema() *skema.Type[T]
}
