package skema

import (
	"context"
)

// Parser is implemented by Type and by every wrapper that embeds one.
type Parser[T any] interface {
	Parse(ctx context.Context, v any) (T, error)
}

// Decode reads src honoring opt.MaxBytes and opt.RejectDuplicateKeys.
// Sources other than the ones built by this package ignore both.
func Decode(src Source, opt ParseOpt) (any, error) {
	if src == nil {
		return nil, singleIssue(CodeParseError, "nil source")
	}
	if ds, ok := src.(*docSource); ok {
		return ds.decode(opt)
	}
	v, err := src.Decode()
	if err != nil {
		return nil, toIssues(err)
	}
	return v, nil
}

// ParseFrom decodes src and parses the result with p. When several options
// are passed the last one wins.
func ParseFrom[T any](ctx context.Context, p Parser[T], src Source, opts ...ParseOpt) (T, error) {
	var zero T
	if p == nil {
		return zero, singleIssue(CodeParseError, "nil schema")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth > 0 {
		ctx = WithMaxDepth(ctx, opt.MaxDepth)
	}
	v, err := Decode(src, opt)
	if err != nil {
		return zero, err
	}
	return p.Parse(ctx, v)
}

// SafeParseFrom is the type-erased counterpart of ParseFrom for callers
// holding an AnyType. Decode failures are reported through Result.Err.
func SafeParseFrom(ctx context.Context, t AnyType, src Source, opts ...ParseOpt) Result[any] {
	if ctx == nil {
		ctx = context.Background()
	}
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth > 0 {
		ctx = WithMaxDepth(ctx, opt.MaxDepth)
	}
	v, err := Decode(src, opt)
	if err != nil {
		iss := toIssues(err)
		return Result[any]{Errors: iss.Messages(), Issues: iss, Err: err}
	}
	return t.SafeParseAny(ctx, v)
}
