// Package middleware validates HTTP request bodies with skema schemas before
// they reach a handler. Validate works with net/http and routers built on it
// (chi, gorilla/mux); the gin subpackage adapts it to gin.
package middleware

import (
	"context"
	"net/http"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/skema"
)

// ctxKeyParsed is a typed context key; the type parameter keeps values of
// different T apart.
type ctxKeyParsed[T any] struct{}

// ContextWithParsed attaches a parsed body to ctx.
func ContextWithParsed[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyParsed[T]{}, v)
}

// ParsedFromContext retrieves the body stored by Validate.
func ParsedFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyParsed[T]{}).(T)
	return v, ok
}

// DefaultParseOpt is the recommended option set at HTTP boundaries:
// duplicate keys are errors and bodies are capped at 1 MiB.
func DefaultParseOpt() skema.ParseOpt {
	return skema.ParseOpt{RejectDuplicateKeys: true, MaxBytes: 1 << 20}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues skema.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// BodySource picks the decoder from the request Content-Type: YAML for
// application/yaml, application/x-yaml and text/yaml, JSON otherwise.
func BodySource(r *http.Request) skema.Source {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch strings.TrimSpace(ct) {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return skema.YAMLReader(r.Body)
	}
	return skema.JSONReader(r.Body)
}

// Parse decodes and validates the request body with p.
func Parse[T any](r *http.Request, p skema.Parser[T], opt skema.ParseOpt) (T, error) {
	return skema.ParseFrom(r.Context(), p, BodySource(r), opt)
}

// Validate parses the request body with p, stores the result in the request
// context (see ParsedFromContext) and calls next. Invalid bodies get a 400
// response with ErrorPayload; next is not called.
func Validate[T any](p skema.Parser[T], opt skema.ParseOpt) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := Parse(r, p, opt)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithParsed(r.Context(), v)))
		})
	}
}

// WriteError writes err as a 400 JSON response: {"issues": [...]} for
// validation failures, {"error": "..."} for anything else.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody(err))
}

// ErrorBody is the response document WriteError sends.
func ErrorBody(err error) any {
	if iss, ok := skema.AsIssues(err); ok {
		return ErrorPayload(iss)
	}
	return map[string]any{"error": err.Error()}
}

// WriteJSON encodes body with status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(body)
}
