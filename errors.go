package skema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeNotInteger    = "not_integer"
	CodeNotFinite     = "not_finite"
	CodeCustom        = "custom"
	CodeParseError    = "parse_error"
	CodeTruncated     = "truncated"
	CodeDuplicateKey  = "duplicate_key"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /items/2/price).
	Code    string `json:"code"` // One of the codes listed above.
	Message string `json:"message"`
	// Rule records the registry key of the rule that produced this issue
	// (for example "minLength"). Empty for type mismatches.
	Rule string `json:"rule,omitempty"`
	// Params carries structured parameters (e.g., {"min":1, "got":42})
	// for i18n and observability.
	Params map[string]any `json:"params,omitempty"`
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path: Expected string, received number
		fmt.Fprintf(b, "%s at %s: %s", it.Code, it.pathOrRoot(), it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Messages returns the human-readable messages in order.
func (iss Issues) Messages() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Message)
	}
	return out
}

func (it Issue) pathOrRoot() string {
	if it.Path == "" {
		return "/"
	}
	return it.Path
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// RebaseIssues prefixes every issue path with base (a JSON Pointer such as
// "/address" or "/3"). Root-level paths collapse onto base.
func RebaseIssues(base string, iss Issues) Issues {
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}

// ParseError is returned by Type.Parse when validation fails. It carries the
// accumulated issues and, when set, the description of the failing Type.
type ParseError struct {
	Description string
	Issues      Issues
}

func (e *ParseError) Error() string {
	if e.Description != "" {
		return "skema: " + e.Description + ": " + e.Issues.Error()
	}
	return "skema: validation failed: " + e.Issues.Error()
}

// Unwrap exposes the underlying Issues to errors.As.
func (e *ParseError) Unwrap() error { return e.Issues }

// Messages returns the validation messages in order.
func (e *ParseError) Messages() []string { return e.Issues.Messages() }

func singleIssue(code, msg string) Issues { return AppendIssues(nil, Issue{Code: code, Message: msg}) }

// toIssues converts an arbitrary error into Issues, wrapping foreign errors
// with CodeParseError.
func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	return singleIssue(CodeParseError, err.Error())
}
