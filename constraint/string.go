package constraint

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
	js "github.com/reoring/skema/jsonschema"
	"github.com/reoring/skema/patterns"
)

// String validates string values. Lengths count runes.
type String struct {
	fluent[*String]
}

// NewString returns an empty string constraint.
func NewString() *String {
	s := &String{}
	s.fluent = fluent[*String]{Base: newBase(Tag("string"), "string"), self: s}
	return s
}

func str(v any) string {
	s, _ := skema.AsString(v)
	return s
}

func runeLen(v any) int { return utf8.RuneCountInString(str(v)) }

// MinLength requires at least n runes.
func (s *String) MinLength(n int) *String {
	s.Set("minLength", &Rule{
		Predicate: func(v any) bool { return runeLen(v) >= n },
		Message:   i18n.T(i18n.MsgStringMin, map[string]string{"min": strconv.Itoa(n)}),
		Code:      skema.CodeTooShort,
		Params:    map[string]any{"min": n},
		Annotate:  func(out *js.Schema) { out.MinLength = &n },
	})
	return s
}

// MaxLength allows at most n runes.
func (s *String) MaxLength(n int) *String {
	s.Set("maxLength", &Rule{
		Predicate: func(v any) bool { return runeLen(v) <= n },
		Message:   i18n.T(i18n.MsgStringMax, map[string]string{"max": strconv.Itoa(n)}),
		Code:      skema.CodeTooLong,
		Params:    map[string]any{"max": n},
		Annotate:  func(out *js.Schema) { out.MaxLength = &n },
	})
	return s
}

// Length requires exactly n runes.
func (s *String) Length(n int) *String {
	s.Set("length", &Rule{
		Predicate: func(v any) bool { return runeLen(v) == n },
		Message:   i18n.T(i18n.MsgStringLength, map[string]string{"length": strconv.Itoa(n)}),
		Code:      skema.CodeTooShort,
		Params:    map[string]any{"length": n},
		Annotate:  func(out *js.Schema) { out.MinLength, out.MaxLength = &n, &n },
	})
	return s
}

// NotEmpty rejects "".
func (s *String) NotEmpty() *String {
	one := 1
	s.Set("notEmpty", &Rule{
		Predicate: func(v any) bool { return str(v) != "" },
		Message:   i18n.T(i18n.MsgStringNotEmpty, nil),
		Code:      skema.CodeTooShort,
		Annotate:  func(out *js.Schema) { out.MinLength = &one },
	})
	return s
}

// Pattern requires re to match. A nil re registers a rule that is skipped.
func (s *String) Pattern(re *regexp.Regexp) *String {
	if re == nil {
		s.Set("pattern", nil)
		return s
	}
	s.Set("pattern", &Rule{
		Predicate: func(v any) bool { return re.MatchString(str(v)) },
		Message:   i18n.T(i18n.MsgStringPattern, map[string]string{"pattern": re.String()}),
		Code:      skema.CodePattern,
		Params:    map[string]any{"pattern": re.String()},
		Annotate:  func(out *js.Schema) { out.Pattern = re.String() },
	})
	return s
}

// StartsWith requires the given prefix.
func (s *String) StartsWith(prefix string) *String {
	s.Set("startsWith", &Rule{
		Predicate: func(v any) bool { return strings.HasPrefix(str(v), prefix) },
		Message:   i18n.T(i18n.MsgStringStarts, map[string]string{"prefix": prefix}),
		Code:      skema.CodePattern,
		Params:    map[string]any{"prefix": prefix},
	})
	return s
}

// EndsWith requires the given suffix.
func (s *String) EndsWith(suffix string) *String {
	s.Set("endsWith", &Rule{
		Predicate: func(v any) bool { return strings.HasSuffix(str(v), suffix) },
		Message:   i18n.T(i18n.MsgStringEnds, map[string]string{"suffix": suffix}),
		Code:      skema.CodePattern,
		Params:    map[string]any{"suffix": suffix},
	})
	return s
}

func (s *String) format(name, jsFormat string, re *regexp.Regexp) *String {
	s.Set(name, &Rule{
		Predicate: func(v any) bool { return re.MatchString(str(v)) },
		Message:   i18n.T(i18n.MsgStringFormat, map[string]string{"format": name}),
		Code:      skema.CodeInvalidFormat,
		Params:    map[string]any{"format": name},
		Annotate: func(out *js.Schema) {
			if jsFormat != "" {
				out.Format = jsFormat
			} else {
				out.Pattern = re.String()
			}
		},
	})
	return s
}

// Email requires patterns.Email.
func (s *String) Email() *String { return s.format("email", "email", patterns.Email) }

// UUID requires patterns.UUID.
func (s *String) UUID() *String { return s.format("uuid", "uuid", patterns.UUID) }

// CUID requires patterns.CUID.
func (s *String) CUID() *String { return s.format("cuid", "", patterns.CUID) }

// Datetime requires an ISO-8601 date-time as configured by opt.
func (s *String) Datetime(opt patterns.DatetimeOptions) *String {
	return s.format("datetime", "date-time", patterns.Datetime(opt))
}
