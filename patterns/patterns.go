// Package patterns holds precompiled matchers for common string formats.
// They are building blocks for constraint.String.Pattern and the format
// helpers built on it.
package patterns

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

var (
	// CUID matches collision-resistant ids: a leading "c" followed by at
	// least eight characters that are neither whitespace nor dashes.
	CUID = regexp.MustCompile(`(?i)^c[^\s-]{8,}$`)

	// UUID matches RFC 4122 versions 1 through 5 and the nil UUID.
	UUID = regexp.MustCompile(`(?i)^(?:[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}|00000000-0000-0000-0000-000000000000)$`)

	// Email matches a pragmatic subset of addresses: dotted local part, at
	// least one dotted label in the domain and an alphabetic TLD.
	Email = regexp.MustCompile(`(?i)^(?:[A-Z0-9_+-]+\.?)*[A-Z0-9_+-]@(?:[A-Z0-9][A-Z0-9\-]*\.)+[A-Z]{2,}$`)
)

// DatetimeOptions configures Datetime.
type DatetimeOptions struct {
	// Precision pins the number of fractional-second digits. nil accepts any
	// fraction or none; 0 forbids a fraction.
	Precision *int
	// Offset allows a "+HH:MM"/"-HH:MM" suffix besides "Z". When false only
	// a literal "Z" is accepted.
	Offset bool
}

// MaxPrecision bounds DatetimeOptions.Precision; it is the largest repeat
// count regexp accepts.
const MaxPrecision = 1000

// Precision is a helper for DatetimeOptions.Precision.
func Precision(n int) *int { return &n }

// Validate reports whether opt describes a matcher Datetime can build.
func (opt DatetimeOptions) Validate() error {
	if opt.Precision != nil && (*opt.Precision < 0 || *opt.Precision > MaxPrecision) {
		return fmt.Errorf("datetime precision %d out of range [0, %d]", *opt.Precision, MaxPrecision)
	}
	return nil
}

var datetimeCache sync.Map // string -> *regexp.Regexp

// Datetime returns an ISO-8601 date-time matcher for the given options.
// Matchers are compiled once per distinct option set. It panics when
// opt.Validate fails; callers handling untrusted options check first.
func Datetime(opt DatetimeOptions) *regexp.Regexp {
	if err := opt.Validate(); err != nil {
		panic("patterns: " + err.Error())
	}
	key := datetimeKey(opt)
	if re, ok := datetimeCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(datetimeExpr(opt))
	actual, _ := datetimeCache.LoadOrStore(key, re)
	return actual.(*regexp.Regexp)
}

func datetimeKey(opt DatetimeOptions) string {
	p := "any"
	if opt.Precision != nil {
		p = strconv.Itoa(*opt.Precision)
	}
	return p + "/" + strconv.FormatBool(opt.Offset)
}

func datetimeExpr(opt DatetimeOptions) string {
	expr := `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`
	switch {
	case opt.Precision == nil:
		expr += `(?:\.\d+)?`
	case *opt.Precision > 0:
		expr += `\.\d{` + strconv.Itoa(*opt.Precision) + `}`
	}
	if opt.Offset {
		return expr + `(?:Z|[+-]\d{2}:\d{2})$`
	}
	return expr + `Z$`
}
