package constraint_test

import (
	"encoding/json"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	"github.com/reoring/skema/constraint"
	"github.com/reoring/skema/patterns"
)

func TestTypeMismatch_SingleMessage(t *testing.T) {
	cases := []struct {
		name string
		c    interface {
			Check(any) skema.Issues
		}
		v any
	}{
		{"string", constraint.NewString().MinLength(3).Email().StartsWith("x"), 42},
		{"number", constraint.NewNumber().Min(1).Max(2).Int(), "abc"},
		{"boolean", constraint.NewBoolean(), "true"},
		{"symbol", constraint.NewSymbol(), "sym"},
		{"date", constraint.NewDate(), "2020-01-01"},
		{"array", constraint.NewArray().Min(1).Max(3), map[string]any{}},
		{"object", constraint.NewObject().Required("a", "b"), 1.5},
		{"undefined", constraint.NewString().NotEmpty(), skema.Undefined},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iss := tc.c.Check(tc.v)
			require.Len(t, iss, 1)
			assert.Equal(t, skema.CodeInvalidType, iss[0].Code)
		})
	}
}

func TestApply_FailsAndErrors(t *testing.T) {
	n := constraint.NewNumber().Min(10).Max(30)

	assert.False(t, n.Apply(15).Fails())
	assert.Empty(t, n.Errors())

	require.True(t, n.Apply(45).Fails())
	require.Len(t, n.Errors(), 1)
	assert.Contains(t, n.Errors()[0], "less than or equal to 30")

	// the error list resets between calls
	assert.False(t, n.Apply(20).Fails())
}

func TestNullable_BypassesRules(t *testing.T) {
	s := constraint.NewString().MinLength(5).Nullable()
	assert.False(t, s.Apply(nil).Fails())
	assert.True(t, s.Apply("abc").Fails())

	n := constraint.NewNumber().Positive().Nullable()
	assert.False(t, n.Apply(nil).Fails())

	o := constraint.NewObject().Required("id").Nullable()
	assert.False(t, o.Apply(nil).Fails())

	// without Nullable nil is a type mismatch
	assert.True(t, constraint.NewString().Apply(nil).Fails())
}

func TestNullish_HasNoEffect(t *testing.T) {
	s := constraint.NewString().Nullish()
	assert.True(t, s.Apply(nil).Fails())
	assert.True(t, s.Apply(skema.Undefined).Fails())
}

func TestString_Rules(t *testing.T) {
	s := constraint.NewString().MinLength(2).MaxLength(4)
	assert.False(t, s.Apply("abc").Fails())
	assert.False(t, s.Apply("日本").Fails(), "runes, not bytes")
	assert.True(t, s.Apply("a").Fails())
	assert.True(t, s.Apply("abcde").Fails())

	assert.True(t, constraint.NewString().Length(3).Apply("ab").Fails())
	assert.False(t, constraint.NewString().Length(3).Apply("abc").Fails())
	assert.True(t, constraint.NewString().NotEmpty().Apply("").Fails())
	assert.False(t, constraint.NewString().StartsWith("ab").Apply("abc").Fails())
	assert.True(t, constraint.NewString().StartsWith("ab").Apply("cab").Fails())
	assert.False(t, constraint.NewString().EndsWith("bc").Apply("abc").Fails())
	assert.True(t, constraint.NewString().EndsWith("bc").Apply("bca").Fails())
	assert.True(t, constraint.NewString().Pattern(regexp.MustCompile(`^\d+$`)).Apply("12a").Fails())
}

func TestString_AllFailingRulesReported(t *testing.T) {
	s := constraint.NewString().MinLength(5).StartsWith("x").EndsWith("y")
	iss := s.Check("abc")
	require.Len(t, iss, 3)
	assert.Equal(t, []string{"minLength", "startsWith", "endsWith"}, []string{iss[0].Rule, iss[1].Rule, iss[2].Rule})
}

func TestString_LastWriteWins(t *testing.T) {
	s := constraint.NewString().MinLength(5).EndsWith("z").MinLength(2)
	assert.False(t, s.Apply("abz").Fails())
	assert.Equal(t, []string{"minLength", "endsWith"}, s.Keys(), "position of the first registration is kept")
}

func TestString_Formats(t *testing.T) {
	assert.False(t, constraint.NewString().Email().Apply("a@b.io").Fails())
	assert.True(t, constraint.NewString().Email().Apply("nope").Fails())
	assert.False(t, constraint.NewString().UUID().Apply("a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11").Fails())
	assert.False(t, constraint.NewString().CUID().Apply("cjld2cjxh0000qzrmn831i7rn").Fails())

	dt := constraint.NewString().Datetime(patterns.DatetimeOptions{Offset: true})
	assert.False(t, dt.Apply("2020-01-01T00:00:00+09:00").Fails())
	assert.True(t, dt.Apply("2020-01-01").Fails())

	// formats coexist with a plain pattern
	s := constraint.NewString().Email().Pattern(regexp.MustCompile(`\.io$`))
	assert.True(t, s.Apply("a@b.com").Fails())
	assert.False(t, s.Apply("a@b.io").Fails())
}

func TestString_NilPatternSkipped(t *testing.T) {
	s := constraint.NewString().Pattern(nil)
	assert.False(t, s.Apply("anything").Fails())
}

func TestNumber_Rules(t *testing.T) {
	tests := []struct {
		name string
		c    *constraint.Number
		ok   []any
		bad  []any
	}{
		{"positive", constraint.NewNumber().Positive(), []any{1, 0.1}, []any{0, -1}},
		{"negative", constraint.NewNumber().Negative(), []any{-1, 0}, []any{0.5, 3}},
		{"int", constraint.NewNumber().Int(), []any{3, -7.0, int64(9007199254740991)}, []any{1.5, math.Inf(1), 9007199254740992.0}},
		{"float", constraint.NewNumber().Float(), []any{1.5, -0.25}, []any{2, math.NaN(), math.Inf(-1)}},
		{"finite", constraint.NewNumber().Finite(), []any{1e300}, []any{math.Inf(1), math.NaN()}},
		{"between", constraint.NewNumber().Between(1, 3), []any{1, 2.5, 3}, []any{0.99, 3.01}},
		{"kinds", constraint.NewNumber().Min(1), []any{uint8(1), float32(2), json.Number("3")}, []any{int16(0)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, v := range tc.ok {
				assert.False(t, tc.c.Apply(v).Fails(), "%v", v)
			}
			for _, v := range tc.bad {
				assert.True(t, tc.c.Apply(v).Fails(), "%v", v)
			}
		})
	}
}

func TestNumber_NegativeAcceptsZero(t *testing.T) {
	assert.False(t, constraint.NewNumber().Negative().Apply(0).Fails())
}

func TestArray_MinAndMaxCoexist(t *testing.T) {
	a := constraint.NewArray().Min(2).Max(3)
	assert.True(t, a.Apply([]any{1}).Fails(), "min still active")
	assert.False(t, a.Apply([]any{1, 2}).Fails())
	assert.True(t, a.Apply([]int{1, 2, 3, 4}).Fails(), "max still active")
	assert.Equal(t, []string{"min", "max"}, a.Keys())
}

func TestArray_LengthAndNoEmpty(t *testing.T) {
	assert.True(t, constraint.NewArray().NoEmpty().Apply([]string{}).Fails())
	assert.False(t, constraint.NewArray().NoEmpty().Apply([1]int{1}).Fails())
	assert.True(t, constraint.NewArray().Length(2).Apply([]any{1}).Fails())
}

func TestDate_Accepts(t *testing.T) {
	now := time.Now()
	d := constraint.NewDate()
	assert.False(t, d.Apply(now).Fails())
	assert.False(t, d.Apply(&now).Fails())
	assert.False(t, d.Apply(stamp{now}).Fails())
	assert.True(t, d.Apply((*time.Time)(nil)).Fails())
	assert.True(t, d.Apply(now.Unix()).Fails())
}

type stamp struct{ t time.Time }

func (s stamp) Time() time.Time { return s.t }

func TestSymbol_And_Boolean(t *testing.T) {
	assert.False(t, constraint.NewSymbol().Apply(skema.NewSymbol("x")).Fails())
	assert.False(t, constraint.NewBoolean().Apply(false).Fails())
	assert.True(t, constraint.NewBoolean().Apply(0).Fails())
}

func TestObject_RequiredListsMissingKeys(t *testing.T) {
	o := constraint.NewObject().Required("id", "name", "email")
	iss := o.Check(map[string]any{"name": "x"})
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeRequired, iss[0].Code)
	assert.Equal(t, "Missing required key(s): id, email", iss[0].Message)

	assert.False(t, o.Apply(map[string]any{"id": nil, "name": 1, "email": 2}).Fails(), "presence, not truthiness")

	type user struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `skema:"name=email"`
	}
	assert.False(t, o.Apply(user{}).Fails())
}

func TestRefine(t *testing.T) {
	even := func(v any) bool { f, _ := skema.AsNumber(v); return int(f)%2 == 0 }
	n := constraint.NewNumber().Min(0).Refine("even", even, "must be even")

	iss := n.Check(3)
	require.Len(t, iss, 1)
	assert.Equal(t, skema.CodeCustom, iss[0].Code)
	assert.Equal(t, "even", iss[0].Rule)
	assert.Equal(t, "must be even", iss[0].Message)

	// default message
	s := constraint.NewString().Refine("upper", func(any) bool { return false }, "")
	assert.Equal(t, []string{"Failed rule upper"}, s.Apply("a").Errors())
}

func TestCheck_IsPure(t *testing.T) {
	n := constraint.NewNumber().Max(1)
	n.Apply(0)
	_ = n.Check(5)
	assert.False(t, n.Fails(), "Check leaves Apply state alone")
}

func TestJSONSchema(t *testing.T) {
	s := constraint.NewString().MinLength(1).MaxLength(9).Email().JSONSchema()
	assert.Equal(t, "string", s.Type)
	assert.Equal(t, 1, *s.MinLength)
	assert.Equal(t, 9, *s.MaxLength)
	assert.Equal(t, "email", s.Format)

	n := constraint.NewNumber().Int().Between(0, 10).Nullable().JSONSchema()
	assert.Equal(t, "integer", n.Type)
	assert.True(t, n.Nullable)
	assert.Equal(t, 10.0, *n.Maximum)

	d := constraint.NewDate().JSONSchema()
	assert.Equal(t, "date-time", d.Format)

	o := constraint.NewObject().Required("a").JSONSchema()
	assert.Equal(t, []string{"a"}, o.Required)
}
