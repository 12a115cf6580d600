package boolpred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/boolpred/internal/resolver"
	"github.com/dekarrin/boolpred/internal/value"
)

func Test_Predicate_IsValid(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		expect bool
	}{
		{name: "valid comparison", source: "user.age > 18", expect: true},
		{name: "valid boolean combination", source: "a = 1 and (b = 2 or not c = 3)", expect: true},
		{name: "unterminated string", source: `a = "oops`, expect: false},
		{name: "dangling operator", source: "a =", expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.source)
			assert.Equal(t, tc.expect, p.IsValid())
			if !tc.expect {
				assert.NotEmpty(t, p.Errors())
			}
		})
	}
}

func Test_Predicate_Evaluate(t *testing.T) {
	doc := resolver.MapDocument{
		"user": map[string]any{
			"age":    30,
			"name":   "ada",
			"region": "us",
		},
		"tags": []any{"alpha", "beta"},
	}

	testCases := []struct {
		name   string
		source string
		expect bool
	}{
		{name: "numeric comparison true", source: "user.age > 18", expect: true},
		{name: "numeric comparison false", source: "user.age > 99", expect: false},
		{name: "string equality", source: `user.name = "ada"`, expect: true},
		{name: "is operator", source: `user.name is "ada"`, expect: true},
		{name: "is not operator", source: `user.name is not "bob"`, expect: true},
		{name: "and both true", source: "user.age > 18 and user.region = \"us\"", expect: true},
		{name: "and one false", source: "user.age > 18 and user.region = \"eu\"", expect: false},
		{name: "or one true", source: "user.age > 99 or user.region = \"us\"", expect: true},
		{name: "not inverts", source: "not (user.age > 99)", expect: true},
		{name: "contains membership", source: `tags contains "alpha"`, expect: true},
		{name: "contains non-membership", source: `tags contains "gamma"`, expect: false},
		{name: "literal set membership", source: `{"us", "eu"} contains user.region`, expect: true},
		{name: "literal set non-membership", source: `{"eu", "jp"} contains user.region`, expect: false},
		{name: "matches regex", source: `user.name matches /^a/`, expect: true},
		{name: "matches regex case sensitive fails", source: `user.name matches /^A/`, expect: false},
		{name: "matches regex case insensitive flag", source: `user.name matches /^A/i`, expect: true},
		{name: "undefined identifier compares false", source: "missing.field = 1", expect: false},
		{name: "invalid predicate evaluates false", source: "a =", expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.source)
			assert.Equal(t, tc.expect, p.Evaluate(doc))
		})
	}
}

func Test_Predicate_Analyze_recordsFailureAndLiterals(t *testing.T) {
	doc := resolver.MapDocument{"user": map[string]any{"age": 10}}

	p := New("user.age > 18")
	require.True(t, p.IsValid())

	matched, result := p.Analyze(doc)
	assert.False(t, matched)
	assert.False(t, result.Matched)
	assert.NotEmpty(t, result.Failed)
}

func Test_Predicate_Analyze_capturesLiteralOnSuccess(t *testing.T) {
	doc := resolver.MapDocument{"user": map[string]any{"age": 30}}

	p := New("user.age > 18")
	require.True(t, p.IsValid())

	matched, result := p.Analyze(doc)
	assert.True(t, matched)
	assert.NotEmpty(t, result.Literals)
}

func Test_Predicate_Evaluate_repeatedSubexpressionAgreesWithSingleEvaluation(t *testing.T) {
	doc := resolver.MapDocument{"a": 1}
	p := New("a = 1 and a = 1")
	require.True(t, p.IsValid())
	assert.True(t, p.Evaluate(doc))
}

func Test_Predicate_SetResolver_takesPrecedence(t *testing.T) {
	p := New("custom.value = 1")
	require.True(t, p.IsValid())

	p.SetResolver(func(name string, doc resolver.Document) (value.Value, bool) {
		if name == "custom.value" {
			return value.OfNumber(1), true
		}
		return value.Value{}, false
	})

	assert.True(t, p.Evaluate(resolver.MapDocument{}))
}

func Test_Predicate_Description(t *testing.T) {
	p := New("a = 1")
	require.True(t, p.IsValid())
	assert.NotEmpty(t, p.Description())

	invalid := New("a =")
	assert.Empty(t, invalid.Description())
}

func Test_Predicate_Source(t *testing.T) {
	p := New("a = 1")
	assert.Equal(t, "a = 1", p.Source())
}
