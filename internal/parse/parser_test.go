package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/boolpred/internal/ast"
)

func Test_Parse_validPrograms(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect ast.Kind
	}{
		{name: "bare identifier", input: "user.age", expect: ast.KindLiteral},
		{name: "comparison", input: "user.age > 18", expect: ast.KindCompare},
		{name: "is comparison", input: "status is \"active\"", expect: ast.KindCompare},
		{name: "is not comparison", input: "status is not \"active\"", expect: ast.KindCompare},
		{name: "and", input: "a = 1 and b = 2", expect: ast.KindAnd},
		{name: "or", input: "a = 1 or b = 2", expect: ast.KindOr},
		{name: "not", input: "not a = 1", expect: ast.KindNegate},
		{name: "contains", input: "tags contains \"x\"", expect: ast.KindContains},
		{name: "matches", input: "name matches /^a/", expect: ast.KindMatch},
		{name: "parenthesized", input: "(a = 1)", expect: ast.KindCompare},
		{name: "literal set", input: "region = {\"us\", \"eu\"}", expect: ast.KindCompare},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.input)
			require.Empty(t, result.Diags)
			require.NotNil(t, result.Root)
			assert.Equal(t, tc.expect, result.Root.Kind())
		})
	}
}

func Test_Parse_precedence(t *testing.T) {
	// `or` binds weaker than `and`, which binds weaker than `not`.
	result := Parse("a = 1 or b = 2 and not c = 3")
	require.Empty(t, result.Diags)
	require.Equal(t, ast.KindOr, result.Root.Kind())

	or := result.Root.(*ast.OrNode)
	assert.Equal(t, ast.KindCompare, or.Left.Kind())
	require.Equal(t, ast.KindAnd, or.Right.Kind())

	and := or.Right.(*ast.AndNode)
	assert.Equal(t, ast.KindCompare, and.Left.Kind())
	assert.Equal(t, ast.KindNegate, and.Right.Kind())
}

func Test_Parse_errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "unterminated string propagates lex error", input: `a = "unterminated`},
		{name: "dangling operator", input: "a ="},
		{name: "unbalanced paren", input: "(a = 1"},
		{name: "matches requires identifier on left", input: `"x" matches /a/`},
		{name: "set literal rejects identifiers", input: "a = {b, \"c\"}"},
		{name: "unknown regex flag", input: "a matches /x/z"},
		{name: "trailing garbage", input: "a = 1 )"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.input)
			assert.NotEmpty(t, result.Diags)
			assert.Nil(t, result.Root)
		})
	}
}

func Test_Parse_spaceSeparatedLiteralSet(t *testing.T) {
	// §8 Scenario C uses space-separated members with no commas at all.
	result := Parse(`{"WARN" "ERR" "CRIT"} contains error_level`)
	require.Empty(t, result.Diags)
	require.Equal(t, ast.KindContains, result.Root.Kind())
	contains := result.Root.(*ast.ContainsNode)
	require.Equal(t, ast.KindLiteralSet, contains.Container.Kind())
	set := contains.Container.(*ast.LiteralSetNode)
	require.Len(t, set.Members, 3)
	assert.Equal(t, ast.KindStringLit, set.Members[0].Kind())
	assert.Equal(t, ast.KindStringLit, set.Members[1].Kind())
	assert.Equal(t, ast.KindStringLit, set.Members[2].Kind())
}

func Test_Parse_emptyLiteralSet(t *testing.T) {
	result := Parse("a = {}")
	require.Empty(t, result.Diags)
	require.Equal(t, ast.KindCompare, result.Root.Kind())
	cmp := result.Root.(*ast.CompareNode)
	require.Equal(t, ast.KindLiteralSet, cmp.Right.Kind())
	set := cmp.Right.(*ast.LiteralSetNode)
	assert.Empty(t, set.Members)
}
