package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/eval"
	"github.com/dekarrin/boolpred/internal/parse"
	"github.com/dekarrin/boolpred/internal/resolver"
)

func evalNode(t *testing.T, n ast.Node, doc resolver.Document) bool {
	t.Helper()
	ctx := eval.New(doc, nil, nil)
	return eval.Evaluate(n, ctx).Bool()
}

func Test_Optimize_preservesSemantics(t *testing.T) {
	docs := []resolver.Document{
		resolver.MapDocument{"a": 1, "b": 2, "c": 3},
		resolver.MapDocument{"a": 1, "b": 1, "c": 1},
		resolver.MapDocument{},
	}

	testCases := []struct {
		name   string
		source string
	}{
		{name: "and chain", source: "a = 1 and b = 2 and c = 3"},
		{name: "or chain", source: "a = 1 or b = 2 or c = 3"},
		{name: "double negation", source: "not not a = 1"},
		{name: "and over comparison chain", source: "(a = 99) and b = 1"},
		{name: "or with constant operand", source: "(a = 1 or true) and b = 1"},
		{name: "constant fold", source: "(1 = 1) and a = 1"},
		{name: "set membership", source: `{1, 2, 3} contains a`},
		{name: "mixed", source: "not (a = 1 and b = 2) or c = 3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := parse.Parse(tc.source)
			require.Empty(t, result.Diags)

			optimized := Optimize(result.Root)

			for _, doc := range docs {
				before := evalNode(t, result.Root, doc)
				after := evalNode(t, optimized, doc)
				assert.Equal(t, before, after, "doc %v", doc)
			}
		})
	}
}

func Test_Optimize_foldsGroundExpression(t *testing.T) {
	result := parse.Parse("1 = 1")
	require.Empty(t, result.Diags)

	optimized := Optimize(result.Root)
	_, ok := optimized.(*ast.ConstantNode)
	assert.True(t, ok, "expected a folded ConstantNode, got %T", optimized)
}

func Test_Optimize_doesNotFoldDocumentDependentExpression(t *testing.T) {
	result := parse.Parse("a = 1")
	require.Empty(t, result.Diags)

	optimized := Optimize(result.Root)
	_, ok := optimized.(*ast.ConstantNode)
	assert.False(t, ok, "document-dependent comparison must not be folded away")
}

func Test_Optimize_absorbsAndWithFalseConstant(t *testing.T) {
	result := parse.Parse("(1 = 2) and a = 1")
	require.Empty(t, result.Diags)

	optimized := Optimize(result.Root)
	c, ok := optimized.(*ast.ConstantNode)
	require.True(t, ok, "expected constant folding of a never-true and, got %T", optimized)
	assert.False(t, c.Value.Bool())
}

func Test_Optimize_absorbsOrWithTrueConstant(t *testing.T) {
	result := parse.Parse("(1 = 1) or a = 1")
	require.Empty(t, result.Diags)

	optimized := Optimize(result.Root)
	c, ok := optimized.(*ast.ConstantNode)
	require.True(t, ok, "expected constant folding of an always-true or, got %T", optimized)
	assert.True(t, c.Value.Bool())
}

func Test_Optimize_isIdempotent(t *testing.T) {
	result := parse.Parse("a = 1 and (b = 2 or not c = 3)")
	require.Empty(t, result.Diags)

	once := Optimize(result.Root)
	twice := Optimize(once)
	assert.Equal(t, once.Fingerprint(), twice.Fingerprint())
}
