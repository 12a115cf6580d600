package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/resolver"
	"github.com/dekarrin/boolpred/internal/value"
)

func Test_Context_Resolve_cachesFirstLookup(t *testing.T) {
	calls := 0
	custom := func(name string, doc resolver.Document) (value.Value, bool) {
		calls++
		return value.OfNumber(42), true
	}

	ctx := New(resolver.MapDocument{}, custom, nil)

	first := ctx.Resolve("a")
	second := ctx.Resolve("a")

	assert.Equal(t, value.OfNumber(42), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "a name resolved twice in one evaluation must only invoke the resolver once")
}

func Test_Context_FingerprintCache_roundTrips(t *testing.T) {
	ctx := New(resolver.MapDocument{}, nil, nil)

	_, ok := ctx.CacheFingerprint("a = 1")
	assert.False(t, ok)

	ctx.StoreFingerprint("a = 1", value.OfBool(true))

	v, ok := ctx.CacheFingerprint("a = 1")
	require.True(t, ok)
	assert.True(t, v.Bool())
}

func Test_Context_Failed_returnsOrderedCopyNotAlias(t *testing.T) {
	ctx := New(resolver.MapDocument{}, nil, nil)
	ctx.RecordFailure("first")
	ctx.RecordFailure("second")

	got := ctx.Failed()
	require.Equal(t, []string{"first", "second"}, got)

	got[0] = "mutated"
	assert.Equal(t, []string{"first", "second"}, ctx.Failed())
}

func Test_Context_Literals_returnsCopyNotAlias(t *testing.T) {
	ctx := New(resolver.MapDocument{}, nil, nil)
	ctx.CaptureLiteral("a = 1", value.OfBool(true))

	got := ctx.Literals()
	got["a = 1"] = value.OfBool(false)

	assert.True(t, ctx.Literals()["a = 1"].Bool())
}

func Test_Context_CompileRegex_cachesPerNode(t *testing.T) {
	calls := 0
	engine := fakeEngine{onCompile: func() { calls++ }}
	ctx := New(resolver.MapDocument{}, nil, engine)

	n := &ast.RegexNode{Pattern: "^a+$", Flags: ""}

	_, err := ctx.CompileRegex(n)
	require.NoError(t, err)
	_, err = ctx.CompileRegex(n)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "the host regex engine must be invoked at most once per RegexNode")
}

type fakeEngine struct {
	onCompile func()
}

func (e fakeEngine) Compile(pattern, flags string) (ast.Regexp, error) {
	e.onCompile()
	return StdRegexEngine{}.Compile(pattern, flags)
}

func Test_StdRegexEngine_translatesFlags(t *testing.T) {
	eng := StdRegexEngine{}

	re, err := eng.Compile("abc", "i")
	require.NoError(t, err)
	assert.True(t, re.MatchString("ABC"))

	re, err = eng.Compile("a.b", "l")
	require.NoError(t, err)
	assert.False(t, re.MatchString("axb"), "literal flag must quote regex metacharacters")
	assert.True(t, re.MatchString("a.b"))
}

func Test_StdRegexEngine_rejectsInvalidPattern(t *testing.T) {
	eng := StdRegexEngine{}
	_, err := eng.Compile("(unterminated", "")
	assert.Error(t, err)
}

func Test_Evaluate_populatesSubexpressionCacheByFingerprint(t *testing.T) {
	ctx := New(resolver.MapDocument{"a": 1}, nil, nil)
	root := &ast.CompareNode{Op: ast.OpEq, Left: &ast.LiteralNode{Name: "a"}, Right: &ast.NumberLitNode{Value: 1}}

	result := Evaluate(root, ctx)
	assert.True(t, result.Bool())

	cached, ok := ctx.CacheFingerprint(root.Fingerprint())
	require.True(t, ok)
	assert.True(t, cached.Bool())
}
