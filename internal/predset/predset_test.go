package predset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/optimize"
	"github.com/dekarrin/boolpred/internal/parse"
	"github.com/dekarrin/boolpred/internal/resolver"
)

func mustParseOptimized(t *testing.T, source string) ast.Node {
	t.Helper()
	result := parse.Parse(source)
	require.Emptyf(t, result.Diags, "source %q", source)
	return optimize.Optimize(result.Root)
}

var sourcesForAgreement = []string{
	`region = "us" and tier = "gold"`,
	`region = "us" and tier = "silver"`,
	`region = "eu" and tier = "gold"`,
	`region = "eu" and active = true`,
	`tags contains "alpha"`,
	`tags contains "beta"`,
	`not (region = "us") or score > 90`,
	`score >= 50 and score <= 100`,
}

func docsForAgreement() []resolver.Document {
	return []resolver.Document{
		resolver.MapDocument{"region": "us", "tier": "gold", "active": true, "score": 95, "tags": []any{"alpha"}},
		resolver.MapDocument{"region": "us", "tier": "silver", "active": false, "score": 10, "tags": []any{"beta"}},
		resolver.MapDocument{"region": "eu", "tier": "gold", "active": true, "score": 30, "tags": []any{}},
		resolver.MapDocument{},
	}
}

func Test_Simple_Optimized_agree(t *testing.T) {
	var roots []ast.Node
	for _, src := range sourcesForAgreement {
		roots = append(roots, mustParseOptimized(t, src))
	}

	simple := NewSimple(roots)
	optimized := NewOptimized(roots, DefaultConfig())

	for i, doc := range docsForAgreement() {
		t.Run(fmt.Sprintf("doc %d", i), func(t *testing.T) {
			simpleMatches := simple.Evaluate(doc)
			optimizedMatches := optimized.Evaluate(doc)
			assert.ElementsMatch(t, simpleMatches, optimizedMatches)
		})
	}
}

func Test_Optimized_CompileWithHint_matchesFreshCompile(t *testing.T) {
	var roots []ast.Node
	for _, src := range sourcesForAgreement {
		roots = append(roots, mustParseOptimized(t, src))
	}

	fresh := NewOptimized(roots, DefaultConfig())
	fresh.CompileAST()

	hinted := NewOptimized(roots, DefaultConfig())
	hinted.CompileWithHint(fresh.Hint())

	for i, doc := range docsForAgreement() {
		t.Run(fmt.Sprintf("doc %d", i), func(t *testing.T) {
			assert.ElementsMatch(t, fresh.Evaluate(doc), hinted.Evaluate(doc))
		})
	}
}

func Test_Optimized_CompileWithHint_fallsBackOnPopulationChange(t *testing.T) {
	var roots []ast.Node
	for _, src := range sourcesForAgreement {
		roots = append(roots, mustParseOptimized(t, src))
	}

	fresh := NewOptimized(roots, DefaultConfig())
	fresh.CompileAST()
	hint := fresh.Hint()

	changedRoots := append(append([]ast.Node(nil), roots...), mustParseOptimized(t, `tier = "platinum"`))
	changed := NewOptimized(changedRoots, DefaultConfig())
	changed.CompileWithHint(hint)

	simple := NewSimple(changedRoots)
	for _, doc := range docsForAgreement() {
		assert.ElementsMatch(t, simple.Evaluate(doc), changed.Evaluate(doc))
	}
}

func Test_Optimized_Update_invalidatesTree(t *testing.T) {
	root := mustParseOptimized(t, `a = 1`)
	s := NewOptimized([]ast.Node{root}, DefaultConfig())
	s.CompileAST()

	s.Update([]ast.Node{mustParseOptimized(t, `b = 2`)})

	matches := s.Evaluate(resolver.MapDocument{"b": 2})
	assert.Len(t, matches, 1)
}

func Test_Optimized_Finalize_dropsMembersAfterBuild(t *testing.T) {
	root := mustParseOptimized(t, `a = 1`)
	s := NewOptimized([]ast.Node{root}, DefaultConfig())
	s.CompileAST()
	s.Finalize()

	assert.Empty(t, s.Members())
	matches := s.Evaluate(resolver.MapDocument{"a": 1})
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0])
}

func Test_Simple_Add_Update_assignsSequentialIDs(t *testing.T) {
	s := NewSimple(nil)
	id0 := s.Add(mustParseOptimized(t, "a = 1"))
	id1 := s.Add(mustParseOptimized(t, "b = 2"))
	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.Len(t, s.Members(), 2)

	s.Update([]ast.Node{mustParseOptimized(t, "c = 3")})
	assert.Len(t, s.Members(), 1)
	assert.Equal(t, 0, s.Members()[0].ID)
}

func Test_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.GreaterOrEqual(t, cfg.MinCount, 2)
	assert.Greater(t, cfg.MaxDepth, 0)
	assert.Greater(t, cfg.MinBenefit, 0.0)
}
