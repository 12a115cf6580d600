package predset

import (
	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/eval"
	"github.com/dekarrin/boolpred/internal/resolver"
)

// Optimized is the OptimizedPredicateSet of §4.5: a population of
// predicates compiled into a single decision tree that shares evaluation
// of common subexpressions across members.
type Optimized struct {
	config   Config
	members  []Member
	nextID   int
	tree     *treeNode
	built    bool
	resolver resolver.Func
	engine   eval.RegexEngine
}

// NewOptimized builds a set from the given optimized predicate roots,
// using cfg for the decision-tree tuning parameters. The tree is not
// compiled until the first Evaluate/Analyze call or an explicit
// CompileAST, per §6.
func NewOptimized(roots []ast.Node, cfg Config) *Optimized {
	s := &Optimized{config: cfg}
	for _, r := range roots {
		s.Add(r)
	}
	return s
}

// Add appends a predicate and invalidates any compiled tree.
func (s *Optimized) Add(root ast.Node) int {
	id := s.nextID
	s.nextID++
	s.members = append(s.members, Member{ID: id, Root: root})
	s.tree = nil
	s.built = false
	return id
}

// Update replaces the entire member population and invalidates any
// compiled tree, per §6's update([preds]).
func (s *Optimized) Update(roots []ast.Node) {
	s.members = nil
	s.nextID = 0
	s.tree = nil
	s.built = false
	for _, r := range roots {
		s.Add(r)
	}
}

func (s *Optimized) SetResolver(fn resolver.Func) {
	s.resolver = fn
}

func (s *Optimized) SetRegexEngine(engine eval.RegexEngine) {
	s.engine = engine
}

// CompileAST forces the decision tree to be (re)built now rather than
// lazily on first use.
func (s *Optimized) CompileAST() {
	s.tree = build(s.members, s.config, 0)
	s.built = true
}

// Finalize drops the AST bookkeeping not needed at evaluation time:
// once compiled, the original per-member Root trees held only for
// reference are no longer required, just the tree's own branch and
// residual nodes. It is a no-op if the tree has not been compiled.
func (s *Optimized) Finalize() {
	if !s.built {
		return
	}
	s.members = nil
}

func (s *Optimized) ensureBuilt() {
	if !s.built {
		s.CompileAST()
	}
}

// Evaluate descends the decision tree against doc, evaluating each
// branch at most once (cached by fingerprint for the leaf's residuals,
// per §4.5 step 5), and returns the IDs of every predicate that matches.
func (s *Optimized) Evaluate(doc resolver.Document) []int {
	s.ensureBuilt()
	ctx := eval.New(doc, s.resolver, s.engine)
	var matches []int
	collectMatches(s.tree, ctx, &matches)
	return matches
}

func collectMatches(n *treeNode, ctx *eval.Context, matches *[]int) {
	if isLeaf(n) {
		for _, m := range n.residual {
			if eval.Evaluate(m.Root, ctx).Bool() {
				*matches = append(*matches, m.ID)
			}
		}
		return
	}

	if eval.Evaluate(n.branch, ctx).Bool() {
		collectMatches(n.trueChild, ctx, matches)
	} else {
		collectMatches(n.falseChild, ctx, matches)
	}
}

// Analyze runs Evaluate and additionally reports whether any predicate
// matched, per §6's optimized-set analyze() contract. The failure trail
// and literal captures are accumulated across the whole tree descent,
// not per individual predicate, since the shared context is what makes
// the decision tree's sharing observable.
func (s *Optimized) Analyze(doc resolver.Document) (bool, []int, *eval.Context) {
	s.ensureBuilt()
	ctx := eval.New(doc, s.resolver, s.engine)
	var matches []int
	collectMatches(s.tree, ctx, &matches)
	return len(matches) > 0, matches, ctx
}

// Members returns the current member population. After Finalize, this
// is empty; use the tree's residuals (surfaced via Description) instead.
func (s *Optimized) Members() []Member {
	return append([]Member(nil), s.members...)
}
