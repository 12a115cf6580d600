package boolpred

import (
	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/eval"
	"github.com/dekarrin/boolpred/internal/predset"
	"github.com/dekarrin/boolpred/internal/resolver"
)

// SetConfig exposes the §4.5 decision-tree tuning parameters at the
// package boundary.
type SetConfig = predset.Config

// DefaultSetConfig returns the tuning values an OptimizedPredicateSet
// uses when none is given explicitly.
func DefaultSetConfig() SetConfig {
	return predset.DefaultConfig()
}

func rootsOf(preds []*Predicate) []ast.Node {
	roots := make([]ast.Node, 0, len(preds))
	for _, p := range preds {
		if p.IsValid() {
			roots = append(roots, p.AST())
		}
	}
	return roots
}

// SimplePredicateSet fans a document out linearly across every member
// predicate and reports which ones match. It is the baseline batch
// surface of §2; OptimizedPredicateSet must agree with it on every
// document (§8 property 4).
type SimplePredicateSet struct {
	inner *predset.Simple
}

// NewSimplePredicateSet builds a set from preds. Invalid predicates are
// skipped.
func NewSimplePredicateSet(preds []*Predicate) *SimplePredicateSet {
	return &SimplePredicateSet{inner: predset.NewSimple(rootsOf(preds))}
}

// Add appends a valid predicate to the set, returning its member ID.
// Invalid predicates are ignored and return -1.
func (s *SimplePredicateSet) Add(p *Predicate) int {
	if !p.IsValid() {
		return -1
	}
	return s.inner.Add(p.AST())
}

// Update replaces the entire member population.
func (s *SimplePredicateSet) Update(preds []*Predicate) {
	s.inner.Update(rootsOf(preds))
}

// SetResolver installs the identifier-resolution callback used for every
// subsequent evaluation across the whole set.
func (s *SimplePredicateSet) SetResolver(fn resolver.Func) {
	s.inner.SetResolver(fn)
}

// SetRegexEngine overrides the regex collaborator used by every
// subsequent evaluation across the whole set.
func (s *SimplePredicateSet) SetRegexEngine(engine eval.RegexEngine) {
	s.inner.SetRegexEngine(engine)
}

// Evaluate returns the member IDs of every predicate in the set that
// matches doc.
func (s *SimplePredicateSet) Evaluate(doc resolver.Document) []int {
	return s.inner.Evaluate(doc)
}

// OptimizedPredicateSet compiles its member population into a shared
// decision tree per §4.5, reusing evaluation of common subexpressions
// across predicates.
type OptimizedPredicateSet struct {
	inner *predset.Optimized
}

// NewOptimizedPredicateSet builds a set from preds with the given tuning
// configuration. Invalid predicates are skipped.
func NewOptimizedPredicateSet(preds []*Predicate, cfg SetConfig) *OptimizedPredicateSet {
	return &OptimizedPredicateSet{inner: predset.NewOptimized(rootsOf(preds), cfg)}
}

// Add appends a valid predicate and invalidates any compiled tree.
// Invalid predicates are ignored and return -1.
func (s *OptimizedPredicateSet) Add(p *Predicate) int {
	if !p.IsValid() {
		return -1
	}
	return s.inner.Add(p.AST())
}

// Update replaces the entire member population and invalidates any
// compiled tree.
func (s *OptimizedPredicateSet) Update(preds []*Predicate) {
	s.inner.Update(rootsOf(preds))
}

// SetResolver installs the identifier-resolution callback used for every
// subsequent evaluation across the whole set.
func (s *OptimizedPredicateSet) SetResolver(fn resolver.Func) {
	s.inner.SetResolver(fn)
}

// SetRegexEngine overrides the regex collaborator used by every
// subsequent evaluation across the whole set.
func (s *OptimizedPredicateSet) SetRegexEngine(engine eval.RegexEngine) {
	s.inner.SetRegexEngine(engine)
}

// CompileAST forces the decision tree to be (re)built now.
func (s *OptimizedPredicateSet) CompileAST() {
	s.inner.CompileAST()
}

// BuildHint is a snapshot of one compile's branch-selection decisions,
// keyed to the member population it was built from. A host that
// persists a BuildHint (see server's snapshot file) can pass it back to
// CompileWithHint on the next process to skip re-mining subexpressions
// across an unchanged population.
type BuildHint = predset.BuildHint

// Hint captures the branch order of the currently compiled tree, for
// persistence. Must be called before Finalize.
func (s *OptimizedPredicateSet) Hint() BuildHint {
	return s.inner.Hint()
}

// CompileWithHint (re)builds the decision tree, reusing hint's recorded
// branch choices wherever the member population still matches, falling
// back to a full mining compile anywhere it does not.
func (s *OptimizedPredicateSet) CompileWithHint(hint BuildHint) {
	s.inner.CompileWithHint(hint)
}

// Finalize prunes bookkeeping not needed at evaluation time, after the
// tree has been compiled.
func (s *OptimizedPredicateSet) Finalize() {
	s.inner.Finalize()
}

// Description renders the compiled decision tree.
func (s *OptimizedPredicateSet) Description() string {
	return s.inner.Description()
}

// Evaluate returns the member IDs of every predicate that matches doc.
func (s *OptimizedPredicateSet) Evaluate(doc resolver.Document) []int {
	return s.inner.Evaluate(doc)
}

// Analyze evaluates doc against the set and additionally reports the
// combined failure trail and literal captures observed during the tree
// descent.
func (s *OptimizedPredicateSet) Analyze(doc resolver.Document) (bool, []int, AnalysisResult) {
	matched, ids, ctx := s.inner.Analyze(doc)
	return matched, ids, AnalysisResult{
		Matched:  matched,
		Failed:   ctx.Failed(),
		Literals: ctx.Literals(),
	}
}
