package predset

import (
	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/eval"
	"github.com/dekarrin/boolpred/internal/resolver"
)

// Simple is the linear-fan-out predicate set of §2: evaluate(doc) walks
// every member in order and collects the ones that match. No sharing of
// work across members is attempted; it exists as the baseline that
// Optimized must agree with (§8 property 4).
type Simple struct {
	members  []Member
	nextID   int
	resolver resolver.Func
	engine   eval.RegexEngine
}

// NewSimple builds a set from the given optimized predicate roots.
func NewSimple(roots []ast.Node) *Simple {
	s := &Simple{}
	for _, r := range roots {
		s.Add(r)
	}
	return s
}

// Add appends a predicate to the set and returns its assigned ID.
func (s *Simple) Add(root ast.Node) int {
	id := s.nextID
	s.nextID++
	s.members = append(s.members, Member{ID: id, Root: root})
	return id
}

// Update replaces the entire member population, per §6's update([preds]).
// IDs are reassigned from zero.
func (s *Simple) Update(roots []ast.Node) {
	s.members = nil
	s.nextID = 0
	for _, r := range roots {
		s.Add(r)
	}
}

// SetResolver installs the identifier-resolution callback used for every
// subsequent evaluation.
func (s *Simple) SetResolver(fn resolver.Func) {
	s.resolver = fn
}

// SetRegexEngine overrides the regex collaborator used during evaluation.
func (s *Simple) SetRegexEngine(engine eval.RegexEngine) {
	s.engine = engine
}

// Evaluate returns the IDs of every member predicate that matches doc.
func (s *Simple) Evaluate(doc resolver.Document) []int {
	var matches []int
	for _, m := range s.members {
		ctx := eval.New(doc, s.resolver, s.engine)
		if eval.Evaluate(m.Root, ctx).Bool() {
			matches = append(matches, m.ID)
		}
	}
	return matches
}

// Members returns the current population, in insertion order.
func (s *Simple) Members() []Member {
	return append([]Member(nil), s.members...)
}
