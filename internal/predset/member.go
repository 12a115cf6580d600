// Package predset implements the two batch-evaluation surfaces of §2/§4.5:
// a SimplePredicateSet that linearly fans out evaluate(doc) across its
// members, and an OptimizedPredicateSet that compiles the population into
// a decision tree sharing common subexpressions across predicates.
package predset

import "github.com/dekarrin/boolpred/internal/ast"

// Member is one predicate's optimized AST as tracked by a predicate set,
// addressed by a stable ID assigned when it is added.
type Member struct {
	ID   int
	Root ast.Node
}
