package optimize

import (
	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/value"
)

// Cost ranks node kinds from cheapest to most expensive to evaluate,
// per §4.4 rule 5: "constant < literal set contains < comparison on
// identifier < match". Exported so the decision-tree compiler (§4.5)
// can score branch candidates with the same cost table.
func Cost(n ast.Node) int {
	switch v := n.(type) {
	case *ast.ConstantNode, *ast.NumberLitNode, *ast.StringLitNode, *ast.LiteralNode:
		return 0
	case *ast.ContainsNode:
		if _, ok := v.Container.(*ast.LiteralSetNode); ok {
			return 1
		}
		return 2
	case *ast.CompareNode:
		return 2
	case *ast.MatchNode:
		return 3
	case *ast.NegateNode:
		return Cost(v.Child)
	case *ast.AndNode, *ast.OrNode:
		return 2
	default:
		return 2
	}
}

// Selectivity estimates the probability that n evaluates true, used to
// decide which And/Or child is more likely to short-circuit evaluation
// of its sibling and, in the decision-tree compiler, how evenly a
// branch candidate partitions a predicate population. Unknown shapes
// default to 0.5 per the rule's stated fallback.
func Selectivity(n ast.Node) float64 {
	switch v := n.(type) {
	case *ast.ConstantNode:
		if v.Value.Type() == value.Bool {
			if v.Value.Bool() {
				return 1.0
			}
			return 0.0
		}
		return 0.5
	case *ast.CompareNode:
		switch v.Op {
		case ast.OpEq:
			return 0.1
		case ast.OpNe:
			return 0.9
		default:
			return 0.5
		}
	case *ast.ContainsNode:
		if set, ok := v.Container.(*ast.LiteralSetNode); ok {
			count := float64(len(set.Members))
			if count <= 0 {
				return 0
			}
			return count / (count + 10)
		}
		return 0.3
	case *ast.NegateNode:
		return 1.0 - Selectivity(v.Child)
	default:
		return 0.5
	}
}

// reorderBySelectivity implements §4.4 rule 5: within an And, the
// cheaper-and-more-likely-to-fail child moves left; within an Or, the
// cheaper-and-more-likely-to-succeed child moves left. The ordering only
// swaps operands (both are still evaluated on demand through the normal
// short-circuiting And/Or Evaluate), so this never changes meaning.
func reorderBySelectivity(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.AndNode:
		if score(v.Left, false) > score(v.Right, false) {
			return &ast.AndNode{Left: v.Right, Right: v.Left, Pos: v.Pos}
		}
	case *ast.OrNode:
		if score(v.Left, true) > score(v.Right, true) {
			return &ast.OrNode{Left: v.Right, Right: v.Left, Pos: v.Pos}
		}
	}
	return n
}

// score combines cost and selectivity into a single comparable figure:
// lower is preferred to go first. For And, failing fast is good, so a
// lower probability-of-true is preferred; for Or, succeeding fast is
// good, so a higher probability-of-true is preferred (inverted here so
// lower score still wins).
func score(n ast.Node, isOr bool) float64 {
	cost := float64(Cost(n))
	sel := Selectivity(n)
	if isOr {
		sel = 1.0 - sel
	}
	return cost + sel
}
