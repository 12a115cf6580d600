package predset

import (
	"sort"

	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/optimize"
	"github.com/dekarrin/boolpred/internal/value"
)

// treeNode is one node of the compiled decision tree. An internal node
// carries a branch expression and its true/false children; a leaf
// carries the residual predicates still live at that point (§4.5 step
// 5). A nil branch marks a leaf.
type treeNode struct {
	branch      ast.Node
	fingerprint string
	trueChild   *treeNode
	falseChild  *treeNode
	residual    []Member
}

func isLeaf(n *treeNode) bool { return n.branch == nil }

// build recursively compiles members into a decision tree, stopping at
// the depth cap or when no candidate clears the minimum-benefit bar.
func build(members []Member, cfg Config, depth int) *treeNode {
	if depth >= cfg.MaxDepth || len(members) < 2 {
		return &treeNode{residual: members}
	}

	cand, ok := pickBranch(members, cfg)
	if !ok {
		return &treeNode{residual: members}
	}

	trueSide, falseSide := partition(members, cand.fingerprint)

	return &treeNode{
		branch:      cand.node,
		fingerprint: cand.fingerprint,
		trueChild:   build(trueSide, cfg, depth+1),
		falseChild:  build(falseSide, cfg, depth+1),
	}
}

type candidate struct {
	fingerprint string
	node        ast.Node
	count       int
	score       float64
}

// pickBranch implements §4.5 steps 1-2: mine every boolean-valued
// subtree across the live members keyed by fingerprint, keep those with
// occurrence count ≥ MinCount, and return the one maximizing a score
// that favors high occurrence, low cost, and an even true/false split —
// ties broken by fingerprint so the build is reproducible.
func pickBranch(members []Member, cfg Config) (candidate, bool) {
	counts := map[string]int{}
	reps := map[string]ast.Node{}

	for _, m := range members {
		seen := map[string]bool{}
		ast.Walk(m.Root, func(n ast.Node) {
			if !isBranchable(n) {
				return
			}
			fp := n.Fingerprint()
			if seen[fp] {
				return
			}
			seen[fp] = true
			counts[fp]++
			reps[fp] = n
		})
	}

	var best candidate
	haveBest := false
	var fps []string
	for fp, c := range counts {
		if c < cfg.MinCount {
			continue
		}
		fps = append(fps, fp)
	}
	sort.Strings(fps)

	for _, fp := range fps {
		node := reps[fp]
		count := counts[fp]
		benefit := benefitRatio(count)
		if benefit < cfg.MinBenefit {
			continue
		}
		sel := optimize.Selectivity(node)
		balance := 1.0 - abs(sel-0.5)*2.0
		cost := float64(optimize.Cost(node))
		s := float64(count) * balance / (cost + 1)
		if !haveBest || s > best.score {
			best = candidate{fingerprint: fp, node: node, count: count, score: s}
			haveBest = true
		}
	}

	return best, haveBest
}

// isBranchable reports whether n is a subexpression whose evaluation
// yields a boolean and is therefore eligible to become a decision-tree
// branch: comparisons, containment, match, and the boolean connectives
// themselves (sharing e.g. a repeated `a and b` sub-conjunction).
func isBranchable(n ast.Node) bool {
	switch n.(type) {
	case *ast.CompareNode, *ast.ContainsNode, *ast.MatchNode, *ast.AndNode, *ast.OrNode, *ast.NegateNode:
		return true
	default:
		return false
	}
}

// benefitRatio estimates the fraction of evaluation work saved by
// hoisting a subexpression seen `count` times: evaluating it once
// instead of `count` times saves (count-1)/count of its cost.
func benefitRatio(count int) float64 {
	if count <= 1 {
		return 0
	}
	return float64(count-1) / float64(count)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// partition implements §4.5 step 3: for each member containing the
// chosen branch, substitute true/false for it and re-optimize; a
// specialization that collapses to `false` drops that member from that
// side, one that collapses to `true` is kept as an unconditional match.
// Members not containing the branch are carried unchanged to both sides.
func partition(members []Member, fingerprint string) (trueSide, falseSide []Member) {
	for _, m := range members {
		if !containsFingerprint(m.Root, fingerprint) {
			trueSide = append(trueSide, m)
			falseSide = append(falseSide, m)
			continue
		}

		trueSpec := optimize.Optimize(optimize.Substitute(m.Root, fingerprint, value.OfBool(true)))
		falseSpec := optimize.Optimize(optimize.Substitute(m.Root, fingerprint, value.OfBool(false)))

		if !isConstantFalse(trueSpec) {
			trueSide = append(trueSide, Member{ID: m.ID, Root: trueSpec})
		}
		if !isConstantFalse(falseSpec) {
			falseSide = append(falseSide, Member{ID: m.ID, Root: falseSpec})
		}
	}
	return trueSide, falseSide
}

func containsFingerprint(root ast.Node, fingerprint string) bool {
	found := false
	ast.Walk(root, func(n ast.Node) {
		if n.Fingerprint() == fingerprint {
			found = true
		}
	})
	return found
}

func isConstantFalse(n ast.Node) bool {
	c, ok := n.(*ast.ConstantNode)
	return ok && c.Value.Type() == value.Bool && !c.Value.Bool()
}
