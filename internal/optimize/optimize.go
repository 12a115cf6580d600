// Package optimize implements the single-predicate AST optimizer of
// §4.4: constant folding, boolean absorption, literal-set compilation,
// contradiction/tautology elimination over one identifier, and
// selectivity-based child reordering. It is applied once to a valid AST
// before first evaluation.
package optimize

import (
	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/eval"
	"github.com/dekarrin/boolpred/internal/resolver"
	"github.com/dekarrin/boolpred/internal/value"
)

const maxFixedPointIterations = 32

// Optimize rewrites root to an equivalent but faster tree, applying all
// rewrites in §4.4 to a fixed point.
func Optimize(root ast.Node) ast.Node {
	cur := root
	for i := 0; i < maxFixedPointIterations; i++ {
		next := pass(cur)
		if next.Fingerprint() == cur.Fingerprint() {
			return next
		}
		cur = next
	}
	return cur
}

func pass(n ast.Node) ast.Node {
	n = rewriteChildren(n, pass)
	n = foldConstant(n)
	n = absorb(n)
	n = compileLiteralSet(n)
	n = simplifyChain(n)
	n = reorderBySelectivity(n)
	return n
}

// rewriteChildren applies fn to every direct child of n, returning a new
// node of the same kind with the rewritten children.
func rewriteChildren(n ast.Node, fn func(ast.Node) ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.NegateNode:
		return &ast.NegateNode{Child: fn(v.Child), Pos: v.Pos}
	case *ast.AndNode:
		return &ast.AndNode{Left: fn(v.Left), Right: fn(v.Right), Pos: v.Pos}
	case *ast.OrNode:
		return &ast.OrNode{Left: fn(v.Left), Right: fn(v.Right), Pos: v.Pos}
	case *ast.CompareNode:
		return &ast.CompareNode{Op: v.Op, Left: fn(v.Left), Right: fn(v.Right), Pos: v.Pos}
	case *ast.ContainsNode:
		return &ast.ContainsNode{Container: fn(v.Container), Element: fn(v.Element), Pos: v.Pos}
	default:
		return n
	}
}

// isGround reports whether n is a literal/constant that never consults
// the document: NumberLit, StringLit, ConstantNode, or RegexNode.
func isGround(n ast.Node) bool {
	switch n.(type) {
	case *ast.NumberLitNode, *ast.StringLitNode, *ast.ConstantNode, *ast.RegexNode:
		return true
	default:
		return false
	}
}

// dependsOnDocument reports whether evaluating n could consult the
// document (directly via an identifier, or transitively through a
// child), making it ineligible for constant folding.
func dependsOnDocument(n ast.Node) bool {
	found := false
	ast.Walk(n, func(cur ast.Node) {
		switch cur.(type) {
		case *ast.LiteralNode, *ast.MatchNode:
			found = true
		}
	})
	return found
}

// foldConstant evaluates n at compile time and replaces it with a
// ConstantNode if doing so is both possible (n doesn't reach the
// document) and not already the case.
func foldConstant(n ast.Node) ast.Node {
	if isGround(n) || dependsOnDocument(n) {
		return n
	}
	if _, ok := n.(*ast.LiteralSetNode); ok {
		return n // already ground per construction; folding would lose set-rep info
	}

	ctx := eval.New(resolver.MapDocument{}, nil, nil)
	result := ast.EvalCached(n, ctx)
	return &ast.ConstantNode{Value: result, Pos: n.Position()}
}

func boolConst(n ast.Node) (bool, bool) {
	c, ok := n.(*ast.ConstantNode)
	if !ok || c.Value.Type() != value.Bool {
		return false, false
	}
	return c.Value.Bool(), true
}

// absorb applies the §4.4 rule 2 boolean absorption identities.
func absorb(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.AndNode:
		if b, ok := boolConst(v.Left); ok {
			if !b {
				return &ast.ConstantNode{Value: value.OfBool(false), Pos: v.Pos}
			}
			return v.Right
		}
		if b, ok := boolConst(v.Right); ok {
			if !b {
				return &ast.ConstantNode{Value: value.OfBool(false), Pos: v.Pos}
			}
			return v.Left
		}
	case *ast.OrNode:
		if b, ok := boolConst(v.Left); ok {
			if b {
				return &ast.ConstantNode{Value: value.OfBool(true), Pos: v.Pos}
			}
			return v.Right
		}
		if b, ok := boolConst(v.Right); ok {
			if b {
				return &ast.ConstantNode{Value: value.OfBool(true), Pos: v.Pos}
			}
			return v.Left
		}
	case *ast.NegateNode:
		if inner, ok := v.Child.(*ast.NegateNode); ok {
			return inner.Child
		}
		if b, ok := boolConst(v.Child); ok {
			return &ast.ConstantNode{Value: value.OfBool(!b), Pos: v.Pos}
		}
	}
	return n
}
