package optimize

import "github.com/dekarrin/boolpred/internal/ast"

// compileLiteralSet implements §4.4 rule 3: a disjunction of equality
// comparisons against a single identifier, each with a ground right-hand
// side, collapses to `Contains(LiteralSet{...}, identifier)`. Both
// `id = a` and the symmetric `a = id` forms are recognised.
func compileLiteralSet(n ast.Node) ast.Node {
	or, ok := n.(*ast.OrNode)
	if !ok {
		return n
	}

	ident, members, ok := collectEqChain(or)
	if !ok || len(members) < 2 {
		return n
	}

	set := &ast.LiteralSetNode{Members: members, Pos: or.Pos}
	return &ast.ContainsNode{Container: set, Element: &ast.LiteralNode{Name: ident, Pos: or.Pos}, Pos: or.Pos}
}

// collectEqChain walks a right-leaning tree of Or nodes, each of whose
// direct non-Or operand is an `=` comparison against the same
// identifier with a ground counterpart. Returns false if any operand
// doesn't fit that shape.
func collectEqChain(n ast.Node) (identifier string, members []ast.Node, ok bool) {
	switch v := n.(type) {
	case *ast.OrNode:
		leftID, leftMembers, leftOK := collectEqChain(v.Left)
		rightID, rightMembers, rightOK := collectEqChain(v.Right)
		if !leftOK || !rightOK {
			return "", nil, false
		}
		if leftID != "" && rightID != "" && leftID != rightID {
			return "", nil, false
		}
		id := leftID
		if id == "" {
			id = rightID
		}
		return id, append(leftMembers, rightMembers...), true
	case *ast.CompareNode:
		if v.Op != ast.OpEq {
			return "", nil, false
		}
		if lit, groundVal, ok := identWithGround(v.Left, v.Right); ok {
			return lit, []ast.Node{groundVal}, true
		}
		if lit, groundVal, ok := identWithGround(v.Right, v.Left); ok {
			return lit, []ast.Node{groundVal}, true
		}
		return "", nil, false
	default:
		return "", nil, false
	}
}

// identWithGround reports whether a is a LiteralNode (identifier) and b
// is a ground value eligible for set membership, returning the
// identifier name and the ground node.
func identWithGround(a, b ast.Node) (string, ast.Node, bool) {
	ident, isIdent := a.(*ast.LiteralNode)
	if !isIdent || !isGroundSetMember(b) {
		return "", nil, false
	}
	return ident.Name, b, true
}

func isGroundSetMember(n ast.Node) bool {
	switch n.(type) {
	case *ast.NumberLitNode, *ast.StringLitNode, *ast.ConstantNode:
		return true
	default:
		return false
	}
}
