package optimize

import (
	"math"

	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/value"
)

// simplifyChain implements §4.4 rule 4: conjunctions of comparisons
// against ground values on the same identifier are checked for
// satisfiability and, where a monotone simplification provably preserves
// meaning, collapsed. Shapes outside the cases handled below (e.g.
// comparisons mixing strings with inequality operators) are left alone,
// per the rule's "unrecognized shapes are left alone" clause.
func simplifyChain(n ast.Node) ast.Node {
	and, ok := n.(*ast.AndNode)
	if !ok {
		return n
	}

	leaves := flattenAnd(and)
	buckets := make(map[string][]*ast.CompareNode)
	order := []string{}
	var other []ast.Node

	for _, leaf := range leaves {
		if cmp, ident, ok := numericIdentCompare(leaf); ok {
			if _, seen := buckets[ident]; !seen {
				order = append(order, ident)
			}
			buckets[ident] = append(buckets[ident], cmp)
			continue
		}
		other = append(other, leaf)
	}

	changed := false
	var rebuilt []ast.Node
	for _, ident := range order {
		members := buckets[ident]
		if len(members) < 2 {
			rebuilt = append(rebuilt, members[0])
			continue
		}
		simplified, contradiction, ok := simplifyNumericBucket(ident, members)
		if !ok {
			for _, m := range members {
				rebuilt = append(rebuilt, m)
			}
			continue
		}
		changed = true
		if contradiction {
			return &ast.ConstantNode{Value: value.OfBool(false), Pos: and.Pos}
		}
		rebuilt = append(rebuilt, simplified...)
	}

	if !changed {
		return n
	}

	all := append(rebuilt, other...)
	return reassembleAnd(all, and.Pos)
}

func flattenAnd(n ast.Node) []ast.Node {
	and, ok := n.(*ast.AndNode)
	if !ok {
		return []ast.Node{n}
	}
	return append(flattenAnd(and.Left), flattenAnd(and.Right)...)
}

func reassembleAnd(nodes []ast.Node, pos ast.Position) ast.Node {
	if len(nodes) == 0 {
		return &ast.ConstantNode{Value: value.OfBool(true), Pos: pos}
	}
	cur := nodes[0]
	for _, next := range nodes[1:] {
		cur = &ast.AndNode{Left: cur, Right: next, Pos: pos}
	}
	return cur
}

// numericIdentCompare reports whether leaf is a comparison between a
// single identifier and a ground numeric value (in either operand
// order), normalizing so the identifier is always Left.
func numericIdentCompare(leaf ast.Node) (*ast.CompareNode, string, bool) {
	cmp, ok := leaf.(*ast.CompareNode)
	if !ok {
		return nil, "", false
	}
	if cmp.Op == ast.OpIs || cmp.Op == ast.OpIsNot {
		return nil, "", false
	}

	if lit, ok := cmp.Left.(*ast.LiteralNode); ok {
		if num, ok := cmp.Right.(*ast.NumberLitNode); ok {
			_ = num
			return cmp, lit.Name, true
		}
	}
	if lit, ok := cmp.Right.(*ast.LiteralNode); ok {
		if _, ok := cmp.Left.(*ast.NumberLitNode); ok {
			flipped := &ast.CompareNode{Op: flipOp(cmp.Op), Left: cmp.Right, Right: cmp.Left, Pos: cmp.Pos}
			return flipped, lit.Name, true
		}
	}
	return nil, "", false
}

func flipOp(op ast.CompareOp) ast.CompareOp {
	switch op {
	case ast.OpLt:
		return ast.OpGt
	case ast.OpLe:
		return ast.OpGe
	case ast.OpGt:
		return ast.OpLt
	case ast.OpGe:
		return ast.OpLe
	default:
		return op
	}
}

// bucket is the accumulated constraint state for one identifier's
// numeric comparisons within a conjunction.
type bucket struct {
	hasEq       bool
	eqVal       float64
	hasLower    bool
	lower       float64
	lowerIncl   bool
	hasUpper    bool
	upper       float64
	upperIncl   bool
	notEquals   []float64
}

// simplifyNumericBucket combines a set of ground numeric comparisons on
// one identifier, reporting the simplified replacement nodes, whether
// the conjunction is unsatisfiable, and whether a decision could be
// reached at all (false `ok` means the shape was left alone).
func simplifyNumericBucket(ident string, members []*ast.CompareNode) (simplified []ast.Node, contradiction bool, ok bool) {
	var b bucket
	b.lower, b.upper = math.Inf(-1), math.Inf(1)

	for _, m := range members {
		numNode, isNum := m.Right.(*ast.NumberLitNode)
		if !isNum {
			return nil, false, false
		}
		n := numNode.Value

		switch m.Op {
		case ast.OpEq:
			if b.hasEq && b.eqVal != n {
				return nil, true, true
			}
			b.hasEq, b.eqVal = true, n
		case ast.OpNe:
			b.notEquals = append(b.notEquals, n)
		case ast.OpLt:
			if !b.hasUpper || n < b.upper || (n == b.upper && b.upperIncl) {
				b.upper, b.upperIncl, b.hasUpper = n, false, true
			}
		case ast.OpLe:
			if !b.hasUpper || n < b.upper || (n == b.upper && !b.upperIncl) {
				b.upper, b.upperIncl, b.hasUpper = n, true, true
			}
		case ast.OpGt:
			if !b.hasLower || n > b.lower || (n == b.lower && b.lowerIncl) {
				b.lower, b.lowerIncl, b.hasLower = n, false, true
			}
		case ast.OpGe:
			if !b.hasLower || n > b.lower || (n == b.lower && !b.lowerIncl) {
				b.lower, b.lowerIncl, b.hasLower = n, true, true
			}
		default:
			return nil, false, false
		}
	}

	if b.hasLower && b.hasUpper {
		if b.lower > b.upper || (b.lower == b.upper && !(b.lowerIncl && b.upperIncl)) {
			return nil, true, true
		}
	}
	if b.hasEq {
		if b.hasLower && (b.eqVal < b.lower || (b.eqVal == b.lower && !b.lowerIncl)) {
			return nil, true, true
		}
		if b.hasUpper && (b.eqVal > b.upper || (b.eqVal == b.upper && !b.upperIncl)) {
			return nil, true, true
		}
		for _, ne := range b.notEquals {
			if b.eqVal == ne {
				return nil, true, true
			}
		}
	}

	return rebuildBucket(ident, b), false, true
}

func rebuildBucket(ident string, b bucket) []ast.Node {
	id := func() ast.Node { return &ast.LiteralNode{Name: ident} }
	numLit := func(v float64) ast.Node { return &ast.NumberLitNode{Value: v} }

	var out []ast.Node
	if b.hasEq {
		out = append(out, &ast.CompareNode{Op: ast.OpEq, Left: id(), Right: numLit(b.eqVal)})
		return out
	}
	if b.hasLower {
		op := ast.OpGe
		if !b.lowerIncl {
			op = ast.OpGt
		}
		out = append(out, &ast.CompareNode{Op: op, Left: id(), Right: numLit(b.lower)})
	}
	if b.hasUpper {
		op := ast.OpLe
		if !b.upperIncl {
			op = ast.OpLt
		}
		out = append(out, &ast.CompareNode{Op: op, Left: id(), Right: numLit(b.upper)})
	}
	for _, ne := range b.notEquals {
		out = append(out, &ast.CompareNode{Op: ast.OpNe, Left: id(), Right: numLit(ne)})
	}
	if len(out) == 0 {
		out = append(out, &ast.ConstantNode{Value: value.OfBool(true)})
	}
	return out
}
