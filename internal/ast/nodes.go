package ast

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/boolpred/internal/value"
)

// LiteralNode is a deferred identifier lookup: `name`, resolved against
// the document at evaluation time.
type LiteralNode struct {
	Name string
	Pos  Position
}

func (n *LiteralNode) Kind() Kind          { return KindLiteral }
func (n *LiteralNode) Position() Position  { return n.Pos }
func (n *LiteralNode) Fingerprint() string { return n.Name }
func (n *LiteralNode) Evaluate(ctx Context) value.Value {
	return ctx.Resolve(n.Name)
}
func (n *LiteralNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos))
}
func (n *LiteralNode) Equal(o Node) bool {
	other, ok := o.(*LiteralNode)
	return ok && other.Name == n.Name
}

// StringLitNode is a quoted string constant.
type StringLitNode struct {
	Value string
	Pos   Position
}

func (n *StringLitNode) Kind() Kind          { return KindStringLit }
func (n *StringLitNode) Position() Position  { return n.Pos }
func (n *StringLitNode) Fingerprint() string { return quoteTS(n.Value) }
func (n *StringLitNode) Evaluate(ctx Context) value.Value {
	return value.OfString(n.Value)
}
func (n *StringLitNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos))
}
func (n *StringLitNode) Equal(o Node) bool {
	other, ok := o.(*StringLitNode)
	return ok && other.Value == n.Value
}

func quoteTS(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

// NumberLitNode is a numeric constant, always stored as a float64 per the
// §9 open question: integer and decimal literals are not distinguished.
type NumberLitNode struct {
	Value float64
	Pos   Position
}

func (n *NumberLitNode) Kind() Kind          { return KindNumberLit }
func (n *NumberLitNode) Position() Position  { return n.Pos }
func (n *NumberLitNode) Fingerprint() string { return value.OfNumber(n.Value).String() }
func (n *NumberLitNode) Evaluate(ctx Context) value.Value {
	return value.OfNumber(n.Value)
}
func (n *NumberLitNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos))
}
func (n *NumberLitNode) Equal(o Node) bool {
	other, ok := o.(*NumberLitNode)
	return ok && other.Value == n.Value
}

// ConstantNode is one of true, false, undefined, null, empty.
type ConstantNode struct {
	Value value.Value
	Pos   Position
}

func (n *ConstantNode) Kind() Kind          { return KindConstant }
func (n *ConstantNode) Position() Position  { return n.Pos }
func (n *ConstantNode) Fingerprint() string { return n.Value.String() }
func (n *ConstantNode) Evaluate(ctx Context) value.Value {
	return n.Value
}
func (n *ConstantNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos))
}
func (n *ConstantNode) Equal(o Node) bool {
	other, ok := o.(*ConstantNode)
	return ok && other.Value.Equal(n.Value)
}

// RegexNode is a /pattern/flags literal. The compiled regex is cached
// lazily via ctx.CompileRegex so the host regex engine is only invoked
// once per node (§4.3).
type RegexNode struct {
	Pattern string
	Flags   string
	Pos     Position
}

func (n *RegexNode) Kind() Kind          { return KindRegex }
func (n *RegexNode) Position() Position  { return n.Pos }
func (n *RegexNode) Fingerprint() string { return "/" + n.Pattern + "/" + n.Flags }
func (n *RegexNode) Evaluate(ctx Context) value.Value {
	re, err := ctx.CompileRegex(n)
	if err != nil {
		return value.UndefinedValue
	}
	if compiled, ok := re.(*regexp.Regexp); ok {
		return value.OfRegex(compiled, n.Pattern)
	}
	return value.OfRegex(nil, n.Pattern)
}
func (n *RegexNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos))
}
func (n *RegexNode) Equal(o Node) bool {
	other, ok := o.(*RegexNode)
	return ok && other.Pattern == n.Pattern && other.Flags == n.Flags
}

// LiteralSetNode is a `{a, b, c}` set literal, restricted to ground
// members (literal, numeric, or constant values — never identifiers, per
// the §3 invariant). Construction is validated in the parser/semantic
// pass; by the time one reaches here it is guaranteed ground.
type LiteralSetNode struct {
	Members []Node
	Pos     Position

	// rep is lazily built by eval/optimize on first Contains check and
	// cached here: bitset for small-int members, hash set for strings,
	// sorted slice otherwise (§4.3).
	rep      setRepresentation
	repBuilt bool
}

func (n *LiteralSetNode) Kind() Kind         { return KindLiteralSet }
func (n *LiteralSetNode) Position() Position { return n.Pos }
func (n *LiteralSetNode) Fingerprint() string {
	parts := make([]string, len(n.Members))
	for i, m := range n.Members {
		parts[i] = m.Fingerprint()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (n *LiteralSetNode) Evaluate(ctx Context) value.Value {
	elems := make([]value.Value, len(n.Members))
	for i, m := range n.Members {
		elems[i] = m.Evaluate(ctx)
	}
	return value.OfSet(elems)
}
func (n *LiteralSetNode) Describe(depth int) string {
	var sb strings.Builder
	sb.WriteString(indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos)))
	for _, m := range n.Members {
		sb.WriteString("\n")
		sb.WriteString(m.Describe(depth + 1))
	}
	return sb.String()
}
func (n *LiteralSetNode) Equal(o Node) bool {
	other, ok := o.(*LiteralSetNode)
	if !ok || len(other.Members) != len(n.Members) {
		return false
	}
	for i := range n.Members {
		if !n.Members[i].Equal(other.Members[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether val is a member of the set, building (and
// caching) the dense representation described in §4.3 on first use.
func (n *LiteralSetNode) Contains(ctx Context, val value.Value) bool {
	if !n.repBuilt {
		elems := make([]value.Value, len(n.Members))
		for i, m := range n.Members {
			elems[i] = m.Evaluate(ctx)
		}
		n.rep = buildSetRepresentation(elems)
		n.repBuilt = true
	}
	return n.rep.Contains(val)
}

// NegateNode is logical `not`.
type NegateNode struct {
	Child Node
	Pos   Position
}

func (n *NegateNode) Kind() Kind          { return KindNegate }
func (n *NegateNode) Position() Position  { return n.Pos }
func (n *NegateNode) Fingerprint() string { return "not (" + n.Child.Fingerprint() + ")" }
func (n *NegateNode) Evaluate(ctx Context) value.Value {
	inner := EvalCached(n.Child, ctx).Bool()
	result := !inner
	if !result {
		ctx.RecordFailure(fmt.Sprintf("negation of %s was %t for %s at %s", n.Child.Fingerprint(), inner, n.Kind(), n.Pos))
	}
	return value.OfBool(result)
}
func (n *NegateNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos)) + "\n" + n.Child.Describe(depth+1)
}
func (n *NegateNode) Equal(o Node) bool {
	other, ok := o.(*NegateNode)
	return ok && n.Child.Equal(other.Child)
}

// AndNode is logical `and`. The right operand is only evaluated if the
// left is true (§4.3).
type AndNode struct {
	Left, Right Node
	Pos         Position
}

func (n *AndNode) Kind() Kind          { return KindAnd }
func (n *AndNode) Position() Position  { return n.Pos }
func (n *AndNode) Fingerprint() string { return "(" + n.Left.Fingerprint() + " and " + n.Right.Fingerprint() + ")" }
func (n *AndNode) Evaluate(ctx Context) value.Value {
	left := EvalCached(n.Left, ctx)
	if !left.Bool() {
		ctx.RecordFailure(fmt.Sprintf("left side: %s was false for %s at %s", n.Left.Fingerprint(), n.Kind(), n.Pos))
		return value.OfBool(false)
	}
	right := EvalCached(n.Right, ctx)
	if !right.Bool() {
		ctx.RecordFailure(fmt.Sprintf("right side: %s was false for %s at %s", n.Right.Fingerprint(), n.Kind(), n.Pos))
		return value.OfBool(false)
	}
	return value.OfBool(true)
}
func (n *AndNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos)) + "\n" +
		n.Left.Describe(depth+1) + "\n" + n.Right.Describe(depth+1)
}
func (n *AndNode) Equal(o Node) bool {
	other, ok := o.(*AndNode)
	return ok && n.Left.Equal(other.Left) && n.Right.Equal(other.Right)
}

// OrNode is logical `or`. The right operand is only evaluated if the left
// is false (§4.3).
type OrNode struct {
	Left, Right Node
	Pos         Position
}

func (n *OrNode) Kind() Kind          { return KindOr }
func (n *OrNode) Position() Position  { return n.Pos }
func (n *OrNode) Fingerprint() string { return "(" + n.Left.Fingerprint() + " or " + n.Right.Fingerprint() + ")" }
func (n *OrNode) Evaluate(ctx Context) value.Value {
	left := EvalCached(n.Left, ctx)
	if left.Bool() {
		return value.OfBool(true)
	}
	right := EvalCached(n.Right, ctx)
	if right.Bool() {
		return value.OfBool(true)
	}
	ctx.RecordFailure(fmt.Sprintf("left side: %s was false for %s at %s", n.Left.Fingerprint(), n.Kind(), n.Pos))
	ctx.RecordFailure(fmt.Sprintf("right side: %s was false for %s at %s", n.Right.Fingerprint(), n.Kind(), n.Pos))
	return value.OfBool(false)
}
func (n *OrNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos)) + "\n" +
		n.Left.Describe(depth+1) + "\n" + n.Right.Describe(depth+1)
}
func (n *OrNode) Equal(o Node) bool {
	other, ok := o.(*OrNode)
	return ok && n.Left.Equal(other.Left) && n.Right.Equal(other.Right)
}

// CompareOp enumerates the comparison operators of §3.
type CompareOp int

const (
	OpLt CompareOp = iota
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpIs
	OpIsNot
)

func (op CompareOp) String() string {
	switch op {
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpIs:
		return "is"
	case OpIsNot:
		return "is not"
	default:
		return fmt.Sprintf("CompareOp(%d)", int(op))
	}
}

// CompareNode is one of <, <=, >, >=, =, !=, is, is not.
type CompareNode struct {
	Op          CompareOp
	Left, Right Node
	Pos         Position
}

func (n *CompareNode) Kind() Kind { return KindCompare }
func (n *CompareNode) Position() Position { return n.Pos }
func (n *CompareNode) Fingerprint() string {
	return "(" + n.Left.Fingerprint() + " " + n.Op.String() + " " + n.Right.Fingerprint() + ")"
}
func (n *CompareNode) Evaluate(ctx Context) value.Value {
	left := EvalCached(n.Left, ctx)
	right := EvalCached(n.Right, ctx)

	if n.Op != OpIs && n.Op != OpIsNot {
		if left.Type() == value.Undefined {
			ctx.RecordFailure(fmt.Sprintf("left side: %s was undefined for %s at %s", n.Left.Fingerprint(), n.Kind(), n.Pos))
			return value.OfBool(false)
		}
		if right.Type() == value.Undefined {
			ctx.RecordFailure(fmt.Sprintf("right side: %s was undefined for %s at %s", n.Right.Fingerprint(), n.Kind(), n.Pos))
			return value.OfBool(false)
		}
	}

	var result bool
	switch n.Op {
	case OpLt:
		result = left.Less(right)
	case OpLe:
		result = left.Less(right) || left.Equal(right)
	case OpGt:
		result = left.Greater(right)
	case OpGe:
		result = left.Greater(right) || left.Equal(right)
	case OpEq:
		result = left.Equal(right)
	case OpNe:
		result = !left.Equal(right)
	case OpIs:
		result = left.Is(right)
	case OpIsNot:
		result = !left.Is(right)
	}

	if !result {
		ctx.RecordFailure(fmt.Sprintf("'%s' %s '%s' was false for %s at %s", left, n.Op, right, n.Kind(), n.Pos))
	}
	ctx.CaptureLiteral(n.Fingerprint(), value.OfBool(result))
	return value.OfBool(result)
}
func (n *CompareNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos)) + "\n" +
		n.Left.Describe(depth+1) + "\n" + n.Right.Describe(depth+1)
}
func (n *CompareNode) Equal(o Node) bool {
	other, ok := o.(*CompareNode)
	return ok && n.Op == other.Op && n.Left.Equal(other.Left) && n.Right.Equal(other.Right)
}

// ContainsNode is `container contains element`.
type ContainsNode struct {
	Container, Element Node
	Pos                 Position
}

func (n *ContainsNode) Kind() Kind { return KindContains }
func (n *ContainsNode) Position() Position { return n.Pos }
func (n *ContainsNode) Fingerprint() string {
	return "(" + n.Container.Fingerprint() + " contains " + n.Element.Fingerprint() + ")"
}
func (n *ContainsNode) Evaluate(ctx Context) value.Value {
	elem := EvalCached(n.Element, ctx)

	if set, ok := n.Container.(*LiteralSetNode); ok {
		result := set.Contains(ctx, elem)
		if !result {
			ctx.RecordFailure(fmt.Sprintf("right side: '%s' not in left side: %s for %s at %s", elem, set.Fingerprint(), n.Kind(), n.Pos))
		}
		return value.OfBool(result)
	}

	container := EvalCached(n.Container, ctx)
	if container.Type() == value.Undefined || !container.IsContainer() {
		ctx.RecordFailure(fmt.Sprintf("left side: %s was not a container for %s at %s", n.Container.Fingerprint(), n.Kind(), n.Pos))
		return value.OfBool(false)
	}

	result := container.Contains(elem)
	if !result {
		ctx.RecordFailure(fmt.Sprintf("right side: '%s' not in left side: %s for %s at %s", elem, container, n.Kind(), n.Pos))
	}
	return value.OfBool(result)
}
func (n *ContainsNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos)) + "\n" +
		n.Container.Describe(depth+1) + "\n" + n.Element.Describe(depth+1)
}
func (n *ContainsNode) Equal(o Node) bool {
	other, ok := o.(*ContainsNode)
	return ok && n.Container.Equal(other.Container) && n.Element.Equal(other.Element)
}

// MatchNode is `identifier matches regex`.
type MatchNode struct {
	Identifier string
	Regex      *RegexNode
	Pos        Position
}

func (n *MatchNode) Kind() Kind          { return KindMatch }
func (n *MatchNode) Position() Position  { return n.Pos }
func (n *MatchNode) Fingerprint() string { return "(" + n.Identifier + " matches " + n.Regex.Fingerprint() + ")" }
func (n *MatchNode) Evaluate(ctx Context) value.Value {
	left := ctx.Resolve(n.Identifier)
	if left.Type() != value.String {
		ctx.RecordFailure(fmt.Sprintf("left side: %s was not a string for %s at %s", n.Identifier, n.Kind(), n.Pos))
		return value.OfBool(false)
	}

	re, err := ctx.CompileRegex(n.Regex)
	if err != nil {
		ctx.RecordFailure(fmt.Sprintf("regex %s failed to compile for %s at %s", n.Regex.Fingerprint(), n.Kind(), n.Pos))
		return value.OfBool(false)
	}

	result := re.MatchString(left.Str())
	if !result {
		ctx.RecordFailure(fmt.Sprintf("'%s' did not match %s for %s at %s", left, n.Regex.Fingerprint(), n.Kind(), n.Pos))
	}
	return value.OfBool(result)
}
func (n *MatchNode) Describe(depth int) string {
	return indent(depth, fmt.Sprintf("%s at %s", n.Kind(), n.Pos)) + "\n" +
		indent(depth+1, fmt.Sprintf("IdentifierNode(%s) at %s", n.Identifier, n.Pos)) + "\n" +
		n.Regex.Describe(depth + 1)
}
func (n *MatchNode) Equal(o Node) bool {
	other, ok := o.(*MatchNode)
	return ok && n.Identifier == other.Identifier && n.Regex.Equal(other.Regex)
}

// indent prepends depth levels of four-space child indent to s.
func indent(depth int, s string) string {
	if depth == 0 {
		return s
	}
	return strings.Repeat("    ", depth) + s
}
