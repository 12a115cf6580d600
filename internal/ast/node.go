// Package ast defines the predicate DSL's abstract syntax tree: a tagged
// family of node types, each carrying a source position and implementing
// a single Evaluate and a single description-rendering operation, in the
// spirit of the teacher's ASTNode family (tunascript/syntax/ast.go) but
// without its AsXNode() panic-accessors — Go's type switch already gives
// exhaustive, safe access to the concrete node kinds.
package ast

import (
	"fmt"

	"github.com/dekarrin/boolpred/internal/value"
)

// Kind tags the concrete type of a Node.
type Kind int

const (
	KindLiteral Kind = iota
	KindStringLit
	KindNumberLit
	KindConstant
	KindRegex
	KindLiteralSet
	KindNegate
	KindAnd
	KindOr
	KindCompare
	KindContains
	KindMatch
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "IdentifierNode"
	case KindStringLit:
		return "StringNode"
	case KindNumberLit:
		return "NumberNode"
	case KindConstant:
		return "ConstantNode"
	case KindRegex:
		return "RegexNode"
	case KindLiteralSet:
		return "LiteralSetNode"
	case KindNegate:
		return "NegateOperator"
	case KindAnd:
		return "AndOperator"
	case KindOr:
		return "OrOperator"
	case KindCompare:
		return "CompareOperator"
	case KindContains:
		return "ContainsOperator"
	case KindMatch:
		return "MatchOperator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Position is a 1-based line, 0-based column source position, per §4.1.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("line: %d, col %d", p.Line, p.Col)
}

// Context is everything a Node needs from its evaluation environment.
// Defined here (rather than in package eval) so Node.Evaluate can take it
// as a parameter without an import cycle; package eval provides the
// concrete implementation.
type Context interface {
	// Resolve looks up an identifier's value, consulting and populating
	// the per-evaluation identifier cache (§4.2 rule 4).
	Resolve(name string) value.Value

	// CacheFingerprint consults the subexpression cache for a
	// previously computed result for the given fingerprint.
	CacheFingerprint(fingerprint string) (value.Value, bool)

	// StoreFingerprint records a freshly computed subexpression result
	// under its fingerprint.
	StoreFingerprint(fingerprint string, v value.Value)

	// RecordFailure appends a human-readable reason to the failure
	// trail (§4.3, §6 failure-message format).
	RecordFailure(reason string)

	// CaptureLiteral records the value observed for a textual
	// subexpression, surfaced via analyze()'s `literals` map.
	CaptureLiteral(expr string, v value.Value)

	// CompileRegex lazily compiles (and caches) the regex object for a
	// RegexNode, consulting the host-supplied regex engine exactly
	// once per AST node (§4.3 Match rule).
	CompileRegex(n *RegexNode) (Regexp, error)
}

// Regexp is the minimal contract the host's regex engine must satisfy;
// package regexp's *Regexp already implements it.
type Regexp interface {
	MatchString(s string) bool
}

// Node is the single interface implemented by every AST node kind.
type Node interface {
	Kind() Kind
	Position() Position

	// Evaluate computes this node's value against ctx. Non-boolean
	// nodes (literals, identifiers, regex, literal sets) yield their
	// natural value; boolean operators yield a Bool value.
	Evaluate(ctx Context) value.Value

	// Tunascript-style canonical rendering, used both as the
	// human-facing predicate source reconstruction and, critically, as
	// the Fingerprint used for subexpression caching and CSE (§4.3,
	// §4.5): two nodes with the same Fingerprint are semantically
	// interchangeable.
	Fingerprint() string

	// Describe renders this node and its children using the §6
	// description format, each child indented four spaces further than
	// its parent.
	Describe(depth int) string

	// Equal reports whether two nodes have the same structure,
	// ignoring source position.
	Equal(o Node) bool
}

// EvalCached evaluates n against ctx, consulting the subexpression cache
// by fingerprint first and populating it on a miss (§4.3: "The
// subexpression cache is consulted by fingerprint before evaluating any
// subtree"). Every composite node evaluates its children through this
// helper rather than calling child.Evaluate directly, so repeated
// subexpressions anywhere in the tree are free after their first
// evaluation.
func EvalCached(n Node, ctx Context) value.Value {
	fp := n.Fingerprint()
	if v, ok := ctx.CacheFingerprint(fp); ok {
		return v
	}
	v := n.Evaluate(ctx)
	ctx.StoreFingerprint(fp, v)
	return v
}

// Walk calls fn for n and then for every descendant of n, in the
// pre-order used throughout the optimizer and the CSE miner.
func Walk(n Node, fn func(Node)) {
	fn(n)
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Children returns the direct operand nodes of n, or nil for leaves.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *NegateNode:
		return []Node{v.Child}
	case *AndNode:
		return []Node{v.Left, v.Right}
	case *OrNode:
		return []Node{v.Left, v.Right}
	case *CompareNode:
		return []Node{v.Left, v.Right}
	case *ContainsNode:
		return []Node{v.Container, v.Element}
	case *MatchNode:
		return []Node{v.Regex}
	case *LiteralSetNode:
		out := make([]Node, len(v.Members))
		copy(out, v.Members)
		return out
	default:
		return nil
	}
}
