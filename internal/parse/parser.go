// Package parse implements the recursive-descent predicate parser,
// grounded on the teacher's hand-rolled tunascript parser
// (internal/tunascript/parser.go) rather than its later ictiobus/LR
// frontend: the grammar here has a fixed, small precedence ladder (or,
// and, not, comparison, primary per §4.1) that a table-driven LR parser
// would be overkill for.
package parse

import (
	"strconv"
	"strings"

	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/lex"
	"github.com/dekarrin/boolpred/internal/perrors"
)

// Result is everything parsing a predicate produces: zero or one root
// AST node, plus accumulated diagnostics. A predicate with any
// diagnostic is invalid per §4.1 and Root will be nil.
type Result struct {
	Root  ast.Node
	Diags []perrors.Diagnostic
}

// Parse lexes and parses source into an AST, per §4.1's grammar and
// precedence: or (weakest), and, not, comparison/contains/matches/is,
// primary (strongest).
func Parse(source string) Result {
	tokens, lexDiags := lex.Lex(source)

	p := &parser{tokens: tokens, source: source}
	var root ast.Node

	if len(lexDiags) == 0 {
		root = p.parseExpr()
		if p.cur().Class != lex.EOF {
			p.errf(p.cur(), "unexpected %s after predicate expression", p.cur().Class)
		}
	}

	diags := append(append([]perrors.Diagnostic(nil), lexDiags...), p.diags...)
	if len(diags) > 0 {
		return Result{Diags: diags}
	}
	return Result{Root: root, Diags: nil}
}

type parser struct {
	tokens []lex.Token
	pos    int
	source string
	diags  []perrors.Diagnostic
}

func (p *parser) cur() lex.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() lex.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(class lex.Class) bool {
	return p.cur().Class == class
}

func (p *parser) expect(class lex.Class) lex.Token {
	if !p.at(class) {
		p.errf(p.cur(), "expected %s but found %s", class, p.cur().Class)
		return p.cur()
	}
	return p.advance()
}

func (p *parser) errf(t lex.Token, format string, a ...any) {
	p.diags = append(p.diags, perrors.New(perrors.Syntax, t.Line, t.Col, format, a...))
}

func (p *parser) semanticf(t lex.Token, format string, a ...any) {
	p.diags = append(p.diags, perrors.New(perrors.Semantic, t.Line, t.Col, format, a...))
}

func pos(t lex.Token) ast.Position { return ast.Position{Line: t.Line, Col: t.Col} }

// parseExpr := or-expr
func (p *parser) parseExpr() ast.Node {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Node {
	left := p.parseAnd()
	for p.at(lex.Or) {
		t := p.advance()
		right := p.parseAnd()
		left = &ast.OrNode{Left: left, Right: right, Pos: pos(t)}
	}
	return left
}

func (p *parser) parseAnd() ast.Node {
	left := p.parseNot()
	for p.at(lex.And) {
		t := p.advance()
		right := p.parseNot()
		left = &ast.AndNode{Left: left, Right: right, Pos: pos(t)}
	}
	return left
}

func (p *parser) parseNot() ast.Node {
	if p.at(lex.Not) {
		t := p.advance()
		child := p.parseNot()
		return &ast.NegateNode{Child: child, Pos: pos(t)}
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() ast.Node {
	left := p.parsePrimary()

	switch p.cur().Class {
	case lex.Eq, lex.Ne, lex.Lt, lex.Le, lex.Gt, lex.Ge:
		t := p.advance()
		right := p.parsePrimary()
		return &ast.CompareNode{Op: compareOpFor(t.Class), Left: left, Right: right, Pos: pos(t)}
	case lex.Is:
		t := p.advance()
		op := ast.OpIs
		if p.at(lex.Not) {
			p.advance()
			op = ast.OpIsNot
		}
		right := p.parsePrimary()
		return &ast.CompareNode{Op: op, Left: left, Right: right, Pos: pos(t)}
	case lex.Contains:
		t := p.advance()
		right := p.parsePrimary()
		return &ast.ContainsNode{Container: left, Element: right, Pos: pos(t)}
	case lex.Matches:
		t := p.advance()
		ident, ok := left.(*ast.LiteralNode)
		if !ok {
			p.semanticf(t, "left side of 'matches' must be an identifier")
		}
		regexNode := p.parseRegexLiteral()
		name := ""
		if ident != nil {
			name = ident.Name
		}
		return &ast.MatchNode{Identifier: name, Regex: regexNode, Pos: pos(t)}
	default:
		return left
	}
}

func compareOpFor(c lex.Class) ast.CompareOp {
	switch c {
	case lex.Eq:
		return ast.OpEq
	case lex.Ne:
		return ast.OpNe
	case lex.Lt:
		return ast.OpLt
	case lex.Le:
		return ast.OpLe
	case lex.Gt:
		return ast.OpGt
	case lex.Ge:
		return ast.OpGe
	default:
		return ast.OpEq
	}
}

func (p *parser) parseRegexLiteral() *ast.RegexNode {
	t := p.cur()
	if t.Class != lex.Regex {
		p.errf(t, "expected a regex literal but found %s", t.Class)
		p.advance()
		return &ast.RegexNode{Pos: pos(t)}
	}
	p.advance()
	p.checkRegexFlags(t)
	return &ast.RegexNode{Pattern: t.Value, Flags: t.Flags, Pos: pos(t)}
}

func (p *parser) checkRegexFlags(t lex.Token) {
	for _, f := range t.Flags {
		if !strings.ContainsRune(validRegexFlags, f) {
			p.semanticf(t, "unknown regex flag %q; valid flags are one of %s", f, validRegexFlags)
		}
	}
}

func (p *parser) parsePrimary() ast.Node {
	t := p.cur()

	switch t.Class {
	case lex.LParen:
		p.advance()
		inner := p.parseExpr()
		p.expect(lex.RParen)
		return inner
	case lex.LBrace:
		return p.parseLiteralSet()
	case lex.String:
		p.advance()
		return &ast.StringLitNode{Value: t.Value, Pos: pos(t)}
	case lex.Number:
		p.advance()
		n, _ := strconv.ParseFloat(t.Value, 64)
		return &ast.NumberLitNode{Value: n, Pos: pos(t)}
	case lex.Regex:
		p.advance()
		p.checkRegexFlags(t)
		return &ast.RegexNode{Pattern: t.Value, Flags: t.Flags, Pos: pos(t)}
	case lex.True:
		p.advance()
		return &ast.ConstantNode{Value: constTrue, Pos: pos(t)}
	case lex.False:
		p.advance()
		return &ast.ConstantNode{Value: constFalse, Pos: pos(t)}
	case lex.Undefined:
		p.advance()
		return &ast.ConstantNode{Value: constUndefined, Pos: pos(t)}
	case lex.Null:
		p.advance()
		return &ast.ConstantNode{Value: constNull, Pos: pos(t)}
	case lex.Empty:
		p.advance()
		return &ast.ConstantNode{Value: constEmpty, Pos: pos(t)}
	case lex.Identifier:
		p.advance()
		return &ast.LiteralNode{Name: t.Value, Pos: pos(t)}
	default:
		p.errf(t, "expected an expression but found %s", t.Class)
		p.advance()
		return &ast.ConstantNode{Value: constUndefined, Pos: pos(t)}
	}
}

// parseLiteralSet parses `{ member member ... }`, with the comma between
// members optional (`{"WARN" "ERR" "CRIT"}` and `{"WARN", "ERR", "CRIT"}`
// are both accepted, per §8 Scenario C). Members that are identifiers are
// rejected with a semantic error rather than a syntax error, per §4.1 and
// the §3 LiteralSet ground-value invariant.
func (p *parser) parseLiteralSet() *ast.LiteralSetNode {
	open := p.expect(lex.LBrace)
	node := &ast.LiteralSetNode{Pos: pos(open)}

	if p.at(lex.RBrace) {
		p.advance()
		return node
	}

	for {
		t := p.cur()
		member := p.parseSetMember(t)
		node.Members = append(node.Members, member)

		if p.at(lex.Comma) {
			p.advance()
		}
		if p.at(lex.RBrace) || p.at(lex.EOF) {
			break
		}
	}

	p.expect(lex.RBrace)
	return node
}

func (p *parser) parseSetMember(t lex.Token) ast.Node {
	if t.Class == lex.Identifier {
		p.semanticf(t, "set literal members must be ground values, not identifiers")
		p.advance()
		return &ast.ConstantNode{Value: constUndefined, Pos: pos(t)}
	}
	return p.parsePrimary()
}
