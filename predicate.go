// Package boolpred is an embeddable engine for evaluating boolean
// predicates — short textual expressions in a small DSL — against
// attribute-keyed documents. A typical deployment is a publish/subscribe
// router where each subscription is a predicate and every incoming event
// is matched against the whole population to find its subscribers.
//
// The package is organized the way the teacher's tunascript engine
// separates lexing, parsing, evaluation, and a thin top-level facade:
// the internal/ subpackages do the real work and this package exposes
// the object a host program actually holds onto.
package boolpred

import (
	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/eval"
	"github.com/dekarrin/boolpred/internal/optimize"
	"github.com/dekarrin/boolpred/internal/parse"
	"github.com/dekarrin/boolpred/internal/perrors"
	"github.com/dekarrin/boolpred/internal/resolver"
	"github.com/dekarrin/boolpred/internal/value"
)

// ErrorKind mirrors perrors.Kind at the package boundary so callers
// never need to import internal/perrors directly.
type ErrorKind int

const (
	KindLex ErrorKind = iota
	KindSyntax
	KindSemantic
)

func (k ErrorKind) String() string {
	switch k {
	case KindLex:
		return "lex"
	case KindSyntax:
		return "syntax"
	case KindSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// PredicateError is one diagnostic from parsing a predicate, per §7.
type PredicateError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Col     int
}

func (e PredicateError) Error() string {
	return e.Message
}

func fromDiag(d perrors.Diagnostic) PredicateError {
	return PredicateError{
		Kind:    ErrorKind(d.Kind),
		Message: d.FullMessage(),
		Line:    d.Line,
		Col:     d.Col,
	}
}

// AnalysisResult is the explanatory companion to a boolean evaluation
// result, per §6's analyze() contract.
type AnalysisResult struct {
	Matched  bool
	Failed   []string
	Literals map[string]value.Value
}

// Predicate is a single parsed, optimized boolean expression. The zero
// value is not usable; construct with New.
type Predicate struct {
	source   string
	root     ast.Node
	errs     []PredicateError
	resolver resolver.Func
	engine   eval.RegexEngine
}

// New parses and optimizes source into a Predicate. The result may be
// invalid; check IsValid before evaluating it.
func New(source string) *Predicate {
	p := &Predicate{source: source}

	result := parse.Parse(source)
	if len(result.Diags) > 0 {
		for _, d := range result.Diags {
			p.errs = append(p.errs, fromDiag(d))
		}
		return p
	}

	p.root = optimize.Optimize(result.Root)
	return p
}

// IsValid reports whether the predicate parsed without diagnostics.
func (p *Predicate) IsValid() bool {
	return len(p.errs) == 0
}

// Errors returns the diagnostics recorded while parsing, or nil for a
// valid predicate.
func (p *Predicate) Errors() []PredicateError {
	return append([]PredicateError(nil), p.errs...)
}

// Source returns the original predicate text.
func (p *Predicate) Source() string {
	return p.source
}

// AST exposes the optimized root node for callers building their own
// batch compiler (e.g. internal/predset) on top of this package.
func (p *Predicate) AST() ast.Node {
	return p.root
}

// Description renders the optimized AST using the §6 rendering format:
// `<NodeKind> at line: L, col C`, children indented four spaces further
// than their parent.
func (p *Predicate) Description() string {
	if !p.IsValid() {
		return ""
	}
	return p.root.Describe(0)
}

// SetResolver installs a custom identifier-resolution callback, taking
// precedence over the default dotted-path document walk (§4.2 rule 2).
func (p *Predicate) SetResolver(fn resolver.Func) {
	p.resolver = fn
}

// SetRegexEngine overrides the regex collaborator used to compile Match
// and standalone regex literals. A nil engine restores the default.
func (p *Predicate) SetRegexEngine(engine eval.RegexEngine) {
	p.engine = engine
}

// Evaluate runs the predicate against doc, returning only the boolean
// result. Evaluating an invalid predicate always returns false.
func (p *Predicate) Evaluate(doc resolver.Document) bool {
	matched, _ := p.Analyze(doc)
	return matched
}

// Analyze runs the predicate against doc and returns both the boolean
// result and the explanatory AnalysisResult (§6): the ordered failure
// trail and the literal-expression-to-value captures observed during
// this evaluation.
func (p *Predicate) Analyze(doc resolver.Document) (bool, AnalysisResult) {
	if !p.IsValid() {
		return false, AnalysisResult{}
	}

	ctx := eval.New(doc, p.resolver, p.engine)
	result := eval.Evaluate(p.root, ctx)

	return result.Bool(), AnalysisResult{
		Matched:  result.Bool(),
		Failed:   ctx.Failed(),
		Literals: ctx.Literals(),
	}
}
