// Package eval implements the per-evaluation scratch space (§4.3,
// GLOSSARY "EvalContext"): the identifier cache, failure trail, literal
// capture map, subexpression cache, and regex compilation cache that
// back a single evaluate()/analyze() call.
package eval

import (
	"fmt"
	"regexp"

	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/resolver"
	"github.com/dekarrin/boolpred/internal/value"
)

// RegexEngine is the external regex collaborator named in §1: compile
// once, match many times. *regexp.Regexp already satisfies it.
type RegexEngine interface {
	Compile(pattern string, flags string) (ast.Regexp, error)
}

// StdRegexEngine compiles regex literals using the standard library,
// translating the DSL's {i,m,s,u,l} flags into (?flags) inline modifiers
// understood by RE2. 'u' (already-Unicode matching) and 'l' (literal,
// i.e. no special regex chars) have no RE2 equivalent flag and are
// accepted but not separately encoded; 'l' instead routes through
// regexp.QuoteMeta.
type StdRegexEngine struct{}

func (StdRegexEngine) Compile(pattern, flags string) (ast.Regexp, error) {
	body := pattern
	literal := false
	var inline []rune
	for _, f := range flags {
		switch f {
		case 'i':
			inline = append(inline, 'i')
		case 'm':
			inline = append(inline, 'm')
		case 's':
			inline = append(inline, 's')
		case 'u':
			// RE2 is already Unicode-aware; no flag needed.
		case 'l':
			literal = true
		}
	}
	if literal {
		body = regexp.QuoteMeta(body)
	}
	if len(inline) > 0 {
		body = "(?" + string(inline) + ")" + body
	}
	return regexp.Compile(body)
}

// Context is the concrete implementation of ast.Context used for both
// plain evaluate() and analyze(): a document, an identifier cache, a
// failure trail, literal captures, a subexpression cache, and a regex
// compilation cache, all scoped to exactly one evaluation.
type Context struct {
	doc        resolver.Document
	resolve    resolver.Func
	engine     RegexEngine
	idCache    map[string]value.Value
	exprCache  map[string]value.Value
	regexCache map[ast.Node]ast.Regexp
	failures   []string
	literals   map[string]value.Value
}

// New creates an EvalContext bound to doc, with an optional custom
// resolver and regex engine. A nil engine defaults to StdRegexEngine.
func New(doc resolver.Document, resolve resolver.Func, engine RegexEngine) *Context {
	if engine == nil {
		engine = StdRegexEngine{}
	}
	return &Context{
		doc:        doc,
		resolve:    resolve,
		engine:     engine,
		idCache:    make(map[string]value.Value),
		exprCache:  make(map[string]value.Value),
		regexCache: make(map[ast.Node]ast.Regexp),
		literals:   make(map[string]value.Value),
	}
}

// Resolve implements ast.Context: the first resolution of a name within
// one evaluation is cached (§4.2 rule 4) so repeated references and a
// later analyze() call agree even against a non-deterministic resolver.
func (c *Context) Resolve(name string) value.Value {
	if v, ok := c.idCache[name]; ok {
		return v
	}
	v := resolver.Default(name, c.doc, c.resolve)
	c.idCache[name] = v
	return v
}

func (c *Context) CacheFingerprint(fingerprint string) (value.Value, bool) {
	v, ok := c.exprCache[fingerprint]
	return v, ok
}

func (c *Context) StoreFingerprint(fingerprint string, v value.Value) {
	c.exprCache[fingerprint] = v
}

func (c *Context) RecordFailure(reason string) {
	c.failures = append(c.failures, reason)
}

func (c *Context) CaptureLiteral(expr string, v value.Value) {
	c.literals[expr] = v
}

func (c *Context) CompileRegex(n *ast.RegexNode) (ast.Regexp, error) {
	if re, ok := c.regexCache[n]; ok {
		return re, nil
	}
	re, err := c.engine.Compile(n.Pattern, n.Flags)
	if err != nil {
		return nil, fmt.Errorf("compiling regex /%s/%s: %w", n.Pattern, n.Flags, err)
	}
	c.regexCache[n] = re
	return re, nil
}

// Failed returns the ordered failure trail accumulated during
// evaluation, per §6's analyze() contract.
func (c *Context) Failed() []string {
	return append([]string(nil), c.failures...)
}

// Literals returns the textual-expression → observed-value map
// accumulated during evaluation, per §6's analyze() contract.
func (c *Context) Literals() map[string]value.Value {
	out := make(map[string]value.Value, len(c.literals))
	for k, v := range c.literals {
		out[k] = v
	}
	return out
}

// Evaluate runs root against ctx, consulting and populating the
// subexpression cache by fingerprint before descending into root itself
// (§4.3: "The subexpression cache is consulted by fingerprint before
// evaluating any subtree").
func Evaluate(root ast.Node, ctx *Context) value.Value {
	fp := root.Fingerprint()
	if v, ok := ctx.CacheFingerprint(fp); ok {
		return v
	}
	v := root.Evaluate(ctx)
	ctx.StoreFingerprint(fp, v)
	return v
}
