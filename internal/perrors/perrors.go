// Package perrors defines the structured diagnostics produced by lexing,
// parsing, and semantic validation, in the style of the teacher's
// SyntaxError (internal/tunascript/error.go): a message paired with a
// 1-based line and 0-based column, plus an optional cursor-annotated
// full message for human consumption.
package perrors

import "fmt"

// Kind classifies a Diagnostic per §7.
type Kind int

const (
	Lex Kind = iota
	Syntax
	Semantic
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic is a single recorded problem found while turning source text
// into a valid AST. Diagnostics are accumulated, never thrown: a
// predicate with one or more is simply invalid (§4.1).
type Diagnostic struct {
	Kind    Kind
	Message string
	Line    int
	Col     int

	sourceLine string
}

func New(kind Kind, line, col int, format string, a ...any) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
		Line:    line,
		Col:     col,
	}
}

// WithSourceLine attaches the full source line the diagnostic occurred on,
// enabling FullMessage to render a cursor beneath the offending column.
func (d Diagnostic) WithSourceLine(line string) Diagnostic {
	d.sourceLine = line
	return d
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s error: line %d, col %d: %s", d.Kind, d.Line, d.Col, d.Message)
}

// FullMessage renders the error text together with the offending source
// line and a cursor pointing at Col, mirroring SyntaxError.FullMessage in
// the teacher.
func (d Diagnostic) FullMessage() string {
	msg := d.Error()
	if d.sourceLine == "" {
		return msg
	}

	cursor := ""
	for i := 0; i < d.Col; i++ {
		cursor += " "
	}
	cursor += "^"

	return d.sourceLine + "\n" + cursor + "\n" + msg
}
