package perrors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_New_formatsMessage(t *testing.T) {
	d := New(Syntax, 2, 5, "unexpected %s", "token")
	assert.Equal(t, Syntax, d.Kind)
	assert.Equal(t, 2, d.Line)
	assert.Equal(t, 5, d.Col)
	assert.Equal(t, "unexpected token", d.Message)
}

func Test_Diagnostic_Error(t *testing.T) {
	d := New(Lex, 1, 0, "bad char")
	assert.Equal(t, "lex error: line 1, col 0: bad char", d.Error())
}

func Test_Diagnostic_FullMessage_withoutSourceLine(t *testing.T) {
	d := New(Semantic, 1, 3, "oops")
	assert.Equal(t, d.Error(), d.FullMessage())
}

func Test_Diagnostic_FullMessage_withSourceLine(t *testing.T) {
	d := New(Syntax, 1, 4, "oops").WithSourceLine("a = b")
	full := d.FullMessage()

	lines := strings.Split(full, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "a = b", lines[0])
	assert.Equal(t, "    ^", lines[1])
	assert.Equal(t, d.Error(), lines[2])
}

func Test_Kind_String(t *testing.T) {
	assert.Equal(t, "lex", Lex.String())
	assert.Equal(t, "syntax", Syntax.String())
	assert.Equal(t, "semantic", Semantic.String())
}
