package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/boolpred/internal/value"
)

func Test_Default_bareConstants(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect value.Value
	}{
		{name: "true", input: "true", expect: value.OfBool(true)},
		{name: "TRUE is case-insensitive", input: "TRUE", expect: value.OfBool(true)},
		{name: "false", input: "false", expect: value.OfBool(false)},
		{name: "null", input: "null", expect: value.NullValue},
		{name: "empty", input: "empty", expect: value.EmptyValue},
		{name: "undefined", input: "undefined", expect: value.UndefinedValue},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Default(tc.input, nil, nil)
			assert.True(t, tc.expect.Is(got) || tc.expect.Equal(got))
		})
	}
}

func Test_Default_dottedPath(t *testing.T) {
	doc := MapDocument{
		"user": map[string]any{
			"name": "ada",
			"age":  30,
		},
		"tags": []any{"a", "b"},
	}

	got := Default("user.name", doc, nil)
	assert.True(t, value.OfString("ada").Equal(got))

	got = Default("user.age", doc, nil)
	assert.True(t, value.OfNumber(30).Equal(got))

	got = Default("user.missing", doc, nil)
	assert.Equal(t, value.Undefined, got.Type())

	got = Default("missing.path", doc, nil)
	assert.Equal(t, value.Undefined, got.Type())

	got = Default("tags", doc, nil)
	assert.Equal(t, value.Sequence, got.Type())
}

func Test_Default_customResolverTakesPrecedence(t *testing.T) {
	doc := MapDocument{"a": "from-doc"}
	custom := func(name string, d Document) (value.Value, bool) {
		if name == "a" {
			return value.OfString("from-resolver"), true
		}
		return value.Value{}, false
	}

	got := Default("a", doc, custom)
	assert.True(t, value.OfString("from-resolver").Equal(got))
}

func Test_Default_customResolverFallsBackOnMiss(t *testing.T) {
	doc := MapDocument{"a": "from-doc"}
	custom := func(name string, d Document) (value.Value, bool) {
		return value.Value{}, false
	}

	got := Default("a", doc, custom)
	assert.True(t, value.OfString("from-doc").Equal(got))
}

func Test_Default_customResolverPanicRecovers(t *testing.T) {
	doc := MapDocument{"a": "from-doc"}
	custom := func(name string, d Document) (value.Value, bool) {
		panic("boom")
	}

	got := Default("a", doc, custom)
	assert.True(t, value.OfString("from-doc").Equal(got))
}

func Test_Default_nilDocument(t *testing.T) {
	got := Default("a.b", nil, nil)
	assert.Equal(t, value.Undefined, got.Type())
}

func Test_Native(t *testing.T) {
	testCases := []struct {
		name       string
		input      any
		expectType value.Type
	}{
		{name: "bool", input: true, expectType: value.Bool},
		{name: "int", input: 42, expectType: value.Number},
		{name: "int64", input: int64(42), expectType: value.Number},
		{name: "float64", input: 4.2, expectType: value.Number},
		{name: "string", input: "hi", expectType: value.String},
		{name: "slice", input: []any{1, 2}, expectType: value.Sequence},
		{name: "nil", input: nil, expectType: value.Undefined},
		{name: "unsupported type", input: struct{}{}, expectType: value.Undefined},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectType, Native(tc.input).Type())
		})
	}
}
