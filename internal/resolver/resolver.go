// Package resolver implements the identifier resolution contract of
// §4.2: turning a dotted identifier name into a value.Value by walking a
// document, with an optional injected resolver capability taking
// precedence, following the "resolver as capability" design note (§9).
package resolver

import (
	"strings"

	"github.com/dekarrin/boolpred/internal/value"
)

// Document is the external key→value lookup collaborator named in §1.
// Implementations only need to answer Get for top-level keys; dotted-path
// traversal through nested documents is handled by Default.
type Document interface {
	Get(key string) (any, bool)
}

// MapDocument is the simplest Document: a plain map, with nested maps
// (map[string]any) usable as sub-documents for dotted paths.
type MapDocument map[string]any

func (d MapDocument) Get(key string) (any, bool) {
	v, ok := d[key]
	return v, ok
}

// Func is the injected resolver capability: given a dotted name and the
// document, return a value and whether resolution succeeded. A resolver
// that panics or whose lookup is otherwise unreliable should be wrapped
// by the caller to recover and report failure as (Value{}, false)
// instead, per §7 ("resolver callbacks may themselves fail; such
// failures are caught and treated as Undefined").
type Func func(name string, doc Document) (value.Value, bool)

var bareConstants = map[string]value.Value{
	"true":      value.OfBool(true),
	"false":     value.OfBool(false),
	"null":      value.NullValue,
	"empty":     value.EmptyValue,
	"undefined": value.UndefinedValue,
}

// Default implements the four-step resolution order of §4.2: recognized
// bare constants, then an injected resolver if configured, then dotted
// mapping lookups through doc, yielding Undefined on any missing key.
func Default(name string, doc Document, custom Func) (result value.Value) {
	if c, ok := bareConstants[strings.ToLower(name)]; ok {
		return c
	}

	if custom != nil {
		result = safeCustomResolve(name, doc, custom)
		if result.Type() != value.Undefined {
			return result
		}
	}

	return walkDottedPath(name, doc)
}

func safeCustomResolve(name string, doc Document, custom Func) (result value.Value) {
	defer func() {
		if r := recover(); r != nil {
			result = value.UndefinedValue
		}
	}()

	v, ok := custom(name, doc)
	if !ok {
		return value.UndefinedValue
	}
	return v
}

func walkDottedPath(name string, doc Document) value.Value {
	if doc == nil {
		return value.UndefinedValue
	}

	parts := strings.Split(name, ".")

	cur, ok := doc.Get(parts[0])
	if !ok {
		return value.UndefinedValue
	}

	for _, part := range parts[1:] {
		nested, ok := cur.(map[string]any)
		if !ok {
			if md, ok := cur.(MapDocument); ok {
				nested = map[string]any(md)
			} else {
				return value.UndefinedValue
			}
		}
		cur, ok = nested[part]
		if !ok {
			return value.UndefinedValue
		}
	}

	return Native(cur)
}

// Native converts a native Go value (as found in a document map) into a
// value.Value. Unrecognized types resolve to Undefined.
func Native(v any) value.Value {
	switch typed := v.(type) {
	case value.Value:
		return typed
	case bool:
		return value.OfBool(typed)
	case int:
		return value.OfNumber(float64(typed))
	case int64:
		return value.OfNumber(float64(typed))
	case float64:
		return value.OfNumber(typed)
	case string:
		return value.OfString(typed)
	case []any:
		elems := make([]value.Value, len(typed))
		for i, e := range typed {
			elems[i] = Native(e)
		}
		return value.OfSequence(elems)
	case nil:
		return value.UndefinedValue
	default:
		return value.UndefinedValue
	}
}
