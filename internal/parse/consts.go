package parse

import "github.com/dekarrin/boolpred/internal/value"

// validRegexFlags are the only flags §4.1/§6 allow on a regex literal;
// anything else is a semantic error.
const validRegexFlags = "imsul"

var (
	constTrue      = value.OfBool(true)
	constFalse     = value.OfBool(false)
	constUndefined = value.UndefinedValue
	constNull      = value.NullValue
	constEmpty     = value.EmptyValue
)
