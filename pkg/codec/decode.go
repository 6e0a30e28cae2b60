package codec

import "strconv"

// Kind identifies the decoded type of a raw query value.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindBool
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	default:
		return "Unknown"
	}
}

// Decoded is the result of coercing a single raw query value.
// Exactly one of the typed fields is meaningful, selected by Kind.
type Decoded struct {
	Kind Kind
	Str  string
	Int  int
	Bool bool
}

// Value returns the decoded value as an any, ready to store in Values.
func (d Decoded) Value() any {
	switch d.Kind {
	case KindInt:
		return d.Int
	case KindBool:
		return d.Bool
	default:
		return d.Str
	}
}

// DecodeScalar coerces a raw query value through the decision table:
//
//	"true" / "false"        → Bool
//	digits only, fits int   → Int
//	anything else           → String
//
// The table is total: no input is an error. A digit run too large for int
// falls through to the string case rather than failing.
func DecodeScalar(s string) Decoded {
	switch s {
	case "true":
		return Decoded{Kind: KindBool, Bool: true}
	case "false":
		return Decoded{Kind: KindBool, Bool: false}
	}
	if digitsOnly(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return Decoded{Kind: KindInt, Int: n}
		}
	}
	return Decoded{Kind: KindString, Str: s}
}

// digitsOnly reports whether s is a non-empty run of ASCII digits.
func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
