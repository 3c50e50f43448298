package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a feature column.
type Kind int

const (
	KindNumber Kind = iota
	KindBool
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "text"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) Kind {
	switch s {
	case "number":
		return KindNumber
	case "bool":
		return KindBool
	default:
		return KindText
	}
}

// Value is one typed feature cell.
type Value struct {
	kind Kind
	num  float64
	b    bool
	s    string
}

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Zero returns the default value for a column kind: 0, false or "".
func Zero(k Kind) Value {
	switch k {
	case KindNumber:
		return Number(0)
	case KindBool:
		return Bool(false)
	default:
		return Text("")
	}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric reading of the value. Booleans read as 0 or 1; text
// that parses as a number reads as that number.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		f, err := strconv.ParseFloat(v.s, 64)
		return f, err == nil
	}
}

// Truth returns the boolean reading of the value.
func (v Value) Truth() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	default:
		b, _ := strconv.ParseBool(v.s)
		return b
	}
}

// String renders the value the way it is written to CSV.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e15 {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// ParseValue reads tool output text: a number, then a boolean, otherwise text.
func ParseValue(s string) Value {
	t := strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) {
		return Number(f)
	}
	switch strings.ToLower(t) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return Text(s)
}

// Widen returns the kind able to hold both a and b.
func Widen(a, b Kind) Kind {
	if a == b {
		return a
	}
	if (a == KindNumber && b == KindBool) || (a == KindBool && b == KindNumber) {
		return KindNumber
	}
	return KindText
}
