package vector

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ValueKind tags the payload of a Value.
type ValueKind uint8

// Value kinds.
const (
	NullValue ValueKind = iota
	IntValue
	DecimalValue
	BoolValue
	TextValue
	DateValue
	InstantValue
)

// Value is one decoded logical cell. The zero Value is null.
type Value struct {
	kind ValueKind
	i    int64
	d    decimal.Decimal
	b    bool
	s    string
	t    time.Time
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int returns an integer Value. Category and ordinal cells use it for codes.
func Int(i int64) Value { return Value{kind: IntValue, i: i} }

// Decimal returns a fixed-point Value.
func Decimal(d decimal.Decimal) Value { return Value{kind: DecimalValue, d: d} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: BoolValue, b: b} }

// Text returns a string Value.
func Text(s string) Value { return Value{kind: TextValue, s: s} }

// Date returns a calendar date Value: the year, month and day of t in its
// own location, at UTC midnight.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: DateValue, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Instant returns a point-in-time Value, normalized to UTC.
func Instant(t time.Time) Value { return Value{kind: InstantValue, t: t.UTC()} }

// Kind returns the payload tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == NullValue }

// Int returns the integer payload.
func (v Value) Int() (int64, bool) { return v.i, v.kind == IntValue }

// Decimal returns the decimal payload.
func (v Value) Decimal() (decimal.Decimal, bool) { return v.d, v.kind == DecimalValue }

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == BoolValue }

// Text returns the string payload.
func (v Value) Text() (string, bool) { return v.s, v.kind == TextValue }

// Date returns the date payload at UTC midnight.
func (v Value) Date() (time.Time, bool) { return v.t, v.kind == DateValue }

// Instant returns the instant payload.
func (v Value) Instant() (time.Time, bool) { return v.t, v.kind == InstantValue }

// Numeric returns integer and decimal payloads as a decimal.
func (v Value) Numeric() (decimal.Decimal, bool) {
	switch v.kind {
	case IntValue:
		return decimal.NewFromInt(v.i), true
	case DecimalValue:
		return v.d, true
	default:
		return decimal.Decimal{}, false
	}
}

// Equal compares kind and payload; decimals compare numerically and times
// compare as instants.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullValue:
		return true
	case IntValue:
		return v.i == o.i
	case DecimalValue:
		return v.d.Equal(o.d)
	case BoolValue:
		return v.b == o.b
	case TextValue:
		return v.s == o.s
	case DateValue, InstantValue:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// DateLayout is the text form of a date cell.
const DateLayout = "2006-01-02"

// String formats the payload the way the delimited codec writes it: empty for
// null, RFC 3339 for instants, ISO dates, invariant numbers.
func (v Value) String() string {
	switch v.kind {
	case IntValue:
		return strconv.FormatInt(v.i, 10)
	case DecimalValue:
		return v.d.String()
	case BoolValue:
		return strconv.FormatBool(v.b)
	case TextValue:
		return v.s
	case DateValue:
		return v.t.Format(DateLayout)
	case InstantValue:
		return v.t.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// GoString helps test failure output.
func (v Value) GoString() string {
	if v.kind == NullValue {
		return "vector.Null()"
	}
	return fmt.Sprintf("vector.Value{%d:%s}", v.kind, v.String())
}
