package variable

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Kind is the logical type of a column.
type Kind uint8

// Logical kinds. The zero Kind is invalid.
const (
	Integer Kind = iota + 1
	Decimal
	Boolean
	Text
	Date
	Timestamp
	Category
	OrdinalCategory
)

// Kinds lists every valid kind in declaration order.
var Kinds = []Kind{Integer, Decimal, Boolean, Text, Date, Timestamp, Category, OrdinalCategory}

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Boolean:
		return "boolean"
	case Text:
		return "text"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	case Category:
		return "category"
	case OrdinalCategory:
		return "ordinal_category"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= Integer && k <= OrdinalCategory
}

// IsNumeric reports whether arithmetic transformations accept k.
func (k Kind) IsNumeric() bool {
	return k == Integer || k == Decimal
}

// ParseKind maps a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.EqualFold(k.String(), s) {
			return k, true
		}
	}
	return 0, false
}

// TimeUnit is the resolution of a timestamp column.
type TimeUnit uint8

// Timestamp resolutions.
const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
)

// String returns the unit name as written to sidecar descriptors.
func (u TimeUnit) String() string {
	switch u {
	case Second:
		return "Second"
	case Millisecond:
		return "Millisecond"
	case Microsecond:
		return "Microsecond"
	case Nanosecond:
		return "Nanosecond"
	default:
		return fmt.Sprintf("TimeUnit(%d)", uint8(u))
	}
}

// ParseTimeUnit accepts the unit names (case-insensitive) and the arrow
// abbreviations s, ms, us and ns.
func ParseTimeUnit(s string) (TimeUnit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "second", "s":
		return Second, true
	case "millisecond", "ms":
		return Millisecond, true
	case "microsecond", "us", "µs":
		return Microsecond, true
	case "nanosecond", "ns":
		return Nanosecond, true
	default:
		return 0, false
	}
}

// Arrow returns the matching arrow time unit.
func (u TimeUnit) Arrow() arrow.TimeUnit {
	switch u {
	case Second:
		return arrow.Second
	case Microsecond:
		return arrow.Microsecond
	case Nanosecond:
		return arrow.Nanosecond
	default:
		return arrow.Millisecond
	}
}

func timeUnitFromArrow(u arrow.TimeUnit) TimeUnit {
	switch u {
	case arrow.Second:
		return Second
	case arrow.Microsecond:
		return Microsecond
	case arrow.Nanosecond:
		return Nanosecond
	default:
		return Millisecond
	}
}
