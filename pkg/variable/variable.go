// Package variable describes tabula columns: an immutable Variable carries
// the logical kind, documentation metadata and kind parameters of one column
// and maps to and from an arrow field descriptor.
package variable

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Decimal parameter bounds and defaults.
const (
	MaxPrecision     int32 = 38
	DefaultPrecision int32 = 18
	DefaultScale     int32 = 6
)

// Variable is the immutable schema of one column. Edits return a copy.
type Variable struct {
	name        string
	description string
	unit        string
	formula     string
	kind        Kind

	precision int32
	scale     int32

	timeUnit TimeUnit
	timezone string

	categories map[int32]string
	ordered    []string
}

// Option sets documentation metadata on a new Variable.
type Option func(*Variable)

// Description sets the column description.
func Description(s string) Option { return func(v *Variable) { v.description = s } }

// Unit sets the unit of measure.
func Unit(s string) Option { return func(v *Variable) { v.unit = s } }

// Formula sets the derivation formula; a non-blank formula marks the column calculated.
func Formula(s string) Option { return func(v *Variable) { v.formula = s } }

// Timezone sets the timezone label of a Timestamp variable.
func Timezone(s string) Option { return func(v *Variable) { v.timezone = s } }

func build(name string, kind Kind, opts []Option) Variable {
	v := Variable{name: name, kind: kind}
	for _, opt := range opts {
		opt(&v)
	}
	if kind != Timestamp {
		v.timezone = ""
	}
	return v
}

// NewInteger creates a 32-bit integer column.
func NewInteger(name string, opts ...Option) Variable {
	return build(name, Integer, opts)
}

// NewDecimal creates a fixed-point column. Precision must be in 1..38 and
// scale in 0..precision.
func NewDecimal(name string, precision, scale int32, opts ...Option) (Variable, error) {
	if precision < 1 || precision > MaxPrecision {
		return Variable{}, errors.Newf(errors.ErrorTypeValidation, "decimal precision %d out of range 1..%d", precision, MaxPrecision).
			WithDetail("variable", name)
	}
	if scale < 0 || scale > precision {
		return Variable{}, errors.Newf(errors.ErrorTypeValidation, "decimal scale %d out of range 0..%d", scale, precision).
			WithDetail("variable", name)
	}
	v := build(name, Decimal, opts)
	v.precision = precision
	v.scale = scale
	return v, nil
}

// NewDefaultDecimal creates a Decimal(18,6) column.
func NewDefaultDecimal(name string, opts ...Option) Variable {
	v := build(name, Decimal, opts)
	v.precision = DefaultPrecision
	v.scale = DefaultScale
	return v
}

// NewBoolean creates a boolean column.
func NewBoolean(name string, opts ...Option) Variable {
	return build(name, Boolean, opts)
}

// NewText creates a UTF-8 string column.
func NewText(name string, opts ...Option) Variable {
	return build(name, Text, opts)
}

// NewDate creates a calendar date column.
func NewDate(name string, opts ...Option) Variable {
	return build(name, Date, opts)
}

// NewTimestamp creates an instant column stored at the given unit.
func NewTimestamp(name string, unit TimeUnit, opts ...Option) Variable {
	v := build(name, Timestamp, opts)
	v.timeUnit = unit
	return v
}

// NewCategory creates a nominal category column from a code to label map.
func NewCategory(name string, categories map[int32]string, opts ...Option) Variable {
	v := build(name, Category, opts)
	v.categories = make(map[int32]string, len(categories))
	for code, label := range categories {
		v.categories[code] = label
	}
	return v
}

// NewOrdinalCategory creates an ordered category column; a cell stores the
// 0-based index of its label.
func NewOrdinalCategory(name string, labels []string, opts ...Option) Variable {
	v := build(name, OrdinalCategory, opts)
	v.ordered = append([]string(nil), labels...)
	return v
}

// Name returns the column name.
func (v Variable) Name() string { return v.name }

// Description returns the column description.
func (v Variable) Description() string { return v.description }

// Unit returns the unit of measure.
func (v Variable) Unit() string { return v.unit }

// Formula returns the derivation formula.
func (v Variable) Formula() string { return v.formula }

// IsCalculated reports whether the column has a non-blank formula.
func (v Variable) IsCalculated() bool { return strings.TrimSpace(v.formula) != "" }

// Kind returns the logical kind.
func (v Variable) Kind() Kind { return v.kind }

// Precision returns the decimal precision; zero for other kinds.
func (v Variable) Precision() int32 { return v.precision }

// Scale returns the decimal scale; zero for other kinds.
func (v Variable) Scale() int32 { return v.scale }

// TimeUnit returns the timestamp resolution.
func (v Variable) TimeUnit() TimeUnit { return v.timeUnit }

// Timezone returns the timestamp timezone label.
func (v Variable) Timezone() string { return v.timezone }

// Categories returns a copy of the code to label map.
func (v Variable) Categories() map[int32]string {
	out := make(map[int32]string, len(v.categories))
	for code, label := range v.categories {
		out[code] = label
	}
	return out
}

// CategoryCodes returns the category codes in ascending order.
func (v Variable) CategoryCodes() []int32 {
	codes := make([]int32, 0, len(v.categories))
	for code := range v.categories {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Label returns the label of a category code or ordinal index.
func (v Variable) Label(code int32) (string, bool) {
	switch v.kind {
	case Category:
		label, ok := v.categories[code]
		return label, ok
	case OrdinalCategory:
		if code < 0 || int(code) >= len(v.ordered) {
			return "", false
		}
		return v.ordered[code], true
	default:
		return "", false
	}
}

// OrderedCategories returns a copy of the ordinal labels.
func (v Variable) OrderedCategories() []string {
	return append([]string(nil), v.ordered...)
}

// WithName returns a copy renamed to name.
func (v Variable) WithName(name string) Variable {
	out := v.clone()
	out.name = name
	return out
}

// WithDescription returns a copy with a new description.
func (v Variable) WithDescription(s string) Variable {
	out := v.clone()
	out.description = s
	return out
}

// WithUnit returns a copy with a new unit.
func (v Variable) WithUnit(s string) Variable {
	out := v.clone()
	out.unit = s
	return out
}

// WithFormula returns a copy with a new formula.
func (v Variable) WithFormula(s string) Variable {
	out := v.clone()
	out.formula = s
	return out
}

// Equal reports whether two variables describe the same column.
func (v Variable) Equal(o Variable) bool {
	if v.name != o.name || v.description != o.description || v.unit != o.unit ||
		v.formula != o.formula || v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Decimal:
		return v.precision == o.precision && v.scale == o.scale
	case Timestamp:
		return v.timeUnit == o.timeUnit && v.timezone == o.timezone
	case Category:
		if len(v.categories) != len(o.categories) {
			return false
		}
		for code, label := range v.categories {
			if other, ok := o.categories[code]; !ok || other != label {
				return false
			}
		}
		return true
	case OrdinalCategory:
		if len(v.ordered) != len(o.ordered) {
			return false
		}
		for i := range v.ordered {
			if v.ordered[i] != o.ordered[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Variable) clone() Variable {
	out := v
	if v.categories != nil {
		out.categories = v.Categories()
	}
	if v.ordered != nil {
		out.ordered = v.OrderedCategories()
	}
	return out
}
