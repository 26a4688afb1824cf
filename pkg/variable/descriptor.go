package variable

import (
	"strconv"
	"strings"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Descriptor is the JSON form of a Variable used by the delimited sidecar
// and the Avro file header.
type Descriptor struct {
	Name              string            `json:"Name"`
	Description       string            `json:"Description,omitempty"`
	Unit              string            `json:"Unit,omitempty"`
	Formula           string            `json:"Formula,omitempty"`
	VariableType      string            `json:"VariableType"`
	Categories        map[string]string `json:"Categories,omitempty"`
	OrderedCategories []string          `json:"OrderedCategories,omitempty"`
	Precision         *int32            `json:"Precision,omitempty"`
	Scale             *int32            `json:"Scale,omitempty"`
	TimeUnit          string            `json:"TimeUnit,omitempty"`
	TimeZone          string            `json:"TimeZone,omitempty"`
}

// VariableType tags written to descriptors.
var typeTags = map[Kind]string{
	Integer:         "IntegerVariable",
	Decimal:         "NumericVariable",
	Boolean:         "BoolVariable",
	Text:            "StringVariable",
	Date:            "DateVariable",
	Timestamp:       "DateTimeVariable",
	Category:        "CategoryVariable",
	OrdinalCategory: "OrdinalCategoryVariable",
}

// TypeTag returns the VariableType tag of a kind.
func TypeTag(k Kind) string {
	return typeTags[k]
}

// kindFromTag accepts both the VariableType tags and the kind names.
func kindFromTag(tag string) (Kind, bool) {
	for k, t := range typeTags {
		if strings.EqualFold(t, tag) {
			return k, true
		}
	}
	return ParseKind(tag)
}

// Descriptor returns the JSON descriptor of v.
func (v Variable) Descriptor() Descriptor {
	d := Descriptor{
		Name:         v.name,
		Description:  v.description,
		Unit:         v.unit,
		Formula:      v.formula,
		VariableType: TypeTag(v.kind),
	}
	switch v.kind {
	case Decimal:
		p, s := v.precision, v.scale
		d.Precision, d.Scale = &p, &s
	case Timestamp:
		d.TimeUnit = v.timeUnit.String()
		d.TimeZone = v.timezone
	case Category:
		d.Categories = make(map[string]string, len(v.categories))
		for code, label := range v.categories {
			d.Categories[strconv.FormatInt(int64(code), 10)] = label
		}
	case OrdinalCategory:
		d.OrderedCategories = v.OrderedCategories()
	}
	return d
}

// FromDescriptor reconstructs a Variable. Missing decimal parameters default
// to 18/6 and a missing or unknown time unit to Millisecond.
func FromDescriptor(d Descriptor) (Variable, error) {
	kind, ok := kindFromTag(d.VariableType)
	if !ok {
		return Variable{}, errors.Newf(errors.ErrorTypeUnsupportedKind, "unknown variable type %q", d.VariableType).
			WithDetail("variable", d.Name)
	}
	opts := []Option{Description(d.Description), Unit(d.Unit), Formula(d.Formula)}

	switch kind {
	case Integer:
		return NewInteger(d.Name, opts...), nil
	case Decimal:
		precision, scale := DefaultPrecision, DefaultScale
		if d.Precision != nil {
			precision = *d.Precision
		}
		if d.Scale != nil {
			scale = *d.Scale
		}
		return NewDecimal(d.Name, precision, scale, opts...)
	case Boolean:
		return NewBoolean(d.Name, opts...), nil
	case Text:
		return NewText(d.Name, opts...), nil
	case Date:
		return NewDate(d.Name, opts...), nil
	case Timestamp:
		unit, ok := ParseTimeUnit(d.TimeUnit)
		if !ok {
			unit = Millisecond
		}
		return NewTimestamp(d.Name, unit, append(opts, Timezone(d.TimeZone))...), nil
	case Category:
		categories, err := parseCategoryCodes(d.Categories)
		if err != nil {
			return Variable{}, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "malformed category code").
				WithDetail("variable", d.Name)
		}
		return NewCategory(d.Name, categories, opts...), nil
	case OrdinalCategory:
		return NewOrdinalCategory(d.Name, d.OrderedCategories, opts...), nil
	default:
		return Variable{}, errors.Newf(errors.ErrorTypeUnsupportedKind, "unsupported kind %s", kind)
	}
}
