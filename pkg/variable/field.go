package variable

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/json"
)

// Field metadata keys.
const (
	MetaDescription       = "description"
	MetaUnit              = "unit"
	MetaFormula           = "formula"
	MetaLogicalType       = "logical_type"
	MetaTimezone          = "timezone"
	MetaTimeUnit          = "time_unit"
	MetaCategories        = "categories"
	MetaOrderedCategories = "ordered_categories"
)

// logical_type values.
const (
	LogicalDate            = "date"
	LogicalDateTime        = "datetime"
	LogicalCategory        = "category"
	LogicalOrdinalCategory = "ordinal_category"
)

// DataType returns the physical arrow type of the column, or nil for an
// invalid Variable.
func (v Variable) DataType() arrow.DataType {
	switch v.kind {
	case Integer, Category, OrdinalCategory:
		return arrow.PrimitiveTypes.Int32
	case Decimal:
		return &arrow.Decimal128Type{Precision: v.precision, Scale: v.scale}
	case Boolean:
		return arrow.FixedWidthTypes.Boolean
	case Text:
		return arrow.BinaryTypes.String
	case Date:
		return arrow.FixedWidthTypes.Date32
	case Timestamp:
		return &arrow.TimestampType{Unit: v.timeUnit.Arrow(), TimeZone: v.timezone}
	default:
		return nil
	}
}

// Field returns the nullable arrow field descriptor with the column metadata.
func (v Variable) Field() (arrow.Field, error) {
	dt := v.DataType()
	if dt == nil {
		return arrow.Field{}, errors.Newf(errors.ErrorTypeUnsupportedKind, "no field descriptor for %s", v.kind).
			WithDetail("variable", v.name)
	}

	md := map[string]string{}
	putNonBlank(md, MetaDescription, v.description)
	putNonBlank(md, MetaUnit, v.unit)
	putNonBlank(md, MetaFormula, v.formula)

	switch v.kind {
	case Date:
		md[MetaLogicalType] = LogicalDate
	case Timestamp:
		md[MetaLogicalType] = LogicalDateTime
		putNonBlank(md, MetaTimezone, v.timezone)
		md[MetaTimeUnit] = v.timeUnit.String()
	case Category:
		md[MetaLogicalType] = LogicalCategory
		labels := make(map[string]string, len(v.categories))
		for code, label := range v.categories {
			labels[strconv.FormatInt(int64(code), 10)] = label
		}
		data, err := json.Marshal(labels)
		if err != nil {
			return arrow.Field{}, errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode categories")
		}
		md[MetaCategories] = string(data)
	case OrdinalCategory:
		md[MetaLogicalType] = LogicalOrdinalCategory
		labels := v.ordered
		if labels == nil {
			labels = []string{}
		}
		data, err := json.Marshal(labels)
		if err != nil {
			return arrow.Field{}, errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode ordered categories")
		}
		md[MetaOrderedCategories] = string(data)
	}

	return arrow.Field{
		Name:     v.name,
		Type:     dt,
		Nullable: true,
		Metadata: arrow.MetadataFrom(md),
	}, nil
}

func putNonBlank(md map[string]string, key, value string) {
	if strings.TrimSpace(value) != "" {
		md[key] = value
	}
}

// FromField reconstructs a Variable from an arrow field. 32-bit integer
// fields are told apart by the logical_type metadata key and default to
// Integer; decimal and timestamp parameters come from the arrow type. A
// time_unit key overrides the arrow unit, for formats such as Parquet that
// cannot store seconds.
func FromField(f arrow.Field) (Variable, error) {
	opts := []Option{
		Description(metaValue(f.Metadata, MetaDescription)),
		Unit(metaValue(f.Metadata, MetaUnit)),
		Formula(metaValue(f.Metadata, MetaFormula)),
	}
	logical := metaValue(f.Metadata, MetaLogicalType)

	switch dt := f.Type.(type) {
	case *arrow.Int32Type:
		switch logical {
		case LogicalCategory:
			raw := map[string]string{}
			if s := metaValue(f.Metadata, MetaCategories); s != "" {
				if err := json.Unmarshal([]byte(s), &raw); err != nil {
					return Variable{}, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "malformed categories metadata").
						WithDetail("field", f.Name)
				}
			}
			categories, err := parseCategoryCodes(raw)
			if err != nil {
				return Variable{}, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "malformed category code").
					WithDetail("field", f.Name)
			}
			return NewCategory(f.Name, categories, opts...), nil
		case LogicalOrdinalCategory:
			var labels []string
			if s := metaValue(f.Metadata, MetaOrderedCategories); s != "" {
				if err := json.Unmarshal([]byte(s), &labels); err != nil {
					return Variable{}, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "malformed ordered categories metadata").
						WithDetail("field", f.Name)
				}
			}
			return NewOrdinalCategory(f.Name, labels, opts...), nil
		default:
			return NewInteger(f.Name, opts...), nil
		}
	case *arrow.Decimal128Type:
		return NewDecimal(f.Name, dt.Precision, dt.Scale, opts...)
	case *arrow.BooleanType:
		return NewBoolean(f.Name, opts...), nil
	case *arrow.StringType:
		return NewText(f.Name, opts...), nil
	case *arrow.Date32Type:
		return NewDate(f.Name, opts...), nil
	case *arrow.TimestampType:
		tz := metaValue(f.Metadata, MetaTimezone)
		if tz == "" {
			tz = dt.TimeZone
		}
		unit := timeUnitFromArrow(dt.Unit)
		if u, ok := ParseTimeUnit(metaValue(f.Metadata, MetaTimeUnit)); ok {
			unit = u
		}
		return NewTimestamp(f.Name, unit, append(opts, Timezone(tz))...), nil
	default:
		return Variable{}, errors.Newf(errors.ErrorTypeUnsupportedKind, "unsupported arrow type %s", f.Type).
			WithDetail("field", f.Name)
	}
}

func parseCategoryCodes(raw map[string]string) (map[int32]string, error) {
	out := make(map[int32]string, len(raw))
	for key, label := range raw {
		code, err := strconv.ParseInt(strings.TrimSpace(key), 10, 32)
		if err != nil {
			return nil, err
		}
		out[int32(code)] = label
	}
	return out, nil
}

func metaValue(md arrow.Metadata, key string) string {
	if i := md.FindKey(key); i >= 0 {
		return md.Values()[i]
	}
	return ""
}
