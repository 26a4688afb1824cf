package variable

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

func mustDecimal(t *testing.T, name string, p, s int32, opts ...Option) Variable {
	t.Helper()
	v, err := NewDecimal(name, p, s, opts...)
	require.NoError(t, err)
	return v
}

func TestNewDecimalBounds(t *testing.T) {
	tests := []struct {
		name      string
		precision int32
		scale     int32
		ok        bool
	}{
		{"default", 18, 6, true},
		{"max precision", 38, 38, true},
		{"zero scale", 1, 0, true},
		{"zero precision", 0, 0, false},
		{"precision too large", 39, 2, false},
		{"scale above precision", 4, 5, false},
		{"negative scale", 10, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewDecimal("d", tt.precision, tt.scale)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.precision, v.Precision())
			assert.Equal(t, tt.scale, v.Scale())
		})
	}
}

func TestMetadataEditsReturnCopies(t *testing.T) {
	orig := NewCategory("Grade", map[int32]string{1: "low", 5: "high"}, Description("quality"), Unit("pts"))

	renamed := orig.WithName("Level")
	described := orig.WithDescription("new")
	withUnit := orig.WithUnit("%")
	calculated := orig.WithFormula("a + b")

	assert.Equal(t, "Grade", orig.Name())
	assert.Equal(t, "quality", orig.Description())
	assert.False(t, orig.IsCalculated())

	assert.Equal(t, "Level", renamed.Name())
	assert.Equal(t, "quality", renamed.Description())
	assert.Equal(t, orig.Categories(), renamed.Categories())
	assert.Equal(t, Category, renamed.Kind())

	assert.Equal(t, "new", described.Description())
	assert.Equal(t, "%", withUnit.Unit())
	assert.True(t, calculated.IsCalculated())
	assert.Equal(t, "a + b", calculated.Formula())
	assert.False(t, orig.WithFormula("   ").IsCalculated())
}

func TestAccessorsReturnCopies(t *testing.T) {
	labels := []string{"low", "mid", "high"}
	v := NewOrdinalCategory("Size", labels)
	labels[0] = "changed"
	assert.Equal(t, "low", v.OrderedCategories()[0])

	got := v.OrderedCategories()
	got[1] = "changed"
	assert.Equal(t, "mid", v.OrderedCategories()[1])

	c := NewCategory("C", map[int32]string{3: "x"})
	m := c.Categories()
	m[4] = "y"
	assert.Len(t, c.Categories(), 1)
	assert.Equal(t, []int32{3}, c.CategoryCodes())
}

func TestLabel(t *testing.T) {
	c := NewCategory("C", map[int32]string{10: "ten", -2: "minus two"})
	label, ok := c.Label(10)
	assert.True(t, ok)
	assert.Equal(t, "ten", label)
	_, ok = c.Label(11)
	assert.False(t, ok)
	assert.Equal(t, []int32{-2, 10}, c.CategoryCodes())

	o := NewOrdinalCategory("O", []string{"a", "b"})
	label, ok = o.Label(1)
	assert.True(t, ok)
	assert.Equal(t, "b", label)
	_, ok = o.Label(2)
	assert.False(t, ok)
	_, ok = NewInteger("i").Label(0)
	assert.False(t, ok)
}

func TestFieldDescriptors(t *testing.T) {
	tests := []struct {
		name     string
		variable Variable
		dataType arrow.DataType
		metadata map[string]string
	}{
		{
			name:     "integer",
			variable: NewInteger("Id", Description("row id")),
			dataType: arrow.PrimitiveTypes.Int32,
			metadata: map[string]string{"description": "row id"},
		},
		{
			name:     "decimal",
			variable: mustDecimal(t, "Value", 18, 4, Unit("EUR"), Formula("a*b")),
			dataType: &arrow.Decimal128Type{Precision: 18, Scale: 4},
			metadata: map[string]string{"unit": "EUR", "formula": "a*b"},
		},
		{
			name:     "boolean",
			variable: NewBoolean("IsActive"),
			dataType: arrow.FixedWidthTypes.Boolean,
			metadata: map[string]string{},
		},
		{
			name:     "text",
			variable: NewText("Name"),
			dataType: arrow.BinaryTypes.String,
			metadata: map[string]string{},
		},
		{
			name:     "date",
			variable: NewDate("Date"),
			dataType: arrow.FixedWidthTypes.Date32,
			metadata: map[string]string{"logical_type": "date"},
		},
		{
			name:     "timestamp",
			variable: NewTimestamp("At", Microsecond, Timezone("Europe/Berlin")),
			dataType: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "Europe/Berlin"},
			metadata: map[string]string{"logical_type": "datetime", "time_unit": "Microsecond", "timezone": "Europe/Berlin"},
		},
		{
			name:     "category",
			variable: NewCategory("Grade", map[int32]string{1: "low", 2: "high"}),
			dataType: arrow.PrimitiveTypes.Int32,
			metadata: map[string]string{"logical_type": "category", "categories": `{"1":"low","2":"high"}`},
		},
		{
			name:     "ordinal",
			variable: NewOrdinalCategory("Size", []string{"S", "M", "L"}),
			dataType: arrow.PrimitiveTypes.Int32,
			metadata: map[string]string{"logical_type": "ordinal_category", "ordered_categories": `["S","M","L"]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.variable.Field()
			require.NoError(t, err)
			assert.Equal(t, tt.variable.Name(), f.Name)
			assert.True(t, f.Nullable)
			assert.True(t, arrow.TypeEqual(tt.dataType, f.Type), "got %s", f.Type)
			assert.Equal(t, tt.metadata, f.Metadata.ToMap())

			back, err := FromField(f)
			require.NoError(t, err)
			assert.True(t, tt.variable.Equal(back), "round trip of %s", tt.name)
		})
	}
}

func TestFieldOfInvalidVariable(t *testing.T) {
	_, err := Variable{}.Field()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedKind))
}

func TestFromFieldDefaultsToInteger(t *testing.T) {
	v, err := FromField(arrow.Field{Name: "n", Type: arrow.PrimitiveTypes.Int32, Nullable: true})
	require.NoError(t, err)
	assert.Equal(t, Integer, v.Kind())
}

func TestFromFieldTimezoneFallback(t *testing.T) {
	f := arrow.Field{
		Name:     "at",
		Type:     &arrow.TimestampType{Unit: arrow.Millisecond},
		Metadata: arrow.NewMetadata([]string{"logical_type", "timezone"}, []string{"datetime", "UTC"}),
	}
	v, err := FromField(f)
	require.NoError(t, err)
	assert.Equal(t, "UTC", v.Timezone())
	assert.Equal(t, Millisecond, v.TimeUnit())
}

func TestFromFieldTimeUnitOverride(t *testing.T) {
	f := arrow.Field{
		Name:     "at",
		Type:     &arrow.TimestampType{Unit: arrow.Millisecond},
		Metadata: arrow.NewMetadata([]string{"logical_type", "time_unit"}, []string{"datetime", "Second"}),
	}
	v, err := FromField(f)
	require.NoError(t, err)
	assert.Equal(t, Second, v.TimeUnit())
}

func TestFromFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		field arrow.Field
		want  errors.ErrorType
	}{
		{
			name:  "unsupported type",
			field: arrow.Field{Name: "f", Type: arrow.PrimitiveTypes.Float64},
			want:  errors.ErrorTypeUnsupportedKind,
		},
		{
			name: "malformed categories",
			field: arrow.Field{
				Name:     "c",
				Type:     arrow.PrimitiveTypes.Int32,
				Metadata: arrow.NewMetadata([]string{"logical_type", "categories"}, []string{"category", "{not json"}),
			},
			want: errors.ErrorTypeSchemaMismatch,
		},
		{
			name: "non numeric category code",
			field: arrow.Field{
				Name:     "c",
				Type:     arrow.PrimitiveTypes.Int32,
				Metadata: arrow.NewMetadata([]string{"logical_type", "categories"}, []string{"category", `{"x":"y"}`}),
			},
			want: errors.ErrorTypeSchemaMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromField(tt.field)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.want), "got %v", err)
		})
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	vars := []Variable{
		NewInteger("Id", Description("row id")),
		mustDecimal(t, "Value", 18, 4, Unit("EUR")),
		NewBoolean("IsActive"),
		NewText("Name", Formula("concat(a, b)")),
		NewDate("Date"),
		NewTimestamp("At", Nanosecond, Timezone("UTC")),
		NewCategory("Grade", map[int32]string{1: "low", 7: "high"}),
		NewOrdinalCategory("Size", []string{"S", "M"}),
	}
	for _, v := range vars {
		t.Run(v.Kind().String(), func(t *testing.T) {
			d := v.Descriptor()
			assert.Equal(t, TypeTag(v.Kind()), d.VariableType)
			back, err := FromDescriptor(d)
			require.NoError(t, err)
			assert.True(t, v.Equal(back))
		})
	}
}

func TestFromDescriptorDefaultsAndAliases(t *testing.T) {
	v, err := FromDescriptor(Descriptor{Name: "amount", VariableType: "NumericVariable"})
	require.NoError(t, err)
	assert.Equal(t, DefaultPrecision, v.Precision())
	assert.Equal(t, DefaultScale, v.Scale())

	v, err = FromDescriptor(Descriptor{Name: "at", VariableType: "timestamp", TimeUnit: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, Millisecond, v.TimeUnit())

	v, err = FromDescriptor(Descriptor{Name: "o", VariableType: "ordinal_category"})
	require.NoError(t, err)
	assert.Equal(t, OrdinalCategory, v.Kind())

	_, err = FromDescriptor(Descriptor{Name: "x", VariableType: "ComplexVariable"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedKind))
}

func TestParseHelpers(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, got)
		assert.True(t, k.Valid())
	}
	assert.False(t, Kind(0).Valid())
	assert.True(t, Integer.IsNumeric())
	assert.True(t, Decimal.IsNumeric())
	assert.False(t, Category.IsNumeric())

	for _, u := range []TimeUnit{Second, Millisecond, Microsecond, Nanosecond} {
		got, ok := ParseTimeUnit(u.String())
		assert.True(t, ok)
		assert.Equal(t, u, got)
		assert.Equal(t, u, timeUnitFromArrow(u.Arrow()))
	}
	_, ok := ParseTimeUnit("fortnight")
	assert.False(t, ok)
}
