// Package demo builds the sample datasets used by the CLI and by codec
// tests.
package demo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// DefaultRows is the row count of the canonical demo dataset.
const DefaultRows = 400

// StartDate is the first value of the Date column.
var StartDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Dataset builds the canonical five column dataset: Id (1..rows), Value
// (decimal(18,4) drawn from [-100, 100]), IsActive (random), Name (item_0,
// item_1, ...) and Date (daily from StartDate). The same seed always yields
// the same cells.
func Dataset(ids *dataset.IDAllocator, rows int, seed int64) (*dataset.DataSet, error) {
	f := vector.NewFactory(seed)

	valueVar, err := variable.NewDecimal("Value", 18, 4, variable.Description("Random measurement"))
	if err != nil {
		return nil, err
	}

	specs := []struct {
		v    variable.Variable
		spec vector.FillSpec
	}{
		{
			variable.NewInteger("Id", variable.Description("Row identifier")),
			vector.FillSpec{Mode: vector.Sequence, Start: vector.Int(1), Step: vector.Int(1)},
		},
		{
			valueVar,
			vector.FillSpec{
				Mode: vector.Random,
				Min:  vector.Decimal(decimal.NewFromInt(-100)),
				Max:  vector.Decimal(decimal.NewFromInt(100)),
			},
		},
		{
			variable.NewBoolean("IsActive"),
			vector.FillSpec{Mode: vector.Random},
		},
		{
			variable.NewText("Name"),
			vector.FillSpec{Mode: vector.Sequence},
		},
		{
			variable.NewDate("Date"),
			vector.FillSpec{Mode: vector.Sequence, Start: vector.Date(StartDate), StepDuration: 24 * time.Hour},
		},
	}

	cols := make([]*vector.Vector, 0, len(specs))
	for _, s := range specs {
		vec, err := f.Filled(s.v, rows, s.spec)
		if err != nil {
			return nil, err
		}
		cols = append(cols, vec)
	}

	ds, err := dataset.NewWithColumns(ids, cols...)
	if err != nil {
		return nil, err
	}
	ds.Name = "Demo"
	ds.Author = "tabula"
	ds.Source = "generator"
	ds.Description = "Generated sample dataset"
	return ds, nil
}

// AllKinds builds a small dataset with one column of every kind, column
// documentation and a null in every column.
func AllKinds(ids *dataset.IDAllocator) (*dataset.DataSet, error) {
	price, err := variable.NewDecimal("price", 10, 2, variable.Unit("EUR"), variable.Description("Unit price"))
	if err != nil {
		return nil, err
	}
	day := func(y int, m time.Month, d int) vector.Value {
		return vector.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	at := func(s string) vector.Value {
		t, _ := time.Parse(time.RFC3339Nano, s)
		return vector.Instant(t)
	}
	dec := func(s string) vector.Value {
		return vector.Decimal(decimal.RequireFromString(s))
	}

	columns := []struct {
		v      variable.Variable
		values []vector.Value
	}{
		{variable.NewInteger("qty", variable.Unit("pcs")),
			[]vector.Value{vector.Int(3), vector.Int(-7), vector.Null(), vector.Int(2147483647)}},
		{price,
			[]vector.Value{dec("19.99"), dec("-0.01"), dec("12345678.90"), vector.Null()}},
		{variable.NewBoolean("paid"),
			[]vector.Value{vector.Bool(true), vector.Null(), vector.Bool(false), vector.Bool(true)}},
		{variable.NewText("note"),
			[]vector.Value{vector.Text("first"), vector.Text("unicode: żółw"), vector.Null(), vector.Text("semi;colon")}},
		{variable.NewDate("due"),
			[]vector.Value{day(2024, time.February, 29), day(1969, time.July, 20), vector.Null(), day(2025, time.January, 1)}},
		{variable.NewTimestamp("seen", variable.Microsecond, variable.Timezone("Europe/Warsaw")),
			[]vector.Value{at("2024-03-01T10:15:30.123456Z"), vector.Null(), at("1970-01-01T00:00:00Z"), at("2030-12-31T23:59:59.999999Z")}},
		{variable.NewCategory("color", map[int32]string{1: "red", 2: "green", 5: "blue"}),
			[]vector.Value{vector.Int(1), vector.Int(5), vector.Int(2), vector.Null()}},
		{variable.NewOrdinalCategory("size", []string{"S", "M", "L"}),
			[]vector.Value{vector.Null(), vector.Int(0), vector.Int(2), vector.Int(1)}},
		{variable.NewDefaultDecimal("margin", variable.Formula("price * 0.2")),
			[]vector.Value{dec("3.998"), dec("0.000001"), vector.Null(), dec("-42.5")}},
	}

	cols := make([]*vector.Vector, 0, len(columns))
	for _, c := range columns {
		vec, err := vector.FromValues(c.v, c.values)
		if err != nil {
			return nil, err
		}
		cols = append(cols, vec)
	}

	ds, err := dataset.NewWithColumns(ids, cols...)
	if err != nil {
		return nil, err
	}
	ds.Name = "AllKinds"
	ds.Author = "QA"
	ds.Source = "fixture"
	ds.Description = "One column per kind"
	ds.CreatedAt = time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)
	return ds, nil
}
