package demo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/variable"
)

func TestDatasetShape(t *testing.T) {
	ds, err := Dataset(dataset.NewIDAllocator(1), DefaultRows, 42)
	require.NoError(t, err)
	require.Equal(t, 5, ds.ColumnCount())
	require.Equal(t, DefaultRows, ds.RowCount())

	kinds := []variable.Kind{variable.Integer, variable.Decimal, variable.Boolean, variable.Text, variable.Date}
	for i, k := range kinds {
		assert.Equal(t, k, ds.ColumnAt(i).Variable().Kind())
	}

	id, err := ds.Column("Id")
	require.NoError(t, err)
	first, _ := id.Value(0).Int()
	last, _ := id.Value(DefaultRows - 1).Int()
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(DefaultRows), last)

	value, err := ds.Column("Value")
	require.NoError(t, err)
	lo, hi := decimal.NewFromInt(-100), decimal.NewFromInt(100)
	for _, v := range value.Values() {
		d, ok := v.Decimal()
		require.True(t, ok)
		assert.True(t, d.GreaterThanOrEqual(lo) && d.LessThanOrEqual(hi), d.String())
		assert.LessOrEqual(t, -d.Exponent(), int32(4))
	}

	date, err := ds.Column("Date")
	require.NoError(t, err)
	d, _ := date.Value(31).Date()
	assert.Equal(t, StartDate.AddDate(0, 0, 31), d)
	assert.Equal(t, 0, date.NullCount())
}

func TestDatasetIsDeterministic(t *testing.T) {
	a, err := Dataset(nil, 50, 7)
	require.NoError(t, err)
	b, err := Dataset(nil, 50, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	for i := 0; i < a.ColumnCount(); i++ {
		for r := 0; r < 50; r++ {
			assert.True(t, a.ColumnAt(i).Value(r).Equal(b.ColumnAt(i).Value(r)))
		}
	}
}

func TestAllKinds(t *testing.T) {
	ds, err := AllKinds(dataset.NewIDAllocator(1))
	require.NoError(t, err)
	assert.Equal(t, 4, ds.RowCount())
	seen := map[variable.Kind]bool{}
	for _, col := range ds.Columns() {
		seen[col.Variable().Kind()] = true
		assert.Equal(t, 1, col.NullCount(), col.Name())
	}
	assert.Len(t, seen, len(variable.Kinds))
	assert.Equal(t, time.UTC, ds.CreatedAt.Location())
}
