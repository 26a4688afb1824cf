package dataset

import (
	"sync"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

func ints(t *testing.T, name string, values ...int64) *vector.Vector {
	t.Helper()
	cells := make([]vector.Value, len(values))
	for i, v := range values {
		cells[i] = vector.Int(v)
	}
	vec, err := vector.FromValues(variable.NewInteger(name, variable.Description("desc of "+name)), cells)
	require.NoError(t, err)
	return vec
}

func texts(t *testing.T, name string, values ...string) *vector.Vector {
	t.Helper()
	cells := make([]vector.Value, len(values))
	for i, v := range values {
		cells[i] = vector.Text(v)
	}
	vec, err := vector.FromValues(variable.NewText(name), cells)
	require.NoError(t, err)
	return vec
}

func TestIDAllocator(t *testing.T) {
	ids := NewIDAllocator(10)
	assert.Equal(t, int64(10), ids.Next())
	assert.Equal(t, int64(11), ids.Next())

	ds := New(ids)
	assert.Equal(t, int64(12), ds.ID())
	assert.Equal(t, "Dataset12", ds.Name)
	assert.False(t, ds.CreatedAt.IsZero())
}

func TestIDAllocatorConcurrent(t *testing.T) {
	ids := NewIDAllocator(1)
	const n = 200
	seen := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- New(ids).ID()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for id := range seen {
		unique[id] = true
	}
	assert.Len(t, unique, n)
	assert.Equal(t, int64(n+1), ids.Next())
}

func TestAddColumnLengthMismatch(t *testing.T) {
	ds := New(NewIDAllocator(1))
	assert.Equal(t, 0, ds.RowCount())

	require.NoError(t, ds.AddColumn(ints(t, "a", 1, 2, 3)))
	err := ds.AddColumn(ints(t, "b", 1, 2))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))

	assert.Equal(t, 1, ds.ColumnCount())
	assert.Equal(t, 3, ds.RowCount())

	_, err = NewWithColumns(NewIDAllocator(1), ints(t, "a", 1), ints(t, "b", 1, 2))
	assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))
}

func TestColumnLookupReturnsFirstMatch(t *testing.T) {
	ds, err := NewWithColumns(NewIDAllocator(1), ints(t, "dup", 1), texts(t, "dup", "x"))
	require.NoError(t, err)

	col, err := ds.Column("dup")
	require.NoError(t, err)
	assert.Equal(t, variable.Integer, col.Variable().Kind())

	_, err = ds.Column("missing")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestRenameColumnPreservesValuesAndMetadata(t *testing.T) {
	ds, err := NewWithColumns(NewIDAllocator(1), ints(t, "a", 1, 2, 3), texts(t, "b", "x", "y", "z"))
	require.NoError(t, err)
	before, err := ds.Column("a")
	require.NoError(t, err)
	beforeArray := before.Array()

	require.NoError(t, ds.RenameColumn("a", "renamed"))

	_, err = ds.Column("a")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	after, err := ds.Column("renamed")
	require.NoError(t, err)
	assert.Equal(t, 0, ds.ColumnIndex("renamed"))
	assert.Same(t, beforeArray, after.Array())
	assert.Equal(t, "desc of a", after.Variable().Description())
	assert.Equal(t, variable.Integer, after.Variable().Kind())
	for i := 0; i < 3; i++ {
		assert.True(t, before.Value(i).Equal(after.Value(i)))
	}

	err = ds.RenameColumn("nope", "x")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestUpdateColumnMetadata(t *testing.T) {
	cat := variable.NewCategory("grade", map[int32]string{1: "low", 2: "high"})
	vec, err := vector.FromValues(cat, []vector.Value{vector.Int(1), vector.Int(2)})
	require.NoError(t, err)
	ds, err := NewWithColumns(NewIDAllocator(1), vec)
	require.NoError(t, err)

	require.NoError(t, ds.UpdateDescription("grade", "quality grade"))
	require.NoError(t, ds.UpdateUnit("grade", "level"))
	require.NoError(t, ds.UpdateFormula("grade", "score > 50"))

	v := ds.ColumnAt(0).Variable()
	assert.Equal(t, "quality grade", v.Description())
	assert.Equal(t, "level", v.Unit())
	assert.True(t, v.IsCalculated())
	assert.Equal(t, cat.Categories(), v.Categories())

	assert.True(t, errors.IsType(ds.UpdateUnit("missing", "x"), errors.ErrorTypeNotFound))
}

func TestSchemaMetadataRoundTrip(t *testing.T) {
	ds := New(NewIDAllocator(1))
	ds.Name = "sales"
	ds.Author = "ops"
	ds.Description = "   "
	ds.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)

	md := ds.SchemaMetadata()
	assert.Equal(t, map[string]string{
		MetaName:      "sales",
		MetaAuthor:    "ops",
		MetaCreatedAt: "2025-06-01T12:00:00.123456789Z",
	}, md.ToMap())

	other := newBare(NewIDAllocator(5))
	require.NoError(t, other.ApplySchemaMetadata(md))
	assert.Equal(t, "sales", other.Name)
	assert.Equal(t, "ops", other.Author)
	assert.Empty(t, other.Source)
	assert.True(t, ds.CreatedAt.Equal(other.CreatedAt))

	bare := newBare(NewIDAllocator(5))
	require.NoError(t, bare.ApplySchemaMetadata(arrow.Metadata{}))
	assert.Equal(t, "Dataset5", bare.Name)
	assert.True(t, bare.CreatedAt.IsZero())

	bad := arrow.NewMetadata([]string{MetaCreatedAt}, []string{"yesterday"})
	assert.True(t, errors.IsType(bare.ApplySchemaMetadata(bad), errors.ErrorTypeSchemaMismatch))
}

func TestRecordAndFromRecords(t *testing.T) {
	price, err := variable.NewDecimal("price", 10, 2)
	require.NoError(t, err)
	prices, err := vector.FromValues(price, []vector.Value{
		vector.Decimal(decimal.RequireFromString("1.25")),
		vector.Null(),
	})
	require.NoError(t, err)

	ds, err := NewWithColumns(NewIDAllocator(1), ints(t, "id", 1, 2), prices)
	require.NoError(t, err)
	ds.Author = "me"

	rec, err := ds.Record()
	require.NoError(t, err)
	defer rec.Release()
	assert.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, int64(2), rec.NumCols())

	// Same batch twice exercises concatenation.
	loaded, err := FromRecords(NewIDAllocator(100), []arrow.Record{rec, rec})
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.RowCount())
	assert.Equal(t, "me", loaded.Author)
	assert.Equal(t, ds.Name, loaded.Name)
	assert.Equal(t, int64(100), loaded.ID())

	col, err := loaded.Column("price")
	require.NoError(t, err)
	assert.True(t, col.Variable().Equal(price))
	assert.True(t, col.Value(2).Equal(vector.Decimal(decimal.RequireFromString("1.25"))))
	assert.True(t, col.Value(3).IsNull())
}

func TestFromRecordsSchemaMismatch(t *testing.T) {
	a, err := NewWithColumns(NewIDAllocator(1), ints(t, "id", 1))
	require.NoError(t, err)
	b, err := NewWithColumns(NewIDAllocator(1), texts(t, "id", "1"))
	require.NoError(t, err)

	ra, err := a.Record()
	require.NoError(t, err)
	defer ra.Release()
	rb, err := b.Record()
	require.NoError(t, err)
	defer rb.Release()

	_, err = FromRecords(nil, []arrow.Record{ra, rb})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))
}

func TestFromRecordsEmpty(t *testing.T) {
	ds, err := FromRecords(NewIDAllocator(1), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.RowCount())
	assert.Equal(t, 0, ds.ColumnCount())
}

func TestTableRoundTrip(t *testing.T) {
	ds, err := NewWithColumns(NewIDAllocator(1), ints(t, "n", 1, 2), texts(t, "s", "a", "b"))
	require.NoError(t, err)

	table := ds.ToTable()
	assert.Equal(t, []string{"n", "s"}, table.Columns)
	require.Len(t, table.Rows, 2)

	table.Rows[0][0] = vector.Int(10)
	table.Rows[1][1] = vector.Null()
	table.Rows[1][0] = vector.Text("not a number")
	require.NoError(t, ds.UpdateFromTable(table))

	assert.True(t, ds.ColumnAt(0).Value(0).Equal(vector.Int(10)))
	assert.True(t, ds.ColumnAt(0).Value(1).IsNull())
	assert.True(t, ds.ColumnAt(1).Value(1).IsNull())
	assert.False(t, ds.ColumnAt(0).Dirty())
	assert.Equal(t, 1, ds.ColumnAt(0).Array().NullN())
}

func TestUpdateFromTableShapeErrors(t *testing.T) {
	ds, err := NewWithColumns(NewIDAllocator(1), ints(t, "n", 1, 2))
	require.NoError(t, err)

	tests := []struct {
		name  string
		table *Table
	}{
		{"column count", &Table{Columns: []string{"n", "m"}, Rows: [][]vector.Value{{vector.Int(1), vector.Int(1)}, {vector.Int(1), vector.Int(1)}}}},
		{"row count", &Table{Columns: []string{"n"}, Rows: [][]vector.Value{{vector.Int(1)}}}},
		{"ragged row", &Table{Columns: []string{"n"}, Rows: [][]vector.Value{{vector.Int(1)}, {}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ds.UpdateFromTable(tt.table)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))
		})
	}
	assert.True(t, ds.ColumnAt(0).Value(0).Equal(vector.Int(1)))
}
