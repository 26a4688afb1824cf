package dataset

import (
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// Table is a row-major copy of a dataset for grid editors.
type Table struct {
	Columns []string
	Rows    [][]vector.Value
}

// ToTable copies the dataset into a Table.
func (ds *DataSet) ToTable() *Table {
	t := &Table{
		Columns: make([]string, len(ds.columns)),
		Rows:    make([][]vector.Value, ds.RowCount()),
	}
	for c, col := range ds.columns {
		t.Columns[c] = col.Name()
	}
	for r := range t.Rows {
		row := make([]vector.Value, len(ds.columns))
		for c, col := range ds.columns {
			row[c] = col.Value(r)
		}
		t.Rows[r] = row
	}
	return t
}

// UpdateFromTable writes every cell of t back into the columns and
// re-encodes them. Column and row counts must match the dataset. Cells
// whose kind does not fit the column become null.
func (ds *DataSet) UpdateFromTable(t *Table) error {
	if len(t.Columns) != len(ds.columns) {
		return errors.Newf(errors.ErrorTypeLengthMismatch, "table has %d columns, dataset has %d", len(t.Columns), len(ds.columns))
	}
	if len(t.Rows) != ds.RowCount() {
		return errors.Newf(errors.ErrorTypeLengthMismatch, "table has %d rows, dataset has %d", len(t.Rows), ds.RowCount())
	}
	for r, row := range t.Rows {
		if len(row) != len(ds.columns) {
			return errors.Newf(errors.ErrorTypeLengthMismatch, "table row %d has %d cells, dataset has %d columns", r, len(row), len(ds.columns))
		}
	}

	for c, col := range ds.columns {
		for r, row := range t.Rows {
			col.SetValue(r, row[c])
		}
		if err := col.Rebuild(); err != nil {
			return err
		}
	}
	return nil
}
