// Package dataset implements the tabula DataSet: an ordered set of equal
// length vectors plus dataset-level metadata and identity.
package dataset

import (
	"fmt"
	"time"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// DataSet is a materialized table. Column names are not required to be
// unique; lookups by name return the first match.
//
// A DataSet is not safe for concurrent mutation.
type DataSet struct {
	id int64

	Name        string
	Author      string
	Source      string
	Description string
	// CreatedAt is the zero time when unset.
	CreatedAt time.Time

	columns []*vector.Vector
}

// New creates an empty dataset with the next id from ids (DefaultIDs when
// nil), the default name "Dataset<id>" and CreatedAt set to now.
func New(ids *IDAllocator) *DataSet {
	ds := newBare(ids)
	ds.CreatedAt = time.Now().UTC()
	return ds
}

func newBare(ids *IDAllocator) *DataSet {
	id := allocator(ids).Next()
	return &DataSet{
		id:   id,
		Name: fmt.Sprintf("Dataset%d", id),
	}
}

// NewWithColumns creates a dataset from vectors that must share one length.
func NewWithColumns(ids *IDAllocator, columns ...*vector.Vector) (*DataSet, error) {
	ds := New(ids)
	for _, col := range columns {
		if err := ds.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// ID returns the dataset id.
func (ds *DataSet) ID() int64 { return ds.id }

// RowCount returns the shared column length, 0 without columns.
func (ds *DataSet) RowCount() int {
	if len(ds.columns) == 0 {
		return 0
	}
	return ds.columns[0].Len()
}

// ColumnCount returns the number of columns.
func (ds *DataSet) ColumnCount() int { return len(ds.columns) }

// Columns returns the columns in order. The slice is a copy.
func (ds *DataSet) Columns() []*vector.Vector {
	return append([]*vector.Vector(nil), ds.columns...)
}

// ColumnAt returns the column at index i.
func (ds *DataSet) ColumnAt(i int) *vector.Vector { return ds.columns[i] }

// ColumnIndex returns the index of the first column named name, or -1.
func (ds *DataSet) ColumnIndex(name string) int {
	for i, col := range ds.columns {
		if col.Name() == name {
			return i
		}
	}
	return -1
}

// Column returns the first column named name.
func (ds *DataSet) Column(name string) (*vector.Vector, error) {
	i := ds.ColumnIndex(name)
	if i < 0 {
		return nil, notFound(name)
	}
	return ds.columns[i], nil
}

// Variables returns the column schemas in order.
func (ds *DataSet) Variables() []variable.Variable {
	out := make([]variable.Variable, len(ds.columns))
	for i, col := range ds.columns {
		out[i] = col.Variable()
	}
	return out
}

// AddColumn appends vec. It fails with LengthMismatch when the dataset has
// columns of a different length and leaves the dataset unchanged.
func (ds *DataSet) AddColumn(vec *vector.Vector) error {
	if len(ds.columns) > 0 && vec.Len() != ds.RowCount() {
		return errors.Newf(errors.ErrorTypeLengthMismatch, "column %q has %d rows, dataset has %d", vec.Name(), vec.Len(), ds.RowCount()).
			WithDetail("dataset", ds.Name)
	}
	ds.columns = append(ds.columns, vec)
	return nil
}

// RenameColumn renames the first column named oldName. The physical array
// and every other property are kept.
func (ds *DataSet) RenameColumn(oldName, newName string) error {
	return ds.replaceVariable(oldName, func(v variable.Variable) variable.Variable {
		return v.WithName(newName)
	})
}

// UpdateDescription replaces the description of the first column named name.
func (ds *DataSet) UpdateDescription(name, description string) error {
	return ds.replaceVariable(name, func(v variable.Variable) variable.Variable {
		return v.WithDescription(description)
	})
}

// UpdateUnit replaces the unit of the first column named name.
func (ds *DataSet) UpdateUnit(name, unit string) error {
	return ds.replaceVariable(name, func(v variable.Variable) variable.Variable {
		return v.WithUnit(unit)
	})
}

// UpdateFormula replaces the formula of the first column named name.
func (ds *DataSet) UpdateFormula(name, formula string) error {
	return ds.replaceVariable(name, func(v variable.Variable) variable.Variable {
		return v.WithFormula(formula)
	})
}

func (ds *DataSet) replaceVariable(name string, edit func(variable.Variable) variable.Variable) error {
	i := ds.ColumnIndex(name)
	if i < 0 {
		return notFound(name)
	}
	old := ds.columns[i]
	replacement, err := old.WithVariable(edit(old.Variable()))
	if err != nil {
		return err
	}
	ds.columns[i] = replacement
	return nil
}

// Release drops every column's reference to its physical array.
func (ds *DataSet) Release() {
	for _, col := range ds.columns {
		col.Release()
	}
}

func notFound(name string) error {
	return errors.Newf(errors.ErrorTypeNotFound, "column %q not found", name).
		WithDetail("column", name)
}
