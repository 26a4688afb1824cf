// Package vector holds materialized tabula columns: a physical arrow array
// paired with its Variable and a cache of decoded logical values.
package vector

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/variable"
)

// Vector is one column. After SetValue the decoded cache is authoritative
// and the physical array is rebuilt on the next Array call.
//
// A Vector is not safe for concurrent mutation.
type Vector struct {
	variable variable.Variable
	array    arrow.Array
	values   []Value
	dirty    bool
	mem      memory.Allocator
}

// New wraps an existing physical array. The array's type must equal the
// variable's field type; the vector takes its own reference. Timestamp
// arrays of a different unit or zone are accepted and copied into the
// variable's type.
func New(v variable.Variable, arr arrow.Array) (*Vector, error) {
	dt := v.DataType()
	if dt == nil {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedKind, "unsupported kind %s", v.Kind()).
			WithDetail("variable", v.Name())
	}
	retimed := false
	if !arrow.TypeEqual(dt, arr.DataType()) {
		if dt.ID() != arrow.TIMESTAMP || arr.DataType().ID() != arrow.TIMESTAMP {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedKind, "array type %s does not match %s column", arr.DataType(), v.Kind()).
				WithDetail("variable", v.Name()).
				WithDetail("expected", dt.String())
		}
		retimed = true
	}
	values, err := decode(v, arr)
	if err != nil {
		return nil, err
	}
	if retimed {
		// Timestamps of another unit or zone are re-encoded to the column type.
		for i, val := range values {
			values[i] = Coerce(v, val)
		}
		vec := &Vector{variable: v, values: values, mem: memory.DefaultAllocator}
		if err := vec.Rebuild(); err != nil {
			return nil, err
		}
		return vec, nil
	}
	arr.Retain()
	return &Vector{
		variable: v,
		array:    arr,
		values:   values,
		mem:      memory.DefaultAllocator,
	}, nil
}

// FromValues builds a vector from logical values, coercing each one to the
// variable's kind.
func FromValues(v variable.Variable, values []Value) (*Vector, error) {
	if !v.Kind().Valid() {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedKind, "unsupported kind %s", v.Kind()).
			WithDetail("variable", v.Name())
	}
	vec := &Vector{
		variable: v,
		values:   make([]Value, len(values)),
		mem:      memory.DefaultAllocator,
	}
	for i, val := range values {
		vec.values[i] = Coerce(v, val)
	}
	if err := vec.Rebuild(); err != nil {
		return nil, err
	}
	return vec, nil
}

// Variable returns the column schema.
func (vec *Vector) Variable() variable.Variable { return vec.variable }

// Name returns the column name.
func (vec *Vector) Name() string { return vec.variable.Name() }

// Len returns the number of cells.
func (vec *Vector) Len() int { return len(vec.values) }

// Value returns the decoded cell at i.
func (vec *Vector) Value(i int) Value { return vec.values[i] }

// Values returns a copy of the decoded cells.
func (vec *Vector) Values() []Value {
	return append([]Value(nil), vec.values...)
}

// NullCount returns the number of null cells.
func (vec *Vector) NullCount() int {
	n := 0
	for _, val := range vec.values {
		if val.IsNull() {
			n++
		}
	}
	return n
}

// SetValue writes cell i and marks the vector dirty. The value is coerced
// to the column kind; mismatches become null.
func (vec *Vector) SetValue(i int, val Value) {
	vec.values[i] = Coerce(vec.variable, val)
	vec.dirty = true
}

// Dirty reports whether the physical array is stale.
func (vec *Vector) Dirty() bool { return vec.dirty }

// Rebuild re-encodes the physical array from the decoded cells.
func (vec *Vector) Rebuild() error {
	arr, err := encode(vec.mem, vec.variable, vec.values)
	if err != nil {
		return err
	}
	if vec.array != nil {
		vec.array.Release()
	}
	vec.array = arr
	vec.dirty = false
	return nil
}

// Array returns the physical array, rebuilding it first when dirty. The
// vector keeps ownership; callers that hold on to it must Retain.
func (vec *Vector) Array() arrow.Array {
	if vec.dirty {
		// Cells are coerced on write and the kind was validated on
		// construction, so re-encoding cannot fail here.
		_ = vec.Rebuild()
	}
	return vec.array
}

// WithVariable returns a vector that pairs v with the same physical array.
// v must map to the same arrow type; used for renames and metadata edits.
func (vec *Vector) WithVariable(v variable.Variable) (*Vector, error) {
	return New(v, vec.Array())
}

// Release drops the vector's reference to its physical array.
func (vec *Vector) Release() {
	if vec.array != nil {
		vec.array.Release()
		vec.array = nil
	}
}
