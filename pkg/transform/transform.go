// Package transform implements the vector algebra: elementwise arithmetic,
// boolean logic, scaling, power transforms, rolling aggregates and date
// arithmetic.
//
// Every operation is a pure function returning a new vector. Null cells
// propagate: a result cell is null whenever an input cell it depends on is
// null. Numeric results are Decimal(18,6) columns and are rounded to that
// scale; results that do not fit the precision become null.
//
// Inputs of unequal length fail with a length_mismatch error, operands of
// the wrong kind with unsupported_kind, and statistically undefined inputs
// with invalid_operation.
package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// divisionScale is the working scale of quotients before rounding to the
// result column.
const divisionScale = 12

func sameLength(op string, a, b *vector.Vector) error {
	if a.Len() != b.Len() {
		return errors.Newf(errors.ErrorTypeLengthMismatch, "%s: vectors %q and %q have lengths %d and %d",
			op, a.Name(), b.Name(), a.Len(), b.Len())
	}
	return nil
}

func requireKind(op string, vec *vector.Vector, ok func(variable.Kind) bool, want string) error {
	if !ok(vec.Variable().Kind()) {
		return errors.Newf(errors.ErrorTypeUnsupportedKind, "%s is supported only for %s columns, %q is %s",
			op, want, vec.Name(), vec.Variable().Kind()).
			WithDetail("variable", vec.Name())
	}
	return nil
}

func requireNumeric(op string, vecs ...*vector.Vector) error {
	for _, vec := range vecs {
		if err := requireKind(op, vec, variable.Kind.IsNumeric, "integer or decimal"); err != nil {
			return err
		}
	}
	return nil
}

func isKind(k variable.Kind) func(variable.Kind) bool {
	return func(got variable.Kind) bool { return got == k }
}

func invalid(op, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrorTypeInvalidOperation, "%s: "+format, append([]interface{}{op}, args...)...)
}

// decimalResult builds the Decimal(18,6) output column.
func decimalResult(op, name string, values []vector.Value) (*vector.Vector, error) {
	return result(op, variable.NewDefaultDecimal(name), values)
}

// result builds the output column of op. Unlike a plain vector write, a
// known cell that v cannot hold is an error rather than a null.
func result(op string, v variable.Variable, values []vector.Value) (*vector.Vector, error) {
	for i, val := range values {
		if !val.IsNull() && vector.Coerce(v, val).IsNull() {
			return nil, invalid(op, "result %s at row %d does not fit %s column %q", val, i, v.Kind(), v.Name())
		}
	}
	return vector.FromValues(v, values)
}

// numeric returns the non-null cells of vec as decimals, nil for null.
func numeric(vec *vector.Vector) []*decimal.Decimal {
	out := make([]*decimal.Decimal, vec.Len())
	for i := range out {
		if d, ok := vec.Value(i).Numeric(); ok {
			out[i] = &d
		}
	}
	return out
}

// observe records the outcome of op.
func observe(op string, err *error) {
	metrics.ObserveTransform(op, *err)
}

func formatConstant(c decimal.Decimal) string {
	return c.String()
}

func suffixName(v *vector.Vector, suffix string, args ...interface{}) string {
	return v.Name() + "_" + fmt.Sprintf(suffix, args...)
}
