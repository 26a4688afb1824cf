package transform

import (
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabula/pkg/vector"
)

// RollingMean returns the mean of the non-null cells in the trailing window
// of size window ending at each row, named "{vec}_rollmean_{window}". Rows
// before window-1 and windows with no known cells are null.
func RollingMean(vec *vector.Vector, window int) (out *vector.Vector, err error) {
	defer observe("rollmean", &err)
	return rolling("rollmean", vec, window, func(sum decimal.Decimal, count int64) decimal.Decimal {
		return sum.DivRound(decimal.NewFromInt(count), divisionScale)
	})
}

// RollingSum returns the sum of the non-null cells in the trailing window,
// named "{vec}_rollsum_{window}". Null placement follows RollingMean.
func RollingSum(vec *vector.Vector, window int) (out *vector.Vector, err error) {
	defer observe("rollsum", &err)
	return rolling("rollsum", vec, window, func(sum decimal.Decimal, _ int64) decimal.Decimal {
		return sum
	})
}

func rolling(op string, vec *vector.Vector, window int, agg func(sum decimal.Decimal, count int64) decimal.Decimal) (*vector.Vector, error) {
	if window <= 0 {
		return nil, invalid(op, "window must be positive, got %d", window)
	}
	if err := requireNumeric(op, vec); err != nil {
		return nil, err
	}

	cells := numeric(vec)
	values := make([]vector.Value, len(cells))
	sum := decimal.Zero
	count := int64(0)
	for i, d := range cells {
		if d != nil {
			sum = sum.Add(*d)
			count++
		}
		if i >= window {
			if gone := cells[i-window]; gone != nil {
				sum = sum.Sub(*gone)
				count--
			}
		}
		if i >= window-1 && count > 0 {
			values[i] = vector.Decimal(agg(sum, count))
		}
	}
	return decimalResult(op, suffixName(vec, "%s_%d", op, window), values)
}
