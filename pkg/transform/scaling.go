package transform

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabula/pkg/vector"
)

// boxCoxLogThreshold is the |λ| below which BoxCox is the natural log.
const boxCoxLogThreshold = 1e-9

// Normalize rescales vec to [0, 1] with (x - min) / (max - min), named
// "{vec}_norm". It fails when vec has no known cells or all of them are
// equal.
func Normalize(vec *vector.Vector) (out *vector.Vector, err error) {
	defer observe("normalize", &err)
	if err := requireNumeric("normalize", vec); err != nil {
		return nil, err
	}

	cells := numeric(vec)
	var lo, hi *decimal.Decimal
	for _, d := range cells {
		if d == nil {
			continue
		}
		if lo == nil || d.LessThan(*lo) {
			lo = d
		}
		if hi == nil || d.GreaterThan(*hi) {
			hi = d
		}
	}
	if lo == nil {
		return nil, invalid("normalize", "vector %q has no values", vec.Name())
	}
	if lo.Equal(*hi) {
		return nil, invalid("normalize", "vector %q is constant", vec.Name())
	}

	span := hi.Sub(*lo)
	values := make([]vector.Value, len(cells))
	for i, d := range cells {
		if d != nil {
			values[i] = vector.Decimal(d.Sub(*lo).DivRound(span, divisionScale))
		}
	}
	return decimalResult("normalize", vec.Name()+"_norm", values)
}

// Standardize returns z-scores (x - mean) / stddev using the population
// variance, named "{vec}_z". It fails when vec has no known cells or zero
// variance.
func Standardize(vec *vector.Vector) (out *vector.Vector, err error) {
	defer observe("standardize", &err)
	if err := requireNumeric("standardize", vec); err != nil {
		return nil, err
	}

	cells := numeric(vec)
	sum := decimal.Zero
	count := int64(0)
	for _, d := range cells {
		if d != nil {
			sum = sum.Add(*d)
			count++
		}
	}
	if count == 0 {
		return nil, invalid("standardize", "vector %q has no values", vec.Name())
	}
	n := decimal.NewFromInt(count)
	mean := sum.DivRound(n, 2*divisionScale)

	sumSq := decimal.Zero
	for _, d := range cells {
		if d != nil {
			dev := d.Sub(mean)
			sumSq = sumSq.Add(dev.Mul(dev))
		}
	}
	variance := sumSq.DivRound(n, 2*divisionScale)
	if variance.IsZero() {
		return nil, invalid("standardize", "vector %q is constant", vec.Name())
	}
	std := decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))

	values := make([]vector.Value, len(cells))
	for i, d := range cells {
		if d != nil {
			values[i] = vector.Decimal(d.Sub(mean).DivRound(std, divisionScale))
		}
	}
	return decimalResult("standardize", vec.Name()+"_z", values)
}

// BoxCox applies the power transform (x^λ - 1) / λ, or ln(x) when λ is
// within 1e-9 of zero, named "{vec}_boxcox_{λ}". Every known cell must be
// strictly positive. The transform is computed in float64.
func BoxCox(vec *vector.Vector, lambda float64) (out *vector.Vector, err error) {
	defer observe("boxcox", &err)
	if err := requireNumeric("boxcox", vec); err != nil {
		return nil, err
	}
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return nil, invalid("boxcox", "lambda must be finite")
	}

	cells := numeric(vec)
	for i, d := range cells {
		if d != nil && !d.IsPositive() {
			return nil, invalid("boxcox", "requires strictly positive values, row %d of %q is %s", i, vec.Name(), d)
		}
	}

	values := make([]vector.Value, len(cells))
	for i, d := range cells {
		if d == nil {
			continue
		}
		x := d.InexactFloat64()
		var y float64
		if math.Abs(lambda) < boxCoxLogThreshold {
			y = math.Log(x)
		} else {
			y = (math.Pow(x, lambda) - 1) / lambda
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, invalid("boxcox", "result overflows at row %d of %q", i, vec.Name())
		}
		values[i] = vector.Decimal(decimal.NewFromFloat(y))
	}
	return decimalResult("boxcox", vec.Name()+"_boxcox_"+strconv.FormatFloat(lambda, 'g', -1, 64), values)
}
