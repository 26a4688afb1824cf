package vector

import (
	"math"
	"math/big"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/variable"
)

const secondsPerDay = 24 * 60 * 60

// Nanosecond timestamps are limited to the int64 range around the epoch.
var (
	minNanoInstant = time.Unix(0, math.MinInt64).UTC()
	maxNanoInstant = time.Unix(0, math.MaxInt64).UTC()
)

// Coerce converts val to the canonical cell of variable v.
//
// The contract is tolerant: a payload whose kind does not fit v becomes null,
// as do integers outside the int32 range, decimals wider than the declared
// precision after rounding, and instants the time unit cannot represent.
// Integers are accepted by Decimal columns. Decimals are rounded to the
// column scale half away from zero, and instants are truncated to the unit.
func Coerce(v variable.Variable, val Value) Value {
	if val.IsNull() {
		return Null()
	}
	switch v.Kind() {
	case variable.Integer, variable.Category, variable.OrdinalCategory:
		i, ok := val.Int()
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return Null()
		}
		return val
	case variable.Decimal:
		d, ok := val.Numeric()
		if !ok {
			return Null()
		}
		d = d.Round(v.Scale())
		if !fitsPrecision(d, v.Scale(), v.Precision()) {
			return Null()
		}
		return Decimal(d)
	case variable.Boolean:
		if _, ok := val.Bool(); !ok {
			return Null()
		}
		return val
	case variable.Text:
		if _, ok := val.Text(); !ok {
			return Null()
		}
		return val
	case variable.Date:
		t, ok := val.Date()
		if !ok {
			return Null()
		}
		days := t.Unix() / secondsPerDay
		if days < math.MinInt32 || days > math.MaxInt32 {
			return Null()
		}
		return val
	case variable.Timestamp:
		t, ok := val.Instant()
		if !ok {
			return Null()
		}
		if v.TimeUnit() == variable.Nanosecond && (t.Before(minNanoInstant) || t.After(maxNanoInstant)) {
			return Null()
		}
		return Instant(FromRaw(v.TimeUnit(), ToRaw(v.TimeUnit(), t)))
	default:
		return Null()
	}
}

func fitsPrecision(d decimal.Decimal, scale, precision int32) bool {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
	return d.Shift(scale).BigInt().CmpAbs(limit) < 0
}

// ToRaw returns t as a count of unit since the Unix epoch.
func ToRaw(unit variable.TimeUnit, t time.Time) int64 {
	switch unit {
	case variable.Second:
		return t.Unix()
	case variable.Microsecond:
		return t.UnixMicro()
	case variable.Nanosecond:
		return t.UnixNano()
	default:
		return t.UnixMilli()
	}
}

// FromRaw is the inverse of ToRaw; the result is in UTC.
func FromRaw(unit variable.TimeUnit, raw int64) time.Time {
	switch unit {
	case variable.Second:
		return time.Unix(raw, 0).UTC()
	case variable.Microsecond:
		return time.UnixMicro(raw).UTC()
	case variable.Nanosecond:
		return time.Unix(0, raw).UTC()
	default:
		return time.UnixMilli(raw).UTC()
	}
}

// fromArrowUnit decodes using the unit of the physical array, which may
// differ from the variable's unit after a Parquet round trip.
func fromArrowUnit(unit arrow.TimeUnit, raw int64) time.Time {
	switch unit {
	case arrow.Second:
		return FromRaw(variable.Second, raw)
	case arrow.Microsecond:
		return FromRaw(variable.Microsecond, raw)
	case arrow.Nanosecond:
		return FromRaw(variable.Nanosecond, raw)
	default:
		return FromRaw(variable.Millisecond, raw)
	}
}

// decode converts a physical array into logical values.
func decode(v variable.Variable, arr arrow.Array) ([]Value, error) {
	out := make([]Value, arr.Len())
	switch v.Kind() {
	case variable.Integer, variable.Category, variable.OrdinalCategory:
		a := arr.(*array.Int32)
		for i := range out {
			if !a.IsNull(i) {
				out[i] = Int(int64(a.Value(i)))
			}
		}
	case variable.Decimal:
		a := arr.(*array.Decimal128)
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		for i := range out {
			if !a.IsNull(i) {
				out[i] = Decimal(decimal.NewFromBigInt(a.Value(i).BigInt(), -scale))
			}
		}
	case variable.Boolean:
		a := arr.(*array.Boolean)
		for i := range out {
			if !a.IsNull(i) {
				out[i] = Bool(a.Value(i))
			}
		}
	case variable.Text:
		a := arr.(*array.String)
		for i := range out {
			if !a.IsNull(i) {
				out[i] = Text(a.Value(i))
			}
		}
	case variable.Date:
		a := arr.(*array.Date32)
		for i := range out {
			if !a.IsNull(i) {
				out[i] = Date(time.Unix(int64(a.Value(i))*secondsPerDay, 0).UTC())
			}
		}
	case variable.Timestamp:
		a := arr.(*array.Timestamp)
		unit := a.DataType().(*arrow.TimestampType).Unit
		for i := range out {
			if !a.IsNull(i) {
				out[i] = Instant(fromArrowUnit(unit, int64(a.Value(i))))
			}
		}
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedKind, "cannot decode %s", v.Kind()).
			WithDetail("variable", v.Name())
	}
	return out, nil
}

// encode builds the physical array of v from canonical values.
func encode(mem memory.Allocator, v variable.Variable, values []Value) (arrow.Array, error) {
	switch v.Kind() {
	case variable.Integer, variable.Category, variable.OrdinalCategory:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.Reserve(len(values))
		for _, val := range values {
			if i, ok := val.Int(); ok {
				b.Append(int32(i))
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray(), nil
	case variable.Decimal:
		dt := v.DataType().(*arrow.Decimal128Type)
		b := array.NewDecimal128Builder(mem, dt)
		defer b.Release()
		b.Reserve(len(values))
		for _, val := range values {
			d, ok := val.Decimal()
			if !ok {
				b.AppendNull()
				continue
			}
			b.Append(decimal128.FromBigInt(d.Shift(dt.Scale).BigInt()))
		}
		return b.NewArray(), nil
	case variable.Boolean:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.Reserve(len(values))
		for _, val := range values {
			if x, ok := val.Bool(); ok {
				b.Append(x)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray(), nil
	case variable.Text:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.Reserve(len(values))
		for _, val := range values {
			if s, ok := val.Text(); ok {
				b.Append(s)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray(), nil
	case variable.Date:
		b := array.NewDate32Builder(mem)
		defer b.Release()
		b.Reserve(len(values))
		for _, val := range values {
			if t, ok := val.Date(); ok {
				b.Append(arrow.Date32(t.Unix() / secondsPerDay))
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray(), nil
	case variable.Timestamp:
		b := array.NewTimestampBuilder(mem, v.DataType().(*arrow.TimestampType))
		defer b.Release()
		b.Reserve(len(values))
		for _, val := range values {
			if t, ok := val.Instant(); ok {
				b.Append(arrow.Timestamp(ToRaw(v.TimeUnit(), t)))
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray(), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedKind, "cannot encode %s", v.Kind()).
			WithDetail("variable", v.Name())
	}
}
