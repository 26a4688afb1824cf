package transform

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// DaysBetween returns left - right in whole days as an Integer column named
// "{left}_minus_{right}_days". Both operands must be Date columns.
func DaysBetween(left, right *vector.Vector) (out *vector.Vector, err error) {
	defer observe("days_between", &err)
	if err := sameLength("days_between", left, right); err != nil {
		return nil, err
	}
	for _, vec := range []*vector.Vector{left, right} {
		if err := requireKind("days_between", vec, isKind(variable.Date), "date"); err != nil {
			return nil, err
		}
	}

	values := make([]vector.Value, left.Len())
	for i := range values {
		a, aok := left.Value(i).Date()
		b, bok := right.Value(i).Date()
		if aok && bok {
			values[i] = vector.Int(int64(arrow.Date32FromTime(a)) - int64(arrow.Date32FromTime(b)))
		}
	}
	return result("days_between", variable.NewInteger(left.Name()+"_minus_"+right.Name()+"_days"), values)
}

// ShiftDateTime adds offset to every known cell of a Timestamp column. The
// result, named "{vec}_shift_{offset}", keeps the time unit and timezone of
// vec.
func ShiftDateTime(vec *vector.Vector, offset time.Duration) (out *vector.Vector, err error) {
	defer observe("shift", &err)
	if err := requireKind("shift", vec, isKind(variable.Timestamp), "timestamp"); err != nil {
		return nil, err
	}

	values := make([]vector.Value, vec.Len())
	for i := range values {
		if t, ok := vec.Value(i).Instant(); ok {
			values[i] = vector.Instant(t.Add(offset))
		}
	}
	src := vec.Variable()
	v := variable.NewTimestamp(suffixName(vec, "shift_%s", offset), src.TimeUnit(), variable.Timezone(src.Timezone()))
	return result("shift", v, values)
}
