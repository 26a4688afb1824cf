package vector

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/variable"
)

// FillMode selects how Factory.Filled generates cells.
type FillMode uint8

// Fill modes.
const (
	Sequence FillMode = iota
	Random
	Constant
)

// String returns the mode name.
func (m FillMode) String() string {
	switch m {
	case Sequence:
		return "sequence"
	case Random:
		return "random"
	case Constant:
		return "constant"
	default:
		return fmt.Sprintf("FillMode(%d)", uint8(m))
	}
}

// FillSpec parameterizes a generated vector. Null fields fall back to
// per-kind defaults.
type FillSpec struct {
	Mode FillMode
	// Start is the first sequence value or the constant value.
	Start Value
	// Step is the numeric sequence increment.
	Step Value
	// StepDuration is the Date and Timestamp sequence increment.
	StepDuration time.Duration
	// Min and Max bound random values: [Min, Max) for integers, [Min, Max]
	// otherwise.
	Min, Max Value
}

// Factory generates vectors deterministically from a seed.
type Factory struct {
	rng *rand.Rand
	now func() time.Time
}

// NewFactory creates a factory seeded with seed.
func NewFactory(seed int64) *Factory {
	return &Factory{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible test data, not security sensitive
		now: time.Now,
	}
}

// Empty returns a vector of n null cells.
func (f *Factory) Empty(v variable.Variable, n int) (*Vector, error) {
	return FromValues(v, make([]Value, n))
}

// Filled returns a vector of n generated cells.
func (f *Factory) Filled(v variable.Variable, n int, spec FillSpec) (*Vector, error) {
	if n < 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "row count %d is negative", n)
	}
	var gen func(i int) Value
	var err error

	switch v.Kind() {
	case variable.Integer:
		gen, err = f.integers(spec)
	case variable.Decimal:
		gen, err = f.decimals(spec)
	case variable.Boolean:
		gen, err = f.booleans(spec)
	case variable.Text:
		gen, err = f.texts(spec)
	case variable.Date:
		gen, err = f.times(spec, Date, 24*time.Hour, func(t time.Time) time.Time {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		})
	case variable.Timestamp:
		gen, err = f.times(spec, Instant, time.Minute, func(t time.Time) time.Time { return t.UTC() })
	case variable.Category:
		gen, err = f.codes(spec, v.CategoryCodes())
	case variable.OrdinalCategory:
		codes := make([]int32, len(v.OrderedCategories()))
		for i := range codes {
			codes[i] = int32(i)
		}
		gen, err = f.codes(spec, codes)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedKind, "cannot fill %s", v.Kind()).
			WithDetail("variable", v.Name())
	}
	if err != nil {
		return nil, err
	}

	values := make([]Value, n)
	for i := range values {
		values[i] = gen(i)
	}
	return FromValues(v, values)
}

func intOr(val Value, def int64) (int64, error) {
	if val.IsNull() {
		return def, nil
	}
	i, ok := val.Int()
	if !ok {
		return 0, errors.Newf(errors.ErrorTypeValidation, "expected integer fill parameter, got %s", val.GoString())
	}
	return i, nil
}

func decimalOr(val Value, def decimal.Decimal) (decimal.Decimal, error) {
	if val.IsNull() {
		return def, nil
	}
	d, ok := val.Numeric()
	if !ok {
		return decimal.Decimal{}, errors.Newf(errors.ErrorTypeValidation, "expected numeric fill parameter, got %s", val.GoString())
	}
	return d, nil
}

func (f *Factory) integers(spec FillSpec) (func(int) Value, error) {
	switch spec.Mode {
	case Sequence, Constant:
		start, err := intOr(spec.Start, 0)
		if err != nil {
			return nil, err
		}
		if spec.Mode == Constant {
			return func(int) Value { return Int(start) }, nil
		}
		step, err := intOr(spec.Step, 1)
		if err != nil {
			return nil, err
		}
		return func(i int) Value { return Int(start + int64(i)*step) }, nil
	case Random:
		lo, err := intOr(spec.Min, 0)
		if err != nil {
			return nil, err
		}
		hi, err := intOr(spec.Max, 100)
		if err != nil {
			return nil, err
		}
		if hi <= lo {
			return nil, errors.Newf(errors.ErrorTypeValidation, "random range [%d, %d) is empty", lo, hi)
		}
		return func(int) Value { return Int(lo + f.rng.Int63n(hi-lo)) }, nil
	default:
		return nil, unknownMode(spec.Mode)
	}
}

func (f *Factory) decimals(spec FillSpec) (func(int) Value, error) {
	switch spec.Mode {
	case Sequence, Constant:
		start, err := decimalOr(spec.Start, decimal.Zero)
		if err != nil {
			return nil, err
		}
		if spec.Mode == Constant {
			return func(int) Value { return Decimal(start) }, nil
		}
		step, err := decimalOr(spec.Step, decimal.NewFromInt(1))
		if err != nil {
			return nil, err
		}
		return func(i int) Value { return Decimal(start.Add(step.Mul(decimal.NewFromInt(int64(i))))) }, nil
	case Random:
		lo, err := decimalOr(spec.Min, decimal.Zero)
		if err != nil {
			return nil, err
		}
		hi, err := decimalOr(spec.Max, decimal.NewFromInt(1))
		if err != nil {
			return nil, err
		}
		if hi.LessThan(lo) {
			return nil, errors.Newf(errors.ErrorTypeValidation, "random range [%s, %s] is empty", lo, hi)
		}
		span := hi.Sub(lo)
		return func(int) Value {
			return Decimal(lo.Add(span.Mul(decimal.NewFromFloat(f.rng.Float64()))))
		}, nil
	default:
		return nil, unknownMode(spec.Mode)
	}
}

func (f *Factory) booleans(spec FillSpec) (func(int) Value, error) {
	switch spec.Mode {
	case Sequence:
		return func(i int) Value { return Bool(i%2 == 0) }, nil
	case Random:
		return func(int) Value { return Bool(f.rng.Intn(2) == 0) }, nil
	case Constant:
		b := true
		if !spec.Start.IsNull() {
			var ok bool
			if b, ok = spec.Start.Bool(); !ok {
				return nil, errors.New(errors.ErrorTypeValidation, "expected boolean fill parameter")
			}
		}
		return func(int) Value { return Bool(b) }, nil
	default:
		return nil, unknownMode(spec.Mode)
	}
}

func (f *Factory) texts(spec FillSpec) (func(int) Value, error) {
	switch spec.Mode {
	case Sequence:
		return func(i int) Value { return Text(fmt.Sprintf("item_%d", i)) }, nil
	case Random:
		return func(int) Value { return Text(fmt.Sprintf("val_%d", f.rng.Intn(1000))) }, nil
	case Constant:
		s, ok := spec.Start.Text()
		if !ok && !spec.Start.IsNull() {
			return nil, errors.New(errors.ErrorTypeValidation, "expected text fill parameter")
		}
		return func(int) Value { return Text(s) }, nil
	default:
		return nil, unknownMode(spec.Mode)
	}
}

// times generates Date and Timestamp cells. Start, Min and Max may be given
// as either dates or instants.
func (f *Factory) times(spec FillSpec, wrap func(time.Time) Value, defStep time.Duration, norm func(time.Time) time.Time) (func(int) Value, error) {
	now := norm(f.now())
	timeOr := func(val Value, def time.Time) (time.Time, error) {
		if val.IsNull() {
			return def, nil
		}
		if t, ok := val.Date(); ok {
			return t, nil
		}
		if t, ok := val.Instant(); ok {
			return norm(t), nil
		}
		return time.Time{}, errors.Newf(errors.ErrorTypeValidation, "expected date or instant fill parameter, got %s", val.GoString())
	}

	switch spec.Mode {
	case Sequence, Constant:
		start, err := timeOr(spec.Start, now)
		if err != nil {
			return nil, err
		}
		if spec.Mode == Constant {
			return func(int) Value { return wrap(start) }, nil
		}
		step := spec.StepDuration
		if step == 0 {
			step = defStep
		}
		return func(i int) Value { return wrap(start.Add(time.Duration(i) * step)) }, nil
	case Random:
		lo, err := timeOr(spec.Min, now.AddDate(-1, 0, 0))
		if err != nil {
			return nil, err
		}
		hi, err := timeOr(spec.Max, now)
		if err != nil {
			return nil, err
		}
		if hi.Before(lo) {
			return nil, errors.Newf(errors.ErrorTypeValidation, "random range [%s, %s] is empty", lo, hi)
		}
		// Random offsets are drawn in whole steps.
		steps := int64(hi.Sub(lo) / defStep)
		return func(int) Value { return wrap(lo.Add(time.Duration(f.rng.Int63n(steps+1)) * defStep)) }, nil
	default:
		return nil, unknownMode(spec.Mode)
	}
}

func (f *Factory) codes(spec FillSpec, codes []int32) (func(int) Value, error) {
	if len(codes) == 0 {
		return func(int) Value { return Null() }, nil
	}
	switch spec.Mode {
	case Sequence:
		return func(i int) Value { return Int(int64(codes[i%len(codes)])) }, nil
	case Random:
		return func(int) Value { return Int(int64(codes[f.rng.Intn(len(codes))])) }, nil
	case Constant:
		c, err := intOr(spec.Start, int64(codes[0]))
		if err != nil {
			return nil, err
		}
		return func(int) Value { return Int(c) }, nil
	default:
		return nil, unknownMode(spec.Mode)
	}
}

func unknownMode(m FillMode) error {
	return errors.Newf(errors.ErrorTypeValidation, "unknown fill mode %s", m)
}
