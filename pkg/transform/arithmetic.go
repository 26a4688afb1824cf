package transform

import (
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/tabula/pkg/vector"
)

type binaryOp func(a, b decimal.Decimal) (decimal.Decimal, error)

func add(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Add(b), nil }
func sub(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Sub(b), nil }
func mul(a, b decimal.Decimal) (decimal.Decimal, error) { return a.Mul(b), nil }

func div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Decimal{}, invalid("divide", "division by zero")
	}
	return a.DivRound(b, divisionScale), nil
}

// Add returns left + right, named "{left}_add_{right}".
func Add(left, right *vector.Vector) (*vector.Vector, error) {
	return elementwise("add", left, right, add)
}

// Subtract returns left - right, named "{left}_sub_{right}".
func Subtract(left, right *vector.Vector) (*vector.Vector, error) {
	return elementwise("sub", left, right, sub)
}

// Multiply returns left * right, named "{left}_mul_{right}".
func Multiply(left, right *vector.Vector) (*vector.Vector, error) {
	return elementwise("mul", left, right, mul)
}

// Divide returns left / right, named "{left}_div_{right}". A zero divisor
// in any non-null row fails the whole operation.
func Divide(left, right *vector.Vector) (*vector.Vector, error) {
	return elementwise("div", left, right, div)
}

// AddConst returns vec + c, named "{vec}_plus_{c}".
func AddConst(vec *vector.Vector, c decimal.Decimal) (*vector.Vector, error) {
	return withConstant("plus", vec, c, add)
}

// SubtractConst returns vec - c, named "{vec}_minus_{c}".
func SubtractConst(vec *vector.Vector, c decimal.Decimal) (*vector.Vector, error) {
	return withConstant("minus", vec, c, sub)
}

// MultiplyConst returns vec * c, named "{vec}_mul_{c}".
func MultiplyConst(vec *vector.Vector, c decimal.Decimal) (*vector.Vector, error) {
	return withConstant("mul", vec, c, mul)
}

// DivideConst returns vec / c, named "{vec}_div_{c}". c must not be zero.
func DivideConst(vec *vector.Vector, c decimal.Decimal) (*vector.Vector, error) {
	return withConstant("div", vec, c, div)
}

func elementwise(op string, left, right *vector.Vector, fn binaryOp) (out *vector.Vector, err error) {
	defer observe(op, &err)
	if err := sameLength(op, left, right); err != nil {
		return nil, err
	}
	if err := requireNumeric(op, left, right); err != nil {
		return nil, err
	}

	a, b := numeric(left), numeric(right)
	values := make([]vector.Value, len(a))
	for i := range values {
		if a[i] == nil || b[i] == nil {
			continue
		}
		d, err := fn(*a[i], *b[i])
		if err != nil {
			return nil, err
		}
		values[i] = vector.Decimal(d)
	}
	return decimalResult(op, left.Name()+"_"+op+"_"+right.Name(), values)
}

func withConstant(op string, vec *vector.Vector, c decimal.Decimal, fn binaryOp) (out *vector.Vector, err error) {
	defer observe(op+"_const", &err)
	if err := requireNumeric(op, vec); err != nil {
		return nil, err
	}

	a := numeric(vec)
	values := make([]vector.Value, len(a))
	for i := range values {
		if a[i] == nil {
			continue
		}
		d, err := fn(*a[i], c)
		if err != nil {
			return nil, err
		}
		values[i] = vector.Decimal(d)
	}
	return decimalResult(op, suffixName(vec, "%s_%s", op, formatConstant(c)), values)
}
