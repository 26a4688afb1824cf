package transform

import (
	"github.com/ajitpratap0/tabula/pkg/variable"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// And returns left AND right, named "{left}_and_{right}". A cell is null
// unless both operands are known; there is no short circuit on false.
func And(left, right *vector.Vector) (*vector.Vector, error) {
	return logical("and", left, right, func(a, b bool) bool { return a && b })
}

// Or returns left OR right, named "{left}_or_{right}". A cell is null
// unless both operands are known; there is no short circuit on true.
func Or(left, right *vector.Vector) (*vector.Vector, error) {
	return logical("or", left, right, func(a, b bool) bool { return a || b })
}

// Not negates every known cell, named "not_{vec}".
func Not(vec *vector.Vector) (out *vector.Vector, err error) {
	defer observe("not", &err)
	if err := requireKind("not", vec, isKind(variable.Boolean), "boolean"); err != nil {
		return nil, err
	}
	values := make([]vector.Value, vec.Len())
	for i := range values {
		if b, ok := vec.Value(i).Bool(); ok {
			values[i] = vector.Bool(!b)
		}
	}
	return result("not", variable.NewBoolean("not_"+vec.Name()), values)
}

func logical(op string, left, right *vector.Vector, fn func(a, b bool) bool) (out *vector.Vector, err error) {
	defer observe(op, &err)
	if err := sameLength(op, left, right); err != nil {
		return nil, err
	}
	for _, vec := range []*vector.Vector{left, right} {
		if err := requireKind(op, vec, isKind(variable.Boolean), "boolean"); err != nil {
			return nil, err
		}
	}

	values := make([]vector.Value, left.Len())
	for i := range values {
		a, aok := left.Value(i).Bool()
		b, bok := right.Value(i).Bool()
		if aok && bok {
			values[i] = vector.Bool(fn(a, b))
		}
	}
	return result(op, variable.NewBoolean(left.Name()+"_"+op+"_"+right.Name()), values)
}
