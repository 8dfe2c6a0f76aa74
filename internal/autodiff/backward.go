package autodiff

import (
	"errors"
	"fmt"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Jacobian evaluates f at point in reverse mode over leaf.
//
// It records f once and runs one backward sweep per output. Returns the
// output values and the Jacobian, one row per output.
//
// Example:
//
//	values, jac, err := autodiff.Jacobian(cpu.New(), scalar.Rosenbrock, []float64{-1.2, 1})
//	// values = [24.2], jac = [[-215.6, -88]]
func Jacobian(leaf scalar.Backend, f scalar.Func, point []float64) (values []float64, jac [][]float64, err error) {
	defer catch(&err)

	b := New(leaf)
	x := b.BeginRecording(scalar.Consts(leaf, point))
	y := f(b, x)
	if _, err := b.EndRecording(y); err != nil {
		return nil, nil, err
	}

	values = make([]float64, len(y))
	jac = make([][]float64, len(y))
	for k, out := range y {
		values[k] = out.Float()
		jac[k] = scalar.Floats(b.tape.Backward(out.(*Var), leaf.Const(1), leaf))
	}
	return values, jac, nil
}

// Hessian evaluates the value, gradient and Hessian of output k of f at point
// using reverse-over-reverse differentiation.
//
// Algorithm:
//  1. Record f on an outer tape whose values are variables of an inner tape
//  2. Run the outer backward sweep with the inner backend, recording it
//  3. Run one inner backward sweep per gradient entry to get a Hessian row
//
// The rows are returned as computed; callers wanting exact symmetry average
// H and Hᵀ.
func Hessian(leaf scalar.Backend, f scalar.Func, point []float64, k int) (value float64, grad []float64, hess [][]float64, err error) {
	defer catch(&err)

	inner := New(leaf)
	outer := New(inner)

	xi := inner.BeginRecording(scalar.Consts(leaf, point))
	xo := outer.BeginRecording(xi)
	y := f(outer, xo)
	if _, err := outer.EndRecording(y); err != nil {
		inner.tape.StopRecording()
		return 0, nil, nil, err
	}
	if k < 0 || k >= len(y) {
		inner.tape.StopRecording()
		return 0, nil, nil, fmt.Errorf("autodiff: output index %d out of range [0, %d)", k, len(y))
	}

	g := outer.tape.Backward(y[k].(*Var), inner.Const(1), inner)
	inner.tape.StopRecording()

	value = y[k].Float()
	grad = scalar.Floats(g)
	hess = make([][]float64, len(g))
	for j, gj := range g {
		hess[j] = scalar.Floats(inner.tape.Backward(asVar("hessian", gj), leaf.Const(1), leaf))
	}
	return value, grad, hess, nil
}

// catch converts a panic carrying ErrTapeStructure into an error. Other
// panics are re-raised.
func catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && errors.Is(e, ErrTapeStructure) {
		*err = e
		return
	}
	panic(r)
}
