package dual

import (
	"fmt"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Jacobian evaluates f at point in forward mode over leaf, carrying one
// partial per input. Returns the output values and the Jacobian, one row per
// output.
func Jacobian(leaf scalar.Backend, f scalar.Func, point []float64) ([]float64, [][]float64) {
	b := New(leaf, len(point))
	y := f(b, b.Variables(scalar.Consts(leaf, point)))

	values := make([]float64, len(y))
	jac := make([][]float64, len(y))
	for k, out := range y {
		d := number("jacobian", out)
		values[k] = d.Float()
		jac[k] = make([]float64, len(point))
		if d.Partials != nil {
			jac[k] = Floats(d.Partials)
		}
	}
	return values, jac
}

// Hessian evaluates the value, gradient and Hessian of output k of f at point
// using forward-over-forward differentiation.
//
// The outer backend differentiates the inner one, so the partials of the
// outer partials are second derivatives.
func Hessian(leaf scalar.Backend, f scalar.Func, point []float64, k int) (float64, []float64, [][]float64, error) {
	n := len(point)
	inner := New(leaf, n)
	outer := New(inner, n)

	x := make([]scalar.Scalar, n)
	for i, v := range point {
		x[i] = outer.Variable(i, inner.Variable(i, leaf.Const(v)))
	}

	y := f(outer, x)
	if k < 0 || k >= len(y) {
		return 0, nil, nil, fmt.Errorf("dual: output index %d out of range [0, %d)", k, len(y))
	}
	d := number("hessian", y[k])

	grad := make([]float64, n)
	hess := make([][]float64, n)
	for i := range hess {
		hess[i] = make([]float64, n)
		if d.Partials == nil {
			continue
		}
		p := number("hessian", d.Partials[i])
		grad[i] = p.Float()
		if p.Partials != nil {
			copy(hess[i], Floats(p.Partials))
		}
	}
	return d.Float(), grad, hess, nil
}
