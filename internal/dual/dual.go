// Package dual implements forward-mode automatic differentiation with dual numbers.
//
// Backend[B] wraps any scalar.Backend and carries, next to each primal value,
// one partial derivative per independent input. All derivative arithmetic runs
// through the wrapped backend, so wrapping a dual backend in another dual
// backend yields exact second derivatives (forward-over-forward).
//
// Usage:
//
//	b := dual.New(cpu.New(), 2)
//	x := b.Variables(scalar.Consts(b.Inner(), []float64{-1.2, 1}))
//	y := scalar.Rosenbrock(b, x)[0].(dual.Number)
//	grad := dual.Floats(y.Partials) // (-215.6, -88)
package dual

import (
	"fmt"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Number is a dual number: a primal value and its partial derivatives with
// respect to each independent input of the owning backend.
//
// Partials is nil for constants; otherwise it has exactly one entry per input.
type Number struct {
	Real     scalar.Scalar   // Primal value (scalar of the wrapped backend).
	Partials []scalar.Scalar // ∂/∂x_i for each independent input.
}

// Float returns the primal value.
func (d Number) Float() float64 {
	return d.Real.Float()
}

// String formats the number as "(v+[d1 d2]ϵ)".
func (d Number) String() string {
	return fmt.Sprintf("(%g+%gϵ)", d.Real.Float(), Floats(d.Partials))
}

// Floats extracts the primal values of scalars, treating nil as zero.
func Floats(xs []scalar.Scalar) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		if x != nil {
			out[i] = x.Float()
		}
	}
	return out
}

// Backend is the forward-mode decorator over an inner backend.
//
// Type parameter B must satisfy the scalar.Backend interface.
type Backend[B scalar.Backend] struct {
	inner B   // Wrapped backend (CPU, another dual, autodiff, ...).
	n     int // Number of independent inputs.
}

// New creates a dual backend with n independent inputs over inner.
func New[B scalar.Backend](inner B, n int) *Backend[B] {
	if n < 0 {
		panic(fmt.Sprintf("dual: negative input count %d", n))
	}
	return &Backend[B]{inner: inner, n: n}
}

// Inner returns the wrapped backend.
func (b *Backend[B]) Inner() B {
	return b.inner
}

// NumInputs returns the number of independent inputs.
func (b *Backend[B]) NumInputs() int {
	return b.n
}

// Name returns the backend name.
func (b *Backend[B]) Name() string {
	return "Dual(" + b.inner.Name() + ")"
}

// Variable returns the i-th independent input with primal v (a scalar of the
// wrapped backend). Its partials form the i-th unit vector.
func (b *Backend[B]) Variable(i int, v scalar.Scalar) Number {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("dual: input index %d out of range [0, %d)", i, b.n))
	}
	partials := make([]scalar.Scalar, b.n)
	for j := range partials {
		if j == i {
			partials[j] = b.inner.Const(1)
		} else {
			partials[j] = b.inner.Const(0)
		}
	}
	return Number{Real: v, Partials: partials}
}

// Variables seeds every value as an independent input, in order.
func (b *Backend[B]) Variables(values []scalar.Scalar) []scalar.Scalar {
	if len(values) != b.n {
		panic(fmt.Sprintf("dual: %d values for %d inputs", len(values), b.n))
	}
	out := make([]scalar.Scalar, len(values))
	for i, v := range values {
		out[i] = b.Variable(i, v)
	}
	return out
}

// Partial returns ∂x/∂x_i as a scalar of the wrapped backend.
func (b *Backend[B]) Partial(x scalar.Scalar, i int) scalar.Scalar {
	d := number("partial", x)
	if d.Partials == nil {
		return b.inner.Const(0)
	}
	return d.Partials[i]
}

// Const lifts v into the backend with zero partials.
func (b *Backend[B]) Const(v float64) scalar.Scalar {
	return Number{Real: b.inner.Const(v)}
}

// number converts a scalar produced by a dual backend back to Number.
func number(op string, s scalar.Scalar) Number {
	d, ok := s.(Number)
	if !ok {
		panic(fmt.Sprintf("%s: scalar %T does not belong to a dual backend", op, s))
	}
	return d
}
