// Package cpu implements the plain float64 backend.
//
// It is the leaf of every backend stack: decorator backends (dual, autodiff)
// compute their primal values and derivative arithmetic through it.
package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Real is the scalar type produced by CPUBackend.
type Real float64

// Float returns the value as float64.
func (r Real) Float() float64 {
	return float64(r)
}

// String formats the value with %g.
func (r Real) String() string {
	return fmt.Sprintf("%g", float64(r))
}

// CPUBackend evaluates target functions with plain float64 arithmetic.
//
// Operations follow IEEE 754: division by zero yields ±Inf or NaN and domain
// errors (log of a negative number) yield NaN. A checked backend additionally
// remembers the first operation that turned finite operands into a non-finite
// result, see Fault.
type CPUBackend struct {
	checked bool
	fault   *Fault
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{}
}

// NewChecked creates a CPU backend that records the first numerical fault.
// A checked backend must not be shared between goroutines.
func NewChecked() *CPUBackend {
	return &CPUBackend{checked: true}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Const lifts v into the backend.
func (cpu *CPUBackend) Const(v float64) scalar.Scalar {
	return Real(v)
}

// Add returns a + b.
func (cpu *CPUBackend) Add(a, b scalar.Scalar) scalar.Scalar {
	x, y := unwrap("add", a), unwrap("add", b)
	return cpu.result("add", x+y, x, y)
}

// Sub returns a - b.
func (cpu *CPUBackend) Sub(a, b scalar.Scalar) scalar.Scalar {
	x, y := unwrap("sub", a), unwrap("sub", b)
	return cpu.result("sub", x-y, x, y)
}

// Mul returns a * b.
func (cpu *CPUBackend) Mul(a, b scalar.Scalar) scalar.Scalar {
	x, y := unwrap("mul", a), unwrap("mul", b)
	return cpu.result("mul", x*y, x, y)
}

// Div returns a / b.
func (cpu *CPUBackend) Div(a, b scalar.Scalar) scalar.Scalar {
	x, y := unwrap("div", a), unwrap("div", b)
	return cpu.result("div", x/y, x, y)
}

// Pow returns a ** b.
func (cpu *CPUBackend) Pow(a, b scalar.Scalar) scalar.Scalar {
	x, y := unwrap("pow", a), unwrap("pow", b)
	return cpu.result("pow", math.Pow(x, y), x, y)
}

// Neg returns -x.
func (cpu *CPUBackend) Neg(x scalar.Scalar) scalar.Scalar {
	return Real(-unwrap("neg", x))
}

// PowReal returns x ** p.
func (cpu *CPUBackend) PowReal(x scalar.Scalar, p float64) scalar.Scalar {
	v := unwrap("powreal", x)
	return cpu.result("powreal", math.Pow(v, p), v, p)
}

// unwrap converts a scalar produced by this backend back to float64.
// Any other scalar type is a programming error.
func unwrap(op string, s scalar.Scalar) float64 {
	r, ok := s.(Real)
	if !ok {
		panic(fmt.Sprintf("%s: scalar %T does not belong to the CPU backend", op, s))
	}
	return float64(r)
}
