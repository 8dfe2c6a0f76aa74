// Package ops defines the operations recorded on a gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward: recomputes the output from input values (tape replay)
//   - Backward: computes input adjoints given the output adjoint
//
// Operations refer to their inputs by tape slot, never by value, so a
// finished tape can be replayed at a different point and over a different
// backend. Both passes perform all arithmetic through the backend they are
// given; when that backend records, the derivative computation is itself
// differentiable.
//
// Supported operations:
//   - InputOp, ConstOp: leaves (independent inputs, constants)
//   - AddOp, SubOp, MulOp, DivOp, PowOp: binary arithmetic
//   - NegOp, PowRealOp, ExpOp, LogOp, SqrtOp, SinOp, CosOp, TanOp, TanhOp, AbsOp: unary functions
package ops

import "github.com/born-ml/fladiff/internal/scalar"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Name returns the operation name ("add", "exp", ...).
	Name() string

	// Inputs returns the tape slots of the operation inputs.
	Inputs() []int

	// Forward computes the output from input values.
	Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar

	// Backward computes adjoints for inputs given the output adjoint.
	// Returns a slice of adjoints corresponding to each input slot.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   grad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)]
	Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, out scalar.Scalar) []scalar.Scalar
}

// unary holds the input slot of a one-argument operation.
type unary struct {
	x int
}

// Inputs returns [x].
func (u unary) Inputs() []int {
	return []int{u.x}
}

// binary holds the input slots of a two-argument operation.
type binary struct {
	a, b int
}

// Inputs returns [a, b].
func (bi binary) Inputs() []int {
	return []int{bi.a, bi.b}
}
