package ops

import (
	"fmt"

	"github.com/born-ml/fladiff/internal/scalar"
)

// InputOp marks an independent input. It has no tape inputs; during replay
// the tape substitutes the Index-th element of the new input vector.
type InputOp struct {
	Index int // Position in the input vector.
}

// NewInputOp creates a new InputOp.
func NewInputOp(index int) *InputOp {
	return &InputOp{Index: index}
}

// Name returns "input".
func (op *InputOp) Name() string { return "input" }

// Inputs returns nil: inputs are leaves.
func (op *InputOp) Inputs() []int { return nil }

// Forward is never called for inputs; the tape substitutes the new value.
func (op *InputOp) Forward(scalar.Backend, []scalar.Scalar) scalar.Scalar {
	panic(fmt.Sprintf("input %d: Forward called on an independent input", op.Index))
}

// Backward returns nil: adjoints stop at inputs.
func (op *InputOp) Backward(scalar.Backend, scalar.Scalar, []scalar.Scalar, scalar.Scalar) []scalar.Scalar {
	return nil
}

// ConstOp records a constant so that replay reproduces it on any backend.
type ConstOp struct {
	Value float64
}

// NewConstOp creates a new ConstOp.
func NewConstOp(v float64) *ConstOp {
	return &ConstOp{Value: v}
}

// Name returns "const".
func (op *ConstOp) Name() string { return "const" }

// Inputs returns nil: constants are leaves.
func (op *ConstOp) Inputs() []int { return nil }

// Forward returns b.Const(Value).
func (op *ConstOp) Forward(b scalar.Backend, _ []scalar.Scalar) scalar.Scalar {
	return b.Const(op.Value)
}

// Backward returns nil: constants have no inputs.
func (op *ConstOp) Backward(scalar.Backend, scalar.Scalar, []scalar.Scalar, scalar.Scalar) []scalar.Scalar {
	return nil
}
