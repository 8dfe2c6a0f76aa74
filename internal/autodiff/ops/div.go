package ops

import "github.com/born-ml/fladiff/internal/scalar"

// DivOp represents a division: output = a / b.
//
// Backward pass:
//   - d(a/b)/da = 1/b, so grad_a = grad / b
//   - d(a/b)/db = -a/b², so grad_b = -grad * (a/b) / b
type DivOp struct {
	binary
}

// NewDivOp creates a new DivOp over slots a and b.
func NewDivOp(a, b int) *DivOp {
	return &DivOp{binary{a, b}}
}

// Name returns "div".
func (op *DivOp) Name() string { return "div" }

// Forward computes a / b.
func (op *DivOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Div(in[0], in[1])
}

// Backward computes input gradients for division.
// A zero divisor yields non-finite adjoints, as in the forward pass.
func (op *DivOp) Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, out scalar.Scalar) []scalar.Scalar {
	gradA := b.Div(grad, in[1])
	gradB := b.Neg(b.Mul(gradA, out))
	return []scalar.Scalar{gradA, gradB}
}
