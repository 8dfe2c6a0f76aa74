package ops

import "github.com/born-ml/fladiff/internal/scalar"

// SubOp represents a subtraction: output = a - b.
//
// Backward pass:
//   - grad_a = grad
//   - grad_b = -grad
type SubOp struct {
	binary
}

// NewSubOp creates a new SubOp over slots a and b.
func NewSubOp(a, b int) *SubOp {
	return &SubOp{binary{a, b}}
}

// Name returns "sub".
func (op *SubOp) Name() string { return "sub" }

// Forward computes a - b.
func (op *SubOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Sub(in[0], in[1])
}

// Backward computes input gradients for subtraction.
func (op *SubOp) Backward(b scalar.Backend, grad scalar.Scalar, _ []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{grad, b.Neg(grad)}
}
