package ops

import "github.com/born-ml/fladiff/internal/scalar"

// MulOp represents a multiplication: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = grad * b
//   - d(a*b)/db = a, so grad_b = grad * a
type MulOp struct {
	binary
}

// NewMulOp creates a new MulOp over slots a and b.
func NewMulOp(a, b int) *MulOp {
	return &MulOp{binary{a, b}}
}

// Name returns "mul".
func (op *MulOp) Name() string { return "mul" }

// Forward computes a * b.
func (op *MulOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Mul(in[0], in[1])
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Mul(grad, in[1]), b.Mul(grad, in[0])}
}
