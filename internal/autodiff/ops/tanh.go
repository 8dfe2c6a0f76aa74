package ops

import "github.com/born-ml/fladiff/internal/scalar"

// TanhOp represents the hyperbolic tangent: y = tanh(x).
//
// Backward pass:
//   - d(tanh(x))/dx = 1 - tanh²(x) = 1 - y²
type TanhOp struct {
	unary
}

// NewTanhOp creates a new TanhOp over slot x.
func NewTanhOp(x int) *TanhOp {
	return &TanhOp{unary{x}}
}

// Name returns "tanh".
func (op *TanhOp) Name() string { return "tanh" }

// Forward computes tanh(x).
func (op *TanhOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Tanh(in[0])
}

// Backward computes the input gradient for tanh.
func (op *TanhOp) Backward(b scalar.Backend, grad scalar.Scalar, _ []scalar.Scalar, out scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Mul(grad, b.Sub(b.Const(1), b.Mul(out, out)))}
}
