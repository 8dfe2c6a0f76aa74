package ops

import "github.com/born-ml/fladiff/internal/scalar"

// SqrtOp represents the square root: y = sqrt(x).
//
// Backward pass:
//   - d(sqrt(x))/dx = 1/(2*sqrt(x)) = 0.5/y
type SqrtOp struct {
	unary
}

// NewSqrtOp creates a new SqrtOp over slot x.
func NewSqrtOp(x int) *SqrtOp {
	return &SqrtOp{unary{x}}
}

// Name returns "sqrt".
func (op *SqrtOp) Name() string { return "sqrt" }

// Forward computes sqrt(x).
func (op *SqrtOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Sqrt(in[0])
}

// Backward computes the input gradient for sqrt.
func (op *SqrtOp) Backward(b scalar.Backend, grad scalar.Scalar, _ []scalar.Scalar, out scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Div(b.Mul(grad, b.Const(0.5)), out)}
}
