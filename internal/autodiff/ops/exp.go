package ops

import "github.com/born-ml/fladiff/internal/scalar"

// ExpOp represents the exponential operation: y = exp(x).
//
// Backward pass:
//   - d(exp(x))/dx = exp(x) = y
//   - grad_input = grad_output * output
type ExpOp struct {
	unary
}

// NewExpOp creates a new ExpOp over slot x.
func NewExpOp(x int) *ExpOp {
	return &ExpOp{unary{x}}
}

// Name returns "exp".
func (op *ExpOp) Name() string { return "exp" }

// Forward computes exp(x).
func (op *ExpOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Exp(in[0])
}

// Backward computes the input gradient for exp.
//
// Since d(exp(x))/dx = exp(x), and we already have exp(x) as output:
// grad_input = grad_output * output.
func (op *ExpOp) Backward(b scalar.Backend, grad scalar.Scalar, _ []scalar.Scalar, out scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Mul(grad, out)}
}
