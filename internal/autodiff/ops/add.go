package ops

import "github.com/born-ml/fladiff/internal/scalar"

// AddOp represents an addition: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = grad
//   - d(a+b)/db = 1, so grad_b = grad
type AddOp struct {
	binary
}

// NewAddOp creates a new AddOp over slots a and b.
func NewAddOp(a, b int) *AddOp {
	return &AddOp{binary{a, b}}
}

// Name returns "add".
func (op *AddOp) Name() string { return "add" }

// Forward computes a + b.
func (op *AddOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Add(in[0], in[1])
}

// Backward passes the gradient unchanged to both inputs.
func (op *AddOp) Backward(_ scalar.Backend, grad scalar.Scalar, _ []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{grad, grad}
}
