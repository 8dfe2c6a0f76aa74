package ops

import "github.com/born-ml/fladiff/internal/scalar"

// NegOp represents a negation: output = -x.
type NegOp struct {
	unary
}

// NewNegOp creates a new NegOp over slot x.
func NewNegOp(x int) *NegOp {
	return &NegOp{unary{x}}
}

// Name returns "neg".
func (op *NegOp) Name() string { return "neg" }

// Forward computes -x.
func (op *NegOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Neg(in[0])
}

// Backward returns [-grad].
func (op *NegOp) Backward(b scalar.Backend, grad scalar.Scalar, _ []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Neg(grad)}
}
