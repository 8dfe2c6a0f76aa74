package ops

import "github.com/born-ml/fladiff/internal/scalar"

// AbsOp represents the absolute value: y = |x|.
//
// Backward pass:
//   - d|x|/dx = sign(x), taken as 0 at x == 0
type AbsOp struct {
	unary
}

// NewAbsOp creates a new AbsOp over slot x.
func NewAbsOp(x int) *AbsOp {
	return &AbsOp{unary{x}}
}

// Name returns "abs".
func (op *AbsOp) Name() string { return "abs" }

// Forward computes |x|.
func (op *AbsOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Abs(in[0])
}

// Backward computes the input gradient for abs.
func (op *AbsOp) Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	var s float64
	switch v := in[0].Float(); {
	case v > 0:
		s = 1
	case v < 0:
		s = -1
	}
	return []scalar.Scalar{b.Mul(grad, b.Const(s))}
}
