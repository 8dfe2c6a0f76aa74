package ops

import "github.com/born-ml/fladiff/internal/scalar"

// LogOp represents the natural logarithm: y = log(x).
//
// Backward pass:
//   - d(log(x))/dx = 1/x
//   - grad_input = grad_output / input
type LogOp struct {
	unary
}

// NewLogOp creates a new LogOp over slot x.
func NewLogOp(x int) *LogOp {
	return &LogOp{unary{x}}
}

// Name returns "log".
func (op *LogOp) Name() string { return "log" }

// Forward computes log(x).
func (op *LogOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Log(in[0])
}

// Backward computes the input gradient for log.
func (op *LogOp) Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Div(grad, in[0])}
}
