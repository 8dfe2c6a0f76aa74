package ops

import "github.com/born-ml/fladiff/internal/scalar"

// SinOp represents the sine operation: y = sin(x).
//
// Backward pass:
//   - d(sin(x))/dx = cos(x)
//   - grad_input = grad_output * cos(input)
type SinOp struct {
	unary
}

// NewSinOp creates a new SinOp over slot x.
func NewSinOp(x int) *SinOp {
	return &SinOp{unary{x}}
}

// Name returns "sin".
func (op *SinOp) Name() string { return "sin" }

// Forward computes sin(x).
func (op *SinOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Sin(in[0])
}

// Backward computes the input gradient for sin.
func (op *SinOp) Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Mul(grad, b.Cos(in[0]))}
}

// CosOp represents the cosine operation: y = cos(x).
//
// Backward pass:
//   - d(cos(x))/dx = -sin(x)
type CosOp struct {
	unary
}

// NewCosOp creates a new CosOp over slot x.
func NewCosOp(x int) *CosOp {
	return &CosOp{unary{x}}
}

// Name returns "cos".
func (op *CosOp) Name() string { return "cos" }

// Forward computes cos(x).
func (op *CosOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Cos(in[0])
}

// Backward computes the input gradient for cos.
func (op *CosOp) Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Neg(b.Mul(grad, b.Sin(in[0])))}
}

// TanOp represents the tangent operation: y = tan(x).
//
// Backward pass:
//   - d(tan(x))/dx = 1 + tan²(x) = 1 + y²
type TanOp struct {
	unary
}

// NewTanOp creates a new TanOp over slot x.
func NewTanOp(x int) *TanOp {
	return &TanOp{unary{x}}
}

// Name returns "tan".
func (op *TanOp) Name() string { return "tan" }

// Forward computes tan(x).
func (op *TanOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Tan(in[0])
}

// Backward computes the input gradient for tan.
func (op *TanOp) Backward(b scalar.Backend, grad scalar.Scalar, _ []scalar.Scalar, out scalar.Scalar) []scalar.Scalar {
	return []scalar.Scalar{b.Mul(grad, b.Add(b.Const(1), b.Mul(out, out)))}
}
