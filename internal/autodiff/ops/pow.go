package ops

import "github.com/born-ml/fladiff/internal/scalar"

// PowOp represents a power with a recorded exponent: output = a ** b.
//
// Backward pass:
//   - d(a^b)/da = b * a^(b-1)
//   - d(a^b)/db = a^b * ln(a), NaN for a <= 0
//
// An operand recorded as a constant gets a zero adjoint without evaluating
// its derivative; a constant exponent never forms ln(a).
type PowOp struct {
	binary
	ConstBase bool // Slot a depends on recorded constants only.
	ConstExp  bool // Slot b depends on recorded constants only.
}

// NewPowOp creates a new PowOp over slots a and b.
func NewPowOp(a, b int) *PowOp {
	return &PowOp{binary: binary{a, b}}
}

// WithConstants marks which operands are recorded constants.
func (op *PowOp) WithConstants(base, exp bool) *PowOp {
	op.ConstBase, op.ConstExp = base, exp
	return op
}

// Name returns "pow".
func (op *PowOp) Name() string { return "pow" }

// Forward computes a ** b.
func (op *PowOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.Pow(in[0], in[1])
}

// Backward computes input gradients for the power function.
func (op *PowOp) Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, out scalar.Scalar) []scalar.Scalar {
	base, exp := in[0], in[1]

	var gradA, gradB scalar.Scalar
	if op.ConstBase {
		gradA = b.Const(0)
	} else {
		gradA = b.Mul(grad, b.Mul(exp, b.Pow(base, b.Sub(exp, b.Const(1)))))
	}
	if op.ConstExp {
		gradB = b.Const(0)
	} else {
		gradB = b.Mul(grad, b.Mul(out, b.Log(base)))
	}
	return []scalar.Scalar{gradA, gradB}
}

// PowRealOp represents a power with a constant exponent: output = x ** P.
//
// Backward pass:
//   - d(x^p)/dx = p * x^(p-1)
type PowRealOp struct {
	unary
	P float64
}

// NewPowRealOp creates a new PowRealOp over slot x.
func NewPowRealOp(x int, p float64) *PowRealOp {
	return &PowRealOp{unary: unary{x}, P: p}
}

// Name returns "powreal".
func (op *PowRealOp) Name() string { return "powreal" }

// Forward computes x ** P.
func (op *PowRealOp) Forward(b scalar.Backend, in []scalar.Scalar) scalar.Scalar {
	return b.PowReal(in[0], op.P)
}

// Backward computes the input gradient.
func (op *PowRealOp) Backward(b scalar.Backend, grad scalar.Scalar, in []scalar.Scalar, _ scalar.Scalar) []scalar.Scalar {
	if op.P == 0 {
		return []scalar.Scalar{b.Const(0)}
	}
	deriv := b.Mul(b.Const(op.P), b.PowReal(in[0], op.P-1))
	return []scalar.Scalar{b.Mul(grad, deriv)}
}
