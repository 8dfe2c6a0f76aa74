// Package scalar defines the capability set shared by every numeric backend.
//
// A target function is written once against Backend and evaluated with any
// implementation of it:
//   - backend/cpu: plain float64 arithmetic
//   - dual: forward-mode automatic differentiation (wraps any backend)
//   - autodiff: reverse-mode automatic differentiation on a tape (wraps any backend)
//
// Decorator backends nest, so dual.New(dual.New(cpu.New(), n), n) and
// autodiff.New(autodiff.New(cpu.New())) both produce second derivatives.
package scalar

// Scalar is an opaque number owned by a Backend.
//
// Values produced by one backend must only be passed back to the same backend.
// Float returns the primal (real) value regardless of how much derivative
// information the scalar carries.
type Scalar interface {
	Float() float64
}

// Backend defines the arithmetic and elementary functions a target function may use.
//
// Every decorator backend must satisfy the chain rule exactly for every method:
// the primal of the result equals the float64 result, and the derivative part
// equals the analytic derivative.
type Backend interface {
	// Name returns the backend name, e.g. "CPU" or "Autodiff(CPU)".
	Name() string

	// Const lifts a constant into the backend. Constants carry no derivative.
	Const(v float64) Scalar

	// Binary arithmetic.
	Add(a, b Scalar) Scalar // a + b.
	Sub(a, b Scalar) Scalar // a - b.
	Mul(a, b Scalar) Scalar // a * b.
	Div(a, b Scalar) Scalar // a / b. IEEE semantics when b is zero.
	Pow(a, b Scalar) Scalar // a ** b, defined for a > 0 when b carries derivatives.

	// Unary functions.
	Neg(x Scalar) Scalar                // -x.
	PowReal(x Scalar, p float64) Scalar // x ** p with a constant exponent.
	Exp(x Scalar) Scalar                // Exponential.
	Log(x Scalar) Scalar                // Natural logarithm.
	Sqrt(x Scalar) Scalar               // Square root.
	Sin(x Scalar) Scalar                // Sine.
	Cos(x Scalar) Scalar                // Cosine.
	Tan(x Scalar) Scalar                // Tangent.
	Tanh(x Scalar) Scalar               // Hyperbolic tangent.
	Abs(x Scalar) Scalar                // Absolute value, derivative sign(x) and 0 at x == 0.
}

// Func is a target function: a pure mapping from a parameter vector to a result vector.
//
// It must only branch on Float() values, never on the concrete Scalar type,
// and must not retain scalars between calls.
type Func func(b Backend, x []Scalar) []Scalar
