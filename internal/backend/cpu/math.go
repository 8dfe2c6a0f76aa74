package cpu

import (
	"math"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Exp computes the exponential: exp(x).
func (cpu *CPUBackend) Exp(x scalar.Scalar) scalar.Scalar {
	v := unwrap("exp", x)
	return cpu.result("exp", math.Exp(v), v)
}

// Log computes the natural logarithm: ln(x).
// Non-positive arguments give -Inf (zero) or NaN (negative).
func (cpu *CPUBackend) Log(x scalar.Scalar) scalar.Scalar {
	v := unwrap("log", x)
	return cpu.result("log", math.Log(v), v)
}

// Sqrt computes the square root: sqrt(x).
func (cpu *CPUBackend) Sqrt(x scalar.Scalar) scalar.Scalar {
	v := unwrap("sqrt", x)
	return cpu.result("sqrt", math.Sqrt(v), v)
}

// Sin computes the sine: sin(x).
func (cpu *CPUBackend) Sin(x scalar.Scalar) scalar.Scalar {
	v := unwrap("sin", x)
	return cpu.result("sin", math.Sin(v), v)
}

// Cos computes the cosine: cos(x).
func (cpu *CPUBackend) Cos(x scalar.Scalar) scalar.Scalar {
	v := unwrap("cos", x)
	return cpu.result("cos", math.Cos(v), v)
}

// Tan computes the tangent: tan(x).
func (cpu *CPUBackend) Tan(x scalar.Scalar) scalar.Scalar {
	v := unwrap("tan", x)
	return cpu.result("tan", math.Tan(v), v)
}

// Tanh computes the hyperbolic tangent: tanh(x).
func (cpu *CPUBackend) Tanh(x scalar.Scalar) scalar.Scalar {
	v := unwrap("tanh", x)
	return cpu.result("tanh", math.Tanh(v), v)
}

// Abs computes the absolute value: |x|.
func (cpu *CPUBackend) Abs(x scalar.Scalar) scalar.Scalar {
	return Real(math.Abs(unwrap("abs", x)))
}
