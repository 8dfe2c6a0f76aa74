package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/fladiff/internal/autodiff"
	"github.com/born-ml/fladiff/internal/backend/cpu"
	"github.com/born-ml/fladiff/internal/scalar"
)

// numericalGradient computes the gradient using central finite differences.
// f: function of a float64.
// x: point at which to compute the gradient.
// epsilon: small value for finite difference.
func numericalGradient(f func(float64) float64, x, epsilon float64) float64 {
	return (f(x+epsilon) - f(x-epsilon)) / (2 * epsilon)
}

// unaryCase is a one-input function expressed both over a backend and over
// float64 for the numerical reference.
type unaryCase struct {
	name   string
	f      func(b scalar.Backend, x scalar.Scalar) scalar.Scalar
	ref    func(float64) float64
	points []float64
}

func unaryCases() []unaryCase {
	return []unaryCase{
		{"square", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Mul(x, x) },
			func(x float64) float64 { return x * x }, []float64{-2, 0.5, 3}},
		{"exp", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Exp(x) },
			math.Exp, []float64{-1, 0, 1.5}},
		{"log", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Log(x) },
			math.Log, []float64{0.3, 1, 4}},
		{"sqrt", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Sqrt(x) },
			math.Sqrt, []float64{0.25, 2, 9}},
		{"sin", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Sin(x) },
			math.Sin, []float64{-1, 0.2, 2.5}},
		{"cos", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Cos(x) },
			math.Cos, []float64{-1, 0.2, 2.5}},
		{"tan", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Tan(x) },
			math.Tan, []float64{-0.7, 0.1, 1.2}},
		{"tanh", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Tanh(x) },
			math.Tanh, []float64{-2, 0, 0.8}},
		{"abs", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Abs(x) },
			math.Abs, []float64{-3, 0.4}},
		{"neg", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Neg(x) },
			func(x float64) float64 { return -x }, []float64{-1, 2}},
		{"powreal", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.PowReal(x, 3.5) },
			func(x float64) float64 { return math.Pow(x, 3.5) }, []float64{0.5, 1.3}},
		{"reciprocal", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Div(b.Const(1), x) },
			func(x float64) float64 { return 1 / x }, []float64{-2, 0.5, 4}},
		{"pow-const-base", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar { return b.Pow(b.Const(2), x) },
			func(x float64) float64 { return math.Pow(2, x) }, []float64{-1, 0.5, 3}},
		{"composite", func(b scalar.Backend, x scalar.Scalar) scalar.Scalar {
			return b.Div(b.Exp(x), b.Sqrt(b.Add(b.PowReal(b.Sin(x), 3), b.PowReal(b.Cos(x), 3))))
		}, func(x float64) float64 {
			return math.Exp(x) / math.Sqrt(math.Pow(math.Sin(x), 3)+math.Pow(math.Cos(x), 3))
		}, []float64{0.3, 1.5}},
	}
}

// TestNumericalGradient_UnaryOps checks the reverse-mode derivative of every
// operation against central differences.
func TestNumericalGradient_UnaryOps(t *testing.T) {
	epsilon := 1e-6

	for _, tc := range unaryCases() {
		t.Run(tc.name, func(t *testing.T) {
			f := scalar.Scalarize(func(b scalar.Backend, x []scalar.Scalar) scalar.Scalar {
				return tc.f(b, x[0])
			})
			for _, p := range tc.points {
				values, jac, err := autodiff.Jacobian(cpu.New(), f, []float64{p})
				if err != nil {
					t.Fatalf("Jacobian(%g): %v", p, err)
				}

				if math.Abs(values[0]-tc.ref(p)) > 1e-12 {
					t.Errorf("value at %g = %g, want %g", p, values[0], tc.ref(p))
				}

				numerical := numericalGradient(tc.ref, p, epsilon)
				if math.Abs(jac[0][0]-numerical) > 1e-5*math.Max(1, math.Abs(numerical)) {
					t.Errorf("gradient at %g = %g, numerical %g", p, jac[0][0], numerical)
				}
			}
		})
	}
}

// TestNumericalGradient_SecondDerivative checks the reverse-over-reverse
// second derivative of every operation against differences of the gradient.
func TestNumericalGradient_SecondDerivative(t *testing.T) {
	epsilon := 1e-5

	for _, tc := range unaryCases() {
		if tc.name == "abs" || tc.name == "neg" {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			f := scalar.Scalarize(func(b scalar.Backend, x []scalar.Scalar) scalar.Scalar {
				return tc.f(b, x[0])
			})
			firstDerivative := func(p float64) float64 {
				_, jac, err := autodiff.Jacobian(cpu.New(), f, []float64{p})
				if err != nil {
					t.Fatalf("Jacobian(%g): %v", p, err)
				}
				return jac[0][0]
			}

			for _, p := range tc.points {
				_, grad, hess, err := autodiff.Hessian(cpu.New(), f, []float64{p}, 0)
				if err != nil {
					t.Fatalf("Hessian(%g): %v", p, err)
				}

				if math.Abs(grad[0]-firstDerivative(p)) > 1e-12*math.Max(1, math.Abs(grad[0])) {
					t.Errorf("gradient at %g = %g, want %g", p, grad[0], firstDerivative(p))
				}

				numerical := numericalGradient(firstDerivative, p, epsilon)
				if math.Abs(hess[0][0]-numerical) > 1e-4*math.Max(1, math.Abs(numerical)) {
					t.Errorf("second derivative at %g = %g, numerical %g", p, hess[0][0], numerical)
				}
			}
		})
	}
}

// TestNumericalGradient_PowBothVariable tests f(a, b) = a^b.
func TestNumericalGradient_PowBothVariable(t *testing.T) {
	f := scalar.Scalarize(func(b scalar.Backend, x []scalar.Scalar) scalar.Scalar {
		return b.Pow(x[0], x[1])
	})

	_, jac, err := autodiff.Jacobian(cpu.New(), f, []float64{2, 3})
	if err != nil {
		t.Fatal(err)
	}

	// Expected: ∂/∂a = b·a^(b-1) = 12, ∂/∂b = a^b·ln(a) = 8·ln 2
	if math.Abs(jac[0][0]-12) > 1e-12 {
		t.Errorf("∂/∂a = %g, want 12", jac[0][0])
	}
	if math.Abs(jac[0][1]-8*math.Ln2) > 1e-12 {
		t.Errorf("∂/∂b = %g, want %g", jac[0][1], 8*math.Ln2)
	}
}
