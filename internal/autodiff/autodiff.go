// Package autodiff implements reverse-mode automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any scalar.Backend implementation and adds
// gradient tracking capabilities through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: Records operations (by slot) during the forward pass
//   - Operation interface: Each op (Add, Mul, Exp) implements forward replay and backward pass
//   - Recording: a finished tape that replays at any point and over any backend
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	x := backend.BeginRecording(scalar.Consts(backend.Inner(), []float64{-1.2, 1}))
//	y := scalar.Rosenbrock(backend, x)
//	rec, err := backend.EndRecording(y)
//	jac, err := rec.Jacobian([]float64{-1.2, 1}) // [[-215.6, -88]]
//
// Wrapping an AutodiffBackend in another one records the backward pass of the
// outer tape on the inner tape, which is how Hessian computes second derivatives.
package autodiff

import (
	"fmt"

	"github.com/born-ml/fladiff/internal/autodiff/ops"
	"github.com/born-ml/fladiff/internal/scalar"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the scalar.Backend interface and records operations in a GradientTape.
//
// Type parameter B must satisfy the scalar.Backend interface.
type AutodiffBackend[B scalar.Backend] struct {
	inner B             // Wrapped backend (CPU, dual, another autodiff, ...)
	tape  *GradientTape // Records operations for backpropagation
	gen   int           // Incremented by BeginRecording; invalidates older variables
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B scalar.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// BeginRecording clears the tape, marks inputs (scalars of the inner backend)
// as independent variables and starts recording. The returned handles must be
// passed to the target function.
func (b *AutodiffBackend[B]) BeginRecording(inputs []scalar.Scalar) []scalar.Scalar {
	b.tape.Clear()
	b.gen++
	b.tape.StartRecording()

	handles := make([]scalar.Scalar, len(inputs))
	for i, v := range inputs {
		slot := b.tape.record(ops.NewInputOp(i), v)
		b.tape.inputs = append(b.tape.inputs, slot)
		handles[i] = &Var{tape: b.tape, slot: slot, gen: b.gen, value: v}
	}
	return handles
}

// EndRecording stops recording and finalizes the tape against results.
//
// Results that are constants created outside the recording are added to the
// tape as constants. Scalars that do not belong to this backend, or variables
// recorded on another tape, fail with ErrTapeStructure.
func (b *AutodiffBackend[B]) EndRecording(results []scalar.Scalar) (*Recording, error) {
	b.tape.StopRecording()

	outputs := make([]int, len(results))
	for k, r := range results {
		v, ok := r.(*Var)
		if !ok {
			return nil, fmt.Errorf("%w: output %d is %T, not an autodiff variable", ErrTapeStructure, k, r)
		}
		if err := b.check(v); err != nil {
			return nil, fmt.Errorf("output %d: %w", k, err)
		}
		if v.tape == nil {
			v.tape, v.gen, v.slot = b.tape, b.gen, b.tape.record(ops.NewConstOp(v.Float()), v.value)
		}
		outputs[k] = v.slot
	}

	return newRecording(b.tape, outputs), nil
}

// check verifies that v may be used on the current recording.
func (b *AutodiffBackend[B]) check(v *Var) error {
	if v.tape == nil {
		return nil
	}
	if v.tape != b.tape {
		return fmt.Errorf("%w: variable recorded on another tape", ErrTapeStructure)
	}
	if v.gen != b.gen || v.slot >= b.tape.NumOps() {
		return fmt.Errorf("%w: variable from an earlier recording", ErrTapeStructure)
	}
	return nil
}

// slotOf returns the tape slot of v, recording untracked values as constants.
func (b *AutodiffBackend[B]) slotOf(op string, v *Var) int {
	if err := b.check(v); err != nil {
		panic(fmt.Errorf("%s: %w", op, err))
	}
	if v.tape == nil {
		return b.tape.record(ops.NewConstOp(v.Float()), v.value)
	}
	return v.slot
}

// emit wraps an inner result and, if the tape is recording, records the
// operation built by mk.
func (b *AutodiffBackend[B]) emit(result scalar.Scalar, mk func() ops.Operation) scalar.Scalar {
	if !b.tape.IsRecording() {
		return &Var{slot: -1, value: result}
	}
	slot := b.tape.record(mk(), result)
	return &Var{tape: b.tape, slot: slot, gen: b.gen, value: result}
}

// Const lifts a constant. While recording, the constant is placed on the
// tape so that replay reproduces it.
func (b *AutodiffBackend[B]) Const(v float64) scalar.Scalar {
	return b.emit(b.inner.Const(v), func() ops.Operation { return ops.NewConstOp(v) })
}

// Add performs addition and records the operation.
func (b *AutodiffBackend[B]) Add(x, y scalar.Scalar) scalar.Scalar {
	vx, vy := asVar("add", x), asVar("add", y)
	result := b.inner.Add(vx.value, vy.value)
	return b.emit(result, func() ops.Operation {
		return ops.NewAddOp(b.slotOf("add", vx), b.slotOf("add", vy))
	})
}

// Sub performs subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(x, y scalar.Scalar) scalar.Scalar {
	vx, vy := asVar("sub", x), asVar("sub", y)
	result := b.inner.Sub(vx.value, vy.value)
	return b.emit(result, func() ops.Operation {
		return ops.NewSubOp(b.slotOf("sub", vx), b.slotOf("sub", vy))
	})
}

// Mul performs multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(x, y scalar.Scalar) scalar.Scalar {
	vx, vy := asVar("mul", x), asVar("mul", y)
	result := b.inner.Mul(vx.value, vy.value)
	return b.emit(result, func() ops.Operation {
		return ops.NewMulOp(b.slotOf("mul", vx), b.slotOf("mul", vy))
	})
}

// Div performs division and records the operation.
func (b *AutodiffBackend[B]) Div(x, y scalar.Scalar) scalar.Scalar {
	vx, vy := asVar("div", x), asVar("div", y)
	result := b.inner.Div(vx.value, vy.value)
	return b.emit(result, func() ops.Operation {
		return ops.NewDivOp(b.slotOf("div", vx), b.slotOf("div", vy))
	})
}

// Pow computes x ** y and records the operation.
func (b *AutodiffBackend[B]) Pow(x, y scalar.Scalar) scalar.Scalar {
	vx, vy := asVar("pow", x), asVar("pow", y)
	result := b.inner.Pow(vx.value, vy.value)
	return b.emit(result, func() ops.Operation {
		sx, sy := b.slotOf("pow", vx), b.slotOf("pow", vy)
		return ops.NewPowOp(sx, sy).WithConstants(b.tape.isConst(sx), b.tape.isConst(sy))
	})
}

// Neg negates x and records the operation.
func (b *AutodiffBackend[B]) Neg(x scalar.Scalar) scalar.Scalar {
	vx := asVar("neg", x)
	return b.emit(b.inner.Neg(vx.value), func() ops.Operation {
		return ops.NewNegOp(b.slotOf("neg", vx))
	})
}

// PowReal computes x ** p for a constant p and records the operation.
func (b *AutodiffBackend[B]) PowReal(x scalar.Scalar, p float64) scalar.Scalar {
	vx := asVar("powreal", x)
	return b.emit(b.inner.PowReal(vx.value, p), func() ops.Operation {
		return ops.NewPowRealOp(b.slotOf("powreal", vx), p)
	})
}

// Exp computes the exponential and records the operation.
func (b *AutodiffBackend[B]) Exp(x scalar.Scalar) scalar.Scalar {
	vx := asVar("exp", x)
	return b.emit(b.inner.Exp(vx.value), func() ops.Operation {
		return ops.NewExpOp(b.slotOf("exp", vx))
	})
}

// Log computes the natural logarithm and records the operation.
//
// Forward:
//
//	output = log(input)
//
// Backward:
//
//	∂L/∂input = ∂L/∂output * (1 / input)
func (b *AutodiffBackend[B]) Log(x scalar.Scalar) scalar.Scalar {
	vx := asVar("log", x)
	return b.emit(b.inner.Log(vx.value), func() ops.Operation {
		return ops.NewLogOp(b.slotOf("log", vx))
	})
}

// Sqrt computes the square root and records the operation.
func (b *AutodiffBackend[B]) Sqrt(x scalar.Scalar) scalar.Scalar {
	vx := asVar("sqrt", x)
	return b.emit(b.inner.Sqrt(vx.value), func() ops.Operation {
		return ops.NewSqrtOp(b.slotOf("sqrt", vx))
	})
}

// Sin computes the sine and records the operation.
func (b *AutodiffBackend[B]) Sin(x scalar.Scalar) scalar.Scalar {
	vx := asVar("sin", x)
	return b.emit(b.inner.Sin(vx.value), func() ops.Operation {
		return ops.NewSinOp(b.slotOf("sin", vx))
	})
}

// Cos computes the cosine and records the operation.
func (b *AutodiffBackend[B]) Cos(x scalar.Scalar) scalar.Scalar {
	vx := asVar("cos", x)
	return b.emit(b.inner.Cos(vx.value), func() ops.Operation {
		return ops.NewCosOp(b.slotOf("cos", vx))
	})
}

// Tan computes the tangent and records the operation.
func (b *AutodiffBackend[B]) Tan(x scalar.Scalar) scalar.Scalar {
	vx := asVar("tan", x)
	return b.emit(b.inner.Tan(vx.value), func() ops.Operation {
		return ops.NewTanOp(b.slotOf("tan", vx))
	})
}

// Tanh computes the hyperbolic tangent and records the operation.
func (b *AutodiffBackend[B]) Tanh(x scalar.Scalar) scalar.Scalar {
	vx := asVar("tanh", x)
	return b.emit(b.inner.Tanh(vx.value), func() ops.Operation {
		return ops.NewTanhOp(b.slotOf("tanh", vx))
	})
}

// Abs computes the absolute value and records the operation.
func (b *AutodiffBackend[B]) Abs(x scalar.Scalar) scalar.Scalar {
	vx := asVar("abs", x)
	return b.emit(b.inner.Abs(vx.value), func() ops.Operation {
		return ops.NewAbsOp(b.slotOf("abs", vx))
	})
}
