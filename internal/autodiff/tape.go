package autodiff

import (
	"errors"
	"fmt"

	"github.com/born-ml/fladiff/internal/autodiff/ops"
	"github.com/born-ml/fladiff/internal/scalar"
)

// ErrTapeStructure reports a detectable mismatch between a recorded tape and
// the way it is used: replaying with the wrong number of inputs, or mixing
// variables recorded on different tapes.
//
// A target function whose control flow depends on input values can change
// the operation sequence between points. That case is not detectable: the
// tape silently encodes the branch taken while recording.
var ErrTapeStructure = errors.New("autodiff: tape structure mismatch")

// node is one recorded operation together with its primal value.
type node struct {
	op       ops.Operation
	value    scalar.Scalar // Output value (scalar of the inner backend).
	constant bool          // Depends on recorded constants only.
}

// GradientTape records operations during the forward pass and computes
// adjoints during the backward pass using reverse-mode automatic differentiation.
//
// Slot i of the tape is the output of the i-th recorded operation. A tape is
// owned by a single evaluation and must not be shared between goroutines.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	x := backend.BeginRecording(inputs)
//	y := f(backend, x)
//	rec, err := backend.EndRecording(y)
//	grads := backend.Tape().Backward(y[0].(*autodiff.Var), backend.Inner().Const(1), backend.Inner())
type GradientTape struct {
	nodes     []node // Recorded operations (in execution order)
	inputs    []int  // Slots of the independent inputs, in input order
	recording bool   // Whether tape is currently recording
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		nodes:     make([]node, 0, 64), // Pre-allocate for common case
		recording: false,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Clear resets the tape, removing all recorded operations and inputs.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	t.nodes = t.nodes[:0]
	t.inputs = t.inputs[:0]
}

// NumOps returns the number of recorded operations, leaves included.
func (t *GradientTape) NumOps() int {
	return len(t.nodes)
}

// NumInputs returns the number of independent inputs.
func (t *GradientTape) NumInputs() int {
	return len(t.inputs)
}

// record appends an operation and returns its slot.
func (t *GradientTape) record(op ops.Operation, value scalar.Scalar) int {
	constant := false
	if _, ok := op.(*ops.ConstOp); ok {
		constant = true
	} else if in := op.Inputs(); len(in) > 0 {
		constant = true
		for _, slot := range in {
			constant = constant && t.nodes[slot].constant
		}
	}
	t.nodes = append(t.nodes, node{op: op, value: value, constant: constant})
	return len(t.nodes) - 1
}

// isConst reports whether slot holds a recorded constant or a value
// computed from constants only.
func (t *GradientTape) isConst(slot int) bool {
	return t.nodes[slot].constant
}

// Backward computes the adjoints of output with respect to every independent
// input by walking the tape in reverse from output's slot.
//
// Algorithm:
//  1. Start with seed as the adjoint of output (typically 1 for a scalar output)
//  2. Walk operations in reverse order
//  3. For each operation with a non-zero adjoint, compute input adjoints using the chain rule
//  4. Accumulate adjoints when the same slot is used multiple times
//
// All adjoint arithmetic is performed with inner, which must be the backend
// that produced the tape's primal values. If inner is itself recording, the
// returned adjoints are differentiable (reverse-over-reverse).
//
// Returns one adjoint per independent input; inputs that do not influence
// output get inner.Const(0).
func (t *GradientTape) Backward(output *Var, seed scalar.Scalar, inner scalar.Backend) []scalar.Scalar {
	grads := make([]scalar.Scalar, len(t.inputs))

	if output.tape == t && output.slot >= 0 {
		adjoints := make([]scalar.Scalar, output.slot+1)
		adjoints[output.slot] = seed

		// Walk tape backwards
		for i := output.slot; i >= 0; i-- {
			grad := adjoints[i]
			if grad == nil {
				continue
			}
			t.accumulate(i, grad, adjoints, inner)
		}

		for j, slot := range t.inputs {
			if slot < len(adjoints) {
				grads[j] = adjoints[slot]
			}
		}
	} else if output.tape != nil && output.tape != t {
		panic(fmt.Errorf("%w: backward from a variable recorded on another tape", ErrTapeStructure))
	}

	for j := range grads {
		if grads[j] == nil {
			grads[j] = inner.Const(0)
		}
	}
	return grads
}

// accumulate propagates the adjoint of slot i to its inputs.
func (t *GradientTape) accumulate(i int, grad scalar.Scalar, adjoints []scalar.Scalar, inner scalar.Backend) {
	n := t.nodes[i]
	inputs := n.op.Inputs()
	if len(inputs) == 0 {
		return
	}

	values := make([]scalar.Scalar, len(inputs))
	for j, slot := range inputs {
		values[j] = t.nodes[slot].value
	}

	inputGrads := n.op.Backward(inner, grad, values, n.value)
	for j, slot := range inputs {
		if j >= len(inputGrads) || inputGrads[j] == nil {
			continue
		}
		if existing := adjoints[slot]; existing != nil {
			adjoints[slot] = inner.Add(existing, inputGrads[j])
		} else {
			adjoints[slot] = inputGrads[j]
		}
	}
}
