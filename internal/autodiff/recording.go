package autodiff

import (
	"fmt"
	"strings"

	"github.com/born-ml/fladiff/internal/autodiff/ops"
	"github.com/born-ml/fladiff/internal/backend/cpu"
	"github.com/born-ml/fladiff/internal/scalar"
)

// Recording is a finished tape: the operation sequence of a target function
// together with the slots of its inputs and outputs.
//
// A Recording is immutable and independent of the backend that produced it.
// It can be replayed at any point, over any backend, through Func.
type Recording struct {
	nodes   []node
	inputs  []int
	outputs []int
}

func newRecording(t *GradientTape, outputs []int) *Recording {
	nodes := make([]node, len(t.nodes))
	copy(nodes, t.nodes)
	inputs := make([]int, len(t.inputs))
	copy(inputs, t.inputs)
	return &Recording{nodes: nodes, inputs: inputs, outputs: outputs}
}

// NumInputs returns the number of independent inputs.
func (r *Recording) NumInputs() int {
	return len(r.inputs)
}

// NumOutputs returns the number of outputs.
func (r *Recording) NumOutputs() int {
	return len(r.outputs)
}

// NumOps returns the number of recorded operations, leaves included.
func (r *Recording) NumOps() int {
	return len(r.nodes)
}

// Ops returns the recorded operation names in execution order.
func (r *Recording) Ops() []string {
	names := make([]string, len(r.nodes))
	for i, n := range r.nodes {
		names[i] = n.op.Name()
	}
	return names
}

// Values returns the output values observed while recording.
func (r *Recording) Values() []float64 {
	out := make([]float64, len(r.outputs))
	for k, slot := range r.outputs {
		out[k] = r.nodes[slot].value.Float()
	}
	return out
}

// String summarizes the recording as "recording(2 in, 1 out, 14 ops)".
func (r *Recording) String() string {
	return fmt.Sprintf("recording(%d in, %d out, %d ops)", r.NumInputs(), r.NumOutputs(), r.NumOps())
}

// Dump lists the operations one per line as "slot: name(inputs) = value".
func (r *Recording) Dump() string {
	var sb strings.Builder
	for i, n := range r.nodes {
		fmt.Fprintf(&sb, "%d: %s%v = %g\n", i, n.op.Name(), n.op.Inputs(), n.value.Float())
	}
	return sb.String()
}

// Func returns the recorded function. Replaying re-executes the operation
// sequence over b with new inputs; control flow taken while recording is
// baked in.
//
// The returned function panics with ErrTapeStructure if called with a
// different number of inputs than were recorded.
func (r *Recording) Func() scalar.Func {
	return func(b scalar.Backend, x []scalar.Scalar) []scalar.Scalar {
		if len(x) != len(r.inputs) {
			panic(fmt.Errorf("%w: replay with %d inputs, recorded %d", ErrTapeStructure, len(x), len(r.inputs)))
		}

		values := make([]scalar.Scalar, len(r.nodes))
		for i, n := range r.nodes {
			if in, ok := n.op.(*ops.InputOp); ok {
				values[i] = x[in.Index]
				continue
			}
			slots := n.op.Inputs()
			args := make([]scalar.Scalar, len(slots))
			for j, slot := range slots {
				args[j] = values[slot]
			}
			values[i] = n.op.Forward(b, args)
		}

		out := make([]scalar.Scalar, len(r.outputs))
		for k, slot := range r.outputs {
			out[k] = values[slot]
		}
		return out
	}
}

// Forward replays the recording at point and returns the output values.
func (r *Recording) Forward(point []float64) (values []float64, err error) {
	defer catch(&err)
	leaf := cpu.New()
	return scalar.Floats(r.Func()(leaf, scalar.Consts(leaf, point))), nil
}

// Jacobian replays the recording at point and returns the output values and
// the Jacobian (one row per output).
func (r *Recording) Jacobian(point []float64) ([]float64, [][]float64, error) {
	return Jacobian(cpu.New(), r.Func(), point)
}

// Hessian replays the recording at point and returns the value, gradient and
// Hessian of output k.
func (r *Recording) Hessian(point []float64, k int) (float64, []float64, [][]float64, error) {
	return Hessian(cpu.New(), r.Func(), point, k)
}
