package cpu

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Fault describes the first operation that produced a non-finite value
// from finite operands.
type Fault struct {
	Op       string    // Operation name, e.g. "div".
	Operands []float64 // Finite operands of the faulting operation.
	Result   float64   // The non-finite result (±Inf or NaN).
}

// String formats the fault as "div(1, 0) = +Inf".
func (f *Fault) String() string {
	args := make([]string, len(f.Operands))
	for i, v := range f.Operands {
		args[i] = fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%s(%s) = %g", f.Op, strings.Join(args, ", "), f.Result)
}

// Fault returns the first recorded fault, or nil.
// Unchecked backends never record faults.
func (cpu *CPUBackend) Fault() *Fault {
	return cpu.fault
}

// Reset clears the recorded fault.
func (cpu *CPUBackend) Reset() {
	cpu.fault = nil
}

// result wraps v and, on a checked backend, records the first fault.
func (cpu *CPUBackend) result(op string, v float64, operands ...float64) scalar.Scalar {
	if cpu.checked && cpu.fault == nil && !isFinite(v) && allFinite(operands) {
		cpu.fault = &Fault{
			Op:       op,
			Operands: append([]float64(nil), operands...),
			Result:   v,
		}
	}
	return Real(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
