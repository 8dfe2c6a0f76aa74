package eval

import (
	"errors"
	"fmt"

	"github.com/born-ml/fladiff/internal/backend/cpu"
)

var (
	// ErrNoInputs is returned when a derivative is requested for an empty
	// parameter vector.
	ErrNoInputs = errors.New("eval: no parameters")

	// ErrNoOutputs is returned when the target function produced no outputs.
	ErrNoOutputs = errors.New("eval: function returned no outputs")

	// ErrOutputIndex is returned when the selected output does not exist.
	ErrOutputIndex = errors.New("eval: output index out of range")

	// ErrFunction wraps a panic raised by the target function.
	ErrFunction = errors.New("eval: target function failed")
)

// NumericalError reports a non-finite value (NaN or ±Inf) produced while
// evaluating the target function or its derivatives.
//
// Stage is "value", "jacobian", "gradient" or "hessian". Output and Input
// locate the offending entry; Input is -1 for values. For "hessian" they are
// the row and column of the matrix. Fault, when known, is
// the first elementary operation that turned finite operands into a
// non-finite result.
type NumericalError struct {
	Stage  string
	Output int
	Input  int
	Value  float64
	Fault  *cpu.Fault
}

// Op returns the name of the faulting operation, or "" if unknown.
func (e *NumericalError) Op() string {
	if e.Fault == nil {
		return ""
	}
	return e.Fault.Op
}

func (e *NumericalError) Error() string {
	where := fmt.Sprintf("%s[%d]", e.Stage, e.Output)
	if e.Input >= 0 {
		where = fmt.Sprintf("%s[%d][%d]", e.Stage, e.Output, e.Input)
	}
	if e.Fault != nil {
		return fmt.Sprintf("eval: non-finite %s = %g (first fault: %s)", where, e.Value, e.Fault)
	}
	return fmt.Sprintf("eval: non-finite %s = %g", where, e.Value)
}

// recoverInto converts a panic raised during evaluation into *err so that a
// failing call returns no partial result.
func recoverInto(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok {
		*err = fmt.Errorf("%w: %w", ErrFunction, e)
		return
	}
	*err = fmt.Errorf("%w: %v", ErrFunction, r)
}
