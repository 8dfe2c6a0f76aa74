package autodiff

import (
	"fmt"

	"github.com/born-ml/fladiff/internal/scalar"
)

// Var is a scalar produced by an AutodiffBackend.
//
// A Var created while the tape is recording refers to a tape slot; one created
// while recording is off is a plain value with no slot.
type Var struct {
	tape  *GradientTape
	slot  int           // Tape slot, -1 if not recorded.
	gen   int           // Recording generation the slot belongs to.
	value scalar.Scalar // Primal value (scalar of the inner backend).
}

// Float returns the primal value.
func (v *Var) Float() float64 {
	return v.value.Float()
}

// Value returns the primal value as a scalar of the inner backend.
func (v *Var) Value() scalar.Scalar {
	return v.value
}

// Slot returns the tape slot, or -1 if the variable was not recorded.
func (v *Var) Slot() int {
	return v.slot
}

// String formats the variable as "var#3(1.5)".
func (v *Var) String() string {
	return fmt.Sprintf("var#%d(%g)", v.slot, v.Float())
}

// asVar converts a scalar produced by an autodiff backend back to *Var.
func asVar(op string, s scalar.Scalar) *Var {
	v, ok := s.(*Var)
	if !ok {
		panic(fmt.Sprintf("%s: scalar %T does not belong to an autodiff backend", op, s))
	}
	return v
}
