// Package eval ties the backends together: it evaluates a target function
// and extracts its value, Jacobian and Hessian at a parameter vector.
//
// Every call is stateless. Tapes and checked backends are created inside the
// call and dropped when it returns, so an Evaluator may be shared between
// goroutines. A call either returns a complete result or an error, never a
// partial result.
//
// Example:
//
//	e := eval.New()
//	jac, err := e.Gradient(scalar.Rosenbrock, []float64{-1.2, 1})
//	// jac = [[-215.6, -88]]
package eval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fladiff/internal/autodiff"
	"github.com/born-ml/fladiff/internal/backend/cpu"
	"github.com/born-ml/fladiff/internal/dual"
	"github.com/born-ml/fladiff/internal/scalar"
)

// Evaluator evaluates target functions and their derivatives.
type Evaluator struct {
	opts Options
}

// New creates an evaluator with DefaultOptions modified by opts.
func New(opts ...Option) *Evaluator {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Evaluator{opts: options}
}

// Options returns the evaluator options.
func (e *Evaluator) Options() Options {
	return e.opts
}

// Result bundles the value, Jacobian and Hessian of one evaluation.
type Result struct {
	Values   []float64     // One value per output.
	Jacobian *mat.Dense    // Outputs × inputs.
	Output   int           // Output the Hessian refers to.
	Hessian  *mat.SymDense // Inputs × inputs, for Output.
}

// Gradient returns row Output of the Jacobian.
func (r *Result) Gradient() []float64 {
	return mat.Row(nil, r.Output, r.Jacobian)
}

// Evaluate runs f with plain float64 arithmetic.
//
// Non-finite outputs are reported as *NumericalError.
func (e *Evaluator) Evaluate(f scalar.Func, params []float64) (values []float64, err error) {
	defer recoverInto(&err)

	leaf := cpu.NewChecked()
	values = scalar.Floats(f(leaf, scalar.Consts(leaf, params)))
	if err := checkValues(leaf, values); err != nil {
		return nil, err
	}
	return values, nil
}

// Gradient returns the Jacobian of f at params (outputs × inputs) using the
// configured Jacobian mode.
func (e *Evaluator) Gradient(f scalar.Func, params []float64) (*mat.Dense, error) {
	_, jac, err := e.jacobian(f, params, e.opts.JacobianMode)
	return jac, err
}

// JacobianReverse returns the Jacobian of f in reverse mode: one recording,
// one backward sweep per output.
func (e *Evaluator) JacobianReverse(f scalar.Func, params []float64) (*mat.Dense, error) {
	_, jac, err := e.jacobian(f, params, Reverse)
	return jac, err
}

// JacobianForward returns the Jacobian of f in forward mode: a single pass
// carrying one partial per input.
func (e *Evaluator) JacobianForward(f scalar.Func, params []float64) (*mat.Dense, error) {
	_, jac, err := e.jacobian(f, params, Forward)
	return jac, err
}

// Hessian returns the Hessian of output k of f at params using the
// configured Hessian mode. The result is symmetric by construction.
func (e *Evaluator) Hessian(f scalar.Func, params []float64, k int) (*mat.SymDense, error) {
	_, _, hess, err := e.hessian(f, params, k, e.opts.HessianMode)
	return hess, err
}

// HessianReverse returns the Hessian of output k using reverse-over-reverse
// differentiation.
func (e *Evaluator) HessianReverse(f scalar.Func, params []float64, k int) (*mat.SymDense, error) {
	_, _, hess, err := e.hessian(f, params, k, Reverse)
	return hess, err
}

// HessianForward returns the Hessian of output k using nested dual numbers
// (forward-over-forward).
func (e *Evaluator) HessianForward(f scalar.Func, params []float64, k int) (*mat.SymDense, error) {
	_, _, hess, err := e.hessian(f, params, k, Forward)
	return hess, err
}

// Bundle returns the values, the Jacobian and the Hessian of output k.
func (e *Evaluator) Bundle(f scalar.Func, params []float64, k int) (*Result, error) {
	values, jac, err := e.jacobian(f, params, e.opts.JacobianMode)
	if err != nil {
		return nil, err
	}
	if k < 0 || k >= len(values) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOutputIndex, k, len(values))
	}
	_, _, hess, err := e.hessian(f, params, k, e.opts.HessianMode)
	if err != nil {
		return nil, err
	}
	return &Result{Values: values, Jacobian: jac, Output: k, Hessian: hess}, nil
}

func (e *Evaluator) jacobian(f scalar.Func, params []float64, mode Mode) (values []float64, jac *mat.Dense, err error) {
	defer recoverInto(&err)

	if len(params) == 0 {
		return nil, nil, ErrNoInputs
	}

	leaf := cpu.NewChecked()
	var rows [][]float64
	switch mode {
	case Forward:
		values, rows = dual.Jacobian(leaf, f, params)
	case Reverse:
		values, rows, err = autodiff.Jacobian(leaf, f, params)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("eval: unknown jacobian mode %q", mode)
	}

	if len(values) == 0 {
		return nil, nil, ErrNoOutputs
	}
	if err := checkValues(leaf, values); err != nil {
		return nil, nil, err
	}
	if err := checkRows(leaf, "jacobian", rows); err != nil {
		return nil, nil, err
	}

	jac = mat.NewDense(len(rows), len(params), nil)
	for i, row := range rows {
		jac.SetRow(i, row)
	}
	return values, jac, nil
}

func (e *Evaluator) hessian(f scalar.Func, params []float64, k int, mode Mode) (value float64, grad []float64, hess *mat.SymDense, err error) {
	defer recoverInto(&err)

	if len(params) == 0 {
		return 0, nil, nil, ErrNoInputs
	}

	// Resolve the output count first so a bad index is reported as such.
	probe := cpu.New()
	m := len(f(probe, scalar.Consts(probe, params)))
	if m == 0 {
		return 0, nil, nil, ErrNoOutputs
	}
	if k < 0 || k >= m {
		return 0, nil, nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOutputIndex, k, m)
	}

	leaf := cpu.NewChecked()
	var rows [][]float64
	switch mode {
	case Forward:
		value, grad, rows, err = dual.Hessian(leaf, f, params, k)
	case Reverse:
		value, grad, rows, err = autodiff.Hessian(leaf, f, params, k)
	default:
		return 0, nil, nil, fmt.Errorf("eval: unknown hessian mode %q", mode)
	}
	if err != nil {
		return 0, nil, nil, err
	}

	if !isFinite(value) {
		return 0, nil, nil, &NumericalError{Stage: "value", Output: k, Input: -1, Value: value, Fault: leaf.Fault()}
	}
	for j, g := range grad {
		if !isFinite(g) {
			return 0, nil, nil, &NumericalError{Stage: "gradient", Output: k, Input: j, Value: g, Fault: leaf.Fault()}
		}
	}
	if err := checkRows(leaf, "hessian", rows); err != nil {
		return 0, nil, nil, err
	}

	return value, grad, symmetrize(rows), nil
}

// symmetrize packs (H + Hᵀ)/2 into a SymDense.
func symmetrize(rows [][]float64) *mat.SymDense {
	n := len(rows)
	h := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			h.SetSym(i, j, (rows[i][j]+rows[j][i])/2)
		}
	}
	return h
}

func checkValues(leaf *cpu.CPUBackend, values []float64) error {
	for k, v := range values {
		if !isFinite(v) {
			return &NumericalError{Stage: "value", Output: k, Input: -1, Value: v, Fault: leaf.Fault()}
		}
	}
	return nil
}

// checkRows reports the first non-finite matrix entry.
func checkRows(leaf *cpu.CPUBackend, stage string, rows [][]float64) error {
	for i, row := range rows {
		for j, v := range row {
			if !isFinite(v) {
				return &NumericalError{Stage: stage, Output: i, Input: j, Value: v, Fault: leaf.Fault()}
			}
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
