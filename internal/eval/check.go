package eval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	fscalar "gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fladiff/internal/backend/cpu"
	"github.com/born-ml/fladiff/internal/scalar"
)

// CheckReport compares the AD gradient of one output with central finite
// differences.
type CheckReport struct {
	Point     []float64
	Output    int
	AD        []float64 // Gradient from the configured Jacobian mode.
	FD        []float64 // Central finite-difference gradient.
	MaxAbsErr float64
	MaxRelErr float64 // max |ad − fd| / max(1, |fd|).
	Tolerance float64
	Pass      bool
}

// String formats the report as one line.
func (r *CheckReport) String() string {
	status := "ok"
	if !r.Pass {
		status = "FAIL"
	}
	return fmt.Sprintf("%s: output %d max abs err %.3g, max rel err %.3g (tol %.3g)",
		status, r.Output, r.MaxAbsErr, r.MaxRelErr, r.Tolerance)
}

// Check cross-checks the AD gradient of output k of f at params against
// gonum's central finite differences with the configured step.
func (e *Evaluator) Check(f scalar.Func, params []float64, k int) (report *CheckReport, err error) {
	jac, err := e.Gradient(f, params)
	if err != nil {
		return nil, err
	}
	if r, _ := jac.Dims(); k < 0 || k >= r {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOutputIndex, k, r)
	}
	ad := mat.Row(nil, k, jac)

	defer recoverInto(&err)
	leaf := cpu.New()
	objective := func(x []float64) float64 {
		return f(leaf, scalar.Consts(leaf, x))[k].Float()
	}
	numeric := fd.Gradient(nil, objective, params, &fd.Settings{
		Formula: fd.Central,
		Step:    e.opts.FDStep,
	})

	report = &CheckReport{
		Point:     append([]float64(nil), params...),
		Output:    k,
		AD:        ad,
		FD:        numeric,
		MaxAbsErr: floats.Distance(ad, numeric, math.Inf(1)),
		Tolerance: e.opts.CheckTolerance,
	}
	for i := range ad {
		rel := math.Abs(ad[i]-numeric[i]) / math.Max(1, math.Abs(numeric[i]))
		report.MaxRelErr = math.Max(report.MaxRelErr, rel)
	}
	report.Pass = report.MaxRelErr <= report.Tolerance
	return report, nil
}

// Agrees reports whether got matches want entrywise, either within the
// evaluator tolerance absolutely or relative to the larger magnitude.
func (e *Evaluator) Agrees(got, want []float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !fscalar.EqualWithinAbsOrRel(got[i], want[i], e.opts.Tolerance, e.opts.Tolerance) {
			return false
		}
	}
	return true
}
