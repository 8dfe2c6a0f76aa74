package eval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fladiff/internal/parallel"
	"github.com/born-ml/fladiff/internal/scalar"
)

// BatchGradient computes the Jacobian of f at every point. Each point gets
// its own tape; points are spread over the configured workers.
//
// If any point fails, the error of the first failing point is returned and
// no Jacobians are.
func (e *Evaluator) BatchGradient(f scalar.Func, points [][]float64) ([]*mat.Dense, error) {
	out := make([]*mat.Dense, len(points))
	err := parallel.ForErr(len(points), func(i int) error {
		jac, err := e.Gradient(f, points[i])
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = jac
		return nil
	}, e.opts.Parallel)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Objective adapts output k of f to a plain objective for minimizers.
// Failing evaluations yield NaN.
func (e *Evaluator) Objective(f scalar.Func, k int) func(x []float64) float64 {
	return func(x []float64) float64 {
		values, err := e.Evaluate(f, x)
		if err != nil || k < 0 || k >= len(values) {
			return math.NaN()
		}
		return values[k]
	}
}

// GradientFunc adapts the AD gradient of output k of f to the
// func(grad, x []float64) form used by gonum/optimize. Failing evaluations
// fill grad with NaN.
func (e *Evaluator) GradientFunc(f scalar.Func, k int) func(grad, x []float64) {
	return func(grad, x []float64) {
		jac, err := e.Gradient(f, x)
		if err == nil {
			if r, _ := jac.Dims(); k >= 0 && k < r {
				mat.Row(grad, k, jac)
				return
			}
		}
		for i := range grad {
			grad[i] = math.NaN()
		}
	}
}
