// Package optim minimizes scalar objectives over parameter vectors.
//
// This package provides:
//   - Stepper interface: first-order update rules (SGD, Adam) driven by Descend
//   - Minimize: quasi-Newton and derivative-free minimization via gonum/optimize
//
// The gradient can come from the AD evaluator or be written by hand; both
// have the signature func(grad, x []float64).
//
// Example usage:
//
//	e := eval.New()
//	res, err := optim.Minimize(ctx, e.Objective(f, 0), e.GradientFunc(f, 0),
//	    []float64{-1.2, 1}, optim.DefaultConfig())
//
//	// First-order descent
//	x, err := optim.Descend(ctx, optim.NewAdam(optim.AdamConfig{LR: 0.01}),
//	    e.GradientFunc(f, 0), x0, 5000)
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// GradFunc writes the gradient of an objective at x into grad.
type GradFunc func(grad, x []float64)

// ErrNonFinite is returned when a gradient or iterate stops being finite.
var ErrNonFinite = errors.New("optim: non-finite value")

// Stepper is a first-order update rule over a parameter vector.
type Stepper interface {
	// Step updates x in place from the gradient at x.
	Step(x, grad []float64)

	// Reset clears accumulated state (velocities, moments, timestep).
	Reset()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for first-order steppers.
type Config struct {
	LR float64 // Learning rate
}

// Descend runs steps iterations of s from x0 and returns the final iterate.
// x0 is not modified. Cancellation of ctx is checked between steps.
func Descend(ctx context.Context, s Stepper, grad GradFunc, x0 []float64, steps int) ([]float64, error) {
	x := append([]float64(nil), x0...)
	g := make([]float64, len(x))

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return x, err
		}

		grad(g, x)
		if j := firstNonFinite(g); j >= 0 {
			return x, fmt.Errorf("%w: gradient[%d] = %g at step %d", ErrNonFinite, j, g[j], i)
		}

		s.Step(x, g)
		if j := firstNonFinite(x); j >= 0 {
			return x, fmt.Errorf("%w: x[%d] = %g at step %d", ErrNonFinite, j, x[j], i)
		}
	}
	return x, nil
}

func firstNonFinite(xs []float64) int {
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}
