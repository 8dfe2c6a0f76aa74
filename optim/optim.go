// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"context"

	"github.com/born-ml/fladiff/internal/optim"
)

// GradFunc writes the gradient of an objective at x into grad.
type GradFunc = optim.GradFunc

// Stepper is the common interface of first-order update rules.
type Stepper = optim.Stepper

// Config represents the base configuration for steppers.
type Config = optim.Config

// ErrNonFinite is returned when descent produces a non-finite value.
var ErrNonFinite = optim.ErrNonFinite

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD stepper with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD stepper.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam stepper.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam stepper with bias correction.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// Descend runs steps iterations of s from x0 and returns the final iterate.
func Descend(ctx context.Context, s Stepper, grad GradFunc, x0 []float64, steps int) ([]float64, error) {
	return optim.Descend(ctx, s, grad, x0, steps)
}

// Minimization

// Method names a minimization algorithm.
type Method = optim.Method

// Supported methods.
const (
	BFGS            = optim.BFGS
	LBFGS           = optim.LBFGS
	GradientDescent = optim.GradientDescent
	NelderMead      = optim.NelderMead
)

// ParseMethod parses a method name.
func ParseMethod(s string) (Method, error) {
	return optim.ParseMethod(s)
}

// MinimizeConfig configures Minimize.
type MinimizeConfig = optim.MinimizeConfig

// DefaultConfig returns the default minimizer settings (BFGS).
func DefaultConfig() MinimizeConfig {
	return optim.DefaultConfig()
}

// Result is the outcome of Minimize.
type Result = optim.Result

// Minimize minimizes f starting from x0.
func Minimize(ctx context.Context, f func(x []float64) float64, grad GradFunc, x0 []float64, cfg MinimizeConfig) (*Result, error) {
	return optim.Minimize(ctx, f, grad, x0, cfg)
}
