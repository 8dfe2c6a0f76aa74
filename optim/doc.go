// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides minimizers that consume automatic gradients.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Stepper interface for custom update rules, driven by Descend
//   - Minimize: BFGS, L-BFGS, gradient descent and Nelder-Mead via gonum
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/fladiff/eval"
//	    "github.com/born-ml/fladiff/optim"
//	    "github.com/born-ml/fladiff/scalar"
//	)
//
//	func main() {
//	    e := eval.New()
//	    res, err := optim.Minimize(context.Background(),
//	        e.Objective(scalar.Rosenbrock, 0),
//	        e.GradientFunc(scalar.Rosenbrock, 0),
//	        []float64{-1.2, 1},
//	        optim.DefaultConfig(),
//	    )
//	    // res.X ≈ [1, 1]
//	}
//
// # First-Order Steppers
//
// SGD:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.001, Momentum: 0.9})
//
// Adam:
//
//	adam := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.01,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
//
// Both are driven by Descend:
//
//	x, err := optim.Descend(ctx, adam, e.GradientFunc(f, 0), x0, 5000)
//
// A hand-written gradient has the same signature as an automatic one, so
// either can be handed to Minimize or Descend.
package optim
