// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package eval computes values, Jacobians and Hessians of target functions.
//
// An Evaluator is stateless and safe for concurrent use. Each call builds
// its own backends, so a call either returns a complete result or an error.
//
// Example:
//
//	e := eval.New(eval.WithHessianMode(eval.Forward))
//	jac, err := e.Gradient(scalar.Rosenbrock, []float64{-1.2, 1})
//	h, err := e.Hessian(scalar.Rosenbrock, []float64{-1.2, 1}, 0)
//	report, err := e.Check(scalar.Rosenbrock, []float64{-1.2, 1}, 0)
package eval

import (
	"github.com/born-ml/fladiff/internal/eval"
	"github.com/born-ml/fladiff/internal/parallel"
)

// Evaluator evaluates target functions and their derivatives.
type Evaluator = eval.Evaluator

// Result bundles the value, Jacobian and Hessian of one evaluation.
type Result = eval.Result

// CheckReport compares an automatic gradient with finite differences.
type CheckReport = eval.CheckReport

// NumericalError reports a non-finite value or derivative.
type NumericalError = eval.NumericalError

// Errors returned by the evaluator.
var (
	ErrNoInputs    = eval.ErrNoInputs
	ErrNoOutputs   = eval.ErrNoOutputs
	ErrOutputIndex = eval.ErrOutputIndex
	ErrFunction    = eval.ErrFunction
)

// Mode selects how derivatives are computed.
type Mode = eval.Mode

// Derivative modes.
const (
	Reverse = eval.Reverse
	Forward = eval.Forward
)

// ParseMode parses "reverse" or "forward".
func ParseMode(s string) (Mode, error) {
	return eval.ParseMode(s)
}

// Options configures an Evaluator.
type Options = eval.Options

// Option modifies Options.
type Option = eval.Option

// ParallelConfig controls the workers of BatchGradient.
type ParallelConfig = parallel.Config

// DefaultOptions returns the default evaluator options.
func DefaultOptions() Options {
	return eval.DefaultOptions()
}

// New creates an evaluator with DefaultOptions modified by opts.
func New(opts ...Option) *Evaluator {
	return eval.New(opts...)
}

// WithOptions replaces all options.
func WithOptions(o Options) Option { return eval.WithOptions(o) }

// WithTolerance sets the closed-form agreement tolerance.
func WithTolerance(tol float64) Option { return eval.WithTolerance(tol) }

// WithCheckTolerance sets the finite-difference cross-check tolerance.
func WithCheckTolerance(tol float64) Option { return eval.WithCheckTolerance(tol) }

// WithFDStep sets the finite-difference step.
func WithFDStep(h float64) Option { return eval.WithFDStep(h) }

// WithJacobianMode selects the Jacobian mode.
func WithJacobianMode(m Mode) Option { return eval.WithJacobianMode(m) }

// WithHessianMode selects the Hessian mode.
func WithHessianMode(m Mode) Option { return eval.WithHessianMode(m) }

// WithParallel sets the BatchGradient worker settings.
func WithParallel(cfg ParallelConfig) Option { return eval.WithParallel(cfg) }
