package eval

import (
	"fmt"

	"github.com/born-ml/fladiff/internal/parallel"
)

// Mode selects how derivatives are computed.
type Mode string

const (
	// Reverse records a tape and sweeps it backwards.
	Reverse Mode = "reverse"
	// Forward propagates dual numbers alongside values.
	Forward Mode = "forward"
)

// ParseMode parses "reverse" or "forward".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Reverse, Forward:
		return m, nil
	default:
		return "", fmt.Errorf("eval: unknown mode %q (want reverse or forward)", s)
	}
}

// Options configures an Evaluator.
type Options struct {
	Tolerance      float64         // Relative tolerance for closed-form agreement.
	CheckTolerance float64         // Relative tolerance for the finite-difference cross-check.
	FDStep         float64         // Step of the central finite differences.
	JacobianMode   Mode            // Mode used by Gradient.
	HessianMode    Mode            // Mode used by Hessian.
	Parallel       parallel.Config // Worker settings for BatchGradient.
}

// DefaultOptions returns the default evaluator options.
func DefaultOptions() Options {
	return Options{
		Tolerance:      1e-8,
		CheckTolerance: 1e-6,
		FDStep:         1e-6,
		JacobianMode:   Reverse,
		HessianMode:    Reverse,
		Parallel:       parallel.DefaultConfig(),
	}
}

// Option configures an Evaluator.
type Option func(*Options)

// WithOptions replaces all options at once.
func WithOptions(o Options) Option {
	return func(opts *Options) {
		*opts = o
	}
}

// WithTolerance sets the relative tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		o.Tolerance = tol
	}
}

// WithCheckTolerance sets the finite-difference cross-check tolerance.
func WithCheckTolerance(tol float64) Option {
	return func(o *Options) {
		o.CheckTolerance = tol
	}
}

// WithFDStep sets the finite-difference step.
func WithFDStep(h float64) Option {
	return func(o *Options) {
		o.FDStep = h
	}
}

// WithJacobianMode selects the mode used by Gradient.
func WithJacobianMode(m Mode) Option {
	return func(o *Options) {
		o.JacobianMode = m
	}
}

// WithHessianMode selects the mode used by Hessian.
func WithHessianMode(m Mode) Option {
	return func(o *Options) {
		o.HessianMode = m
	}
}

// WithParallel sets the worker settings for BatchGradient.
func WithParallel(cfg parallel.Config) Option {
	return func(o *Options) {
		o.Parallel = cfg
	}
}
