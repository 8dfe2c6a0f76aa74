package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Method names a minimization algorithm.
type Method string

// Supported methods.
const (
	BFGS            Method = "bfgs"
	LBFGS           Method = "lbfgs"
	GradientDescent Method = "gradient-descent"
	NelderMead      Method = "nelder-mead"
)

// ParseMethod parses a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case BFGS, LBFGS, GradientDescent, NelderMead:
		return m, nil
	}
	return "", fmt.Errorf("optim: unknown method %q (want bfgs, lbfgs, gradient-descent or nelder-mead)", s)
}

// NeedsGradient reports whether the method uses the gradient.
func (m Method) NeedsGradient() bool {
	return m != NelderMead
}

// MinimizeConfig configures Minimize.
type MinimizeConfig struct {
	Method  Method
	GradTol float64 // Stop when the gradient infinity norm falls below this
	MaxIter int     // Major iteration cap (0 = unlimited)
}

// DefaultConfig returns BFGS with gradient tolerance 1e-8 and 1000 iterations.
func DefaultConfig() MinimizeConfig {
	return MinimizeConfig{
		Method:  BFGS,
		GradTol: 1e-8,
		MaxIter: 1000,
	}
}

// Result is the outcome of Minimize.
type Result struct {
	X          []float64
	F          float64
	Gradient   []float64 // nil for derivative-free methods
	Status     string
	Iterations int
	FuncEvals  int
	GradEvals  int
	Runtime    time.Duration
}

// GradNorm returns the infinity norm of the final gradient, or 0 when none
// was computed.
func (r *Result) GradNorm() float64 {
	if len(r.Gradient) == 0 {
		return 0
	}
	return floats.Norm(r.Gradient, math.Inf(1))
}

// Minimize minimizes f starting from x0. grad may be nil only for
// NelderMead. Cancelling ctx stops the run at the next iteration and
// returns ctx.Err().
func Minimize(ctx context.Context, f func(x []float64) float64, grad GradFunc, x0 []float64, cfg MinimizeConfig) (*Result, error) {
	if len(x0) == 0 {
		return nil, errors.New("optim: empty starting point")
	}
	if cfg.Method == "" {
		cfg.Method = BFGS
	}
	method, err := newMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	if grad == nil && cfg.Method.NeedsGradient() {
		return nil, fmt.Errorf("optim: method %s requires a gradient", cfg.Method)
	}

	problem := optimize.Problem{Func: f}
	if grad != nil && cfg.Method.NeedsGradient() {
		problem.Grad = grad
	}

	settings := &optimize.Settings{
		GradientThreshold: cfg.GradTol,
		MajorIterations:   cfg.MaxIter,
		Recorder:          &ctxRecorder{ctx: ctx},
	}

	res, err := optimize.Minimize(problem, append([]float64(nil), x0...), settings, method)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("optim: %s: %w", cfg.Method, err)
	}

	return &Result{
		X:          res.X,
		F:          res.F,
		Gradient:   res.Gradient,
		Status:     res.Status.String(),
		Iterations: res.MajorIterations,
		FuncEvals:  res.FuncEvaluations,
		GradEvals:  res.GradEvaluations,
		Runtime:    res.Runtime,
	}, nil
}

func newMethod(m Method) (optimize.Method, error) {
	switch m {
	case BFGS:
		return &optimize.BFGS{}, nil
	case LBFGS:
		return &optimize.LBFGS{}, nil
	case GradientDescent:
		return &optimize.GradientDescent{}, nil
	case NelderMead:
		return &optimize.NelderMead{}, nil
	}
	_, err := ParseMethod(string(m))
	return nil, err
}

// ctxRecorder aborts the run once the context is done.
type ctxRecorder struct {
	ctx context.Context
}

func (r *ctxRecorder) Init() error {
	return r.ctx.Err()
}

func (r *ctxRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	return r.ctx.Err()
}
