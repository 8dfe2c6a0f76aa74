// Package session holds the named target functions of an interactive host
// and runs evaluator and minimizer requests against them.
//
// A Session is safe for concurrent use. When a store is attached, defined
// functions are persisted and every successful request is logged as a run.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fladiff/internal/eval"
	"github.com/born-ml/fladiff/internal/host"
	"github.com/born-ml/fladiff/internal/optim"
	"github.com/born-ml/fladiff/internal/scalar"
	"github.com/born-ml/fladiff/internal/script"
	"github.com/born-ml/fladiff/internal/store"
)

// ErrUnknownFunction is returned for names that were never defined.
var ErrUnknownFunction = errors.New("session: unknown function")

// ErrBuiltin is returned when removing or redefining a built-in function.
var ErrBuiltin = errors.New("session: built-in function")

// Function is a named target function.
type Function struct {
	Name    string
	Source  string // Empty for built-ins.
	Inputs  int
	Vector  bool // Inputs is a lower bound rather than an exact count.
	Builtin bool
	Func    scalar.Func
}

// Config configures a Session. Zero Eval and Minimize values select the
// defaults.
type Config struct {
	Eval     eval.Options
	Minimize optim.MinimizeConfig
	Store    *store.Store   // Optional.
	Logger   *logrus.Logger // Defaults to the standard logger.
}

// Session is a set of named functions plus the evaluator that serves them.
type Session struct {
	mu       sync.RWMutex
	funcs    map[string]*Function
	eval     *eval.Evaluator
	minimize optim.MinimizeConfig
	store    *store.Store
	log      *logrus.Entry
}

// New creates a session preloaded with the built-in rosenbrock function and,
// when a store is configured, every stored function.
func New(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.Eval == (eval.Options{}) {
		cfg.Eval = eval.DefaultOptions()
	}
	if cfg.Minimize == (optim.MinimizeConfig{}) {
		cfg.Minimize = optim.DefaultConfig()
	}

	s := &Session{
		funcs:    make(map[string]*Function),
		eval:     eval.New(eval.WithOptions(cfg.Eval)),
		minimize: cfg.Minimize,
		store:    cfg.Store,
		log:      logger.WithField("component", "session"),
	}

	s.funcs["rosenbrock"] = &Function{
		Name:    "rosenbrock",
		Inputs:  2,
		Builtin: true,
		Func:    scalar.Rosenbrock,
	}

	if s.store != nil {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) load() error {
	stored, err := s.store.List()
	if err != nil {
		return fmt.Errorf("session: load library: %w", err)
	}
	for _, sf := range stored {
		prog, err := script.Compile(sf.Source)
		if err != nil {
			s.log.WithFields(logrus.Fields{"function": sf.Name, "error": err}).Warn("skipping stored function")
			continue
		}
		s.funcs[sf.Name] = fromProgram(sf.Name, prog)
	}
	s.log.WithField("count", len(stored)).Info("function library loaded")
	return nil
}

func fromProgram(name string, prog *script.Program) *Function {
	return &Function{
		Name:   name,
		Source: prog.Source,
		Inputs: prog.Inputs,
		Vector: prog.Vector,
		Func:   prog.Func,
	}
}

// Evaluator returns the evaluator used by the session.
func (s *Session) Evaluator() *eval.Evaluator {
	return s.eval
}

// Define compiles src and registers it under name, or under the declared
// function name when name is empty. An existing non-builtin definition is
// replaced.
func (s *Session) Define(name, src string) (*Function, error) {
	prog, err := script.Compile(src)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = prog.Name
	}
	if name == "" {
		return nil, errors.New("session: anonymous function needs a name")
	}

	fn := fromProgram(name, prog)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.funcs[name]; ok && old.Builtin {
		return nil, fmt.Errorf("%w: %s", ErrBuiltin, name)
	}
	if s.store != nil {
		if _, err := s.store.Save(name, src, fn.Inputs); err != nil {
			return nil, err
		}
	}
	s.funcs[name] = fn

	s.log.WithFields(logrus.Fields{"function": name, "inputs": fn.Inputs}).Info("function defined")
	return fn, nil
}

// Lookup returns the function called name.
func (s *Session) Lookup(name string) (*Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn, ok := s.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return fn, nil
}

// List returns all functions ordered by name.
func (s *Session) List() []*Function {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Function, 0, len(s.funcs))
	for _, fn := range s.funcs {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Remove deletes the function called name.
func (s *Session) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn, ok := s.funcs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if fn.Builtin {
		return fmt.Errorf("%w: %s", ErrBuiltin, name)
	}
	if s.store != nil {
		if err := s.store.Delete(name); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	delete(s.funcs, name)

	s.log.WithField("function", name).Info("function removed")
	return nil
}

// Evaluate returns the outputs of name at x.
func (s *Session) Evaluate(name string, x []float64) ([]float64, error) {
	fn, err := s.prepare(name, x)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	values, err := s.eval.Evaluate(fn.Func, x)
	s.finish(fn, "evaluate", x, values, start, err)
	return values, err
}

// Gradient returns the Jacobian of name at x.
func (s *Session) Gradient(name string, x []float64) (*mat.Dense, error) {
	fn, err := s.prepare(name, x)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	jac, err := s.eval.Gradient(fn.Func, x)
	var rows [][]float64
	if err == nil {
		rows = host.Rows(jac)
	}
	s.finish(fn, "gradient", x, rows, start, err)
	return jac, err
}

// Hessian returns the Hessian of output k of name at x.
func (s *Session) Hessian(name string, x []float64, k int) (*mat.SymDense, error) {
	fn, err := s.prepare(name, x)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	h, err := s.eval.Hessian(fn.Func, x, k)
	var rows [][]float64
	if err == nil {
		rows = host.Rows(h)
	}
	s.finish(fn, "hessian", x, rows, start, err)
	return h, err
}

// Check cross-checks the AD gradient of output k of name against finite
// differences.
func (s *Session) Check(name string, x []float64, k int) (*eval.CheckReport, error) {
	fn, err := s.prepare(name, x)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := s.eval.Check(fn.Func, x, k)
	s.finish(fn, "check", x, report, start, err)
	return report, err
}

// Minimize minimizes output k of name from x0 with the AD gradient.
func (s *Session) Minimize(ctx context.Context, name string, x0 []float64, k int) (*optim.Result, error) {
	fn, err := s.prepare(name, x0)
	if err != nil {
		return nil, err
	}

	// Fail on the starting point before handing NaNs to the minimizer.
	if err := s.checkStart(fn, x0, k); err != nil {
		s.finish(fn, "minimize", x0, nil, time.Now(), err)
		return nil, err
	}

	start := time.Now()
	res, err := optim.Minimize(ctx, s.eval.Objective(fn.Func, k), s.eval.GradientFunc(fn.Func, k), x0, s.minimize)
	s.finish(fn, "minimize", x0, res, start, err)
	return res, err
}

// checkStart verifies that output k exists and that its value and gradient
// are finite at x0.
func (s *Session) checkStart(fn *Function, x0 []float64, k int) error {
	jac, err := s.eval.Gradient(fn.Func, x0)
	if err != nil {
		return err
	}
	if r, _ := jac.Dims(); k < 0 || k >= r {
		return fmt.Errorf("%w: %d not in [0, %d)", eval.ErrOutputIndex, k, r)
	}
	return nil
}

// Runs returns the logged runs of name, newest first. It returns nil without
// a store.
func (s *Session) Runs(name string, limit int) ([]*store.Run, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Runs(name, limit)
}

func (s *Session) prepare(name string, x []float64) (*Function, error) {
	fn, err := s.Lookup(name)
	if err != nil {
		return nil, err
	}
	switch {
	case fn.Vector && len(x) < fn.Inputs:
		return nil, fmt.Errorf("%w: %s reads %d inputs, got %d", script.ErrInputs, name, fn.Inputs, len(x))
	case !fn.Vector && len(x) != fn.Inputs:
		return nil, fmt.Errorf("%w: %s takes %d inputs, got %d", script.ErrInputs, name, fn.Inputs, len(x))
	}
	return fn, nil
}

func (s *Session) finish(fn *Function, kind string, x []float64, result any, start time.Time, err error) {
	entry := s.log.WithFields(logrus.Fields{
		"function": fn.Name,
		"kind":     kind,
		"elapsed":  time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return
	}
	entry.Debug("request done")

	if s.store == nil || fn.Builtin {
		return
	}
	if _, err := s.store.RecordRun(fn.Name, kind, x, result); err != nil {
		entry.WithError(err).Warn("could not record run")
	}
}
