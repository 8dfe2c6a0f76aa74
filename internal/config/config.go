// Package config loads the fladiff settings file.
//
// Settings are YAML. Missing keys keep their defaults, so an empty file is a
// valid configuration:
//
//	tolerance: 1e-8
//	hessian_mode: forward
//	optimizer:
//	  method: lbfgs
//	store:
//	  path: ~/.fladiff/functions.db
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/fladiff/internal/eval"
	"github.com/born-ml/fladiff/internal/optim"
	"github.com/born-ml/fladiff/internal/parallel"
)

// Config is the full settings tree.
type Config struct {
	Tolerance      float64         `yaml:"tolerance"`
	CheckTolerance float64         `yaml:"check_tolerance"`
	FDStep         float64         `yaml:"fd_step"`
	JacobianMode   string          `yaml:"jacobian_mode"`
	HessianMode    string          `yaml:"hessian_mode"`
	Optimizer      OptimizerConfig `yaml:"optimizer"`
	Parallel       ParallelConfig  `yaml:"parallel"`
	Store          StoreConfig     `yaml:"store"`
	LogLevel       string          `yaml:"log_level"`
}

// OptimizerConfig selects the minimizer.
type OptimizerConfig struct {
	Method  string  `yaml:"method"`
	GradTol float64 `yaml:"grad_tol"`
	MaxIter int     `yaml:"max_iter"`
}

// ParallelConfig bounds batch evaluation workers. Workers <= 1 disables
// parallelism.
type ParallelConfig struct {
	Workers  int `yaml:"workers"`
	MinChunk int `yaml:"min_chunk"`
}

// StoreConfig locates the function library. An empty path disables
// persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in settings.
func Default() Config {
	opts := eval.DefaultOptions()
	opt := optim.DefaultConfig()
	return Config{
		Tolerance:      opts.Tolerance,
		CheckTolerance: opts.CheckTolerance,
		FDStep:         opts.FDStep,
		JacobianMode:   string(opts.JacobianMode),
		HessianMode:    string(opts.HessianMode),
		Optimizer: OptimizerConfig{
			Method:  string(opt.Method),
			GradTol: opt.GradTol,
			MaxIter: opt.MaxIter,
		},
		Parallel: ParallelConfig{
			Workers:  runtime.NumCPU(),
			MinChunk: opts.Parallel.MinChunkSize,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and enum values.
func (c Config) Validate() error {
	var errs []error

	if c.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %g", c.Tolerance))
	}
	if c.CheckTolerance <= 0 {
		errs = append(errs, fmt.Errorf("check_tolerance must be positive, got %g", c.CheckTolerance))
	}
	if c.FDStep <= 0 {
		errs = append(errs, fmt.Errorf("fd_step must be positive, got %g", c.FDStep))
	}
	if _, err := eval.ParseMode(c.JacobianMode); err != nil {
		errs = append(errs, fmt.Errorf("jacobian_mode: %w", err))
	}
	if _, err := eval.ParseMode(c.HessianMode); err != nil {
		errs = append(errs, fmt.Errorf("hessian_mode: %w", err))
	}
	if _, err := optim.ParseMethod(c.Optimizer.Method); err != nil {
		errs = append(errs, fmt.Errorf("optimizer.method: %w", err))
	}
	if c.Optimizer.GradTol < 0 {
		errs = append(errs, fmt.Errorf("optimizer.grad_tol must not be negative, got %g", c.Optimizer.GradTol))
	}
	if c.Optimizer.MaxIter < 0 {
		errs = append(errs, fmt.Errorf("optimizer.max_iter must not be negative, got %d", c.Optimizer.MaxIter))
	}
	if c.Parallel.Workers < 0 || c.Parallel.MinChunk < 0 {
		errs = append(errs, errors.New("parallel settings must not be negative"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(errs...)
}

// EvalOptions converts the settings to evaluator options. c must be valid.
func (c Config) EvalOptions() eval.Options {
	jac, _ := eval.ParseMode(c.JacobianMode)
	hess, _ := eval.ParseMode(c.HessianMode)
	return eval.Options{
		Tolerance:      c.Tolerance,
		CheckTolerance: c.CheckTolerance,
		FDStep:         c.FDStep,
		JacobianMode:   jac,
		HessianMode:    hess,
		Parallel: parallel.Config{
			Enabled:      c.Parallel.Workers > 1,
			NumWorkers:   c.Parallel.Workers,
			MinChunkSize: c.Parallel.MinChunk,
		},
	}
}

// MinimizeConfig converts the optimizer settings. c must be valid.
func (c Config) MinimizeConfig() optim.MinimizeConfig {
	method, _ := optim.ParseMethod(c.Optimizer.Method)
	return optim.MinimizeConfig{
		Method:  method,
		GradTol: c.Optimizer.GradTol,
		MaxIter: c.Optimizer.MaxIter,
	}
}

// Level returns the logrus level, defaulting to info.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
