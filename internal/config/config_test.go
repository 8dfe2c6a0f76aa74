package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fladiff/internal/config"
	"github.com/born-ml/fladiff/internal/eval"
	"github.com/born-ml/fladiff/internal/optim"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fladiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	opts := cfg.EvalOptions()
	assert.Equal(t, 1e-8, opts.Tolerance)
	assert.Equal(t, eval.Reverse, opts.HessianMode)
	assert.Equal(t, optim.BFGS, cfg.MinimizeConfig().Method)
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
	assert.Empty(t, cfg.Store.Path)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
tolerance: 1e-6
hessian_mode: forward
optimizer:
  method: lbfgs
  max_iter: 50
parallel:
  workers: 1
store:
  path: /tmp/functions.db
log_level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1e-6, cfg.Tolerance)
	assert.Equal(t, 1e-6, cfg.FDStep, "unset keys keep defaults")
	assert.Equal(t, "reverse", cfg.JacobianMode)

	opts := cfg.EvalOptions()
	assert.Equal(t, eval.Forward, opts.HessianMode)
	assert.False(t, opts.Parallel.Enabled)

	mc := cfg.MinimizeConfig()
	assert.Equal(t, optim.LBFGS, mc.Method)
	assert.Equal(t, 50, mc.MaxIter)
	assert.Equal(t, 1e-8, mc.GradTol)

	assert.Equal(t, "/tmp/functions.db", cfg.Store.Path)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := config.Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg, err := config.Load(writeFile(t, "store:\n  path: ~/lib.db\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "lib.db"), cfg.Store.Path)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "tolerance: [1, 2"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"tolerance", func(c *config.Config) { c.Tolerance = 0 }, "tolerance must be positive"},
		{"check tolerance", func(c *config.Config) { c.CheckTolerance = -1 }, "check_tolerance"},
		{"fd step", func(c *config.Config) { c.FDStep = 0 }, "fd_step"},
		{"jacobian mode", func(c *config.Config) { c.JacobianMode = "sideways" }, "jacobian_mode"},
		{"hessian mode", func(c *config.Config) { c.HessianMode = "" }, "hessian_mode"},
		{"method", func(c *config.Config) { c.Optimizer.Method = "newton" }, "optimizer.method"},
		{"max iter", func(c *config.Config) { c.Optimizer.MaxIter = -1 }, "optimizer.max_iter"},
		{"workers", func(c *config.Config) { c.Parallel.Workers = -2 }, "parallel"},
		{"log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
