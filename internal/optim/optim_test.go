package optim_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fladiff/internal/eval"
	"github.com/born-ml/fladiff/internal/optim"
	"github.com/born-ml/fladiff/internal/scalar"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// quadGrad is the gradient of f(x) = sum((x_i - 3)^2).
func quadGrad(grad, x []float64) {
	for i := range x {
		grad[i] = 2 * (x[i] - 3)
	}
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.1})

	x := []float64{2.0}
	sgd.Step(x, []float64{1.0})

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	if !floatEqual(x[0], 1.9, 1e-12) {
		t.Errorf("SGD update: got %f, want %f", x[0], 1.9)
	}
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	x := []float64{1.0}

	// Step 1: v = 1, x = 1 - 0.1 = 0.9
	sgd.Step(x, []float64{1.0})
	if !floatEqual(x[0], 0.9, 1e-12) {
		t.Errorf("step 1: got %f, want 0.9", x[0])
	}

	// Step 2: v = 0.9 + 1 = 1.9, x = 0.9 - 0.19 = 0.71
	sgd.Step(x, []float64{1.0})
	if !floatEqual(x[0], 0.71, 1e-12) {
		t.Errorf("step 2: got %f, want 0.71", x[0])
	}

	state := sgd.StateDict()
	if !floatEqual(state["velocity"][0], 1.9, 1e-12) {
		t.Errorf("velocity: got %v, want [1.9]", state["velocity"])
	}

	restored := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	if err := restored.LoadStateDict(state, 1); err != nil {
		t.Fatalf("LoadStateDict: %v", err)
	}
	y := []float64{x[0]}
	restored.Step(y, []float64{1.0})
	sgd.Step(x, []float64{1.0})
	if x[0] != y[0] {
		t.Errorf("restored stepper diverged: %f vs %f", y[0], x[0])
	}

	if err := restored.LoadStateDict(state, 2); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestSGD_GetSetLR(t *testing.T) {
	sgd := optim.NewSGD(optim.SGDConfig{})
	if sgd.GetLR() != 0.01 {
		t.Errorf("default LR: got %f, want 0.01", sgd.GetLR())
	}
	sgd.SetLR(0.5)
	if sgd.GetLR() != 0.5 {
		t.Errorf("SetLR: got %f, want 0.5", sgd.GetLR())
	}
}

// TestAdam_SimpleUpdate checks that the first bias-corrected step has
// magnitude lr in the direction of -sign(grad).
func TestAdam_SimpleUpdate(t *testing.T) {
	adam := optim.NewAdam(optim.AdamConfig{LR: 0.1})

	x := []float64{1.0, 1.0}
	adam.Step(x, []float64{4.0, -0.01})

	if !floatEqual(x[0], 0.9, 1e-6) {
		t.Errorf("x[0]: got %f, want 0.9", x[0])
	}
	if !floatEqual(x[1], 1.1, 1e-5) {
		t.Errorf("x[1]: got %f, want 1.1", x[1])
	}
	if adam.GetTimestep() != 1 {
		t.Errorf("timestep: got %d, want 1", adam.GetTimestep())
	}

	adam.Reset()
	if adam.GetTimestep() != 0 {
		t.Errorf("timestep after Reset: got %d, want 0", adam.GetTimestep())
	}
}

func TestAdam_Defaults(t *testing.T) {
	adam := optim.NewAdam(optim.AdamConfig{})
	if adam.GetLR() != 0.001 {
		t.Errorf("default LR: got %f, want 0.001", adam.GetLR())
	}
}

// TestConvergence_SimpleQuadratic drives both steppers to the minimum of
// sum((x_i - 3)^2).
func TestConvergence_SimpleQuadratic(t *testing.T) {
	steppers := map[string]optim.Stepper{
		"sgd":          optim.NewSGD(optim.SGDConfig{LR: 0.1}),
		"sgd-momentum": optim.NewSGD(optim.SGDConfig{LR: 0.05, Momentum: 0.5}),
		"adam":         optim.NewAdam(optim.AdamConfig{LR: 0.1}),
	}

	for name, s := range steppers {
		t.Run(name, func(t *testing.T) {
			x, err := optim.Descend(context.Background(), s, quadGrad, []float64{0, 10}, 2000)
			require.NoError(t, err)
			assert.InDelta(t, 3.0, x[0], 1e-2)
			assert.InDelta(t, 3.0, x[1], 1e-2)
		})
	}
}

func TestDescend_DoesNotModifyStart(t *testing.T) {
	x0 := []float64{0, 0}
	_, err := optim.Descend(context.Background(), optim.NewSGD(optim.SGDConfig{LR: 0.1}), quadGrad, x0, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, x0)
}

func TestDescend_NonFiniteGradient(t *testing.T) {
	nan := func(grad, x []float64) {
		grad[0] = math.NaN()
	}
	_, err := optim.Descend(context.Background(), optim.NewSGD(optim.SGDConfig{}), nan, []float64{1}, 5)
	require.ErrorIs(t, err, optim.ErrNonFinite)
}

func TestDescend_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := optim.Descend(ctx, optim.NewSGD(optim.SGDConfig{}), quadGrad, []float64{1}, 5)
	require.ErrorIs(t, err, context.Canceled)
}

func rosenbrockValue(x []float64) float64 {
	a, b := 1-x[0], x[1]-x[0]*x[0]
	return a*a + 100*b*b
}

// TestMinimize_BananaADMatchesHandGradient runs BFGS from (-1.2, 1) with the
// AD gradient and with the hand-derived gradient.
func TestMinimize_BananaADMatchesHandGradient(t *testing.T) {
	e := eval.New()
	x0 := []float64{-1.2, 1}
	cfg := optim.DefaultConfig()

	ad, err := optim.Minimize(context.Background(), e.Objective(scalar.Rosenbrock, 0), e.GradientFunc(scalar.Rosenbrock, 0), x0, cfg)
	require.NoError(t, err)

	hand, err := optim.Minimize(context.Background(), rosenbrockValue, scalar.RosenbrockGrad, x0, cfg)
	require.NoError(t, err)

	for _, res := range []*optim.Result{ad, hand} {
		assert.InDelta(t, 1.0, res.X[0], 1e-4)
		assert.InDelta(t, 1.0, res.X[1], 1e-4)
		assert.Less(t, res.F, 1e-9)
		assert.Positive(t, res.Iterations)
	}
	assert.InDelta(t, hand.X[0], ad.X[0], 1e-6)
	assert.InDelta(t, hand.X[1], ad.X[1], 1e-6)
	assert.Equal(t, []float64{-1.2, 1}, x0)
}

func TestMinimize_Methods(t *testing.T) {
	e := eval.New()
	f := e.Objective(scalar.Rosenbrock, 0)
	grad := e.GradientFunc(scalar.Rosenbrock, 0)

	for _, m := range []optim.Method{optim.BFGS, optim.LBFGS, optim.NelderMead} {
		t.Run(string(m), func(t *testing.T) {
			cfg := optim.DefaultConfig()
			cfg.Method = m
			cfg.MaxIter = 0
			res, err := optim.Minimize(context.Background(), f, grad, []float64{-1.2, 1}, cfg)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, res.X[0], 1e-3)
			assert.InDelta(t, 1.0, res.X[1], 1e-3)
		})
	}
}

func TestMinimize_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := optim.Minimize(ctx, rosenbrockValue, nil, []float64{-1.2, 1}, optim.DefaultConfig())
	require.Error(t, err)

	_, err = optim.Minimize(ctx, rosenbrockValue, scalar.RosenbrockGrad, nil, optim.DefaultConfig())
	require.Error(t, err)

	_, err = optim.Minimize(ctx, rosenbrockValue, scalar.RosenbrockGrad, []float64{0, 0}, optim.MinimizeConfig{Method: "newton"})
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = optim.Minimize(cancelled, rosenbrockValue, scalar.RosenbrockGrad, []float64{-1.2, 1}, optim.DefaultConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseMethod(t *testing.T) {
	m, err := optim.ParseMethod("lbfgs")
	require.NoError(t, err)
	assert.Equal(t, optim.LBFGS, m)
	assert.False(t, optim.NelderMead.NeedsGradient())

	_, err = optim.ParseMethod("newton")
	require.Error(t, err)
}
