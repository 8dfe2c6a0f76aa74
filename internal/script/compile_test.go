package script_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fladiff/internal/backend/cpu"
	"github.com/born-ml/fladiff/internal/eval"
	"github.com/born-ml/fladiff/internal/script"
	"github.com/born-ml/fladiff/internal/scalar"
)

const bananaSource = `
function banana(x) {
	return 100 * Math.pow(x[1] - x[0] * x[0], 2) + Math.pow(1 - x[0], 2);
}`

func run(t *testing.T, prog *script.Program, x ...float64) []float64 {
	t.Helper()
	b := cpu.New()
	return scalar.Floats(prog.Func(b, scalar.Consts(b, x)))
}

func TestCompile_Banana(t *testing.T) {
	prog, err := script.Compile(bananaSource)
	require.NoError(t, err)

	assert.Equal(t, "banana", prog.Name)
	assert.Equal(t, []string{"x"}, prog.Params)
	assert.True(t, prog.Vector)
	assert.Equal(t, 2, prog.Inputs)

	assert.InDelta(t, 24.2, run(t, prog, -1.2, 1)[0], 1e-12)

	e := eval.New()
	jac, err := e.Gradient(prog.Func, []float64{-1.2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -215.6, jac.At(0, 0), 1e-10)
	assert.InDelta(t, -88.0, jac.At(0, 1), 1e-10)

	h, err := e.Hessian(prog.Func, []float64{-1.2, 1}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1330.0, h.At(0, 0), 1e-9)
	assert.InDelta(t, 480.0, h.At(0, 1), 1e-9)
	assert.InDelta(t, 200.0, h.At(1, 1), 1e-9)
}

func TestCompile_ScalarParams(t *testing.T) {
	prog, err := script.Compile(`function f(a, b) { var s = a * b; s += Math.sin(b); return s; }`)
	require.NoError(t, err)

	assert.False(t, prog.Vector)
	assert.Equal(t, 2, prog.Inputs)
	assert.InDelta(t, 6+math.Sin(3), run(t, prog, 2, 3)[0], 1e-15)
}

func TestCompile_VectorReturn(t *testing.T) {
	prog, err := script.Compile(`function f(x) { return [x[0] * x[1], -x[2], Math.PI, Math.E]; }`)
	require.NoError(t, err)

	assert.Equal(t, 3, prog.Inputs)
	assert.Equal(t, []float64{6, -4, math.Pi, math.E}, run(t, prog, 2, 3, 4))
}

func TestCompile_MathFunctions(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"function f(x) { return Math.exp(x); }", 0.5, math.Exp(0.5)},
		{"function f(x) { return Math.log(x); }", 2, math.Ln2},
		{"function f(x) { return Math.sqrt(x); }", 9, 3},
		{"function f(x) { return Math.cos(x); }", 0, 1},
		{"function f(x) { return Math.tan(x); }", 0.3, math.Tan(0.3)},
		{"function f(x) { return Math.tanh(x); }", 0.3, math.Tanh(0.3)},
		{"function f(x) { return Math.abs(x); }", -4, 4},
		{"function f(x) { return Math.pow(x, -1); }", 4, 0.25},
		{"function f(x) { return Math.pow(2, x); }", 3, 8},
		{"function f(x) { return Math.min(x, 1); }", 3, 1},
		{"function f(x) { return Math.max(x, 1); }", 3, 3},
		{"function f(x) { return +x / 2; }", 3, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, err := script.Compile(tt.src)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, run(t, prog, tt.x)[0], 1e-15)
		})
	}
}

func TestCompile_Branches(t *testing.T) {
	prog, err := script.Compile(`
function huber(x) {
	var a = Math.abs(x);
	if (a <= 1) {
		return 0.5 * x * x;
	} else if (a > 1 && !(a > 100)) {
		return a - 0.5;
	}
	return x > 0 ? 99.5 : -1;
}`)
	require.NoError(t, err)

	assert.Equal(t, 0.125, run(t, prog, 0.5)[0])
	assert.Equal(t, 2.5, run(t, prog, -3)[0])
	assert.Equal(t, 99.5, run(t, prog, 200)[0])
	assert.Equal(t, -1.0, run(t, prog, -200)[0])

	jac, err := eval.New().Gradient(prog.Func, []float64{-3})
	require.NoError(t, err)
	assert.Equal(t, -1.0, jac.At(0, 0))
}

func TestCompile_UndefinedVariableIsNaN(t *testing.T) {
	prog, err := script.Compile(`function f(x) { var y; return x + y; }`)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(run(t, prog, 1)[0]))
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := script.Compile(`function f(x) { return x[0] + ; }`)
	var syntaxErr *script.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)

	_, err = script.Compile(`var x = 1;`)
	require.ErrorAs(t, err, &syntaxErr)
}

func TestCompile_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"loop", "function f(x) { while (x[0] > 0) {} return 1; }"},
		{"string", `function f(x) { return "a"; }`},
		{"variable index", "function f(x) { var i = 0; return x[i]; }"},
		{"unknown call", "function f(x) { return Math.random(); }"},
		{"global", "function f(x) { return y; }"},
		{"assign param", "function f(a, b) { a = 2; return a; }"},
		{"bare vector", "function f(x) { return x[0] + x; }"},
		{"modulo", "function f(a) { return a % 2; }"},
		{"arity", "function f(x) { return Math.pow(x); }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := script.Compile(tt.src)
			var unsupported *script.UnsupportedError
			require.ErrorAs(t, err, &unsupported)
			assert.GreaterOrEqual(t, unsupported.Offset, 0)
		})
	}
}

func TestProgram_Runtime(t *testing.T) {
	prog, err := script.Compile(bananaSource)
	require.NoError(t, err)

	_, err = eval.New().Evaluate(prog.Func, []float64{1})
	require.ErrorIs(t, err, script.ErrInputs)

	noReturn, err := script.Compile(`function f(x) { if (x > 0) { return 1; } }`)
	require.NoError(t, err)
	_, err = eval.New().Evaluate(noReturn.Func, []float64{-1})
	require.ErrorIs(t, err, script.ErrNoReturn)
}

func TestProgram_InputCount(t *testing.T) {
	e := eval.New()

	scalars, err := script.Compile(`function f(a, b) { return a * b; }`)
	require.NoError(t, err)
	assert.False(t, scalars.Vector)

	values, err := e.Evaluate(scalars.Func, []float64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, values)

	_, err = e.Evaluate(scalars.Func, []float64{2, 3, 99})
	require.ErrorIs(t, err, script.ErrInputs)
	_, err = e.Evaluate(scalars.Func, []float64{2})
	require.ErrorIs(t, err, script.ErrInputs)

	vector, err := script.Compile(bananaSource)
	require.NoError(t, err)
	assert.True(t, vector.Vector)

	// Trailing inputs of a vector parameter are unread.
	values, err = e.Evaluate(vector.Func, []float64{1, 1, 99})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, values)
}
