package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fladiff/internal/session"
	"github.com/born-ml/fladiff/internal/store"
)

const bananaSource = `function banana(x) { return 100 * Math.pow(x[1] - x[0] * x[0], 2) + Math.pow(1 - x[0], 2); }`

func testSession(t *testing.T, st *store.Store) *session.Session {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sess, err := session.New(session.Config{Store: st, Logger: logger})
	require.NoError(t, err)
	return sess
}

// capture redirects command output for the duration of the test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := out
	out = buf
	t.Cleanup(func() { out = prev })
	return buf
}

func TestDispatch_Builtin(t *testing.T) {
	buf := capture(t)
	sess := testSession(t, nil)

	require.NoError(t, dispatch("eval rosenbrock c(-1.2, 1)", sess))
	assert.Equal(t, "c(24.2)\n", buf.String())

	buf.Reset()
	require.NoError(t, dispatch("G rosenbrock c(-1.2, 1)", sess))
	assert.Contains(t, buf.String(), "-215.6")
	assert.Contains(t, buf.String(), "-88")

	buf.Reset()
	require.NoError(t, dispatch("hess rosenbrock c(-1.2, 1) @0", sess))
	assert.Contains(t, buf.String(), "1330")
	assert.Contains(t, buf.String(), "480")
	assert.Contains(t, buf.String(), "200")

	buf.Reset()
	require.NoError(t, dispatch("check rosenbrock -1.2 1", sess))
	assert.Contains(t, buf.String(), "ok:")
	assert.Contains(t, buf.String(), "ad: c(-215.6, -88)")
}

func TestDispatch_DefineAndMinimize(t *testing.T) {
	buf := capture(t)
	sess := testSession(t, nil)

	require.NoError(t, dispatch("def "+bananaSource, sess))
	assert.Equal(t, "defined banana (2 inputs)\n", buf.String())

	buf.Reset()
	require.NoError(t, dispatch("ls", sess))
	assert.Contains(t, buf.String(), "banana")
	assert.Contains(t, buf.String(), "builtin")

	buf.Reset()
	require.NoError(t, dispatch("min banana c(-1.2, 1)", sess))
	assert.Regexp(t, `par:\s+c\((1|0\.9999)`, buf.String())
	assert.Contains(t, buf.String(), "status:")

	require.NoError(t, dispatch("rm banana", sess))
	_, err := sess.Lookup("banana")
	require.ErrorIs(t, err, session.ErrUnknownFunction)
}

func TestDispatch_Errors(t *testing.T) {
	capture(t)
	sess := testSession(t, nil)

	tests := []struct {
		name string
		cmd  string
		want string
	}{
		{"unknown command", "frobnicate", "command not found"},
		{"unknown function", "eval nope 1 2", "unknown function"},
		{"bad point", "eval rosenbrock c(1, x)", "not a number"},
		{"bad source", "def function f(x) { return x % 2; }", "unsupported"},
		{"output out of range", "hess rosenbrock 1 2 @4", "output"},
		{"builtin removal", "rm rosenbrock", "built-in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dispatch(tt.cmd, sess)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDispatch_Info(t *testing.T) {
	buf := capture(t)
	sess := testSession(t, nil)

	require.NoError(t, dispatch("info", sess))
	assert.Contains(t, buf.String(), "host memory")
	assert.Contains(t, buf.String(), version)

	buf.Reset()
	require.NoError(t, dispatch("HELP", sess))
	assert.Contains(t, buf.String(), "MIN <NAME> <START> [@OUTPUT]")
}

func TestDispatch_Runs(t *testing.T) {
	buf := capture(t)
	st, err := store.New(filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	sess := testSession(t, st)

	require.NoError(t, dispatch("def "+bananaSource, sess))
	require.NoError(t, dispatch("eval banana 1 1", sess))
	require.NoError(t, dispatch("grad banana 1 1", sess))

	buf.Reset()
	require.NoError(t, dispatch("runs banana", sess))
	assert.Contains(t, buf.String(), "evaluate")
	assert.Contains(t, buf.String(), "gradient")
}

func TestSplitCommands(t *testing.T) {
	assert.Equal(t, []string{"eval rosenbrock 1 1", "ls"}, splitCommands("eval rosenbrock 1 1; ls"))
	assert.Equal(t, []string{"def " + bananaSource}, splitCommands("def "+bananaSource))
}

func TestRunLine(t *testing.T) {
	buf := capture(t)
	sess := testSession(t, nil)

	assert.False(t, runLine("eval nope 1; eval rosenbrock 1 1", sess))
	assert.Contains(t, buf.String(), "unknown function")
	assert.Contains(t, buf.String(), "c(0)")

	assert.True(t, runLine("ls; quit; eval rosenbrock 1 1", sess))
}

func TestResolve(t *testing.T) {
	sess := testSession(t, nil)

	name, x, err := resolve(sess, "rosenbrock", "c(1, 2)")
	require.NoError(t, err)
	assert.Equal(t, "rosenbrock", name)
	assert.Equal(t, []float64{1, 2}, x)

	name, _, err = resolve(sess, bananaSource, "1 2")
	require.NoError(t, err)
	assert.Equal(t, "banana", name)

	path := filepath.Join(t.TempDir(), "cube.js")
	require.NoError(t, os.WriteFile(path, []byte("function cube(x) { return x[0] * x[0] * x[0]; }"), 0o644))
	name, _, err = resolve(sess, path, "2")
	require.NoError(t, err)
	assert.Equal(t, "cube", name)

	_, _, err = resolve(sess, "rosenbrock", "c(1, ")
	require.Error(t, err)
}
