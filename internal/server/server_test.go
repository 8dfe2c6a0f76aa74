package server

import (
	"context"
	"io"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fladiff/internal/session"
)

const bananaSource = `function banana(x) { return 100 * Math.pow(x[1] - x[0] * x[0], 2) + Math.pow(1 - x[0], 2); }`

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sess, err := session.New(session.Config{Logger: logger})
	require.NoError(t, err)
	return sess
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func call(t *testing.T, tool Tool, args map[string]interface{}) (string, bool) {
	t.Helper()
	res, err := tool.Handle(context.Background(), makeReq(args))
	require.NoError(t, err)
	return resultText(res), res.IsError
}

func TestTools_Definitions(t *testing.T) {
	want := []string{
		"define_function", "list_functions", "evaluate", "gradient",
		"hessian", "check_gradient", "minimize",
	}

	tools := Tools(newTestSession(t))
	require.Len(t, tools, len(want))
	for i, tool := range tools {
		def := tool.Definition()
		assert.Equal(t, want[i], def.Name)
		assert.NotEmpty(t, def.Description)
	}

	grad := NewGradientTool(nil).Definition()
	assert.Contains(t, grad.InputSchema.Properties, "point")
	assert.ElementsMatch(t, []string{"name", "point"}, grad.InputSchema.Required)
}

func TestTools_BananaWorkflow(t *testing.T) {
	sess := newTestSession(t)

	text, isErr := call(t, NewDefineTool(sess), map[string]interface{}{"source": bananaSource})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Defined banana")

	text, isErr = call(t, NewEvaluateTool(sess), map[string]interface{}{"name": "banana", "point": "c(-1.2, 1)"})
	require.False(t, isErr, text)
	assert.Equal(t, "c(24.2)", text)

	text, isErr = call(t, NewGradientTool(sess), map[string]interface{}{"name": "banana", "point": []interface{}{-1.2, 1.0}})
	require.False(t, isErr, text)
	assert.Equal(t, "c(-215.6, -88)", text)

	text, isErr = call(t, NewHessianTool(sess), map[string]interface{}{"name": "banana", "point": "[-1.2, 1]", "output": 0.0})
	require.False(t, isErr, text)
	assert.Contains(t, text, "1330")
	assert.Contains(t, text, "480")

	text, isErr = call(t, NewCheckTool(sess), map[string]interface{}{"name": "banana", "point": "-1.2 1"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "ok:")

	text, isErr = call(t, NewMinimizeTool(sess), map[string]interface{}{"name": "banana", "start": "c(-1.2, 1)"})
	require.False(t, isErr, text)
	assert.Regexp(t, `par: c\((1|0\.9999)`, text)
	assert.Contains(t, text, "status:")

	text, isErr = call(t, NewListTool(sess), nil)
	require.False(t, isErr, text)
	assert.Contains(t, text, "banana")
	assert.Contains(t, text, "rosenbrock")
}

func TestTools_Errors(t *testing.T) {
	sess := newTestSession(t)

	tests := []struct {
		name string
		tool Tool
		args map[string]interface{}
		want string
	}{
		{"missing source", NewDefineTool(sess), map[string]interface{}{}, "'source' is required"},
		{"bad source", NewDefineTool(sess), map[string]interface{}{"source": "function f(x) { return x % 2; }"}, "unsupported"},
		{"missing name", NewEvaluateTool(sess), map[string]interface{}{"point": "1"}, "'name' is required"},
		{"missing point", NewEvaluateTool(sess), map[string]interface{}{"name": "rosenbrock"}, "'point' is required"},
		{"bad point", NewGradientTool(sess), map[string]interface{}{"name": "rosenbrock", "point": "c(1, x)"}, "not a number"},
		{"unknown function", NewHessianTool(sess), map[string]interface{}{"name": "nope", "point": "1 2"}, "unknown function"},
		{"bad output", NewHessianTool(sess), map[string]interface{}{"name": "rosenbrock", "point": "1 2", "output": 3.0}, "output"},
		{"missing start", NewMinimizeTool(sess), map[string]interface{}{"name": "rosenbrock"}, "'start' is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tt.tool, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestNew_RegistersTools(t *testing.T) {
	require.NotNil(t, New(newTestSession(t)))
}
