package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/born-ml/fladiff/internal/host"
	"github.com/born-ml/fladiff/internal/session"
)

// EvaluateTool handles the evaluate MCP tool.
type EvaluateTool struct {
	sess *session.Session
}

// NewEvaluateTool creates an EvaluateTool.
func NewEvaluateTool(sess *session.Session) *EvaluateTool {
	return &EvaluateTool{sess: sess}
}

// Definition returns the MCP tool definition for evaluate.
func (t *EvaluateTool) Definition() mcp.Tool {
	return pointTool("evaluate", "Evaluate a defined function at a point and return its outputs.")
}

// Handle processes the evaluate tool call.
func (t *EvaluateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, res := nameArg(req)
	if res != nil {
		return res, nil
	}
	x, res := pointArg(req)
	if res != nil {
		return res, nil
	}

	values, err := t.sess.Evaluate(name, x)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluate failed: %v", err)), nil
	}
	return mcp.NewToolResultText(host.FormatVector(values)), nil
}

// GradientTool handles the gradient MCP tool.
type GradientTool struct {
	sess *session.Session
}

// NewGradientTool creates a GradientTool.
func NewGradientTool(sess *session.Session) *GradientTool {
	return &GradientTool{sess: sess}
}

// Definition returns the MCP tool definition for gradient.
func (t *GradientTool) Definition() mcp.Tool {
	return pointTool("gradient",
		"Differentiate a defined function at a point. Returns the Jacobian, one row per output; "+
			"for a single-output function this is the gradient.")
}

// Handle processes the gradient tool call.
func (t *GradientTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, res := nameArg(req)
	if res != nil {
		return res, nil
	}
	x, res := pointArg(req)
	if res != nil {
		return res, nil
	}

	jac, err := t.sess.Gradient(name, x)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("gradient failed: %v", err)), nil
	}

	if r, _ := jac.Dims(); r == 1 {
		return mcp.NewToolResultText(host.FormatVector(host.Rows(jac)[0])), nil
	}
	return mcp.NewToolResultText(host.FormatMatrix(jac)), nil
}

// HessianTool handles the hessian MCP tool.
type HessianTool struct {
	sess *session.Session
}

// NewHessianTool creates a HessianTool.
func NewHessianTool(sess *session.Session) *HessianTool {
	return &HessianTool{sess: sess}
}

// Definition returns the MCP tool definition for hessian.
func (t *HessianTool) Definition() mcp.Tool {
	return pointTool("hessian", "Compute the Hessian of one output of a defined function at a point.",
		outputOption())
}

// Handle processes the hessian tool call.
func (t *HessianTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, res := nameArg(req)
	if res != nil {
		return res, nil
	}
	x, res := pointArg(req)
	if res != nil {
		return res, nil
	}

	h, err := t.sess.Hessian(name, x, intArg(req, "output", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("hessian failed: %v", err)), nil
	}
	return mcp.NewToolResultText(host.FormatMatrix(h)), nil
}

// CheckTool handles the check_gradient MCP tool.
type CheckTool struct {
	sess *session.Session
}

// NewCheckTool creates a CheckTool.
func NewCheckTool(sess *session.Session) *CheckTool {
	return &CheckTool{sess: sess}
}

// Definition returns the MCP tool definition for check_gradient.
func (t *CheckTool) Definition() mcp.Tool {
	return pointTool("check_gradient",
		"Compare the automatic gradient of one output with central finite differences.",
		outputOption())
}

// Handle processes the check_gradient tool call.
func (t *CheckTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, res := nameArg(req)
	if res != nil {
		return res, nil
	}
	x, res := pointArg(req)
	if res != nil {
		return res, nil
	}

	report, err := t.sess.Check(name, x, intArg(req, "output", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintln(&b, report.String())
	fmt.Fprintf(&b, "ad: %s\n", host.FormatVector(report.AD))
	fmt.Fprintf(&b, "fd: %s\n", host.FormatVector(report.FD))
	return mcp.NewToolResultText(b.String()), nil
}

// MinimizeTool handles the minimize MCP tool.
type MinimizeTool struct {
	sess *session.Session
}

// NewMinimizeTool creates a MinimizeTool.
func NewMinimizeTool(sess *session.Session) *MinimizeTool {
	return &MinimizeTool{sess: sess}
}

// Definition returns the MCP tool definition for minimize.
func (t *MinimizeTool) Definition() mcp.Tool {
	return mcp.NewTool("minimize",
		mcp.WithDescription("Minimize one output of a defined function from a starting point using its automatic gradient."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of a defined function"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Starting point, e.g. \"c(-1.2, 1)\""),
		),
		outputOption(),
	)
}

// Handle processes the minimize tool call.
func (t *MinimizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, res := nameArg(req)
	if res != nil {
		return res, nil
	}
	v, ok := req.GetArguments()["start"]
	if !ok {
		return mcp.NewToolResultError("'start' is required"), nil
	}
	x0, err := host.Vector(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := t.sess.Minimize(ctx, name, x0, intArg(req, "output", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("minimize failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"par: %s\nvalue: %.10g\nstatus: %s\niterations: %d\nevaluations: %d function, %d gradient",
		host.FormatVector(result.X), result.F, result.Status,
		result.Iterations, result.FuncEvals, result.GradEvals,
	)), nil
}
