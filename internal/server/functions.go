package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/evilsocket/islazy/tui"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/born-ml/fladiff/internal/session"
)

// DefineTool handles the define_function MCP tool.
type DefineTool struct {
	sess *session.Session
}

// NewDefineTool creates a DefineTool.
func NewDefineTool(sess *session.Session) *DefineTool {
	return &DefineTool{sess: sess}
}

// Definition returns the MCP tool definition for define_function.
func (t *DefineTool) Definition() mcp.Tool {
	return mcp.NewTool("define_function",
		mcp.WithDescription(
			"Compile a JavaScript function declaration into a differentiable target function. "+
				"Redefining a name replaces the previous definition.",
		),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Function source, e.g. 'function banana(x) { return 100*Math.pow(x[1]-x[0]*x[0],2)+Math.pow(1-x[0],2); }'"),
		),
		mcp.WithString("name",
			mcp.Description("Name to register (default: the declared function name)"),
		),
	)
}

// Handle processes the define_function tool call.
func (t *DefineTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src := req.GetString("source", "")
	if src == "" {
		return mcp.NewToolResultError("'source' is required"), nil
	}

	fn, err := t.sess.Define(req.GetString("name", ""), src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to define function: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Defined %s (%s)", fn.Name, describeInputs(fn))), nil
}

// ListTool handles the list_functions MCP tool.
type ListTool struct {
	sess *session.Session
}

// NewListTool creates a ListTool.
func NewListTool(sess *session.Session) *ListTool {
	return &ListTool{sess: sess}
}

// Definition returns the MCP tool definition for list_functions.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("list_functions",
		mcp.WithDescription("List the defined target functions and their input counts."),
	)
}

// Handle processes the list_functions tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows := [][]string{}
	for _, fn := range t.sess.List() {
		kind := "inline"
		if fn.Builtin {
			kind = "builtin"
		}
		rows = append(rows, []string{fn.Name, describeInputs(fn), kind})
	}

	var b strings.Builder
	tui.Table(&b, []string{"name", "inputs", "kind"}, rows)
	return mcp.NewToolResultText(b.String()), nil
}

func describeInputs(fn *session.Function) string {
	if fn.Vector {
		return fmt.Sprintf("vector of at least %d", fn.Inputs)
	}
	return fmt.Sprintf("%d scalar", fn.Inputs)
}
