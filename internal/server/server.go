// Package server exposes a session as an MCP tool server.
//
// Each tool is a struct with a Definition (the mcp.Tool schema) and a Handle
// method. Points are accepted in any form host.Vector understands, so a
// client may send "c(-1.2, 1)", "[-1.2, 1]" or a JSON array.
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/born-ml/fladiff/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Tool is an MCP tool handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools returns every tool bound to sess.
func Tools(sess *session.Session) []Tool {
	return []Tool{
		NewDefineTool(sess),
		NewListTool(sess),
		NewEvaluateTool(sess),
		NewGradientTool(sess),
		NewHessianTool(sess),
		NewCheckTool(sess),
		NewMinimizeTool(sess),
	}
}

// New creates the MCP server with all tools registered.
func New(sess *session.Session) *server.MCPServer {
	s := server.NewMCPServer(
		"fladiff",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, t := range Tools(sess) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

const instructions = "fladiff differentiates small JavaScript target functions. " +
	"Register a function with define_function, then ask for its value, gradient (Jacobian), " +
	"Hessian, a finite-difference check, or a minimization. " +
	"Functions take either one vector parameter indexed as x[i] or several scalar parameters, " +
	"and may use + - * /, Math.pow/exp/log/sqrt/sin/cos/tan/tanh/abs, if/else and ?:. " +
	"The built-in function rosenbrock is always available."
