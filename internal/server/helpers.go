package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/born-ml/fladiff/internal/host"
)

const pointDescription = "Parameter vector, e.g. \"c(-1.2, 1)\", \"[-1.2, 1]\" or \"-1.2 1\""

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key]
	if !ok {
		return defaultVal
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return defaultVal
	}
	return n
}

// pointArg converts the "point" argument with host.Vector.
func pointArg(req mcp.CallToolRequest) ([]float64, *mcp.CallToolResult) {
	v, ok := req.GetArguments()["point"]
	if !ok {
		return nil, mcp.NewToolResultError("'point' is required")
	}
	x, err := host.Vector(v)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return x, nil
}

// nameArg returns the required "name" argument.
func nameArg(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	name := req.GetString("name", "")
	if name == "" {
		return "", mcp.NewToolResultError("'name' is required")
	}
	return name, nil
}

// pointTool builds the shared schema of tools taking a function name and a
// point.
func pointTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	base := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of a defined function"),
		),
		mcp.WithString("point",
			mcp.Required(),
			mcp.Description(pointDescription),
		),
	}
	return mcp.NewTool(name, append(base, opts...)...)
}

func outputOption() mcp.ToolOption {
	return mcp.WithNumber("output",
		mcp.Description("Index of the output to differentiate (default: 0)"),
	)
}
