package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool is anything the server can register: a definition plus the handler serving it.
type Tool interface {
	Handle() mcp.Tool
	Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Register adds every tool to srv and returns their names in order.
// The server routes tools/call requests by name.
func Register(srv *server.MCPServer, tools ...Tool) []string {
	names := make([]string, 0, len(tools))

	for _, tool := range tools {
		handle := tool.Handle()
		srv.AddTool(handle, tool.Handler)
		names = append(names, handle.Name)
	}

	return names
}
