// Package gateway connects the assistant to the tool server over MCP.
package gateway

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/config"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/ai/provider"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/restaurant"
)

// ClientName identifies this client to the server during initialization.
const ClientName = "restaurant-client"

// ErrUnknownTool is returned for tool names the server did not list.
var ErrUnknownTool = restaurant.ErrUnknownTool

// Gateway is an initialized MCP session plus the tools the server offered.
type Gateway struct {
	client       client.MCPClient
	tools        []mcp.Tool
	byName       map[string]mcp.Tool
	server       mcp.Implementation
	instructions string
	logger       *log.Logger
}

/*
Dial starts the server subprocess and initializes a session with it. The
subprocess's stderr is copied to stderr when it is not nil, so the server's
logs are not lost and the pipe never fills up.
*/
func Dial(ctx context.Context, cfg config.ServerConfig, stderr io.Writer, logger *log.Logger) (*Gateway, error) {
	logger.Info("starting tool server", "command", cfg.Command, "args", cfg.Args)

	c, err := client.NewStdioMCPClient(cfg.Command, cfg.Env, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", cfg.Command, err)
	}

	if stderr != nil {
		if pipe, ok := client.GetStderr(c); ok {
			go func() {
				_, _ = io.Copy(stderr, pipe)
			}()
		}
	}

	gw, err := New(ctx, c, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return gw, nil
}

// New initializes a session over an already connected client and loads its tools.
func New(ctx context.Context, c client.MCPClient, logger *log.Logger) (*Gateway, error) {
	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    ClientName,
		Version: restaurant.ServerVersion,
	}

	initResult, err := c.Initialize(ctx, initRequest)
	if err != nil {
		return nil, fmt.Errorf("initializing session: %w", err)
	}

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	gw := &Gateway{
		client:       c,
		tools:        listed.Tools,
		byName:       make(map[string]mcp.Tool, len(listed.Tools)),
		server:       initResult.ServerInfo,
		instructions: initResult.Instructions,
		logger:       logger,
	}

	for _, tool := range listed.Tools {
		gw.byName[tool.Name] = tool
		logger.Info("tool loaded", "name", tool.Name, "description", tool.Description)
	}

	logger.Info("connected to tool server", "server", initResult.ServerInfo.Name, "version", initResult.ServerInfo.Version, "tools", len(listed.Tools))

	return gw, nil
}

// Definitions returns the tools as the server described them.
func (gw *Gateway) Definitions() []mcp.Tool {
	out := make([]mcp.Tool, len(gw.tools))
	copy(out, gw.tools)

	return out
}

// Instructions returns the instructions the server sent during initialization.
func (gw *Gateway) Instructions() string {
	return gw.instructions
}

// Server identifies the connected server.
func (gw *Gateway) Server() mcp.Implementation {
	return gw.server
}

// Tools converts the server's tools into specs a model provider understands.
func (gw *Gateway) Tools() []provider.ToolSpec {
	specs := make([]provider.ToolSpec, 0, len(gw.tools))

	for _, tool := range gw.tools {
		specs = append(specs, provider.ToolSpec{
			Name:        tool.Name,
			Description: tool.Description,
			Properties:  tool.InputSchema.Properties,
			Required:    tool.InputSchema.Required,
		})
	}

	return specs
}

/*
Execute calls the named tool and returns its text content. Arguments go to
the server as the model produced them, so the server both judges and records
every call; a tool-level failure, bad arguments included, comes back as
isError rather than as an error.
*/
func (gw *Gateway) Execute(ctx context.Context, name string, args map[string]any) (string, bool, error) {
	if _, ok := gw.byName[name]; !ok {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	if args == nil {
		args = map[string]any{}
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := gw.client.CallTool(ctx, request)
	if err != nil {
		return "", false, fmt.Errorf("calling %s: %w", name, err)
	}

	return TextOf(result), result.IsError, nil
}

// Close ends the session and stops the server subprocess.
func (gw *Gateway) Close() error {
	return gw.client.Close()
}

// TextOf joins the text content blocks of a tool result.
func TextOf(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}

	parts := make([]string, 0, len(result.Content))

	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}

	return strings.Join(parts, "\n")
}
