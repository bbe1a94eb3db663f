package restaurant

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/mcp-restaurant-assistant/core"
	"github.com/theapemachine/mcp-restaurant-assistant/core/middleware"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/menu"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/transcript"
)

const (
	ServerName    = "restaurant-assistant"
	ServerVersion = "1.0.0"
)

// RegisterRestaurantTools returns the three restaurant tools in registration order.
func RegisterRestaurantTools(source menu.Source, reader LogReader, logger *log.Logger, opts ...ElseOption) []core.Tool {
	return []core.Tool{
		NewOrderTool(source, logger),
		NewCallTool(reader, logger),
		NewElseTool(logger, opts...),
	}
}

// Dependencies is everything the server needs to serve the tools.
type Dependencies struct {
	Menu         menu.Source
	Transcript   *transcript.Writer
	Logger       *log.Logger
	Instructions string
	ElseOptions  []ElseOption
}

/*
NewServer builds the MCP server with every tool registered behind the
transcript middleware. It returns the registered tool names for logging.
*/
func NewServer(deps Dependencies) (*server.MCPServer, []string) {
	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithLogging(),
		// Outermost, so a recovered panic is still recorded.
		server.WithToolHandlerMiddleware(middleware.Transcript(deps.Transcript, deps.Logger, DescribeInput)),
		server.WithRecovery(),
	}

	if deps.Instructions != "" {
		opts = append(opts, server.WithInstructions(deps.Instructions))
	}

	srv := server.NewMCPServer(ServerName, ServerVersion, opts...)

	names := core.Register(srv, RegisterRestaurantTools(deps.Menu, deps.Transcript, deps.Logger, deps.ElseOptions...)...)

	return srv, names
}

// DescribeInput names what the customer asked for, falling back to the tool name.
func DescribeInput(request mcp.CallToolRequest) string {
	req, err := ParseToolRequest(request.Params.Name, request.GetArguments())
	if err != nil {
		return request.Params.Name
	}

	return req.Input()
}
