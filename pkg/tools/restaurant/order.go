package restaurant

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/menu"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/utils"
)

// OrderTool places an order for a single menu item.
type OrderTool struct {
	*tools.BaseTool
	menu   menu.Source
	logger *log.Logger
}

// NewOrderTool creates the order tool backed by source.
func NewOrderTool(source menu.Source, logger *log.Logger) *OrderTool {
	return &OrderTool{
		BaseTool: tools.NewBaseTool(tools.MustSchemaTool[OrderArgs](
			OrderToolName,
			"Place an order for one dish or drink. Use the exact item name from the menu.",
		)),
		menu:   source,
		logger: logger,
	}
}

// Handler validates the request and answers it.
func (tool *OrderTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := ParseToolRequest(OrderToolName, request.GetArguments())
	if err != nil {
		return utils.HandleParameterError(err), nil
	}

	return tool.Order(ctx, req.(OrderRequest)).Result()
}

// Order looks the item up. A menu that cannot be served is a system failure,
// never reported as a missing item.
func (tool *OrderTool) Order(ctx context.Context, req OrderRequest) ToolResponse {
	tool.logger.Info("order received", "item", req.Item)

	m, err := tool.menu.Menu(ctx)
	if err != nil {
		tool.logger.Error("menu unavailable", "item", req.Item, "error", err)

		return ToolResponse{
			Output: "[System error]\nSorry, the order could not be processed right now. Please ask a waiter for help.",
			Kind:   KindSystemError,
			Fields: map[string]any{
				"item":  req.Item,
				"error": err.Error(),
			},
		}
	}

	description, ok := m.Lookup(req.Item)
	if !ok {
		tool.logger.Warn("item not on menu", "item", req.Item)

		return ToolResponse{
			Output: fmt.Sprintf("[Order failed]\nSorry, %q is not on our menu. Please ask a waiter if you have questions.", req.Item),
			Kind:   KindNotFound,
			Fields: map[string]any{
				"item":    req.Item,
				"in_menu": false,
			},
		}
	}

	return ToolResponse{
		Output:  fmt.Sprintf("[Order confirmed]\nItem: %s\nDescription: %s", req.Item, description),
		Success: true,
		Kind:    KindOK,
		Fields: map[string]any{
			"item":    req.Item,
			"in_menu": true,
		},
	}
}
