package restaurant

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/utils"
)

const (
	logUnreadable = "call log is empty or could not be read"
	logEmpty      = "call log is empty"
)

// LogReader returns the current contents of the call log.
type LogReader interface {
	ReadAll() (string, error)
}

// CallTool asks for a waiter and echoes the call log back.
type CallTool struct {
	*tools.BaseTool
	log    LogReader
	logger *log.Logger
}

// NewCallTool creates the call tool reading from reader.
func NewCallTool(reader LogReader, logger *log.Logger) *CallTool {
	return &CallTool{
		BaseTool: tools.NewBaseTool(tools.MustSchemaTool[CallArgs](
			CallToolName,
			"Call a waiter to the table, for example to pay, ask a question or complain.",
		)),
		log:    reader,
		logger: logger,
	}
}

func (tool *CallTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := ParseToolRequest(CallToolName, request.GetArguments())
	if err != nil {
		return utils.HandleParameterError(err), nil
	}

	return tool.Call(ctx, req.(CallRequest)).Result()
}

// Call never fails: an unreadable log is replaced by placeholder text.
func (tool *CallTool) Call(ctx context.Context, req CallRequest) ToolResponse {
	tool.logger.Info("waiter called", "reason", req.Reason)

	content := logUnreadable

	if tool.log != nil {
		raw, err := tool.log.ReadAll()
		switch {
		case err != nil:
			tool.logger.Error("reading call log", "error", err)
		case strings.TrimSpace(raw) == "":
			content = logEmpty
		default:
			content = strings.TrimSpace(raw)
		}
	}

	return ToolResponse{
		Output:  fmt.Sprintf("OK, a waiter has been notified. Reason: %s\nCall log:\n%s", req.Reason, content),
		Success: true,
		Kind:    KindOK,
		Fields: map[string]any{
			"reason":       req.Reason,
			"file_content": content,
		},
	}
}
