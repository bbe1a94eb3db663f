// Package middleware provides middleware components for enhancing MCP tools
package middleware

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/transcript"
)

// Appender is the part of the transcript writer the middleware needs.
type Appender interface {
	Append(rec transcript.Record) (transcript.Record, error)
}

// InputFunc extracts the user-facing input of a request for the record.
type InputFunc func(request mcp.CallToolRequest) string

/*
Transcript appends exactly one record for every tool call that passes through
it, whatever the handler returned. A failed append is logged and the call's
own result is passed back untouched.
*/
func Transcript(appender Appender, logger *log.Logger, input InputFunc) server.ToolHandlerMiddleware {
	if input == nil {
		input = func(request mcp.CallToolRequest) string { return request.Params.Name }
	}

	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := next(ctx, request)

			rec := transcript.Record{
				Role:      transcript.RoleTool,
				Input:     input(request),
				Tool:      request.Params.Name,
				Arguments: request.GetArguments(),
				Response:  responseOf(result, err),
			}

			if _, appendErr := appender.Append(rec); appendErr != nil {
				logger.Error("transcript append failed", "tool", request.Params.Name, "error", appendErr)
			}

			return result, err
		}
	}
}

// responseOf keeps JSON payloads as JSON and everything else as text.
func responseOf(result *mcp.CallToolResult, err error) any {
	if err != nil {
		return map[string]any{"error": err.Error()}
	}

	if result == nil {
		return map[string]any{}
	}

	var parts []string
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}

	body := strings.Join(parts, "\n")

	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}

	if result.IsError {
		return map[string]any{"error": body}
	}

	return map[string]any{"text": body}
}
