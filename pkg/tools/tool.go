// Package tools provides the shared building blocks for MCP tools
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrInternalError marks a result the server could not build.
var ErrInternalError = errors.New("internal server error")

// BaseTool carries the MCP definition a tool registers under.
type BaseTool struct {
	handle mcp.Tool
}

// NewBaseTool wraps the definition built for a tool.
func NewBaseTool(handle mcp.Tool) *BaseTool {
	return &BaseTool{handle: handle}
}

// Handle returns the MCP Tool definition
func (b *BaseTool) Handle() mcp.Tool {
	return b.handle
}

// GenerateSchema reflects T into an inline JSON schema that rejects unknown properties.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T

	return reflector.Reflect(v)
}

/*
NewSchemaTool builds an MCP tool whose input schema is generated from the
argument struct T, so the schema and the decoding target cannot drift apart.
*/
func NewSchemaTool[T any](name, description string) (mcp.Tool, error) {
	schema := GenerateSchema[T]()
	// Clients only need the object schema itself.
	schema.Version = ""
	schema.ID = ""

	raw, err := json.Marshal(schema)
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("generating schema for %s: %w", name, err)
	}

	return mcp.NewToolWithRawSchema(name, description, raw), nil
}

// NewErrorResult reports err to the caller as a tool-level failure.
func NewErrorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// NewJSONResult marshals v into a single text content block.
func NewJSONResult(v any, isError bool) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding result: %v", ErrInternalError, err)
	}

	result := mcp.NewToolResultText(string(data))
	result.IsError = isError

	return result, nil
}

// MustSchemaTool is NewSchemaTool for argument types known at compile time.
func MustSchemaTool[T any](name, description string) mcp.Tool {
	tool, err := NewSchemaTool[T](name, description)
	if err != nil {
		panic(err)
	}

	return tool
}
