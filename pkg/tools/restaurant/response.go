package restaurant

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools"
)

// Kind separates business misses from system failures.
type Kind string

const (
	KindOK          Kind = "ok"
	KindNotFound    Kind = "not_found"
	KindSystemError Kind = "system_error"
)

// ToolResponse is what a handler produced for one request.
type ToolResponse struct {
	Output  string
	Success bool
	Kind    Kind
	// Fields holds the tool-specific keys placed next to output and success.
	Fields map[string]any
}

// MarshalJSON flattens the response into a single object.
func (r ToolResponse) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+2)

	for key, value := range r.Fields {
		flat[key] = value
	}

	flat["output"] = r.Output
	flat["success"] = r.Success

	return json.Marshal(flat)
}

// Result wraps the response for the MCP wire. System failures set IsError;
// a business miss is a normal result carrying success=false.
func (r ToolResponse) Result() (*mcp.CallToolResult, error) {
	return tools.NewJSONResult(r, r.Kind == KindSystemError)
}
