package utils

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools"
)

// StringArg safely extracts a string argument from a decoded arguments object.
// A required argument must be present and contain more than whitespace.
func StringArg(args map[string]any, key string, required bool) (string, error) {
	val, exists := args[key]
	if !exists || val == nil {
		if required {
			return "", fmt.Errorf("missing required parameter: '%s'", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter '%s' must be a string", key)
	}

	if required && strings.TrimSpace(str) == "" {
		return "", fmt.Errorf("parameter '%s' must not be blank", key)
	}

	return str, nil
}

// HandleParameterError returns a properly formatted error response for parameter validation errors
func HandleParameterError(err error) *mcp.CallToolResult {
	return tools.NewErrorResult(err)
}
