// Package provider defines interfaces and implementations for various AI providers
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/theapemachine/mcp-restaurant-assistant/pkg/config"
)

// Message roles shared by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ErrEmptyResponse is returned when the model answers with neither text nor tool calls.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Message represents a generic message in a conversation
type Message struct {
	Role       string     // "user", "assistant", "system", or "tool"
	Content    string     // The text content of the message
	ToolCalls  []ToolCall // Set on assistant messages that request tools
	ToolCallID string     // Set on tool messages, answering that call
	Name       string     // Tool name on tool messages
	IsError    bool       // Tool messages whose call failed
}

// ToolCall represents a function call from an AI model
type ToolCall struct {
	ID        string         // The ID of the tool call
	Name      string         // The name of the function being called
	Arguments map[string]any // The decoded arguments
}

// ToolSpec describes a tool the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// Reply is one model response.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolCallProvider is a chat model that can answer with text or request tools.
type ToolCallProvider interface {
	// Complete sends the conversation and the available tools and returns the next reply.
	Complete(ctx context.Context, messages []Message, tools []ToolSpec) (Reply, error)

	// Model returns the current model being used
	Model() string
}

// New builds the provider named by cfg.Provider.
func New(cfg config.ModelConfig) (ToolCallProvider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIProvider(cfg), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// decodeArguments parses the JSON arguments a model produced. Blank input
// decodes to an empty object.
func decodeArguments(raw []byte) (map[string]any, error) {
	args := map[string]any{}

	if strings.TrimSpace(string(raw)) == "" {
		return args, nil
	}

	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decoding tool arguments: %w", err)
	}

	return args, nil
}

// encodeArguments is the inverse of decodeArguments.
func encodeArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}

	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}

	return string(data)
}

// schemaOf renders spec as a JSON schema object.
func schemaOf(spec ToolSpec) map[string]any {
	properties := spec.Properties
	if properties == nil {
		properties = map[string]any{}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(spec.Required) > 0 {
		schema["required"] = spec.Required
	}

	return schema
}
