package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/config"
	"github.com/tidwall/gjson"
)

var orderSpec = ToolSpec{
	Name:        "order",
	Description: "Place an order",
	Properties:  map[string]any{"item": map[string]any{"type": "string"}},
	Required:    []string{"item"},
}

// capture serves body for every request and keeps the last request body.
func capture(t *testing.T, suffix string, body string) (*httptest.Server, *string) {
	t.Helper()

	var last string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, suffix) {
			http.NotFound(w, r)
			return
		}

		data, _ := io.ReadAll(r.Body)
		last = string(data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &last
}

func TestOpenAIProviderComplete(t *testing.T) {
	srv, last := capture(t, "/chat/completions", `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "deepseek-chat",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {"name": "order", "arguments": "{\"item\":\"Latte\"}"}
				}]
			}
		}]
	}`)

	p := NewOpenAIProvider(config.ModelConfig{
		APIKey:    "sk-test",
		BaseURL:   srv.URL + "/v1",
		Name:      "deepseek-chat",
		MaxTokens: 256,
	}, option.WithMaxRetries(0))

	reply, err := p.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a waiter."},
		{Role: RoleUser, Content: "A latte please"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_0", Name: "else"}}},
		{Role: RoleTool, ToolCallID: "call_0", Name: "else", Content: "{}"},
	}, []ToolSpec{orderSpec})
	require.NoError(t, err)

	assert.Equal(t, "deepseek-chat", p.Model())
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "call_1", reply.ToolCalls[0].ID)
	assert.Equal(t, "order", reply.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"item": "Latte"}, reply.ToolCalls[0].Arguments)

	sent := *last
	assert.Equal(t, "deepseek-chat", gjson.Get(sent, "model").String())
	assert.Equal(t, int64(256), gjson.Get(sent, "max_tokens").Int())
	assert.Equal(t, "system", gjson.Get(sent, "messages.0.role").String())
	assert.Equal(t, "call_0", gjson.Get(sent, "messages.2.tool_calls.0.id").String())
	assert.Equal(t, "{}", gjson.Get(sent, "messages.2.tool_calls.0.function.arguments").String())
	assert.Equal(t, "call_0", gjson.Get(sent, "messages.3.tool_call_id").String())
	assert.Equal(t, "order", gjson.Get(sent, "tools.0.function.name").String())
	assert.Equal(t, "item", gjson.Get(sent, "tools.0.function.parameters.required.0").String())
}

func TestOpenAIProviderEmptyReply(t *testing.T) {
	srv, _ := capture(t, "/chat/completions", `{
		"id": "chatcmpl-2",
		"object": "chat.completion",
		"created": 1,
		"model": "deepseek-chat",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": ""}}]
	}`)

	p := NewOpenAIProvider(config.ModelConfig{APIKey: "sk-test", BaseURL: srv.URL, Name: "deepseek-chat"}, option.WithMaxRetries(0))

	_, err := p.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Hello!"}}, nil)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestAnthropicProviderComplete(t *testing.T) {
	srv, last := capture(t, "/v1/messages", `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-test",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "Let me order that."},
			{"type": "tool_use", "id": "toolu_1", "name": "order", "input": {"item": "Latte"}}
		],
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`)

	p := NewAnthropicProvider(config.ModelConfig{
		APIKey:  "sk-ant-test",
		BaseURL: srv.URL,
		Name:    "claude-test",
	}, anthropicoption.WithMaxRetries(0))

	reply, err := p.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a waiter."},
		{Role: RoleUser, Content: "A latte please"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "a", Name: "else"}, {ID: "b", Name: "else"}}},
		{Role: RoleTool, ToolCallID: "a", Content: "{}"},
		{Role: RoleTool, ToolCallID: "b", Content: "{}", IsError: true},
	}, []ToolSpec{orderSpec})
	require.NoError(t, err)

	assert.Equal(t, "Let me order that.", reply.Text)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, map[string]any{"item": "Latte"}, reply.ToolCalls[0].Arguments)

	sent := *last
	assert.Equal(t, "You are a waiter.", gjson.Get(sent, "system.0.text").String())
	assert.Equal(t, int64(1024), gjson.Get(sent, "max_tokens").Int())
	assert.Equal(t, int64(3), gjson.Get(sent, "messages.#").Int())
	assert.Equal(t, int64(2), gjson.Get(sent, "messages.2.content.#").Int())
	assert.Equal(t, "b", gjson.Get(sent, "messages.2.content.1.tool_use_id").String())
	assert.True(t, gjson.Get(sent, "messages.2.content.1.is_error").Bool())
	assert.Equal(t, "item", gjson.Get(sent, "tools.0.input_schema.required.0").String())
}

func TestNew(t *testing.T) {
	p, err := New(config.ModelConfig{Provider: config.ProviderAnthropic, Name: "claude-test"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicProvider{}, p)

	p, err = New(config.ModelConfig{Provider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIProvider{}, p)

	_, err = New(config.ModelConfig{Provider: "llama"})
	assert.Error(t, err)
}

func TestDefaultModelNames(t *testing.T) {
	anthropicProvider, err := New(config.ModelConfig{Provider: config.ProviderAnthropic})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAnthropicModel, anthropicProvider.Model())

	openaiProvider, err := New(config.ModelConfig{Provider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultOpenAIModel, openaiProvider.Model())
}

func TestDecodeArguments(t *testing.T) {
	args, err := decodeArguments([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = decodeArguments([]byte("{not json"))
	assert.Error(t, err)

	raw, _ := json.Marshal(map[string]any{"reason": "bill"})
	args, err = decodeArguments(raw)
	require.NoError(t, err)
	assert.Equal(t, "bill", args["reason"])
}
