package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/config"
)

// AnthropicProvider implements ToolCallProvider for Anthropic Claude models
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewAnthropicProvider creates a new provider for Anthropic Claude models
func NewAnthropicProvider(cfg config.ModelConfig, opts ...option.RequestOption) *AnthropicProvider {
	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}

	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	model := cfg.Name
	if model == "" {
		model = config.DefaultAnthropicModel
	}

	return &AnthropicProvider{
		client:      anthropic.NewClient(append(clientOpts, opts...)...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}
}

// Model returns the current model being used
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Complete creates a completion using the Anthropic messages API
func (p *AnthropicProvider) Complete(ctx context.Context, messages []Message, tools []ToolSpec) (Reply, error) {
	system, turns := toAnthropicMessages(messages)
	if len(turns) == 0 {
		return Reply{}, fmt.Errorf("anthropic completion error: no messages provided")
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   p.maxTokens,
		Messages:    turns,
		Temperature: anthropic.Float(p.temperature),
	}

	if len(system) > 0 {
		params.System = system
	}

	if len(tools) > 0 {
		params.Tools = toAnthropicTools(tools)
	}

	response, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("anthropic completion error: %w", err)
	}

	reply := Reply{}
	var text strings.Builder

	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			args, err := decodeArguments(block.Input)
			if err != nil {
				return Reply{}, fmt.Errorf("tool call %s: %w", block.Name, err)
			}

			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}

	reply.Text = text.String()

	if reply.Text == "" && len(reply.ToolCalls) == 0 {
		return Reply{}, ErrEmptyResponse
	}

	return reply, nil
}

/*
toAnthropicMessages lifts system messages into the system prompt and folds
consecutive tool messages into a single user turn of tool_result blocks, which
is how the messages API expects answers to parallel tool calls.
*/
func toAnthropicMessages(messages []Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var (
		system  []anthropic.TextBlockParam
		turns   []anthropic.MessageParam
		results []anthropic.ContentBlockParamUnion
	)

	flush := func() {
		if len(results) > 0 {
			turns = append(turns, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, msg := range messages {
		if msg.Role == RoleTool {
			results = append(results, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, msg.IsError))
			continue
		}

		flush()

		switch msg.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case RoleUser:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion

			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}

			for _, call := range msg.ToolCalls {
				args := call.Arguments
				if args == nil {
					args = map[string]any{}
				}

				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, args, call.Name))
			}

			if len(blocks) > 0 {
				turns = append(turns, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}

	flush()

	return system, turns
}

func toAnthropicTools(tools []ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))

	for _, spec := range tools {
		properties := spec.Properties
		if properties == nil {
			properties = map[string]any{}
		}

		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   spec.Required,
				},
			},
		})
	}

	return out
}
