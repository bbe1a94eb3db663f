package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/config"
)

// DefaultOpenAIBaseURL is used when no base URL is configured.
const DefaultOpenAIBaseURL = "https://api.deepseek.com/v1"

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint,
// which includes DeepSeek and vLLM.
type OpenAIProvider struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewOpenAIProvider creates a new provider for OpenAI-compatible models
func NewOpenAIProvider(cfg config.ModelConfig, opts ...option.RequestOption) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	}

	model := cfg.Name
	if model == "" {
		model = config.DefaultOpenAIModel
	}

	return &OpenAIProvider{
		client:      openai.NewClient(append(clientOpts, opts...)...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Model returns the current model being used
func (provider *OpenAIProvider) Model() string {
	return provider.model
}

// Complete produces the next reply from the chat completions API
func (provider *OpenAIProvider) Complete(ctx context.Context, messages []Message, tools []ToolSpec) (Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model:       provider.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(provider.temperature),
	}

	if provider.maxTokens > 0 {
		params.MaxTokens = openai.Int(provider.maxTokens)
	}

	if len(tools) > 0 {
		params.Tools = toOpenAITools(tools)
	}

	chat, err := provider.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("openai completion error: %w", err)
	}

	if len(chat.Choices) == 0 {
		return Reply{}, ErrEmptyResponse
	}

	message := chat.Choices[0].Message
	reply := Reply{Text: message.Content}

	for _, call := range message.ToolCalls {
		args, err := decodeArguments([]byte(call.Function.Arguments))
		if err != nil {
			return Reply{}, fmt.Errorf("tool call %s: %w", call.Function.Name, err)
		}

		reply.ToolCalls = append(reply.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}

	if reply.Text == "" && len(reply.ToolCalls) == 0 {
		return Reply{}, ErrEmptyResponse
	}

	return reply, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}

			assistant := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}

			for _, call := range msg.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: encodeArguments(call.Arguments),
					},
				})
			}

			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}

	return out
}

func toOpenAITools(tools []ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))

	for _, spec := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  openai.FunctionParameters(schemaOf(spec)),
			},
		})
	}

	return out
}
