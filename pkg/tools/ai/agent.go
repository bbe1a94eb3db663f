// Package ai drives the chat model through one conversational turn at a time.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/ai/provider"
)

// ProbeGreeting is the fixed message sent by the startup self-check.
const ProbeGreeting = "Hello!"

// DefaultMaxSteps bounds the model calls in a turn when no option says otherwise.
const DefaultMaxSteps = 3

// ErrProbeFailed marks a startup self-check that got no usable reply.
var ErrProbeFailed = errors.New("model probe failed")

// ToolExecutor lists the tools the model may call and runs them.
type ToolExecutor interface {
	Tools() []provider.ToolSpec
	Execute(ctx context.Context, name string, args map[string]any) (content string, isError bool, err error)
}

// Agent pairs a chat model with the tools of one MCP server.
type Agent struct {
	provider     provider.ToolCallProvider
	tools        ToolExecutor
	systemPrompt string
	maxSteps     int
	logger       *log.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxSteps bounds the number of model calls in one turn.
func WithMaxSteps(n int) Option {
	return func(agent *Agent) {
		if n > 0 {
			agent.maxSteps = n
		}
	}
}

// NewAgent creates an agent. tools may be nil for a model without tools.
func NewAgent(p provider.ToolCallProvider, tools ToolExecutor, systemPrompt string, logger *log.Logger, opts ...Option) *Agent {
	agent := &Agent{
		provider:     p,
		tools:        tools,
		systemPrompt: systemPrompt,
		maxSteps:     DefaultMaxSteps,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(agent)
	}

	return agent
}

/*
Invoke runs one turn: the user's text goes to the model, every tool call the
model asks for is executed and answered, and the model is asked again until
it replies without tool calls or the step bound is reached. When the bound is
hit the turn ends on the last tool results. The returned messages are those
produced during the turn, in order, without the system and user messages.
*/
func (agent *Agent) Invoke(ctx context.Context, userText string) ([]provider.Message, error) {
	conversation := []provider.Message{}

	if agent.systemPrompt != "" {
		conversation = append(conversation, provider.Message{Role: provider.RoleSystem, Content: agent.systemPrompt})
	}

	conversation = append(conversation, provider.Message{Role: provider.RoleUser, Content: userText})

	var (
		produced []provider.Message
		specs    []provider.ToolSpec
	)

	if agent.tools != nil {
		specs = agent.tools.Tools()
	}

	for step := 0; step < agent.maxSteps; step++ {
		reply, err := agent.provider.Complete(ctx, conversation, specs)
		if err != nil {
			return produced, fmt.Errorf("model call %d: %w", step+1, err)
		}

		assistant := provider.Message{
			Role:      provider.RoleAssistant,
			Content:   reply.Text,
			ToolCalls: reply.ToolCalls,
		}

		conversation = append(conversation, assistant)
		produced = append(produced, assistant)

		if len(reply.ToolCalls) == 0 {
			return produced, nil
		}

		for _, call := range reply.ToolCalls {
			result := agent.execute(ctx, call)
			conversation = append(conversation, result)
			produced = append(produced, result)
		}
	}

	agent.logger.Warn("turn ended at step limit", "max_steps", agent.maxSteps)

	return produced, nil
}

// execute never fails the turn: tool errors become error tool messages the
// model and the user can both see.
func (agent *Agent) execute(ctx context.Context, call provider.ToolCall) provider.Message {
	message := provider.Message{
		Role:       provider.RoleTool,
		ToolCallID: call.ID,
		Name:       call.Name,
	}

	if agent.tools == nil {
		message.Content = fmt.Sprintf("tool %q is not available", call.Name)
		message.IsError = true

		return message
	}

	agent.logger.Info("calling tool", "tool", call.Name, "arguments", call.Arguments)

	content, isError, err := agent.tools.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		agent.logger.Error("tool call failed", "tool", call.Name, "error", err)

		message.Content = fmt.Sprintf("tool %s failed: %v", call.Name, err)
		message.IsError = true

		return message
	}

	if isError {
		agent.logger.Warn("tool returned an error", "tool", call.Name, "content", content)
	}

	message.Content = content
	message.IsError = isError

	return message
}

// Probe sends the fixed greeting without tools and requires a non-empty reply.
func (agent *Agent) Probe(ctx context.Context) (string, error) {
	return Probe(ctx, agent.provider)
}

/*
Probe is the startup self-check on a bare provider, so a client can fail fast
before it starts anything else.
*/
func Probe(ctx context.Context, p provider.ToolCallProvider) (string, error) {
	reply, err := p.Complete(ctx, []provider.Message{
		{Role: provider.RoleUser, Content: ProbeGreeting},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	if strings.TrimSpace(reply.Text) == "" {
		return "", fmt.Errorf("%w: empty reply", ErrProbeFailed)
	}

	return reply.Text, nil
}

// Model names the model behind the agent.
func (agent *Agent) Model() string {
	return agent.provider.Model()
}
