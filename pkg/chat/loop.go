// Package chat runs the interactive conversation between the customer and the agent.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/ai/provider"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/transcript"
)

// State is where the loop is in its lifecycle.
type State int

const (
	Idle State = iota
	Processing
	Terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Invoker runs one turn of the conversation.
type Invoker interface {
	Invoke(ctx context.Context, userText string) ([]provider.Message, error)
}

// Recorder appends turn records to the transcript.
type Recorder interface {
	Append(rec transcript.Record) (transcript.Record, error)
}

// IsExit reports whether text asks to end the conversation.
func IsExit(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "quit", "exit":
		return true
	default:
		return false
	}
}

// Loop reads user text, hands it to the agent one turn at a time and shows the result.
type Loop struct {
	agent    Invoker
	input    Input
	renderer *Renderer
	recorder Recorder
	logger   *log.Logger
	timeout  time.Duration
	state    State
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithTurnTimeout bounds each agent call. Zero means no bound.
func WithTurnTimeout(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.timeout = d
	}
}

func NewLoop(agent Invoker, input Input, renderer *Renderer, recorder Recorder, logger *log.Logger, opts ...LoopOption) *Loop {
	l := &Loop{
		agent:    agent,
		input:    input,
		renderer: renderer,
		recorder: recorder,
		logger:   logger,
		state:    Idle,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// State returns the current state.
func (l *Loop) State() State {
	return l.state
}

/*
Run blocks until the user exits, input ends or ctx is cancelled. Failed turns
are shown and recorded but never end the loop; only an input error that is
not end of input is returned.
*/
func (l *Loop) Run(ctx context.Context) error {
	defer l.terminate()

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := l.input.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		if IsExit(text) {
			return nil
		}

		l.state = Processing
		l.Turn(ctx, text)
		l.state = Idle
	}
}

func (l *Loop) terminate() {
	if l.state == Terminal {
		return
	}

	l.state = Terminal

	if err := l.input.Close(); err != nil {
		l.logger.Debug("closing input", "error", err)
	}

	l.renderer.Farewell()
}

/*
Turn runs one agent call for text, renders every message it produced and
appends a single turn record with the combined output, whichever way the
turn went.
*/
func (l *Loop) Turn(ctx context.Context, text string) {
	turnID := uuid.NewString()
	logger := l.logger.With("turn", turnID)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	messages, err := l.agent.Invoke(ctx, text)

	var shown []string

	for _, message := range messages {
		switch message.Role {
		case provider.RoleTool:
			payload := ParseToolPayload(message.Content)

			switch {
			case payload.SystemError || message.IsError:
				logger.Error("tool failed", "tool", message.Name, "output", payload.Output)
			case payload.Failed:
				logger.Warn("tool reported a miss", "tool", message.Name, "output", payload.Output)
			case payload.Kind == RawTextFallback:
				logger.Debug("tool payload shown raw", "tool", message.Name)
			}

			l.renderer.Tool(payload)
			shown = append(shown, payload.Output)
		case provider.RoleAssistant:
			if strings.TrimSpace(message.Content) == "" {
				continue
			}

			l.renderer.Assistant(message.Content)
			shown = append(shown, message.Content)
		}
	}

	if err != nil {
		logger.Error("turn failed", "error", err)
		l.renderer.Error(err)
		shown = append(shown, "error: "+err.Error())
	}

	if l.recorder == nil {
		return
	}

	if _, recErr := l.recorder.Append(transcript.Record{
		ID:      turnID,
		Role:    transcript.RoleClient,
		Input:   text,
		Content: strings.Join(shown, "\n"),
	}); recErr != nil {
		logger.Error("recording turn", "error", recErr)
	}
}
