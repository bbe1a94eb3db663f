package restaurant

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools"
)

// TimeFormat is the layout of the time field returned by the else tool.
const TimeFormat = "2006-01-02 15:04:05"

// Placeholder link shown with every miscellaneous reply.
const videoURL = " "

// RandomSource is satisfied by *rand.Rand.
type RandomSource interface {
	Intn(n int) int
}

// ElseTool answers anything that is neither an order nor a waiter call.
type ElseTool struct {
	*tools.BaseTool
	mu     sync.Mutex
	random RandomSource
	now    func() time.Time
	logger *log.Logger
}

// ElseOption configures an ElseTool.
type ElseOption func(*ElseTool)

// WithRandom replaces the random source.
func WithRandom(random RandomSource) ElseOption {
	return func(tool *ElseTool) {
		tool.random = random
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ElseOption {
	return func(tool *ElseTool) {
		tool.now = now
	}
}

func NewElseTool(logger *log.Logger, opts ...ElseOption) *ElseTool {
	tool := &ElseTool{
		BaseTool: tools.NewBaseTool(tools.MustSchemaTool[ElseArgs](
			ElseToolName,
			"Handle any request that is not an order and not a waiter call, such as greetings or small talk.",
		)),
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		logger: logger,
	}

	for _, opt := range opts {
		opt(tool)
	}

	return tool
}

func (tool *ElseTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return tool.Else(ctx).Result()
}

// Else reports the server time and a number in [1, 100].
func (tool *ElseTool) Else(ctx context.Context) ToolResponse {
	tool.mu.Lock()
	number := tool.random.Intn(100) + 1
	tool.mu.Unlock()

	now := tool.now().Format(TimeFormat)

	tool.logger.Debug("miscellaneous request", "time", now, "random_number", number)

	return ToolResponse{
		Output:  fmt.Sprintf("[Other]\nCurrent time: %s\nRandom number: %d\nDetails: %s", now, number, videoURL),
		Success: true,
		Kind:    KindOK,
		Fields: map[string]any{
			"time":          now,
			"random_number": number,
			"video_url":     videoURL,
		},
	}
}
