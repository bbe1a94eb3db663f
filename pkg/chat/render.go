package chat

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/ai/provider"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// DefaultWidth is the wrap width when none is configured.
const DefaultWidth = 80

// Renderer prints the conversation to a terminal.
type Renderer struct {
	w     io.Writer
	width int
}

func NewRenderer(w io.Writer, width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}

	return &Renderer{w: w, width: width}
}

func (r *Renderer) print(style lipgloss.Style, text string) {
	fmt.Fprintln(r.w, style.Render(wrap.String(text, r.width)))
}

// Banner lists the available tools and a few things to try.
func (r *Renderer) Banner(title string, tools []provider.ToolSpec) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, titleStyle.Render(title))
	r.print(mutedStyle, "Type 'quit' or 'exit' to leave.")

	if len(tools) > 0 {
		fmt.Fprintln(r.w, "Available tools:")

		for i, tool := range tools {
			r.print(toolStyle, fmt.Sprintf("%d. %s - %s", i+1, tool.Name, tool.Description))
		}
	}

	fmt.Fprintln(r.w, "Examples:")
	r.print(mutedStyle, "1. Order - \"I'd like a latte\"")
	r.print(mutedStyle, "2. Call a waiter - \"Please send a waiter over\"")
	r.print(mutedStyle, "3. Anything else - \"Hello\", \"Thanks\"")
	fmt.Fprintln(r.w)
}

// Assistant prints the model's own text.
func (r *Renderer) Assistant(text string) {
	r.print(assistantStyle, strings.TrimSpace(text))
}

// Tool prints a tool message; misses are highlighted.
func (r *Renderer) Tool(payload Payload) {
	style := toolStyle
	if payload.Failed {
		style = warnStyle
	}

	r.print(style, payload.Output)
}

// Error prints a failed turn.
func (r *Renderer) Error(err error) {
	r.print(errorStyle, "Error: "+err.Error())
}

// Info prints a plain status line.
func (r *Renderer) Info(text string) {
	r.print(mutedStyle, text)
}

// Farewell is printed when the loop ends.
func (r *Renderer) Farewell() {
	r.print(mutedStyle, "Goodbye, thanks for visiting!")
}
