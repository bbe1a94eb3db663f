// Package restaurant implements the order, call and else tools served to the assistant.
package restaurant

import (
	"errors"
	"fmt"

	"github.com/theapemachine/mcp-restaurant-assistant/pkg/tools/utils"
)

// Tool names as registered with the MCP server.
const (
	OrderToolName = "order"
	CallToolName  = "call"
	ElseToolName  = "else"
)

var (
	// ErrInvalidArguments marks arguments that do not fit the tool's field set.
	ErrInvalidArguments = errors.New("invalid tool arguments")
	// ErrUnknownTool marks a tool name this server does not serve.
	ErrUnknownTool = errors.New("unknown tool")
)

// OrderArgs is the argument object of the order tool.
type OrderArgs struct {
	Item string `json:"item" jsonschema_description:"Exact name of the menu item the customer wants to order"`
}

// CallArgs is the argument object of the call tool.
type CallArgs struct {
	Reason string `json:"reason" jsonschema_description:"Why the customer wants a waiter"`
}

// ElseArgs is the empty argument object of the else tool.
type ElseArgs struct{}

// ToolRequest is one validated tool invocation. The concrete type names the tool.
type ToolRequest interface {
	ToolName() string
	// Input is the user-facing text the request carries, recorded in the transcript.
	Input() string
	Arguments() map[string]any
}

type OrderRequest struct {
	Item string
}

func (r OrderRequest) ToolName() string { return OrderToolName }
func (r OrderRequest) Input() string    { return r.Item }
func (r OrderRequest) Arguments() map[string]any {
	return map[string]any{"item": r.Item}
}

type CallRequest struct {
	Reason string
}

func (r CallRequest) ToolName() string { return CallToolName }
func (r CallRequest) Input() string    { return r.Reason }
func (r CallRequest) Arguments() map[string]any {
	return map[string]any{"reason": r.Reason}
}

type ElseRequest struct{}

func (ElseRequest) ToolName() string          { return ElseToolName }
func (ElseRequest) Input() string             { return "miscellaneous chat" }
func (ElseRequest) Arguments() map[string]any { return map[string]any{} }

/*
ParseToolRequest checks args against the field set of the named tool and
returns the matching request. Fields a tool does not declare are ignored.
*/
func ParseToolRequest(name string, args map[string]any) (ToolRequest, error) {
	switch name {
	case OrderToolName:
		item, err := utils.StringArg(args, "item", true)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
		}

		return OrderRequest{Item: item}, nil
	case CallToolName:
		reason, err := utils.StringArg(args, "reason", true)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
		}

		return CallRequest{Reason: reason}, nil
	case ElseToolName:
		return ElseRequest{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
}
