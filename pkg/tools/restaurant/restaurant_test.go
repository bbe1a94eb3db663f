package restaurant

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/mcp-restaurant-assistant/core"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/logging"
	"github.com/theapemachine/mcp-restaurant-assistant/pkg/menu"
)

func newMockRequest(name string, args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	return request
}

// decode reads the flat JSON payload out of a tool result.
func decode(result *mcp.CallToolResult) map[string]any {
	text, ok := mcp.AsTextContent(result.Content[0])
	So(ok, ShouldBeTrue)

	payload := map[string]any{}
	So(json.Unmarshal([]byte(text.Text), &payload), ShouldBeNil)

	return payload
}

type fakeLog struct {
	content string
	err     error
}

func (f fakeLog) ReadAll() (string, error) {
	return f.content, f.err
}

// sequence returns the queued values in order.
type sequence struct {
	values []int
}

func (s *sequence) Intn(n int) int {
	v := s.values[0]
	s.values = s.values[1:]

	return v % n
}

func TestParseToolRequest(t *testing.T) {
	Convey("Given tool arguments from the wire", t, func() {
		Convey("A valid order should become an OrderRequest", func() {
			req, err := ParseToolRequest(OrderToolName, map[string]any{"item": "Latte", "size": "large"})
			So(err, ShouldBeNil)
			So(req, ShouldResemble, OrderRequest{Item: "Latte"})
			So(req.Input(), ShouldEqual, "Latte")
		})

		Convey("An order without an item should be rejected", func() {
			_, err := ParseToolRequest(OrderToolName, map[string]any{})
			So(errors.Is(err, ErrInvalidArguments), ShouldBeTrue)
		})

		Convey("A call with a blank reason should be rejected", func() {
			_, err := ParseToolRequest(CallToolName, map[string]any{"reason": "   "})
			So(errors.Is(err, ErrInvalidArguments), ShouldBeTrue)
		})

		Convey("Else should take no arguments", func() {
			req, err := ParseToolRequest(ElseToolName, nil)
			So(err, ShouldBeNil)
			So(req.Arguments(), ShouldBeEmpty)
		})

		Convey("An unknown tool should be reported", func() {
			_, err := ParseToolRequest("dance", nil)
			So(errors.Is(err, ErrUnknownTool), ShouldBeTrue)
		})
	})
}

func TestOrderTool(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()

	Convey("Given an order tool over a menu", t, func() {
		m := menu.New(
			menu.Entry{Item: "Latte", Description: "Hot milk coffee"},
			menu.Entry{Item: "Mocha", Description: "Chocolate and espresso"},
		)
		tool := NewOrderTool(menu.NewStatic(m), logger)

		Convey("It should implement the core.Tool interface", func() {
			So(tool, ShouldImplement, (*core.Tool)(nil))
			So(tool.Handle().Name, ShouldEqual, "order")
		})

		Convey("Its schema should require the item", func() {
			So(tool.Handle().RawInputSchema, ShouldNotBeNil)

			schema := map[string]any{}
			So(json.Unmarshal(tool.Handle().RawInputSchema, &schema), ShouldBeNil)
			So(schema["type"], ShouldEqual, "object")
			So(schema["required"], ShouldResemble, []any{"item"})
		})

		Convey("Every item on the menu should be confirmed with its description", func() {
			for _, entry := range m.Entries() {
				result, err := tool.Handler(ctx, newMockRequest("order", map[string]any{"item": entry.Item}))
				So(err, ShouldBeNil)
				So(result.IsError, ShouldBeFalse)

				payload := decode(result)
				So(payload["success"], ShouldEqual, true)
				So(payload["in_menu"], ShouldEqual, true)
				So(payload["output"], ShouldContainSubstring, entry.Item)
				So(payload["output"], ShouldContainSubstring, entry.Description)
			}
		})

		Convey("An item not on the menu should be a business miss", func() {
			for _, item := range []string{"Pizza", "latte", "Latte "} {
				result, err := tool.Handler(ctx, newMockRequest("order", map[string]any{"item": item}))
				So(err, ShouldBeNil)
				So(result.IsError, ShouldBeFalse)

				payload := decode(result)
				So(payload["success"], ShouldEqual, false)
				So(payload["in_menu"], ShouldEqual, false)
				So(payload["output"], ShouldNotContainSubstring, "confirmed")
				So(payload, ShouldNotContainKey, "error")
			}
		})

		Convey("A missing item argument should be an error result", func() {
			result, err := tool.Handler(ctx, newMockRequest("order", map[string]any{}))
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
		})
	})

	Convey("Given a menu that cannot be served", t, func() {
		Convey("When the file is missing", func() {
			path := filepath.Join(t.TempDir(), "menu.txt")
			tool := NewOrderTool(menu.FileSource{Path: path}, logger)

			response := tool.Order(ctx, OrderRequest{Item: "Latte"})

			Convey("It should be a system failure, not a miss", func() {
				So(response.Kind, ShouldEqual, KindSystemError)
				So(response.Success, ShouldBeFalse)
				So(response.Fields, ShouldContainKey, "error")
				So(response.Fields, ShouldNotContainKey, "in_menu")
			})
		})

		Convey("When the file is empty", func() {
			path := filepath.Join(t.TempDir(), "menu.txt")
			So(os.WriteFile(path, nil, 0o644), ShouldBeNil)
			tool := NewOrderTool(menu.FileSource{Path: path}, logger)

			result, err := tool.Handler(ctx, newMockRequest("order", map[string]any{"item": "Latte"}))

			Convey("It should report an error result carrying the reason", func() {
				So(err, ShouldBeNil)
				So(result.IsError, ShouldBeTrue)

				payload := decode(result)
				So(payload["success"], ShouldEqual, false)
				So(payload["error"], ShouldEqual, menu.ErrEmptyMenu.Error())
			})
		})

		Convey("When the startup load failed", func() {
			tool := NewOrderTool(menu.Unavailable(menu.ErrMalformedRecord), logger)

			So(tool.Order(ctx, OrderRequest{Item: "Latte"}).Kind, ShouldEqual, KindSystemError)
		})
	})
}

func TestCallTool(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()

	Convey("Given a call tool", t, func() {
		Convey("When the log has content", func() {
			tool := NewCallTool(fakeLog{content: "\n=== tool call ===\n"}, logger)

			result, err := tool.Handler(ctx, newMockRequest("call", map[string]any{"reason": "the bill"}))

			Convey("It should echo the reason and the log", func() {
				So(err, ShouldBeNil)

				payload := decode(result)
				So(payload["success"], ShouldEqual, true)
				So(payload["reason"], ShouldEqual, "the bill")
				So(payload["output"], ShouldContainSubstring, "the bill")
				So(payload["file_content"], ShouldEqual, "=== tool call ===")
			})
		})

		Convey("When the log cannot be read", func() {
			tool := NewCallTool(fakeLog{err: os.ErrPermission}, logger)

			response := tool.Call(ctx, CallRequest{Reason: "water"})

			Convey("It should still succeed with a placeholder", func() {
				So(response.Success, ShouldBeTrue)
				So(response.Output, ShouldContainSubstring, "water")
				So(response.Fields["file_content"], ShouldEqual, logUnreadable)
			})
		})

		Convey("When the log is empty", func() {
			tool := NewCallTool(fakeLog{}, logger)

			So(tool.Call(ctx, CallRequest{Reason: "help"}).Fields["file_content"], ShouldEqual, logEmpty)
		})

		Convey("When no reason is given", func() {
			tool := NewCallTool(fakeLog{}, logger)

			result, err := tool.Handler(ctx, newMockRequest("call", nil))
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeTrue)
		})
	})
}

func TestElseTool(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 9, 15, 0, 0, time.Local)

	Convey("Given an else tool with a fixed clock", t, func() {
		tool := NewElseTool(
			logging.Discard(),
			WithClock(func() time.Time { return fixed }),
			WithRandom(&sequence{values: []int{0, 99, 41}}),
		)

		Convey("Each call should return a parseable time and a number in range", func() {
			for _, want := range []float64{1, 100, 42} {
				result, err := tool.Handler(ctx, newMockRequest("else", nil))
				So(err, ShouldBeNil)

				payload := decode(result)
				So(payload["success"], ShouldEqual, true)
				So(payload["random_number"], ShouldEqual, want)

				parsed, err := time.ParseInLocation(TimeFormat, payload["time"].(string), time.Local)
				So(err, ShouldBeNil)
				So(parsed.Equal(fixed), ShouldBeTrue)
			}
		})
	})

	Convey("Given an else tool with the default source", t, func() {
		tool := NewElseTool(logging.Discard())

		Convey("Numbers should stay within 1 and 100", func() {
			for i := 0; i < 500; i++ {
				n := tool.Else(ctx).Fields["random_number"].(int)
				So(n, ShouldBeBetweenOrEqual, 1, 100)
			}
		})
	})
}

func TestToolResponse(t *testing.T) {
	Convey("Given a response with tool-specific fields", t, func() {
		response := ToolResponse{
			Output:  "done",
			Success: true,
			Kind:    KindOK,
			Fields:  map[string]any{"item": "Latte", "success": "ignored"},
		}

		data, err := json.Marshal(response)
		So(err, ShouldBeNil)

		Convey("It should flatten into one object without the kind", func() {
			payload := map[string]any{}
			So(json.Unmarshal(data, &payload), ShouldBeNil)
			So(payload, ShouldResemble, map[string]any{
				"output":  "done",
				"success": true,
				"item":    "Latte",
			})
		})
	})
}
