// Package prompt loads the system prompt shared by the server and the client agent.
package prompt

import (
	"fmt"
	"os"
	"strings"
)

// Default is used when no prompt file can be read.
const Default = `You are a restaurant assistant. For every customer message:
1. Decide whether the customer wants to order, wants a waiter, or is just chatting.
2. To order, call the "order" tool with the dish or drink name as "item".
3. To get a waiter, call the "call" tool with what the customer needs as "reason".
4. Otherwise call the "else" tool and answer briefly and politely.

Examples:
Customer: I'd like a latte
Assistant: [order {"item": "Latte"}]

Customer: Could someone bring more napkins?
Assistant: [call {"reason": "Customer needs more napkins"}]

Customer: Hello!
Assistant: [else {}] Hello, welcome! What can I get you today?`

/*
Load reads the prompt at path. When the file is missing, unreadable or blank
it returns Default together with the reason, so callers can log it and carry
on.
*/
func Load(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return Default, fmt.Errorf("no prompt path configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Default, fmt.Errorf("reading prompt %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return Default, fmt.Errorf("prompt %s is empty", path)
	}

	return text, nil
}
