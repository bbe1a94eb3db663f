package chat

import (
	"github.com/tidwall/gjson"
)

// PayloadKind says how a tool message was understood.
type PayloadKind int

const (
	// StructuredOutput is a JSON object carrying a string output field.
	StructuredOutput PayloadKind = iota
	// RawTextFallback is anything else; the raw content is shown as is.
	RawTextFallback
)

func (k PayloadKind) String() string {
	switch k {
	case StructuredOutput:
		return "structured"
	case RawTextFallback:
		return "raw"
	default:
		return "unknown"
	}
}

// Payload is the displayable part of a tool message.
type Payload struct {
	Kind    PayloadKind
	Output  string
	Success bool
	// Failed is set when the payload carries success=false.
	Failed bool
	// SystemError is set when the payload carries an error field.
	SystemError bool
}

// ParseToolPayload extracts the output field from a tool message, falling
// back to the raw content when the message is not such an object.
func ParseToolPayload(content string) Payload {
	if !gjson.Valid(content) {
		return Payload{Kind: RawTextFallback, Output: content}
	}

	parsed := gjson.Parse(content)
	output := parsed.Get("output")

	if !parsed.IsObject() || output.Type != gjson.String {
		return Payload{Kind: RawTextFallback, Output: content}
	}

	success := parsed.Get("success")

	return Payload{
		Kind:        StructuredOutput,
		Output:      output.String(),
		Success:     success.Bool(),
		Failed:      success.Exists() && !success.Bool(),
		SystemError: parsed.Get("error").Exists(),
	}
}
