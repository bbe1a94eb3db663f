// Package transcript appends tool calls and client turns to the shared audit log.
package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimeFormat is used for the time line of every block.
const TimeFormat = "2006-01-02 15:04:05"

// Roles a record can carry.
const (
	RoleTool   = "tool"
	RoleClient = "client"
)

// ErrLogFull is returned once the file has reached its configured cap.
var ErrLogFull = errors.New("transcript size limit reached")

// Record is one appended block. Tool records fill Tool, Arguments and
// Response; turn records fill Content.
type Record struct {
	ID        string
	Timestamp time.Time
	Role      string
	Input     string
	Tool      string
	Arguments map[string]any
	Response  any
	Content   string
}

// Writer serializes appends to a single file.
type Writer struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	now      func() time.Time
}

// Option configures a Writer.
type Option func(*Writer)

// WithMaxBytes refuses appends once the file is at least n bytes. Zero disables the cap.
func WithMaxBytes(n int64) Option {
	return func(w *Writer) {
		w.maxBytes = n
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter returns a writer for path. The file is created on first append.
func NewWriter(path string, opts ...Option) *Writer {
	w := &Writer{path: path, now: time.Now}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Path returns the file the writer appends to.
func (w *Writer) Path() string {
	return w.path
}

/*
Append writes rec as one block. The file is opened, appended to and closed
for every record, so separate writers on the same path never interleave a
partial block. Missing ID and Timestamp are filled in and returned.
*/
func (w *Writer) Append(rec Record) (Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.now()
	}

	if w.maxBytes > 0 {
		if info, err := os.Stat(w.path); err == nil && info.Size() >= w.maxBytes {
			return rec, fmt.Errorf("appending to %s: %w", w.path, ErrLogFull)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return rec, fmt.Errorf("opening transcript %s: %w", w.path, err)
	}

	_, err = f.WriteString(Format(rec))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return rec, fmt.Errorf("writing transcript %s: %w", w.path, err)
	}

	return rec, nil
}

// ReadAll returns the whole file. A missing file reads as empty.
func (w *Writer) ReadAll() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("reading transcript %s: %w", w.path, err)
	}

	return string(data), nil
}

// Block headers. A header only ever appears alone on its own line; every
// field that may span lines is written as JSON.
const (
	ToolHeader   = "=== tool call ==="
	ClientHeader = "=== client turn ==="
)

// Format renders rec as the block written to the file.
func Format(rec Record) string {
	var b strings.Builder

	header := ToolHeader
	if rec.Role == RoleClient {
		header = ClientHeader
	}

	fmt.Fprintf(&b, "\n%s\n", header)
	fmt.Fprintf(&b, "id: %s\n", rec.ID)
	fmt.Fprintf(&b, "time: %s\n", rec.Timestamp.Format(TimeFormat))
	fmt.Fprintf(&b, "input: %s\n", singleLine(rec.Input))

	if rec.Tool != "" {
		fmt.Fprintf(&b, "tool: %s\n", singleLine(rec.Tool))
		fmt.Fprintf(&b, "arguments: %s\n", encode(rec.Arguments))
	}

	if rec.Response != nil {
		fmt.Fprintf(&b, "response: %s\n", encode(rec.Response))
	}

	if rec.Content != "" {
		fmt.Fprintf(&b, "content: %s\n", encode(rec.Content))
	}

	b.WriteString(strings.Repeat("=", 20) + "\n")

	return b.String()
}

// Count returns how many blocks with the given header content holds.
func Count(content, header string) int {
	n := 0

	for _, line := range strings.Split(content, "\n") {
		if line == header {
			n++
		}
	}

	return n
}

// singleLine keeps short values readable and quotes anything with a line break.
func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}

	return encode(s)
}

func encode(v any) string {
	switch val := v.(type) {
	case nil:
		return "{}"
	case json.RawMessage:
		var compact bytes.Buffer
		if err := json.Compact(&compact, val); err == nil {
			return compact.String()
		}

		v = string(val)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return singleLine(fmt.Sprintf("%v", v))
	}

	return string(data)
}
