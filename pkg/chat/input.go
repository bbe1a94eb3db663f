package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// Input yields one line of user text per call and io.EOF when there is no more.
type Input interface {
	ReadLine() (string, error)
	Close() error
}

// ReadlineInput is an interactive terminal with line editing and history.
type ReadlineInput struct {
	rl *readline.Instance
}

// NewReadlineInput opens a readline session. historyFile may be empty.
func NewReadlineInput(prompt, historyFile string) (*ReadlineInput, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &ReadlineInput{rl: rl}, nil
}

// ReadLine treats Ctrl+C like end of input.
func (in *ReadlineInput) ReadLine() (string, error) {
	line, err := in.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}

	return line, err
}

func (in *ReadlineInput) Close() error {
	return in.rl.Close()
}

// ReaderInput reads lines from a non-interactive stream such as a pipe.
type ReaderInput struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

func NewReaderInput(r io.Reader) *ReaderInput {
	in := &ReaderInput{scanner: bufio.NewScanner(r)}

	if closer, ok := r.(io.Closer); ok {
		in.closer = closer
	}

	return in
}

func (in *ReaderInput) ReadLine() (string, error) {
	if in.scanner.Scan() {
		return in.scanner.Text(), nil
	}

	if err := in.scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (in *ReaderInput) Close() error {
	if in.closer == nil {
		return nil
	}

	return in.closer.Close()
}
