// Package menu loads the restaurant's flat-file menu and answers lookups against it.
package menu

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrMalformedRecord marks a line that is not a JSON object with an item name.
	ErrMalformedRecord = errors.New("malformed menu record")
	// ErrEmptyMenu is returned by sources that refuse to serve a menu with no items.
	ErrEmptyMenu = errors.New("menu is empty")
)

// Entry is one dish on the menu.
type Entry struct {
	Item        string `json:"item"`
	Description string `json:"describe"`
}

type record struct {
	Item        *string `json:"item"`
	Describe    string  `json:"describe"`
	Description string  `json:"description"`
}

// Menu is an immutable, deduplicated view of the menu file.
type Menu struct {
	entries []Entry
	index   map[string]int
}

// Load reads and parses the menu at path.
func Load(path string) (*Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening menu %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading menu %s: %w", path, err)
	}

	return m, nil
}

/*
Parse reads one JSON object per non-blank line. Any bad line fails the whole
parse, naming the line. When an item appears twice the later line wins but the
item keeps the position of its first appearance.
*/
func Parse(r io.Reader) (*Menu, error) {
	m := &Menu{index: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, ErrMalformedRecord, err)
		}

		if rec.Item == nil || strings.TrimSpace(*rec.Item) == "" {
			return nil, fmt.Errorf("line %d: %w: missing item", line, ErrMalformedRecord)
		}

		entry := Entry{Item: *rec.Item, Description: rec.Describe}
		if entry.Description == "" {
			entry.Description = rec.Description
		}

		if i, ok := m.index[entry.Item]; ok {
			m.entries[i] = entry
			continue
		}

		m.index[entry.Item] = len(m.entries)
		m.entries = append(m.entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading menu: %w", err)
	}

	return m, nil
}

// New builds a menu from entries already in memory.
func New(entries ...Entry) *Menu {
	m := &Menu{index: make(map[string]int)}

	for _, entry := range entries {
		if i, ok := m.index[entry.Item]; ok {
			m.entries[i] = entry
			continue
		}

		m.index[entry.Item] = len(m.entries)
		m.entries = append(m.entries, entry)
	}

	return m
}

// Lookup is an exact, case-sensitive match on the item name.
func (m *Menu) Lookup(name string) (string, bool) {
	if m == nil {
		return "", false
	}

	i, ok := m.index[name]
	if !ok {
		return "", false
	}

	return m.entries[i].Description, true
}

// Entries returns a copy of the menu in file order.
func (m *Menu) Entries() []Entry {
	if m == nil {
		return nil
	}

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)

	return out
}

// Len reports the number of distinct items.
func (m *Menu) Len() int {
	if m == nil {
		return 0
	}

	return len(m.entries)
}

// Source hands out the menu the order tool should consult.
type Source interface {
	Menu(ctx context.Context) (*Menu, error)
}

// FileSource re-reads the file on every call, so edits and I/O failures
// surface on the next order.
type FileSource struct {
	Path string
}

// Menu loads the file and rejects an empty result.
func (s FileSource) Menu(ctx context.Context) (*Menu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := Load(s.Path)
	if err != nil {
		return nil, err
	}

	if m.Len() == 0 {
		return nil, ErrEmptyMenu
	}

	return m, nil
}

// Static serves a menu loaded once at startup. A Static built by Unavailable
// keeps failing with the startup load error.
type Static struct {
	menu *Menu
	err  error
}

// NewStatic wraps m.
func NewStatic(m *Menu) *Static {
	return &Static{menu: m}
}

// Unavailable records why the startup load failed.
func Unavailable(err error) *Static {
	return &Static{err: err}
}

func (s *Static) Menu(ctx context.Context) (*Menu, error) {
	if s.err != nil {
		return nil, s.err
	}

	if s.menu.Len() == 0 {
		return nil, ErrEmptyMenu
	}

	return s.menu, nil
}

/*
Open picks the source the server should use. With reload set the file is read
on every order. Otherwise it is loaded once here; when that fails the returned
source reports the failure on every order and the error is returned as well so
the caller can log it, since a broken menu must not keep the server down.
*/
func Open(path string, reload bool) (Source, error) {
	if reload {
		return FileSource{Path: path}, nil
	}

	m, err := Load(path)
	if err != nil {
		return Unavailable(err), err
	}

	return NewStatic(m), nil
}
