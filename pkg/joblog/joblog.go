// Package joblog appends human-readable lines to the per-job log files.
package joblog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sink receives one line per call.
type Sink interface {
	Append(line string) error
}

// File appends to a path, creating it and its directory on first use.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Append(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
	}
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening job log: %w", err)
	}
	_, werr := fh.WriteString(strings.TrimRight(line, "\n") + "\n")
	cerr := fh.Close()
	if werr != nil {
		return fmt.Errorf("writing job log: %w", werr)
	}
	return cerr
}

// Memory keeps lines in memory. Tests and dry runs use it.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

func (m *Memory) Append(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, strings.TrimRight(line, "\n"))
	return nil
}

func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}
