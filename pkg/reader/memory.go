// Package reader provides LineReader implementations: an in-memory fake,
// a stream fed by a producer, and a file tail.
package reader

import (
	"io"
	"log/slog"
	"sync"

	"github.com/Veraticus/fpm-logcheck/pkg/interfaces"
)

// Memory serves a fixed sequence of lines. Running out of lines behaves as
// a timeout.
type Memory struct {
	mu      sync.Mutex
	pending []string
	history []string
	logger  *slog.Logger
}

var _ interfaces.LineReader = (*Memory)(nil)

// NewMemory returns a reader that will deliver lines in order.
func NewMemory(lines ...string) *Memory {
	return &Memory{
		pending: append([]string(nil), lines...),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger used to report timeouts.
func (m *Memory) SetLogger(l *slog.Logger) {
	m.logger = l
}

// Push appends lines to the pending queue.
func (m *Memory) Push(lines ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, lines...)
}

func (m *Memory) pop() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return "", false
	}
	line := m.pending[0]
	m.pending = m.pending[1:]
	m.history = append(m.history, line)
	return line, true
}

// ReadUntil implements interfaces.LineReader.
func (m *Memory) ReadUntil(match func(line string) bool, timeoutMessage string, includeHistory bool) bool {
	if includeHistory {
		for _, line := range m.History() {
			if match(line) {
				return true
			}
		}
	}
	for {
		line, ok := m.pop()
		if !ok {
			m.logger.Debug("no more lines", "reason", timeoutMessage)
			return false
		}
		if match(line) {
			return true
		}
	}
}

// History returns the lines consumed so far.
func (m *Memory) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

// Remaining returns the number of lines not yet delivered.
func (m *Memory) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
