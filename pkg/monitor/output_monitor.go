// Package monitor turns raw daemon output into log lines.
package monitor

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/fpm-logcheck/pkg/interfaces"
)

// OutputMonitor splits raw output into lines and forwards each complete
// line to a handler.
type OutputMonitor struct {
	handler interfaces.OutputHandler
	logger  *slog.Logger

	mu         sync.Mutex
	lineBuffer bytes.Buffer
	lines      int
}

// NewOutputMonitor creates a new output monitor
func NewOutputMonitor(handler interfaces.OutputHandler, logger *slog.Logger) *OutputMonitor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OutputMonitor{
		handler: handler,
		logger:  logger,
	}
}

// HandleData processes raw output data
func (om *OutputMonitor) HandleData(data []byte) {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.lineBuffer.Write(data)

	// Process complete lines
	buffer := om.lineBuffer.Bytes()
	start := 0
	for i := 0; i < len(buffer); i++ {
		if buffer[i] == '\n' {
			om.processLine(string(buffer[start:i]))
			start = i + 1
		}
	}

	// Keep any incomplete line in the buffer
	rest := append([]byte(nil), buffer[start:]...)
	om.lineBuffer.Reset()
	om.lineBuffer.Write(rest)
}

// processLine forwards one line; a pseudo-terminal ends lines with \r\n.
func (om *OutputMonitor) processLine(line string) {
	line = strings.TrimSuffix(line, "\r")
	om.lines++
	om.logger.Debug("output line", "n", om.lines, "line", line)
	om.handler.HandleLine(line)
}

// Flush processes any remaining data in the buffer
func (om *OutputMonitor) Flush() {
	om.mu.Lock()
	defer om.mu.Unlock()

	if om.lineBuffer.Len() > 0 {
		line := om.lineBuffer.String()
		om.lineBuffer.Reset()
		om.processLine(line)
	}
}

// Close flushes the partial line and closes the handler if it is closable.
func (om *OutputMonitor) Close() error {
	om.Flush()
	if c, ok := om.handler.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Lines returns how many lines have been forwarded.
func (om *OutputMonitor) Lines() int {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.lines
}
