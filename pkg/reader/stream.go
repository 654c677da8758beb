package reader

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/fpm-logcheck/pkg/interfaces"
)

// Stream is a LineReader fed by a producer through HandleLine. ReadUntil
// gives up once timeout elapses without a matching line, or once the
// stream is closed and drained.
type Stream struct {
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	queue   []string
	history []string
	closed  bool
	signal  chan struct{}
}

var (
	_ interfaces.LineReader    = (*Stream)(nil)
	_ interfaces.OutputHandler = (*Stream)(nil)
)

// NewStream creates an empty stream.
func NewStream(timeout time.Duration, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Stream{
		timeout: timeout,
		logger:  logger,
		signal:  make(chan struct{}, 1),
	}
}

// HandleLine queues a line for delivery.
func (s *Stream) HandleLine(line string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("line dropped after close", "line", line)
		return
	}
	s.queue = append(s.queue, line)
	s.mu.Unlock()
	s.wake()
}

// Close marks the end of input. Queued lines are still delivered.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
	return nil
}

func (s *Stream) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Lines returns the lines consumed so far.
func (s *Stream) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// next pops the oldest queued line. done is set when the stream is closed
// and empty.
func (s *Stream) next() (line string, ok, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return "", false, s.closed
	}
	line = s.queue[0]
	s.queue = s.queue[1:]
	s.history = append(s.history, line)
	return line, true, false
}

// ReadUntil implements interfaces.LineReader.
func (s *Stream) ReadUntil(match func(line string) bool, timeoutMessage string, includeHistory bool) bool {
	if includeHistory {
		for _, line := range s.Lines() {
			if match(line) {
				return true
			}
		}
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	for {
		line, ok, done := s.next()
		if ok {
			if match(line) {
				return true
			}
			continue
		}
		if done {
			s.logger.Debug("stream closed", "reason", timeoutMessage)
			return false
		}
		select {
		case <-s.signal:
		case <-timer.C:
			s.logger.Debug("read timed out", "timeout", s.timeout, "reason", timeoutMessage)
			return false
		}
	}
}

// Consume feeds everything read from r into h until EOF, then closes h.
func Consume(r io.Reader, h interfaces.DataHandler) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.HandleData(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			closeHandler(h)
			return err
		}
	}
	return closeHandler(h)
}

func closeHandler(h interfaces.DataHandler) error {
	h.Flush()
	if c, ok := h.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
