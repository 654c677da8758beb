// Package logtool verifies that a daemon writes its log lines in the exact
// documented format: decoration, wrapping at the line limit, truncation and
// the pipe closed suffix.
package logtool

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/fpm-logcheck/pkg/config"
	"github.com/Veraticus/fpm-logcheck/pkg/interfaces"
	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// ErrMessageNotSet is returned when a message check runs before
// SetExpectedMessage.
var ErrMessageNotSet = errors.New("the expected message has not been set")

// Tool runs verifications against a LineReader. Only one verification may
// be in flight at a time.
type Tool struct {
	reader interfaces.LineReader
	pool   string
	ignore string

	level       types.Level
	trackSuffix bool
	msg         MessageState
	slot        ErrorSlot

	out    io.Writer
	logger *slog.Logger
}

// New creates a Tool reading from r. A nil cfg uses the defaults.
func New(cfg *config.Config, r interfaces.LineReader) *Tool {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	t := &Tool{
		reader:      r,
		pool:        cfg.Pool,
		ignore:      cfg.IgnoreFor,
		level:       cfg.Level,
		trackSuffix: cfg.PipeClosedSuffix,
		out:         os.Stdout,
		logger:      discardLogger(),
	}
	if cfg.Output == config.OutputStderr {
		t.out = os.Stderr
	}
	return t
}

// SetOutput sets where failure diagnostics are printed.
func (t *Tool) SetOutput(w io.Writer) {
	t.out = w
}

// SetLogger sets the logger used for line tracing. A nil logger discards.
func (t *Tool) SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger()
	}
	t.logger = l
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetExpectedMessage starts a new message expectation.
func (t *Tool) SetExpectedMessage(text string, limit, repeat int) {
	t.msg.Reset(text, limit, repeat)
}

// SetExpectedLevel sets the level of wrapped message lines.
func (t *Tool) SetExpectedLevel(level types.Level) {
	t.level = level
}

// ExpectedLevel returns the configured level, WARNING when unset.
func (t *Tool) ExpectedLevel() types.Level {
	return t.level.OrDefault()
}

// SetPipeClosedSuffix sets whether the last line of a wrapped message must
// carry FinalSuffix.
func (t *Tool) SetPipeClosedSuffix(expect bool) {
	t.trackSuffix = expect
}

// Message exposes the current message state.
func (t *Tool) Message() *MessageState {
	return &t.msg
}

// PeekError returns the pending mismatch, if any.
func (t *Tool) PeekError() error {
	if err := t.slot.Peek(); err != nil {
		return err
	}
	return nil
}

// PopError returns the pending mismatch, if any, and clears it.
func (t *Tool) PopError() error {
	if err := t.slot.Pop(); err != nil {
		return err
	}
	return nil
}

// read feeds lines from the reader to match until it accepts one. Once a
// mismatch is pending the remaining lines fall through without being
// inspected.
func (t *Tool) read(match func(string) types.Outcome, timeoutMessage string, includeHistory bool) bool {
	return t.reader.ReadUntil(func(line string) bool {
		if t.slot.Pending() {
			t.logger.Debug("line skipped, error pending", "line", line)
			return false
		}
		o := match(line)
		t.logger.Debug("line inspected", "line", line, "outcome", o.String())
		return t.slot.Fold(o)
	}, timeoutMessage, includeHistory)
}

// fail reports the pending mismatch, or a timeout carrying timeoutMessage
// when nothing was recorded, and clears the slot.
func (t *Tool) fail(timeoutMessage string) error {
	err := t.slot.Pop()
	if err == nil {
		err = &types.CheckError{Kind: types.KindTimeout, Message: timeoutMessage}
	}
	t.logger.Debug("verification failed", "kind", err.Kind.String(), "error", err.Message)
	fmt.Fprintf(t.out, "ERROR: %s\n", err.Message)
	return err
}

// guard short-circuits an operation while a mismatch is pending. read and
// fail always clear the slot, so this only fires when the slot was filled
// directly through t.slot.
func (t *Tool) guard() error {
	if t.slot.Pending() {
		return t.fail("")
	}
	return nil
}
