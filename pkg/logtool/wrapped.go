package logtool

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/fpm-logcheck/pkg/pattern"
	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// WrapOptions controls CheckWrappedMessage.
type WrapOptions struct {
	// Terminated expects the terminator sequence after the message.
	Terminated bool
	// Undecorated treats each whole line as payload.
	Undecorated bool
	// Stdout expects lines relayed from the child's stdout instead of stderr.
	Stdout bool
}

type trailer int

const (
	// trailerUntracked: the line format has no place for a suffix.
	trailerUntracked trailer = iota
	// trailerMissing: nothing follows the closing quote.
	trailerMissing
	trailerPresent
)

// wrapMatcher matches the physical lines of one wrapped message.
type wrapMatcher struct {
	t      *Tool
	line   *regexp.Regexp
	suffix *regexp.Regexp
}

func (t *Tool) newWrapMatcher(opts WrapOptions) (*wrapMatcher, error) {
	w := &wrapMatcher{t: t}
	if opts.Undecorated {
		return w, nil
	}
	stream := pattern.Stderr
	if opts.Stdout {
		stream = pattern.Stdout
	}
	var err error
	if w.line, err = pattern.Wrapped(t.ExpectedLevel(), t.pool, stream); err != nil {
		return nil, fmt.Errorf("failed to build line pattern: %w", err)
	}
	if w.suffix, err = pattern.SuffixContinuation(t.ExpectedLevel(), t.pool, stream); err != nil {
		return nil, fmt.Errorf("failed to build suffix pattern: %w", err)
	}
	return w, nil
}

// CheckWrappedMessage reads lines until the expected message has been seen
// in full, split at the limit, followed by the rest of a cut suffix and,
// when requested, the terminator sequence.
func (t *Tool) CheckWrappedMessage(opts WrapOptions) error {
	if !t.msg.set {
		return ErrMessageNotSet
	}
	if err := t.guard(); err != nil {
		return err
	}

	w, err := t.newWrapMatcher(opts)
	if err != nil {
		return err
	}

	for !t.msg.Done() {
		if !t.read(w.matchLine, "Output message not found", false) {
			return t.fail("Output message not found")
		}
	}

	if t.msg.suffixPosition > 0 {
		if !t.read(w.matchSuffix, "Final suffix not found", false) {
			return t.fail("Final suffix not found")
		}
	}

	if opts.Terminated {
		return t.Terminate()
	}
	return nil
}

func (w *wrapMatcher) parse(line string) (payload, suffix string, tr trailer, ok bool) {
	if w.line == nil {
		return strings.TrimRight(line, " \t\n\r\x00\x0B"), "", trailerUntracked, true
	}
	m := w.line.FindStringSubmatchIndex(line)
	if m == nil {
		return "", "", trailerUntracked, false
	}
	payload = line[m[2]:m[3]]
	if m[4] < 0 || m[4] == m[5] {
		return payload, "", trailerMissing, true
	}
	return payload, line[m[4]:m[5]], trailerPresent, true
}

// matchLine checks one physical line against the unmatched part of the
// message and advances the position.
func (w *wrapMatcher) matchLine(line string) types.Outcome {
	msg := &w.t.msg

	payload, suffix, tr, ok := w.parse(line)
	if !ok {
		return types.Mismatched(types.Mismatch(types.KindFormat, line, "Unexpected line: %s", line))
	}

	lineLen := len(line)
	if lineLen > msg.limit {
		return types.Mismatched(types.Mismatch(types.KindLength, line,
			"The line length is %d which is bigger than the log limit %d", lineLen, msg.limit))
	}

	rem := msg.Remaining()
	outLen := len(payload)
	if rem < outLen {
		return types.Mismatched(types.Mismatch(types.KindWrap, line,
			"The log printed more than the message length: %d bytes printed, %d remaining", outLen, rem))
	}

	expected := msg.next(outLen)
	if payload != expected {
		return types.Mismatched(types.Mismatch(types.KindContent, line,
			"The expected line (%d) does not match the printed line (%d) at position %d: %q != %q",
			len(expected), outLen, msg.position, expected, payload))
	}
	msg.position += outLen

	if rem > outLen {
		if lineLen == msg.limit {
			return types.Matched()
		}
		if lineLen+(rem-outLen) < msg.limit {
			return types.Mismatched(types.Mismatch(types.KindWrap, line,
				"The log printed less than the message length: %d bytes of the message are missing", rem-outLen))
		}
		return types.Mismatched(types.Mismatch(types.KindWrap, line,
			"The continuous line length is %d but it must equal the limit %d", lineLen, msg.limit))
	}

	if !w.t.trackSuffix || tr == trailerUntracked {
		return types.Matched()
	}
	if tr == trailerMissing {
		return types.Mismatched(types.Mismatch(types.KindSuffix, line, "There is no final suffix"))
	}
	if !strings.Contains(FinalSuffix, suffix) {
		return types.Mismatched(types.Mismatch(types.KindSuffix, line,
			"The final suffix must equal %q but it is %q", FinalSuffix, suffix))
	}
	if suffix != FinalSuffix {
		msg.suffixPosition = len(suffix)
	}
	return types.Matched()
}

// matchSuffix checks a line carrying the rest of a cut suffix.
func (w *wrapMatcher) matchSuffix(line string) types.Outcome {
	msg := &w.t.msg
	if w.suffix == nil {
		return types.Mismatched(types.Mismatch(types.KindSuffix, line,
			"Unexpected suffix continuation for an undecorated message: %s", line))
	}
	m := w.suffix.FindStringSubmatch(line)
	if m == nil {
		return types.Mismatched(types.Mismatch(types.KindFormat, line,
			"Unexpected line when looking for the final suffix: %s", line))
	}
	want := FinalSuffix[msg.suffixPosition:]
	if m[1] != want {
		return types.Mismatched(types.Mismatch(types.KindSuffix, line,
			"The final suffix continuation at position %d has incorrect value: %q != %q",
			msg.suffixPosition, m[1], want))
	}
	msg.suffixPosition = 0
	return types.Matched()
}
