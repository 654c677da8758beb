package logtool

import (
	"fmt"
	"regexp"

	"github.com/Veraticus/fpm-logcheck/pkg/pattern"
	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// TruncationBoundary returns the physical length at which a message line is
// cut and marked with "...".
func TruncationBoundary(limit int) int {
	return limit - len("NOTICE: ") - 1
}

// CheckTruncatedMessage reads the next line and checks it with
// CheckTruncatedLine.
func (t *Tool) CheckTruncatedMessage() error {
	match, err := t.truncatedMatcher()
	if err != nil {
		return err
	}
	if !t.read(match, "Truncated message not found", false) {
		return t.fail("Truncated message not found")
	}
	return nil
}

// CheckTruncatedLine checks line against the expected message: at the
// truncation boundary it must be a prefix ending with "...", below it the
// whole message without the marker.
func (t *Tool) CheckTruncatedLine(line string) error {
	match, err := t.truncatedMatcher()
	if err != nil {
		return err
	}
	if !t.slot.Fold(match(line)) {
		return t.fail("Truncated message not found")
	}
	return nil
}

func (t *Tool) truncatedMatcher() (func(string) types.Outcome, error) {
	if !t.msg.set {
		return nil, ErrMessageNotSet
	}
	if err := t.guard(); err != nil {
		return nil, err
	}
	re, err := pattern.Truncated()
	if err != nil {
		return nil, fmt.Errorf("failed to build truncated pattern: %w", err)
	}
	return func(line string) types.Outcome {
		return t.matchTruncated(re, line)
	}, nil
}

func (t *Tool) matchTruncated(re *regexp.Regexp, line string) types.Outcome {
	msg := &t.msg
	lineLen := len(line)
	if lineLen > msg.limit {
		return types.Mismatched(types.Mismatch(types.KindLength, line,
			"The line length is %d which is bigger than the log limit %d", lineLen, msg.limit))
	}

	m := re.FindStringSubmatchIndex(line)
	if m == nil {
		return types.Mismatched(types.Mismatch(types.KindFormat, line, "Unexpected truncated message: %s", line))
	}
	payload := line[m[2]:m[3]]
	marked := m[4] >= 0

	if lineLen == TruncationBoundary(msg.limit) {
		if !marked {
			return types.Mismatched(types.Mismatch(types.KindWrap, line,
				"The truncated line is not ended with '...'"))
		}
		expected := msg.text
		if len(payload) < len(expected) {
			expected = expected[:len(payload)]
		}
		if payload != expected {
			return types.Mismatched(types.Mismatch(types.KindContent, line,
				"The truncated message (%d) does not match the expected prefix (%d): %q != %q",
				len(payload), len(expected), payload, expected))
		}
		return types.Matched()
	}

	if marked {
		return types.Mismatched(types.Mismatch(types.KindWrap, line,
			"The line is complete and must not end with '...'"))
	}
	if payload != msg.text {
		return types.Mismatched(types.Mismatch(types.KindContent, line,
			"The message (%d) does not match the expected message (%d): %q != %q",
			len(payload), len(msg.text), payload, msg.text))
	}
	return types.Matched()
}
