package logtool

import (
	"fmt"
	"regexp"

	"github.com/Veraticus/fpm-logcheck/pkg/pattern"
	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// EntryOptions refines how a structured entry is matched.
type EntryOptions struct {
	// Pool expects the "[pool NAME] " prefix before the message.
	Pool string
	// IgnoreFor lets lines containing it pass without raising an error.
	// Empty means the configured default, DEBUG unless overridden.
	IgnoreFor string
	// Strict disables IgnoreFor so every non-matching line fails.
	Strict bool
	// CheckAllLogs replays already consumed lines before reading forward.
	CheckAllLogs bool
}

func (t *Tool) ignoreFor(opts EntryOptions) string {
	switch {
	case opts.Strict:
		return ""
	case opts.IgnoreFor != "":
		return opts.IgnoreFor
	}
	return t.ignore
}

// entryMatcher builds the matcher for one structured entry. message may
// contain the %s and %d wildcards; everything else is literal.
func (t *Tool) entryMatcher(level types.Level, message string, opts EntryOptions) (func(string) types.Outcome, error) {
	re, err := pattern.Entry(level, opts.Pool, message)
	if err != nil {
		return nil, fmt.Errorf("failed to build entry pattern: %w", err)
	}
	actual, err := pattern.Actual()
	if err != nil {
		return nil, fmt.Errorf("failed to build diagnostic pattern: %w", err)
	}
	ignore := t.ignoreFor(opts)
	return func(line string) types.Outcome {
		if re.MatchString(line) {
			return types.Matched()
		}
		return types.Classify(describeEntryMismatch(actual, level, message, line), ignore)
	}, nil
}

func describeEntryMismatch(actual *regexp.Regexp, level types.Level, message, line string) *types.CheckError {
	if m := actual.FindStringSubmatch(line); m != nil {
		return types.Mismatch(types.KindFormat, line,
			"The %s does not match the expected message %q: actual %s message %q",
			level, message, m[1], m[2])
	}
	return types.Mismatch(types.KindFormat, line,
		"The %s does not match the expected message %q: actual message is unknown (%s)",
		level, message, line)
}

// ExpectEntry reads lines until one is a level entry matching message.
func (t *Tool) ExpectEntry(level types.Level, message string, opts EntryOptions) error {
	if err := t.guard(); err != nil {
		return err
	}
	match, err := t.entryMatcher(level, message, opts)
	if err != nil {
		return err
	}
	timeout := fmt.Sprintf("The %s entry %q not found", level, message)
	if !t.read(match, timeout, opts.CheckAllLogs) {
		return t.fail(timeout)
	}
	return nil
}

// ReadAllEntries drains matching entries until the reader runs dry and
// returns how many were consumed. Ignorable lines in between are skipped;
// any other line fails the drain.
func (t *Tool) ReadAllEntries(level types.Level, message string, opts EntryOptions) (int, error) {
	if err := t.guard(); err != nil {
		return 0, err
	}
	match, err := t.entryMatcher(level, message, opts)
	if err != nil {
		return 0, err
	}
	count := 0
	history := opts.CheckAllLogs
	for t.read(match, "", history) {
		count++
		history = false
	}
	if t.slot.Pending() {
		return count, t.fail("")
	}
	t.logger.Debug("entries drained", "level", string(level), "message", message, "count", count)
	return count, nil
}

// ExpectPattern reads lines until one matches the raw regular expression
// expr. Non-matching lines are skipped.
func (t *Tool) ExpectPattern(expr string) error {
	if err := t.guard(); err != nil {
		return err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("failed to compile pattern %q: %w", expr, err)
	}
	timeout := fmt.Sprintf("The pattern %q not found", expr)
	match := func(line string) types.Outcome {
		if re.MatchString(line) {
			return types.Matched()
		}
		return types.Ignored()
	}
	if !t.read(match, timeout, false) {
		return t.fail(timeout)
	}
	return nil
}
