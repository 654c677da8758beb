// Package testutil builds daemon log lines and mocks for tests.
package testutil

import (
	"fmt"

	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// Stamp is a fixed timestamp in the daemon's format.
const Stamp = "[15-Oct-2026 10:04:05]"

// Entry returns a decorated structured entry.
func Entry(level types.Level, message string) string {
	return fmt.Sprintf("%s %s: %s", Stamp, level, message)
}

// ChildPrefix returns the decoration of a line relayed from a worker.
func ChildPrefix(level types.Level, pool, stream string, child int) string {
	return fmt.Sprintf("%s %s: [pool %s] child %d said into %s: ", Stamp, level, pool, child, stream)
}

// Wrap splits text into decorated lines the way the daemon does: every
// line but the last is exactly limit bytes, the payload quoted after prefix.
func Wrap(prefix, text string, limit int) []string {
	capacity := limit - len(prefix) - 2
	if capacity <= 0 {
		panic(fmt.Sprintf("limit %d leaves no room for a payload after %q", limit, prefix))
	}
	var lines []string
	for len(text) > capacity {
		lines = append(lines, prefix+`"`+text[:capacity]+`"`)
		text = text[capacity:]
	}
	return append(lines, prefix+`"`+text+`"`)
}

// Split cuts text into undecorated lines of at most limit bytes.
func Split(text string, limit int) []string {
	var lines []string
	for len(text) > limit {
		lines = append(lines, text[:limit])
		text = text[limit:]
	}
	return append(lines, text)
}
