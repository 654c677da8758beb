package pattern

import (
	"regexp"

	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// TruncatedPrefix starts every line of a truncated message.
const TruncatedPrefix = "PHP message: "

// Wrapped matches one physical line of a relayed message. Group 1 is the
// quoted payload and group 2 whatever trails the closing quote.
func Wrapped(level types.Level, pool string, stream Stream) (*regexp.Regexp, error) {
	return New().
		Timestamp(false).
		Level(level).
		Child(pool, stream).
		Literal(`"`).Capture(Quoted).Literal(`"`).
		OptionalCapture(Rest).
		Compile()
}

// SuffixContinuation matches a relayed line carrying only the rest of a
// split suffix. Group 1 is that rest.
func SuffixContinuation(level types.Level, pool string, stream Stream) (*regexp.Regexp, error) {
	return New().
		Timestamp(false).
		Level(level).
		Child(pool, stream).
		Capture(Rest).
		Compile()
}

// Truncated matches a single line message that may end with "...". Group 1
// is the payload and group 2 the marker.
func Truncated() (*regexp.Regexp, error) {
	return New().
		Literal(TruncatedPrefix).
		Capture(Lazy).
		OptionalCapture(Ellipsis).
		Compile()
}

// Entry matches a structured log entry of the given level. Pool may be empty.
func Entry(level types.Level, pool, message string) (*regexp.Regexp, error) {
	return New().
		Timestamp(true).
		Level(level).
		DebugInfo().
		Pool(pool).
		Message(message).
		Compile()
}

// Actual recovers the level (group 1) and message (group 2) of any
// non-debug entry, for diagnostics.
func Actual() (*regexp.Regexp, error) {
	return New().
		Timestamp(true).
		AnyLevel(types.Notice, types.Warning, types.Error, types.Alert).
		DebugInfo().
		Capture(Rest).
		Compile()
}
