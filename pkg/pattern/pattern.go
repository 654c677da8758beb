// Package pattern composes anchored regular expressions for decorated daemon
// log lines out of fixed fragments. Caller supplied text is always quoted,
// only the %s and %d wildcards expand into character classes.
package pattern

import (
	"regexp"
	"strings"

	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

const (
	// Timestamp matches the bracketed date the daemon prefixes each line with,
	// e.g. [15-Oct-2026 10:04:05] or [15-Oct-2026 10:04:05.123456].
	Timestamp = `\[\d\d-\w\w\w-\d{4} \d\d:\d\d:\d\d(?:\.\d+)?\]`

	// DebugInfo matches the optional block emitted by debug builds.
	DebugInfo = `(?:pid \d+, (?:\w+|\(null\))\(\), line \d+: )?`

	// StringWildcard in expected text matches any run of non-newline characters.
	StringWildcard = "%s"
	// IntWildcard in expected text matches a run of digits.
	IntWildcard = "%d"

	stringClass = `[^\r\n]+`
	intClass    = `\d+`
)

// Stream names the child output stream a relayed line came from.
type Stream string

const (
	Stderr Stream = "stderr"
	Stdout Stream = "stdout"
)

// Builder accumulates pattern fragments. The zero value is ready to use.
type Builder struct {
	frags []string
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Timestamp adds the timestamp followed by a space. When optional is set the
// whole fragment may be absent.
func (b *Builder) Timestamp(optional bool) *Builder {
	if optional {
		return b.raw(`(?:` + Timestamp + ` )?`)
	}
	return b.raw(Timestamp + ` `)
}

// Level adds "LEVEL: ".
func (b *Builder) Level(level types.Level) *Builder {
	return b.raw(regexp.QuoteMeta(string(level)) + `: `)
}

// AnyLevel adds a capturing alternation of levels followed by ": ".
func (b *Builder) AnyLevel(levels ...types.Level) *Builder {
	alts := make([]string, len(levels))
	for i, l := range levels {
		alts[i] = regexp.QuoteMeta(string(l))
	}
	return b.raw(`(` + strings.Join(alts, "|") + `): `)
}

// DebugInfo adds the optional debug build block.
func (b *Builder) DebugInfo() *Builder {
	return b.raw(DebugInfo)
}

// Pool adds "[pool NAME] ". An empty name adds nothing.
func (b *Builder) Pool(name string) *Builder {
	if name == "" {
		return b
	}
	return b.raw(`\[pool ` + regexp.QuoteMeta(name) + `\] `)
}

// Child adds the relay prefix "[pool NAME] child N said into STREAM: ".
func (b *Builder) Child(pool string, stream Stream) *Builder {
	return b.raw(`\[pool ` + regexp.QuoteMeta(pool) + `\] child \d+ said into ` +
		regexp.QuoteMeta(string(stream)) + `: `)
}

// Literal adds s matched byte for byte.
func (b *Builder) Literal(s string) *Builder {
	return b.raw(regexp.QuoteMeta(s))
}

// Message adds s with its wildcards expanded.
func (b *Builder) Message(s string) *Builder {
	return b.raw(Expand(s))
}

// Capture adds a capturing group around one of the fixed classes below.
func (b *Builder) Capture(c Class) *Builder {
	return b.raw(`(` + string(c) + `)`)
}

// OptionalCapture adds an optional capturing group around c.
func (b *Builder) OptionalCapture(c Class) *Builder {
	return b.raw(`(` + string(c) + `)?`)
}

func (b *Builder) raw(frag string) *Builder {
	b.frags = append(b.frags, frag)
	return b
}

// String returns the anchored pattern source.
func (b *Builder) String() string {
	return "^" + strings.Join(b.frags, "") + "$"
}

// Compile compiles the anchored pattern.
func (b *Builder) Compile() (*regexp.Regexp, error) {
	return regexp.Compile(b.String())
}

// Class is one of the fixed sub-patterns a Builder may capture.
type Class string

const (
	// Quoted is a double quoted payload; only the content is captured.
	Quoted Class = `[^"]*`
	// Rest is everything up to the end of the line.
	Rest Class = `.*`
	// Lazy is the shortest run of characters that lets the pattern match.
	Lazy Class = `.*?`
	// Ellipsis is the truncation marker.
	Ellipsis Class = `\.\.\.`
)

// Expand quotes s and replaces the wildcards with their character classes.
// A '%' not followed by 's' or 'd' is kept literally.
func Expand(s string) string {
	var sb strings.Builder
	for {
		i := strings.IndexByte(s, '%')
		if i < 0 || i == len(s)-1 {
			sb.WriteString(regexp.QuoteMeta(s))
			return sb.String()
		}
		var class string
		switch s[i : i+2] {
		case StringWildcard:
			class = stringClass
		case IntWildcard:
			class = intClass
		default:
			sb.WriteString(regexp.QuoteMeta(s[:i+1]))
			s = s[i+1:]
			continue
		}
		sb.WriteString(regexp.QuoteMeta(s[:i]))
		sb.WriteString(class)
		s = s[i+2:]
	}
}
