package logtool

import "strings"

// FinalSuffix is appended to the last line of a message when the child's
// pipe has been closed.
const FinalSuffix = ", pipe is closed"

// MessageState tracks how much of the expected message has been seen.
type MessageState struct {
	text  string
	limit int
	set   bool

	// position counts bytes of text already matched.
	position int
	// suffixPosition counts bytes of FinalSuffix matched on a line that was
	// cut short; zero when no suffix continuation is expected.
	suffixPosition int
}

// Reset starts a new expectation. A positive repeat expands text that many times.
func (m *MessageState) Reset(text string, limit, repeat int) {
	if repeat > 0 {
		text = strings.Repeat(text, repeat)
	}
	*m = MessageState{text: text, limit: limit, set: true}
}

// Text returns the full expected message.
func (m *MessageState) Text() string { return m.text }

// Limit returns the maximum physical line length.
func (m *MessageState) Limit() int { return m.limit }

// Position returns the number of message bytes matched so far.
func (m *MessageState) Position() int { return m.position }

// SuffixPosition returns the number of suffix bytes matched on a cut line.
func (m *MessageState) SuffixPosition() int { return m.suffixPosition }

// Remaining returns the number of message bytes still expected.
func (m *MessageState) Remaining() int { return len(m.text) - m.position }

// Done reports whether the whole message has been matched.
func (m *MessageState) Done() bool { return m.position == len(m.text) }

// next returns the n expected bytes at the current position.
func (m *MessageState) next(n int) string {
	end := m.position + n
	if end > len(m.text) {
		end = len(m.text)
	}
	return m.text[m.position:end]
}
