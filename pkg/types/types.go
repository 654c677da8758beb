// Package types contains shared data structures used across the application.
package types

import (
	"fmt"
	"strings"
)

// Level is the severity keyword the daemon writes after the timestamp.
type Level string

const (
	Debug   Level = "DEBUG"
	Notice  Level = "NOTICE"
	Warning Level = "WARNING"
	Error   Level = "ERROR"
	Alert   Level = "ALERT"
)

// DefaultLevel is used when no level has been configured.
const DefaultLevel = Warning

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case Debug, Notice, Warning, Error, Alert:
		return true
	}
	return false
}

// OrDefault returns l, or DefaultLevel when l is unset.
func (l Level) OrDefault() Level {
	if l == "" {
		return DefaultLevel
	}
	return l
}

// Kind classifies a verification failure.
type Kind int

const (
	KindFormat Kind = iota
	KindLength
	KindContent
	KindWrap
	KindSuffix
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindLength:
		return "length"
	case KindContent:
		return "content"
	case KindWrap:
		return "wrap"
	case KindSuffix:
		return "suffix"
	case KindTimeout:
		return "timeout"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// CheckError describes why an observed line was rejected.
type CheckError struct {
	Kind    Kind
	Message string
	// Line is the offending line, empty when the failure is not tied to one.
	Line string
}

func (e *CheckError) Error() string {
	return e.Message
}

// Mismatch builds a CheckError for line.
func Mismatch(kind Kind, line, format string, args ...any) *CheckError {
	return &CheckError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

type outcomeState int

const (
	stateMatched outcomeState = iota
	stateMismatched
	stateIgnored
)

// Outcome is the result of inspecting a single line.
type Outcome struct {
	state outcomeState
	err   *CheckError
}

// Matched reports a line that satisfied the expectation.
func Matched() Outcome {
	return Outcome{state: stateMatched}
}

// Ignored reports a benign line that neither matches nor fails.
func Ignored() Outcome {
	return Outcome{state: stateIgnored}
}

// Mismatched reports a line that violates the expectation.
func Mismatched(err *CheckError) Outcome {
	return Outcome{state: stateMismatched, err: err}
}

// Classify turns err into an Outcome, downgrading it to Ignored when the
// offending line contains ignoreFor. An empty ignoreFor ignores nothing.
func Classify(err *CheckError, ignoreFor string) Outcome {
	if ignoreFor != "" && err.Line != "" && strings.Contains(err.Line, ignoreFor) {
		return Ignored()
	}
	return Mismatched(err)
}

// IsMatched reports whether the line satisfied the expectation.
func (o Outcome) IsMatched() bool { return o.state == stateMatched }

// IsIgnored reports whether the line was skipped as benign.
func (o Outcome) IsIgnored() bool { return o.state == stateIgnored }

// Err returns the mismatch detail, or nil for matched and ignored lines.
func (o Outcome) Err() *CheckError { return o.err }

func (o Outcome) String() string {
	switch o.state {
	case stateMatched:
		return "matched"
	case stateIgnored:
		return "ignored"
	}
	return "mismatched: " + o.err.Message
}
