// Package interfaces defines the core interfaces used throughout the application.
package interfaces

// LineReader supplies log lines in arrival order, each at most once.
//
// ReadUntil hands lines to match until it returns true, and reports false
// when the source times out or is exhausted first. With includeHistory set,
// lines consumed by earlier calls are replayed before reading forward.
type LineReader interface {
	ReadUntil(match func(line string) bool, timeoutMessage string, includeHistory bool) bool
}

// OutputHandler processes output lines.
type OutputHandler interface {
	HandleLine(line string)
}

// DataHandler processes raw output data.
type DataHandler interface {
	HandleData(data []byte)
	Flush()
}

// Signaler delivers control signals to the daemon under test.
type Signaler interface {
	Reload() error
	ReopenLogs() error
	Stop() error
}
