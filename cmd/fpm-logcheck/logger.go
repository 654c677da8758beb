package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogger writes human-readable text when stderr is a terminal and JSON
// when it is piped into a test harness. Trace lowers the level to Debug so
// every inspected line is logged.
func newLogger(w io.Writer, trace bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if trace {
		options.Level = slog.LevelDebug
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// stdinSource returns os.Stdin unless it is an interactive terminal.
func stdinSource() io.Reader {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return os.Stdin
}
