package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/fpm-logcheck/pkg/config"
	"github.com/Veraticus/fpm-logcheck/pkg/interfaces"
	"github.com/Veraticus/fpm-logcheck/pkg/logtool"
	"github.com/Veraticus/fpm-logcheck/pkg/monitor"
	"github.com/Veraticus/fpm-logcheck/pkg/process"
	"github.com/Veraticus/fpm-logcheck/pkg/reader"
	"github.com/Veraticus/fpm-logcheck/pkg/scenario"
)

// errStdinIsTerminal is returned when no log source was given and stdin is
// an interactive terminal.
var errStdinIsTerminal = errors.New("no log source: pass --log, a daemon command, or pipe the log into stdin")

// Source selects where log lines come from.
type Source struct {
	// LogPath follows a log file.
	LogPath string
	// Command runs the daemon and checks its output.
	Command []string
	// Stdin is read when neither LogPath nor Command is set.
	Stdin io.Reader
}

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Reader   interfaces.LineReader
	Tool     *logtool.Tool
	Daemon   *process.Runner
	Scenario *scenario.Runner

	stdin   io.Reader
	monitor *monitor.OutputMonitor
	closers []io.Closer
}

// NewDependencies wires the reader for src, the tool and the scenario
// runner.
func NewDependencies(cfg *config.Config, src Source, logger *slog.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	switch {
	case src.LogPath != "":
		tail, err := reader.NewTail(src.LogPath, cfg.Timeout, logger)
		if err != nil {
			return nil, err
		}
		deps.Reader = tail
		deps.closers = append(deps.closers, tail)
	case len(src.Command) > 0:
		stream := reader.NewStream(cfg.Timeout, logger)
		deps.monitor = monitor.NewOutputMonitor(stream, logger)
		deps.Daemon = process.NewRunner(deps.monitor, logger)
		deps.Reader = stream
		deps.closers = append(deps.closers, stream)
	default:
		if src.Stdin == nil {
			return nil, errStdinIsTerminal
		}
		stream := reader.NewStream(cfg.Timeout, logger)
		deps.monitor = monitor.NewOutputMonitor(stream, logger)
		deps.stdin = src.Stdin
		deps.Reader = stream
		deps.closers = append(deps.closers, stream)
	}

	deps.Tool = logtool.New(cfg, deps.Reader)
	deps.Tool.SetLogger(logger)

	// A nil *process.Runner must not reach the scenario as a non-nil
	// interface.
	var signaler interfaces.Signaler
	if deps.Daemon != nil {
		signaler = deps.Daemon
	}
	deps.Scenario = scenario.NewRunner(cfg, deps.Tool, signaler, logger)

	return deps, nil
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	for _, c := range d.closers {
		_ = c.Close()
	}
	d.closers = nil
}

// Application runs one scenario against the configured source.
type Application struct {
	deps    *Dependencies
	command []string
	failed  bool
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies, command []string) *Application {
	return &Application{
		deps:    deps,
		command: command,
	}
}

// Run starts the source and executes s. A started daemon is always asked
// to stop afterwards and waited for; stopping one that already exited is
// a no-op.
func (a *Application) Run(s *scenario.Scenario) error {
	if a.deps.stdin != nil {
		go func() {
			if err := reader.Consume(a.deps.stdin, a.deps.monitor); err != nil {
				a.deps.Logger.Warn("reading stdin failed", "error", err)
			}
		}()
	}

	if d := a.deps.Daemon; d != nil {
		if err := d.Start(a.command[0], a.command[1:]); err != nil {
			a.failed = true
			return err
		}
	}

	runErr := a.deps.Scenario.Run(s)
	if runErr != nil {
		a.failed = true
	}

	if d := a.deps.Daemon; d != nil {
		if err := d.Stop(); err != nil {
			a.deps.Logger.Warn("stopping daemon failed", "error", err)
		}
		if err := d.Wait(); err != nil {
			a.deps.Logger.Warn("daemon wait failed", "error", err)
		}
		a.deps.Logger.Debug("daemon exited", "code", d.ExitCode())
	}

	return runErr
}

// Stop asks a started daemon to terminate.
func (a *Application) Stop() error {
	if a.deps.Daemon == nil {
		return nil
	}
	return a.deps.Daemon.Stop()
}

// ExitCode returns 1 when the scenario failed.
func (a *Application) ExitCode() int {
	if a.failed {
		return 1
	}
	return 0
}

func describe(src Source) string {
	switch {
	case src.LogPath != "":
		return fmt.Sprintf("file %s", src.LogPath)
	case len(src.Command) > 0:
		return fmt.Sprintf("daemon %v", src.Command)
	}
	return "stdin"
}
