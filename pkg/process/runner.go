package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/Veraticus/fpm-logcheck/pkg/interfaces"
)

// drainTimeout bounds how long Wait keeps reading after the daemon exits.
// Workers that inherited the terminal can hold it open past the master.
const drainTimeout = 2 * time.Second

// Runner starts the daemon under a PTY, feeds its output to a handler and
// delivers the control signals the daemon understands.
type Runner struct {
	pty     PTY
	handler interfaces.DataHandler
	logger  *slog.Logger

	mu       sync.Mutex
	started  bool
	copied   chan error
	exitCode int
}

// Ensure Runner implements Signaler
var _ interfaces.Signaler = (*Runner)(nil)

// NewRunner creates a runner that writes process output to handler.
func NewRunner(handler interfaces.DataHandler, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		pty:     NewPTYManager(),
		handler: handler,
		logger:  logger,
	}
}

// Start launches command and begins copying its output.
func (r *Runner) Start(command string, args []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("runner already started")
	}

	if err := r.pty.Start(command, args, os.Environ()); err != nil {
		return fmt.Errorf("failed to start %s: %w", command, err)
	}
	r.started = true
	r.copied = make(chan error, 1)

	r.logger.Debug("daemon started", "command", command, "args", args)

	go func() {
		err := r.pty.CopyOutput(r.handler.HandleData)
		r.handler.Flush()
		if c, ok := r.handler.(io.Closer); ok {
			_ = c.Close()
		}
		r.copied <- err
	}()

	return nil
}

// Signal sends sig to the daemon.
func (r *Runner) Signal(sig os.Signal) error {
	p := r.pty.Process()
	if p == nil {
		return fmt.Errorf("process not started")
	}
	r.logger.Debug("signalling daemon", "signal", sig.String(), "pid", p.Pid)
	if err := p.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to send %s: %w", sig, err)
	}
	return nil
}

// Reload asks the daemon for a graceful reload.
func (r *Runner) Reload() error {
	return r.Signal(syscall.SIGUSR2)
}

// ReopenLogs asks the daemon to reopen its log files.
func (r *Runner) ReopenLogs() error {
	return r.Signal(syscall.SIGUSR1)
}

// Stop asks the daemon to terminate.
func (r *Runner) Stop() error {
	return r.Signal(syscall.SIGTERM)
}

// Wait blocks until the daemon exits and its output has been delivered.
// A non-zero exit is recorded in ExitCode rather than returned.
func (r *Runner) Wait() error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return fmt.Errorf("process not started")
	}

	err := r.pty.Wait()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		r.setExitCode(0)
	case errors.As(err, &exitErr):
		r.setExitCode(exitErr.ExitCode())
		err = nil
	default:
		return fmt.Errorf("wait failed: %w", err)
	}

	var copyErr error
	select {
	case copyErr = <-r.copied:
	case <-time.After(drainTimeout):
		r.logger.Warn("output still open after exit, closing terminal")
		_ = r.pty.Close()
		copyErr = <-r.copied
	}
	_ = r.pty.Close()

	if copyErr != nil {
		return copyErr
	}
	return err
}

// ExitCode returns the exit status recorded by Wait.
func (r *Runner) ExitCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exitCode
}

func (r *Runner) setExitCode(code int) {
	r.mu.Lock()
	r.exitCode = code
	r.mu.Unlock()
}
