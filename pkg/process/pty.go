// Package process runs the daemon under test and relays its output.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// PTYManager handles PTY-based process execution
type PTYManager struct {
	cmd *exec.Cmd
	pty *os.File
	mu  sync.Mutex
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager
func NewPTYManager() *PTYManager {
	return &PTYManager{}
}

// Start starts a process with PTY. The daemon sees a terminal on its
// standard streams, so it logs unbuffered as it would in the foreground.
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	p.cmd = exec.Command(command, args...)
	p.cmd.Env = env

	var err error
	p.pty, err = pty.Start(p.cmd)
	if err != nil {
		p.cmd = nil
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	return nil
}

// GetPTY returns the PTY file descriptor
func (p *PTYManager) GetPTY() *os.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pty
}

// Wait waits for the process to complete
func (p *PTYManager) Wait() error {
	if p.cmd == nil {
		return fmt.Errorf("process not started")
	}
	return p.cmd.Wait()
}

// ProcessState returns the process state
func (p *PTYManager) ProcessState() *os.ProcessState {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process
func (p *PTYManager) Process() *os.Process {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// CopyOutput passes everything the process writes to handler until the
// terminal is closed.
func (p *PTYManager) CopyOutput(handler func([]byte)) error {
	ptyFile := p.GetPTY()
	if ptyFile == nil {
		return fmt.Errorf("PTY not initialized")
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := ptyFile.Read(buf)
		if n > 0 {
			handler(buf[:n])
		}
		if err != nil {
			if isEndOfOutput(err) {
				return nil
			}
			return fmt.Errorf("output copy error: %w", err)
		}
	}
}

// isEndOfOutput reports whether err just means the terminal went away.
// Linux returns EIO on the master side once the last writer exits.
func isEndOfOutput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}

// Close releases the PTY
func (p *PTYManager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pty == nil {
		return nil
	}
	err := p.pty.Close()
	p.pty = nil
	return err
}
