package reader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Veraticus/fpm-logcheck/pkg/monitor"
)

// pollInterval bounds how long the tail sleeps when no write event arrives,
// for filesystems that do not deliver inotify events.
const pollInterval = 250 * time.Millisecond

// Tail follows a growing log file and serves its lines as a Stream.
type Tail struct {
	*Stream

	path    string
	file    *os.File
	watcher *fsnotify.Watcher
	monitor *monitor.OutputMonitor
	logger  *slog.Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewTail opens path and starts following it from the beginning.
func NewTail(path string, timeout time.Duration, logger *slog.Logger) (*Tail, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// #nosec G304 - The log path is chosen by the operator
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		_ = f.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	stream := NewStream(timeout, logger)
	t := &Tail{
		Stream:  stream,
		path:    path,
		file:    f,
		watcher: w,
		monitor: monitor.NewOutputMonitor(stream, logger),
		logger:  logger,
		done:    make(chan struct{}),
	}

	t.wg.Add(1)
	go t.follow()

	return t, nil
}

// follow copies new data into the stream until the file is removed or the
// tail is closed.
func (t *Tail) follow() {
	defer t.wg.Done()
	defer func() { _ = t.monitor.Close() }()

	buf := make([]byte, 32*1024)
	for {
		n, err := t.file.Read(buf)
		if n > 0 {
			t.monitor.HandleData(buf[:n])
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			t.logger.Error("log file read failed", "path", t.path, "error", err)
			return
		}

		select {
		case <-t.done:
			return
		case ev, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				t.logger.Debug("log file went away", "path", t.path, "op", ev.Op.String())
				t.drain(buf)
				return
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.logger.Warn("watcher error", "path", t.path, "error", err)
		case <-time.After(pollInterval):
		}
	}
}

// drain reads whatever was written before the file went away.
func (t *Tail) drain(buf []byte) {
	for {
		n, err := t.file.Read(buf)
		if n > 0 {
			t.monitor.HandleData(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// Close stops following the file. Lines already read stay available.
func (t *Tail) Close() error {
	var err error
	t.stopOnce.Do(func() {
		close(t.done)
		err = t.watcher.Close()
		t.wg.Wait()
		if cerr := t.file.Close(); err == nil {
			err = cerr
		}
	})
	return err
}
