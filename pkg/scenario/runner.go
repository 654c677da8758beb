package scenario

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/fpm-logcheck/pkg/config"
	"github.com/Veraticus/fpm-logcheck/pkg/interfaces"
	"github.com/Veraticus/fpm-logcheck/pkg/logtool"
	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// Runner executes scenarios against a Tool. The signaler may be nil when
// the log source is not a daemon this process controls.
type Runner struct {
	tool     *logtool.Tool
	signaler interfaces.Signaler
	limit    int
	logger   *slog.Logger
}

// NewRunner creates a runner. A nil cfg uses the defaults.
func NewRunner(cfg *config.Config, tool *logtool.Tool, signaler interfaces.Signaler, logger *slog.Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		tool:     tool,
		signaler: signaler,
		limit:    cfg.Limit,
		logger:   logger,
	}
}

// Run executes the steps in order and stops at the first failure.
func (r *Runner) Run(s *Scenario) error {
	r.logger.Info("running scenario", "name", s.Name, "steps", len(s.Steps))
	for i := range s.Steps {
		step := &s.Steps[i]
		r.logger.Debug("step", "index", i+1, "action", step.Name())
		if err := r.runStep(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Name(), err)
		}
	}
	r.logger.Info("scenario passed", "name", s.Name)
	return nil
}

func (r *Runner) runStep(st *Step) error {
	t := r.tool
	switch {
	case st.Message != nil:
		limit := st.Message.Limit
		if limit == 0 {
			limit = r.limit
		}
		repeat := st.Message.Repeat
		if repeat == 0 {
			repeat = 1
		}
		t.SetExpectedMessage(st.Message.Text, limit, repeat)
		return nil
	case st.Level != "":
		level, err := types.ParseLevel(st.Level)
		if err != nil {
			return err
		}
		t.SetExpectedLevel(level)
		return nil
	case st.Suffix != nil:
		t.SetPipeClosedSuffix(*st.Suffix)
		return nil
	case st.Wrapped != nil:
		return t.CheckWrappedMessage(logtool.WrapOptions{
			Terminated:  st.Wrapped.Terminated,
			Undecorated: st.Wrapped.Undecorated,
			Stdout:      st.Wrapped.Stdout,
		})
	case st.Truncated != nil:
		if st.Truncated.Line != "" {
			return t.CheckTruncatedLine(st.Truncated.Line)
		}
		return t.CheckTruncatedMessage()
	case st.Entry != nil:
		level, opts := st.Entry.options()
		return t.ExpectEntry(level, st.Entry.Message, opts)
	case st.Drain != nil:
		level, opts := st.Drain.options()
		n, err := t.ReadAllEntries(level, st.Drain.Message, opts)
		if err != nil {
			return err
		}
		if n < st.Drain.Min {
			return fmt.Errorf("drained %d %s entries %q, want at least %d", n, level, st.Drain.Message, st.Drain.Min)
		}
		r.logger.Debug("drained entries", "count", n)
		return nil
	case st.Pattern != "":
		return t.ExpectPattern(st.Pattern)
	case st.Start:
		return t.Start()
	case st.Terminate:
		return t.Terminate()
	case st.Reload != nil:
		return t.Reload(logtool.ReloadOptions{
			Sockets:       st.Reload.Sockets,
			SkipProgress:  st.Reload.SkipProgress,
			SkipReloading: st.Reload.SkipReloading,
		})
	case st.ReloadLogs:
		return t.ReloadLogs()
	case st.Signal != "":
		return r.signal(st.Signal)
	}
	return fmt.Errorf("no action")
}

func (r *Runner) signal(name string) error {
	if r.signaler == nil {
		return fmt.Errorf("no daemon to signal")
	}
	switch name {
	case SignalReload:
		return r.signaler.Reload()
	case SignalReopen:
		return r.signaler.ReopenLogs()
	case SignalStop:
		return r.signaler.Stop()
	}
	return fmt.Errorf("unknown signal %q", name)
}

// options converts the step into entry options. The level defaults to
// NOTICE, which is what the daemon uses for its lifecycle messages.
func (e *EntryStep) options() (types.Level, logtool.EntryOptions) {
	level := types.Notice
	if e.Level != "" {
		if l, err := types.ParseLevel(e.Level); err == nil {
			level = l
		}
	}
	return level, logtool.EntryOptions{
		Pool:         e.Pool,
		IgnoreFor:    e.IgnoreFor,
		Strict:       e.Strict,
		CheckAllLogs: e.AllLogs,
	}
}
