package logtool

import "github.com/Veraticus/fpm-logcheck/pkg/types"

// ReloadOptions describes the notices expected while the daemon reloads.
type ReloadOptions struct {
	// Sockets is the number of inherited listening sockets.
	Sockets int
	// SkipProgress omits the "Reloading in progress ..." notice.
	SkipProgress bool
	// SkipReloading omits the "reloading: ..." notice.
	SkipReloading bool
}

func (t *Tool) expectNotices(messages ...string) error {
	for _, m := range messages {
		if err := t.ExpectEntry(types.Notice, m, EntryOptions{}); err != nil {
			return err
		}
	}
	return nil
}

// Start expects the notices written once the daemon is up.
func (t *Tool) Start() error {
	return t.expectNotices(
		"fpm is running, pid %d",
		"ready to handle connections",
	)
}

// Terminate expects the notices written on graceful shutdown.
func (t *Tool) Terminate() error {
	return t.expectNotices(
		"Terminating ...",
		"exiting, bye-bye!",
	)
}

// ReloadLogs expects the notices written when log files are reopened.
func (t *Tool) ReloadLogs() error {
	return t.expectNotices(
		"error log file re-opened",
		"access log file re-opened",
	)
}

// Reload expects the reload notices, one notice per inherited socket and
// then the start sequence.
func (t *Tool) Reload(opts ReloadOptions) error {
	var notices []string
	if !opts.SkipProgress {
		notices = append(notices, "Reloading in progress ...")
	}
	if !opts.SkipReloading {
		notices = append(notices, "reloading: %s")
	}
	for i := 0; i < opts.Sockets; i++ {
		notices = append(notices, `using inherited socket fd=%d, "%s"`)
	}
	if err := t.expectNotices(notices...); err != nil {
		return err
	}
	return t.Start()
}
