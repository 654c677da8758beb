// Package scenario loads an ordered list of log checks from YAML and runs
// them against a logtool.Tool.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// Signal names accepted by the signal step.
const (
	SignalReload = "reload"
	SignalReopen = "reopen"
	SignalStop   = "stop"
)

// Scenario is a named sequence of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one action.
type Step struct {
	Message    *MessageStep   `yaml:"message,omitempty"`
	Level      string         `yaml:"level,omitempty"`
	Suffix     *bool          `yaml:"suffix,omitempty"`
	Wrapped    *WrappedStep   `yaml:"wrapped,omitempty"`
	Truncated  *TruncatedStep `yaml:"truncated,omitempty"`
	Entry      *EntryStep     `yaml:"entry,omitempty"`
	Drain      *DrainStep     `yaml:"drain,omitempty"`
	Pattern    string         `yaml:"pattern,omitempty"`
	Start      bool           `yaml:"start,omitempty"`
	Terminate  bool           `yaml:"terminate,omitempty"`
	Reload     *ReloadStep    `yaml:"reload,omitempty"`
	ReloadLogs bool           `yaml:"reload_logs,omitempty"`
	Signal     string         `yaml:"signal,omitempty"`
}

// MessageStep sets the expected message. Text is repeated Repeat times;
// a zero Limit uses the configured limit.
type MessageStep struct {
	Text   string `yaml:"text"`
	Limit  int    `yaml:"limit"`
	Repeat int    `yaml:"repeat"`
}

// WrappedStep checks the expected message as wrapped lines.
type WrappedStep struct {
	Terminated  bool `yaml:"terminated"`
	Undecorated bool `yaml:"undecorated"`
	Stdout      bool `yaml:"stdout"`
}

// TruncatedStep checks the expected message as a single truncated line.
// With Line set the line is checked directly instead of read.
type TruncatedStep struct {
	Line string `yaml:"line"`
}

// EntryStep expects one structured entry.
type EntryStep struct {
	Level     string `yaml:"level"`
	Message   string `yaml:"message"`
	Pool      string `yaml:"pool"`
	IgnoreFor string `yaml:"ignore_for"`
	Strict    bool   `yaml:"strict"`
	AllLogs   bool   `yaml:"all_logs"`
}

// DrainStep reads every matching entry until the source runs dry and
// requires at least Min of them.
type DrainStep struct {
	EntryStep `yaml:",inline"`
	Min       int `yaml:"min"`
}

// ReloadStep expects the reload sequence.
type ReloadStep struct {
	Sockets       int  `yaml:"sockets"`
	SkipProgress  bool `yaml:"skip_progress"`
	SkipReloading bool `yaml:"skip_reloading"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario is empty")
		}
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}
	for i := range s.Steps {
		if err := s.Steps[i].validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Name returns the action key of the step.
func (st *Step) Name() string {
	names := st.actions()
	if len(names) != 1 {
		return "invalid"
	}
	return names[0]
}

func (st *Step) actions() []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}
	add(st.Message != nil, "message")
	add(st.Level != "", "level")
	add(st.Suffix != nil, "suffix")
	add(st.Wrapped != nil, "wrapped")
	add(st.Truncated != nil, "truncated")
	add(st.Entry != nil, "entry")
	add(st.Drain != nil, "drain")
	add(st.Pattern != "", "pattern")
	add(st.Start, "start")
	add(st.Terminate, "terminate")
	add(st.Reload != nil, "reload")
	add(st.ReloadLogs, "reload_logs")
	add(st.Signal != "", "signal")
	return names
}

func (st *Step) validate() error {
	names := st.actions()
	switch len(names) {
	case 0:
		return fmt.Errorf("no action")
	case 1:
	default:
		return fmt.Errorf("more than one action: %s", strings.Join(names, ", "))
	}

	switch {
	case st.Message != nil:
		if st.Message.Limit < 0 {
			return fmt.Errorf("message limit must not be negative")
		}
		if st.Message.Repeat < 0 {
			return fmt.Errorf("message repeat must not be negative")
		}
	case st.Level != "":
		if _, err := types.ParseLevel(st.Level); err != nil {
			return err
		}
	case st.Entry != nil:
		return st.Entry.validate()
	case st.Drain != nil:
		if st.Drain.Min < 0 {
			return fmt.Errorf("drain min must not be negative")
		}
		return st.Drain.validate()
	case st.Reload != nil:
		if st.Reload.Sockets < 0 {
			return fmt.Errorf("reload sockets must not be negative")
		}
	case st.Signal != "":
		switch st.Signal {
		case SignalReload, SignalReopen, SignalStop:
		default:
			return fmt.Errorf("unknown signal %q", st.Signal)
		}
	}
	return nil
}

func (e *EntryStep) validate() error {
	if e.Message == "" {
		return fmt.Errorf("entry message is required")
	}
	if e.Level == "" {
		return nil
	}
	_, err := types.ParseLevel(e.Level)
	return err
}
