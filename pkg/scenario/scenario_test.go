package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullScenario = `
name: lifecycle
steps:
  - start: true
  - level: notice
  - suffix: true
  - message: {text: "A", limit: 80, repeat: 200}
  - wrapped: {terminated: false, stdout: true}
  - truncated: {line: "PHP message: abc"}
  - entry: {level: warning, message: "child %d exited", pool: www, ignore_for: "DEBUG"}
  - drain: {message: "ready", min: 1, all_logs: true}
  - pattern: "^ready$"
  - signal: reload
  - reload: {sockets: 2, skip_progress: true}
  - reload_logs: true
  - terminate: true
`

func TestParse_AllSteps(t *testing.T) {
	s, err := Parse([]byte(fullScenario))
	require.NoError(t, err)

	assert.Equal(t, "lifecycle", s.Name)
	require.Len(t, s.Steps, 13)

	var names []string
	for i := range s.Steps {
		names = append(names, s.Steps[i].Name())
	}
	assert.Equal(t, []string{
		"start", "level", "suffix", "message", "wrapped", "truncated", "entry",
		"drain", "pattern", "signal", "reload", "reload_logs", "terminate",
	}, names)

	assert.Equal(t, 200, s.Steps[3].Message.Repeat)
	assert.True(t, s.Steps[4].Wrapped.Stdout)
	assert.Equal(t, "www", s.Steps[6].Entry.Pool)
	assert.Equal(t, 1, s.Steps[7].Drain.Min)
	assert.True(t, s.Steps[7].Drain.AllLogs)
	assert.Equal(t, 2, s.Steps[10].Reload.Sockets)
	assert.True(t, s.Steps[10].Reload.SkipProgress)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty"},
		{"no steps", "name: x\n", "no steps"},
		{"unknown key", "steps:\n  - bogus: 1\n", "failed to parse"},
		{"no action", "steps:\n  - {}\n", "no action"},
		{"two actions", "steps:\n  - start: true\n    terminate: true\n", "more than one action"},
		{"bad level", "steps:\n  - level: loud\n", "unknown log level"},
		{"bad entry level", "steps:\n  - entry: {level: loud, message: x}\n", "unknown log level"},
		{"entry without message", "steps:\n  - entry: {level: notice}\n", "message is required"},
		{"bad signal", "steps:\n  - signal: hup\n", "unknown signal"},
		{"negative limit", "steps:\n  - message: {text: x, limit: -1}\n", "negative"},
		{"negative sockets", "steps:\n  - reload: {sockets: -2}\n", "negative"},
		{"negative min", "steps:\n  - drain: {message: x, min: -1}\n", "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - start: true\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Steps, 1)
	assert.True(t, s.Steps[0].Start)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
