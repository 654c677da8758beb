package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

var envVars = []string{
	"FPM_LOGCHECK_TIMEOUT",
	"FPM_LOGCHECK_LIMIT",
	"FPM_LOGCHECK_LEVEL",
	"FPM_LOGCHECK_POOL",
	"FPM_LOGCHECK_TRACE",
	"FPM_LOGCHECK_CONFIG",
}

// clearEnv blanks every variable the loader reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timeout != 3*time.Second {
		t.Errorf("expected Timeout to be 3s but got %v", cfg.Timeout)
	}
	if cfg.Limit != 1024 {
		t.Errorf("expected Limit to be 1024 but got %d", cfg.Limit)
	}
	if cfg.Level != types.Warning {
		t.Errorf("expected Level to be WARNING but got %s", cfg.Level)
	}
	if cfg.Pool != "unconfined" {
		t.Errorf("expected Pool to be unconfined but got %s", cfg.Pool)
	}
	if cfg.IgnoreFor != "DEBUG" {
		t.Errorf("expected IgnoreFor to be DEBUG but got %s", cfg.IgnoreFor)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		envVars   map[string]string
		checkFunc func(*testing.T, *Config)
		wantErr   bool
	}{
		{
			name: "valid environment variables",
			envVars: map[string]string{
				"FPM_LOGCHECK_TIMEOUT": "500ms",
				"FPM_LOGCHECK_LIMIT":   "2048",
				"FPM_LOGCHECK_LEVEL":   "notice",
				"FPM_LOGCHECK_POOL":    "www",
				"FPM_LOGCHECK_TRACE":   "yes",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.Timeout != 500*time.Millisecond {
					t.Errorf("expected Timeout to be 500ms but got %v", cfg.Timeout)
				}
				if cfg.Limit != 2048 {
					t.Errorf("expected Limit to be 2048 but got %d", cfg.Limit)
				}
				if cfg.Level != types.Notice {
					t.Errorf("expected Level to be NOTICE but got %s", cfg.Level)
				}
				if cfg.Pool != "www" {
					t.Errorf("expected Pool to be www but got %s", cfg.Pool)
				}
				if !cfg.Trace {
					t.Error("expected Trace to be true")
				}
			},
		},
		{
			name:    "invalid timeout",
			envVars: map[string]string{"FPM_LOGCHECK_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			envVars: map[string]string{"FPM_LOGCHECK_TIMEOUT": "-1s"},
			wantErr: true,
		},
		{
			name:    "invalid limit",
			envVars: map[string]string{"FPM_LOGCHECK_LIMIT": "lots"},
			wantErr: true,
		},
		{
			name:    "zero limit",
			envVars: map[string]string{"FPM_LOGCHECK_LIMIT": "0"},
			wantErr: true,
		},
		{
			name:    "invalid level",
			envVars: map[string]string{"FPM_LOGCHECK_LEVEL": "LOUD"},
			wantErr: true,
		},
		{
			name:    "invalid trace value",
			envVars: map[string]string{"FPM_LOGCHECK_TRACE": "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			// Keep the user's config file out of the way
			cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `timeout: 250ms
limit: 512
level: error
pool: api
pipe_closed_suffix: true
ignore_for: "said into stdout"
output: stderr
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeout != 250*time.Millisecond {
		t.Errorf("expected Timeout to be 250ms but got %v", cfg.Timeout)
	}
	if cfg.Limit != 512 {
		t.Errorf("expected Limit to be 512 but got %d", cfg.Limit)
	}
	if cfg.Level != types.Error {
		t.Errorf("expected Level to be ERROR but got %s", cfg.Level)
	}
	if cfg.Pool != "api" {
		t.Errorf("expected Pool to be api but got %s", cfg.Pool)
	}
	if !cfg.PipeClosedSuffix {
		t.Error("expected PipeClosedSuffix to be true")
	}
	if cfg.IgnoreFor != "said into stdout" {
		t.Errorf("expected IgnoreFor to be overridden but got %q", cfg.IgnoreFor)
	}
	if cfg.Output != OutputStderr {
		t.Errorf("expected Output to be stderr but got %s", cfg.Output)
	}
}

func TestLoadFromTOMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `timeout = "750ms"
limit = 2048
level = "notice"
pool = "www"
pipe_closed_suffix = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeout != 750*time.Millisecond {
		t.Errorf("expected Timeout to be 750ms but got %v", cfg.Timeout)
	}
	if cfg.Limit != 2048 {
		t.Errorf("expected Limit to be 2048 but got %d", cfg.Limit)
	}
	if cfg.Level != types.Notice {
		t.Errorf("expected Level to be NOTICE but got %s", cfg.Level)
	}
	if cfg.Pool != "www" {
		t.Errorf("expected Pool to be www but got %s", cfg.Pool)
	}
	if !cfg.PipeClosedSuffix {
		t.Error("expected PipeClosedSuffix to be true")
	}
	if cfg.IgnoreFor != string(types.Debug) {
		t.Errorf("expected IgnoreFor to keep its default but got %q", cfg.IgnoreFor)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	clearEnv(t)

	tests := map[string]string{
		"syntax":   "limit = = 3\n",
		"duration": "timeout = \"soon\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("expected error for invalid TOML config")
			}
		})
	}
}

func TestLoadFromFileEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("FPM_LOGCHECK_POOL", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pool: from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pool != "from-env" {
		t.Errorf("expected environment to override file but got %s", cfg.Pool)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("limit: [not, a, number]\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestLoadInvalidOutput(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output: syslog\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for unknown output")
	}
}

func TestGetConfigPath(t *testing.T) {
	clearEnv(t)

	t.Setenv("FPM_LOGCHECK_CONFIG", "/etc/fpm-logcheck.yaml")
	if got := getConfigPath(); got != "/etc/fpm-logcheck.yaml" {
		t.Errorf("expected explicit path but got %s", got)
	}

	t.Setenv("FPM_LOGCHECK_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := getConfigPath(); got != filepath.Join("/xdg", "fpm-logcheck", "config.yaml") {
		t.Errorf("expected XDG path but got %s", got)
	}
}
