package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "minutes", input: "5m", want: 5 * time.Minute},
		{name: "seconds", input: "30s", want: 30 * time.Second},
		{name: "zero", input: "0s", want: 0},
		{name: "compound", input: "1h30m", want: 90 * time.Minute},
		{name: "invalid", input: "nope", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("UnmarshalText(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalText(%q) unexpected error: %v", tt.input, err)
			}
			if d.Duration != tt.want {
				t.Errorf("UnmarshalText(%q) = %v, want %v", tt.input, d.Duration, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.LogDir != "logs" || cfg.Prefix != "run" || cfg.Extension != "log" {
		t.Errorf("Default() = %q/%q.%q, want logs/run.log", cfg.LogDir, cfg.Prefix, cfg.Extension)
	}
	if !cfg.Pause {
		t.Error("Default().Pause = false, want true")
	}
	if cfg.Timeout.Duration != 0 {
		t.Errorf("Default().Timeout = %v, want unbounded", cfg.Timeout.Duration)
	}
	if strings.Join(cfg.Flags, " ") != "-X dev -u" {
		t.Errorf("Default().Flags = %v, want [-X dev -u]", cfg.Flags)
	}
	if cfg.Path() != "" {
		t.Errorf("Default().Path() = %q, want empty", cfg.Path())
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid full", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "valid_full.toml"))
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.LogDir != "journaux" {
			t.Errorf("LogDir = %q, want %q", cfg.LogDir, "journaux")
		}
		if cfg.Prefix != "suivi" || cfg.Extension != "txt" {
			t.Errorf("Prefix/Extension = %q/%q, want suivi/txt", cfg.Prefix, cfg.Extension)
		}
		if strings.Join(cfg.Candidates, ",") != "python3.12,python3" {
			t.Errorf("Candidates = %v", cfg.Candidates)
		}
		if cfg.Fallback != "${HOME}/py/bin/python3" {
			t.Errorf("Fallback = %q", cfg.Fallback)
		}
		if len(cfg.Flags) != 5 {
			t.Errorf("Flags = %v, want 5 entries", cfg.Flags)
		}
		if len(cfg.Viewer) != 1 || cfg.Viewer[0] != "less" {
			t.Errorf("Viewer = %v, want [less]", cfg.Viewer)
		}
		if cfg.Timeout.Duration != 90*time.Second {
			t.Errorf("Timeout = %v, want 90s", cfg.Timeout.Duration)
		}
		if cfg.Pause {
			t.Error("Pause = true, want false")
		}
		if cfg.Env["APP_MODE"] != "debug" {
			t.Errorf("Env[APP_MODE] = %q, want %q", cfg.Env["APP_MODE"], "debug")
		}
		if !filepath.IsAbs(cfg.Path()) {
			t.Errorf("Path() = %q, want absolute", cfg.Path())
		}
	})

	t.Run("minimal keeps defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "valid_minimal.toml"))
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Prefix != "app" {
			t.Errorf("Prefix = %q, want %q", cfg.Prefix, "app")
		}
		if cfg.LogDir != "logs" {
			t.Errorf("LogDir = %q, want default %q", cfg.LogDir, "logs")
		}
		if !cfg.Pause {
			t.Error("Pause = false, want default true")
		}
		if cfg.Env["PYTHONIOENCODING"] != "utf-8" {
			t.Errorf("Env[PYTHONIOENCODING] = %q, want default", cfg.Env["PYTHONIOENCODING"])
		}
	})

	errorCases := []struct {
		name    string
		file    string
		contain string
	}{
		{name: "unknown key", file: "unknown_key.toml", contain: "log_directory"},
		{name: "bad prefix", file: "bad_prefix.toml", contain: "filesafe"},
		{name: "bad timeout", file: "bad_timeout.toml", contain: "parsing"},
		{name: "missing file", file: "nope.toml", contain: "reading"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(filepath.Join("testdata", tt.file))
			if err == nil {
				t.Fatalf("Load(%q) expected error, got nil", tt.file)
			}
			if !strings.Contains(err.Error(), tt.contain) {
				t.Errorf("Load(%q) error = %q, want it to contain %q", tt.file, err, tt.contain)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "empty log dir", mutate: func(c *Config) { c.LogDir = "" }, wantErr: true},
		{name: "prefix with separator", mutate: func(c *Config) { c.Prefix = "a/b" }, wantErr: true},
		{name: "prefix with space", mutate: func(c *Config) { c.Prefix = "my run" }, wantErr: true},
		{name: "dashed prefix", mutate: func(c *Config) { c.Prefix = "my-app_2" }},
		{name: "numeric extension", mutate: func(c *Config) { c.Extension = "log1" }, wantErr: true},
		{name: "no extension", mutate: func(c *Config) { c.Extension = "" }},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout.Duration = -time.Second }, wantErr: true},
		{name: "no candidates no fallback", mutate: func(c *Config) { c.Candidates = nil; c.Fallback = "" }, wantErr: true},
		{name: "fallback only", mutate: func(c *Config) { c.Candidates = nil }},
		{name: "empty viewer entry", mutate: func(c *Config) { c.Viewer = []string{""} }, wantErr: true},
		{name: "bad env key", mutate: func(c *Config) { c.Env["1BAD"] = "x" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestFindAndResolve(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	t.Run("nothing to find", func(t *testing.T) {
		baseDir := t.TempDir()
		if got := Find(baseDir); got != "" {
			t.Errorf("Find() = %q, want empty", got)
		}
		cfg, err := Resolve("", baseDir)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if cfg.Path() != "" {
			t.Errorf("Resolve() Path = %q, want defaults", cfg.Path())
		}
	})

	t.Run("next to the binary", func(t *testing.T) {
		baseDir := t.TempDir()
		path := filepath.Join(baseDir, FileName)
		os.WriteFile(path, []byte("prefix = \"beside\"\n"), 0o644)

		if got := Find(baseDir); got != path {
			t.Errorf("Find() = %q, want %q", got, path)
		}
		cfg, err := Resolve("", baseDir)
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if cfg.Prefix != "beside" {
			t.Errorf("Prefix = %q, want %q", cfg.Prefix, "beside")
		}
	})

	t.Run("xdg config home", func(t *testing.T) {
		dir := filepath.Join(xdg.ConfigHome, "pylaunch")
		os.MkdirAll(dir, 0o755)
		path := filepath.Join(dir, "config.toml")
		os.WriteFile(path, []byte("prefix = \"xdg\"\n"), 0o644)
		defer os.Remove(path)

		if got := Find(t.TempDir()); got != path {
			t.Errorf("Find() = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing", func(t *testing.T) {
		_, err := Resolve(filepath.Join(t.TempDir(), "gone.toml"), t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("Resolve() error = %v, want not found", err)
		}
	})
}

func TestLogDirIn(t *testing.T) {
	cfg := Default()
	base := filepath.Join(string(filepath.Separator), "opt", "pylaunch")
	if got := cfg.LogDirIn(base); got != filepath.Join(base, "logs") {
		t.Errorf("LogDirIn() = %q, want %q", got, filepath.Join(base, "logs"))
	}

	abs := t.TempDir()
	cfg.LogDir = abs
	if got := cfg.LogDirIn(base); got != abs {
		t.Errorf("LogDirIn() = %q, want absolute dir unchanged", got)
	}
}

func TestEnviron(t *testing.T) {
	cfg := Default()
	cfg.Env["APP_MODE"] = "debug"

	got := cfg.Environ([]string{"PATH=/usr/bin", "PYTHONIOENCODING=latin-1"})
	want := []string{"PATH=/usr/bin", "PYTHONIOENCODING=latin-1", "APP_MODE=debug", "PYTHONIOENCODING=utf-8"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Environ() = %v, want %v", got, want)
	}
}
