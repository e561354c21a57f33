package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"

	"github.com/druarnfield/pylaunch/internal/interp"
	"github.com/druarnfield/pylaunch/internal/runner"
)

// FileName is the config file looked up next to the launcher binary.
const FileName = "pylaunch.toml"

// Duration wraps time.Duration for TOML unmarshalling.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

// Config holds launcher settings. Every field has a default, so the file is
// optional and may set any subset.
type Config struct {
	LogDir     string            `toml:"log_dir" validate:"required"`
	Prefix     string            `toml:"prefix" validate:"required,filesafe"`
	Extension  string            `toml:"extension" validate:"omitempty,alpha"`
	Candidates []string          `toml:"candidates" validate:"required_without=Fallback,dive,required"`
	Fallback   string            `toml:"fallback"`
	Flags      []string          `toml:"flags"`
	Viewer     []string          `toml:"viewer" validate:"omitempty,dive,required"`
	Timeout    Duration          `toml:"timeout"`
	Pause      bool              `toml:"pause"`
	Env        map[string]string `toml:"env" validate:"dive,keys,envkey,endkeys"`
	path       string            // unexported: filesystem path of the config, "" for defaults
}

// Path returns the filesystem path this config was loaded from, or "" when
// only defaults are in effect.
func (c *Config) Path() string {
	return c.path
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogDir:     "logs",
		Prefix:     "run",
		Extension:  "log",
		Candidates: interp.DefaultCandidates(),
		Fallback:   interp.DefaultFallback(),
		Flags:      append([]string(nil), runner.DefaultFlags...),
		Pause:      true,
		Env:        map[string]string{"PYTHONIOENCODING": "utf-8"},
	}
}

var (
	fileSafe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	envKey   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("filesafe", func(fl validator.FieldLevel) bool {
		return fileSafe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("envkey", func(fl validator.FieldLevel) bool {
		return envKey.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("invalid config: timeout %s is negative", c.Timeout.Duration)
	}
	if len(c.Candidates) == 0 && c.Fallback == "" {
		return fmt.Errorf("invalid config: candidates and fallback are both empty")
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Load parses a config file on top of the defaults.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", absPath, err)
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", absPath, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parsing %q: unknown keys %s", absPath, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}

	cfg.path = absPath
	return cfg, nil
}

// Find returns the first config file that exists: pylaunch.toml in baseDir,
// then pylaunch/config.toml under the XDG config home. Returns "" if neither
// exists.
func Find(baseDir string) string {
	candidates := []string{
		filepath.Join(baseDir, FileName),
		filepath.Join(xdg.ConfigHome, "pylaunch", "config.toml"),
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Resolve loads the explicit path if given (it must exist), otherwise the
// first file found by Find, otherwise the defaults.
func Resolve(explicit, baseDir string) (*Config, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %q not found", explicit)
		}
		return cfg, err
	}
	if found := Find(baseDir); found != "" {
		return Load(found)
	}
	return Default(), nil
}

// LogDirIn returns the log directory, made absolute relative to baseDir.
func (c *Config) LogDirIn(baseDir string) string {
	if filepath.IsAbs(c.LogDir) {
		return c.LogDir
	}
	return filepath.Join(baseDir, c.LogDir)
}

// Environ returns base with the configured variables appended in key order.
// Later entries win in os/exec, so configured values override inherited ones.
func (c *Config) Environ(base []string) []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(keys))
	env = append(env, base...)
	for _, k := range keys {
		env = append(env, k+"="+c.Env[k])
	}
	return env
}
