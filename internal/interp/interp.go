// Package interp locates a Python interpreter by walking an ordered list of
// resolution strategies. The first strategy that yields a path wins.
package interp

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoInterpreter is returned when every strategy misses.
var ErrNoInterpreter = errors.New("no interpreter found")

// Env reads environment variables.
type Env interface {
	Getenv(key string) string
}

// OSEnv reads the process environment.
type OSEnv struct{}

func (OSEnv) Getenv(key string) string { return os.Getenv(key) }

// MapEnv is a fixed environment, mostly for tests.
type MapEnv map[string]string

func (m MapEnv) Getenv(key string) string { return m[key] }

// Strategy is one step of the search order.
type Strategy interface {
	Resolve() (path string, ok bool)
	String() string
}

// LookPath probes the executable search path for Name.
type LookPath struct {
	Name string
	Look func(file string) (string, error) // defaults to exec.LookPath
}

func (l LookPath) Resolve() (string, bool) {
	look := l.Look
	if look == nil {
		look = exec.LookPath
	}
	path, err := look(l.Name)
	if err != nil {
		return "", false
	}
	return path, true
}

func (l LookPath) String() string { return "PATH:" + l.Name }

// Fallback is a fixed install location. ${VAR} references in Template are
// expanded from Env.
//
// When Unconditional is set the expanded path is returned even if nothing
// exists there, so the spawn fails visibly instead of the launcher guessing.
type Fallback struct {
	Template      string
	Env           Env
	Stat          func(name string) (os.FileInfo, error) // defaults to os.Stat
	Unconditional bool
}

func (f Fallback) Path() string {
	env := f.Env
	if env == nil {
		env = OSEnv{}
	}
	return os.Expand(f.Template, env.Getenv)
}

func (f Fallback) Resolve() (string, bool) {
	if f.Template == "" {
		return "", false
	}
	path := f.Path()
	if f.Unconditional {
		return path, true
	}
	stat := f.Stat
	if stat == nil {
		stat = os.Stat
	}
	if info, err := stat(path); err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func (f Fallback) String() string { return "fallback:" + f.Template }

// Resolution records which strategy produced the interpreter.
type Resolution struct {
	Path     string
	Strategy string
}

// Resolver tries Strategies in order.
type Resolver struct {
	Strategies []Strategy
}

// New builds the standard search order: each candidate name on the search
// path, then the fallback template as an unconditional last resort.
func New(candidates []string, fallback string, env Env) *Resolver {
	r := &Resolver{}
	for _, name := range candidates {
		r.Strategies = append(r.Strategies, LookPath{Name: name})
	}
	if fallback != "" {
		r.Strategies = append(r.Strategies, Fallback{
			Template:      fallback,
			Env:           env,
			Unconditional: true,
		})
	}
	return r
}

// Resolve returns the first hit.
func (r *Resolver) Resolve() (Resolution, error) {
	tried := make([]string, 0, len(r.Strategies))
	for _, s := range r.Strategies {
		if path, ok := s.Resolve(); ok {
			return Resolution{Path: path, Strategy: s.String()}, nil
		}
		tried = append(tried, s.String())
	}
	return Resolution{}, fmt.Errorf("%w (tried %s)", ErrNoInterpreter, strings.Join(tried, ", "))
}

// DefaultCandidates returns the executable names probed on this platform.
func DefaultCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{"py", "python", "python3"}
	}
	return []string{"python3", "python"}
}

// DefaultFallback returns the install path tried when nothing is on PATH.
func DefaultFallback() string {
	if runtime.GOOS == "windows" {
		return `${LOCALAPPDATA}\Programs\Python\Python312\python.exe`
	}
	return "${HOME}/.local/bin/python3"
}
