// Package launcher runs a Python script with its combined output captured
// into a fresh timestamped log file, reports the exit status, shows the log
// and waits for the user before returning.
//
// A run moves through a fixed sequence of steps and never revisits one:
//
//	validate argument → validate file → resolve interpreter →
//	ensure log dir → create log file → spawn and wait →
//	report status → open viewer → await acknowledgment
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/druarnfield/pylaunch/internal/config"
	"github.com/druarnfield/pylaunch/internal/console"
	"github.com/druarnfield/pylaunch/internal/interp"
	"github.com/druarnfield/pylaunch/internal/logfile"
	"github.com/druarnfield/pylaunch/internal/runner"
	"github.com/druarnfield/pylaunch/internal/viewer"
)

// UsageHint is printed when no script is given.
const UsageHint = "usage: drag a Python script onto pylaunch, or run: pylaunch <script.py>"

// ErrUsage is the cause of every UsageError.
var ErrUsage = errors.New("no script given")

// UsageError reports a run started without a script path.
type UsageError struct{}

func (e *UsageError) Error() string { return ErrUsage.Error() }
func (e *UsageError) Unwrap() error { return ErrUsage }

// NotFoundError reports a script path that is not an existing file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return "file not found: " + e.Path }
func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// UnreadableError reports a script that exists but cannot be opened.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string { return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err) }
func (e *UnreadableError) Unwrap() error { return e.Err }

// Result describes a completed run.
type Result struct {
	Interpreter interp.Resolution
	LogPath     string
	ExitCode    int
	StartedAt   time.Time
	EndedAt     time.Time
	Err         error // spawn failure or timeout; nil for any normal exit
}

// Launcher holds everything a run depends on. Process-wide state (clock,
// filesystem, search path, environment) is injected so tests can fake it.
type Launcher struct {
	Fs       afero.Fs
	Clock    clockwork.Clock
	Resolver *interp.Resolver
	Runner   runner.Runner
	Viewer   viewer.Opener
	Pauser   console.Pauser
	Out      io.Writer // user-facing messages
	Tee      io.Writer // optional copy of the child's output

	BaseDir   string // working directory of the child
	LogDir    string // absolute log directory
	Prefix    string
	Extension string
	Flags     []string
	Env       []string      // child environment; nil inherits
	Timeout   time.Duration // 0 waits for the child indefinitely
}

// New builds a Launcher from cfg with real process dependencies. baseDir is
// the directory the launcher runs from, normally the one holding its binary.
func New(cfg *config.Config, baseDir string) *Launcher {
	return &Launcher{
		Fs:        afero.NewOsFs(),
		Clock:     clockwork.NewRealClock(),
		Resolver:  interp.New(cfg.Candidates, cfg.Fallback, interp.OSEnv{}),
		Runner:    &runner.PythonRunner{},
		Viewer:    viewer.New(cfg.Viewer),
		Pauser:    console.NewKeyPauser(),
		Out:       os.Stdout,
		BaseDir:   baseDir,
		LogDir:    cfg.LogDirIn(baseDir),
		Prefix:    cfg.Prefix,
		Extension: cfg.Extension,
		Flags:     cfg.Flags,
		Env:       cfg.Environ(os.Environ()),
		Timeout:   cfg.Timeout.Duration,
	}
}

// Run executes target and returns once the user has acknowledged the result.
// It returns a *UsageError, *NotFoundError or *UnreadableError, after
// pausing, when there is nothing to run. A failing script is not an error: its status is in Result.
func (l *Launcher) Run(ctx context.Context, target string) (*Result, error) {
	if strings.TrimSpace(target) == "" {
		console.Hint(l.Out, UsageHint)
		l.pause()
		return nil, &UsageError{}
	}

	scriptPath, err := filepath.Abs(target)
	if err != nil {
		scriptPath = target
	}
	if err := l.checkReadable(scriptPath, target); err != nil {
		console.Error(l.Out, "%v", err)
		l.pause()
		return nil, err
	}

	res := &Result{}

	// A resolver error means every strategy missed. The empty interpreter
	// then fails at spawn and is reported like any other start failure.
	res.Interpreter, err = l.Resolver.Resolve()
	if err != nil {
		log.Debug().Err(err).Msg("interpreter resolution failed")
	} else {
		log.Debug().Str("interpreter", res.Interpreter.Path).Str("via", res.Interpreter.Strategy).Msg("resolved interpreter")
	}

	if err := l.Fs.MkdirAll(l.LogDir, 0o755); err != nil {
		console.Error(l.Out, "creating log directory %s: %v", l.LogDir, err)
		l.pause()
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	res.StartedAt = l.Clock.Now()
	logFile, logPath, err := logfile.Create(l.Fs, l.LogDir, l.Prefix, l.Extension, res.StartedAt)
	if err != nil {
		console.Error(l.Out, "%v", err)
		l.pause()
		return nil, err
	}
	res.LogPath = logPath
	log.Debug().Str("log", logPath).Msg("created log file")

	fmt.Fprintf(l.Out, "Running %s\n", target)
	res.ExitCode, res.Err = l.spawn(ctx, scriptPath, res.Interpreter.Path, logFile)
	res.EndedAt = l.Clock.Now()

	if err := logFile.Close(); err != nil {
		console.Warn(l.Out, "closing log file: %v", err)
	}

	log.Debug().Int("exit_code", res.ExitCode).Dur("duration", res.EndedAt.Sub(res.StartedAt)).Msg("script finished")
	console.Report(l.Out, res.ExitCode, logPath)
	if res.Err != nil {
		console.Warn(l.Out, "%v", res.Err)
	}

	if err := l.Viewer.Open(ctx, logPath); err != nil {
		console.Warn(l.Out, "%v", err)
	}

	l.pause()
	return res, nil
}

// spawn runs the script with its output appended to logFile. Launcher-side
// failures are appended to the log too, so the viewer shows them.
func (l *Launcher) spawn(ctx context.Context, scriptPath, interpreter string, logFile io.Writer) (int, error) {
	runCtx := ctx
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	var w io.Writer = logFile
	if l.Tee != nil {
		w = io.MultiWriter(logFile, l.Tee)
	}

	rc := runner.RunContext{
		Interpreter: interpreter,
		Flags:       l.Flags,
		ScriptPath:  scriptPath,
		Dir:         l.BaseDir,
		Env:         l.Env,
	}

	code, err := l.Runner.Run(runCtx, rc, w)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("stopped after %s timeout: %w", l.Timeout, err)
		}
		fmt.Fprintf(w, "pylaunch: %v\n", err)
	}
	return code, err
}

// checkReadable returns a *NotFoundError when path is missing or a directory,
// and a *UnreadableError when it exists but cannot be opened. Errors name the
// script as the user gave it.
func (l *Launcher) checkReadable(path, target string) error {
	info, err := l.Fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return &NotFoundError{Path: target}
	}
	if err != nil {
		return &UnreadableError{Path: target, Err: err}
	}

	f, err := l.Fs.Open(path)
	if err != nil {
		return &UnreadableError{Path: target, Err: err}
	}
	f.Close()
	return nil
}

func (l *Launcher) pause() {
	if l.Pauser == nil {
		return
	}
	if err := l.Pauser.Pause(); err != nil {
		log.Debug().Err(err).Msg("pause")
	}
}
