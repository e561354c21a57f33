// Package viewer opens a finished log file in a text viewer.
package viewer

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Opener displays a file to the user.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Starter starts a process without waiting for it to exit.
type Starter interface {
	Start(ctx context.Context, name string, args ...string) error
}

// ExecStarter starts real processes. The viewer is detached from ctx's
// cancellation so it outlives the launcher.
type ExecStarter struct{}

func (ExecStarter) Start(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(context.WithoutCancel(ctx), name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// DefaultCommand returns the platform's plain text viewer.
func DefaultCommand() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"notepad"}
	case "darwin":
		return []string{"open", "-t"}
	default:
		return []string{"xdg-open"}
	}
}

// Command runs Argv with the file path appended.
type Command struct {
	Argv    []string
	Starter Starter
}

// New returns a Command for argv, or the platform default when argv is empty.
func New(argv []string) *Command {
	if len(argv) == 0 {
		argv = DefaultCommand()
	}
	return &Command{Argv: argv, Starter: ExecStarter{}}
}

func (c *Command) Open(ctx context.Context, path string) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("no viewer command configured")
	}
	starter := c.Starter
	if starter == nil {
		starter = ExecStarter{}
	}

	args := make([]string, 0, len(c.Argv))
	args = append(args, c.Argv[1:]...)
	args = append(args, path)
	if err := starter.Start(ctx, c.Argv[0], args...); err != nil {
		return fmt.Errorf("opening %s with %s: %w", path, c.Argv[0], err)
	}
	return nil
}

// Nop does nothing; used with --no-viewer.
type Nop struct{}

func (Nop) Open(context.Context, string) error { return nil }
