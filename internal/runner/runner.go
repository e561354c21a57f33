package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// DefaultFlags turn on Python development mode and unbuffered output, so
// warnings are shown and stdout/stderr reach the log in the order written.
var DefaultFlags = []string{"-X", "dev", "-u"}

// ExitNotStarted is reported when the interpreter could not be started at
// all, matching the shell's "command not found" status.
const ExitNotStarted = 127

// RunContext holds the information a runner needs to execute a script.
type RunContext struct {
	Interpreter string   // resolved interpreter executable
	Flags       []string // interpreter flags placed before the script path
	ScriptPath  string   // absolute path to the target script
	Dir         string   // working directory of the child
	Env         []string // full child environment; nil inherits the launcher's
}

// Args returns the interpreter arguments: flags, then the script path.
func (rc RunContext) Args() []string {
	args := make([]string, 0, len(rc.Flags)+1)
	args = append(args, rc.Flags...)
	return append(args, rc.ScriptPath)
}

// Runner executes a script.
//
// Contract:
//   - Run blocks until the child exits and returns its numeric exit status.
//   - logFile receives combined stdout and stderr from the child.
//   - A non-zero exit is not an error. The error is non-nil when the child
//     could not be started, was stopped by ctx, or exited while a descendant
//     still held its output open. Once the child has run, the status is its
//     own (see StateCode).
type Runner interface {
	Run(ctx context.Context, rc RunContext, logFile io.Writer) (int, error)
}

// ExitCode maps the error from exec.Cmd.Run/Wait to a numeric status:
// 0 for success, the child's status for a normal exit, 128+signal when the
// child was killed by a signal, and ExitNotStarted when it never ran.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return StateCode(exitErr.ProcessState)
	}

	return ExitNotStarted
}

// StateCode returns the status of an exited child, 128+signal when it was
// killed by a signal.
func StateCode(state *os.ProcessState) int {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return state.ExitCode()
}
