package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// defaultWaitDelay bounds how long Run waits for output pipes to drain after
// the child has exited or been killed by ctx.
const defaultWaitDelay = 2 * time.Second

// PythonRunner executes a script with the resolved interpreter.
// Stdout and stderr share one writer: for an *os.File the child inherits the
// descriptor directly, otherwise os/exec copies through a single pipe. Either
// way the log keeps the order the child wrote in.
type PythonRunner struct {
	// WaitDelay overrides defaultWaitDelay when positive.
	WaitDelay time.Duration
}

func (r *PythonRunner) Run(ctx context.Context, rc RunContext, logFile io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, rc.Interpreter, rc.Args()...)
	cmd.Dir = rc.Dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = rc.Env
	cmd.WaitDelay = defaultWaitDelay
	if r.WaitDelay > 0 {
		cmd.WaitDelay = r.WaitDelay
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	// Never started: there is no status of the child's own to report.
	if cmd.ProcessState == nil {
		return ExitNotStarted, fmt.Errorf("python runner %s: %w", rc.ScriptPath, err)
	}

	code := StateCode(cmd.ProcessState)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return code, fmt.Errorf("python runner %s: %w", rc.ScriptPath, ctxErr)
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		return code, fmt.Errorf("python runner %s: output still open after exit, later output not logged: %w", rc.ScriptPath, err)
	}
	return code, nil
}
