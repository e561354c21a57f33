package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// PausePrompt is shown before waiting for acknowledgment.
const PausePrompt = "Press any key to continue . . . "

// Pauser blocks until the user acknowledges.
type Pauser interface {
	Pause() error
}

// KeyPauser waits for a key press on In. On a terminal a single key is
// enough; otherwise a full line (or EOF) is read.
type KeyPauser struct {
	In  io.Reader
	Out io.Writer
}

// NewKeyPauser returns a pauser on the process's stdin/stdout.
func NewKeyPauser() *KeyPauser {
	return &KeyPauser{In: os.Stdin, Out: os.Stdout}
}

func (p *KeyPauser) Pause() error {
	fmt.Fprint(p.Out, PausePrompt)
	defer fmt.Fprintln(p.Out)

	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err == nil {
			defer term.Restore(fd, state)
			buf := make([]byte, 1)
			_, err = f.Read(buf)
			return ignoreEOF(err)
		}
	}

	_, err := bufio.NewReader(p.In).ReadString('\n')
	return ignoreEOF(err)
}

// An unattended launcher with stdin closed should still finish.
func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// NopPauser returns immediately; used with --no-pause.
type NopPauser struct{}

func (NopPauser) Pause() error { return nil }
