// Package term is the debugger console run in the host window.
package term

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/term"
)

const (
	escRed   = "\x1b[31m"
	escReset = "\x1b[0m"
)

type Term struct {
	t   *term.Terminal
	cmd *Commands
}

// New returns a console reading commands from rw. The commands write their
// output to the console.
func New(rw io.ReadWriter, prompt string, cmd *Commands) *Term {
	t := &Term{
		t:   term.NewTerminal(rw, prompt),
		cmd: cmd,
	}
	cmd.out = t.t
	return t
}

// Run executes initCmd, if any, and then reads commands until EOF or exit.
// The debugger is detached on return.
func (t *Term) Run(initCmd string) error {
	if initCmd != "" {
		if err := t.cmd.Process(initCmd); err != nil {
			if errors.Is(err, io.EOF) {
				return t.cmd.Close()
			}
			t.printError("Command failed", err)
		}
	}
	for {
		line, err := t.t.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.printError("Error reading line", err)
			break
		}

		if line == "" {
			continue
		}

		if err := t.cmd.Process(line); err != nil {
			if err == io.EOF {
				break
			}
			t.printError("Command failed", err)
		}
	}
	return t.cmd.Close()
}

func (t *Term) printError(what string, err error) {
	fmt.Fprintf(t.t, "%s%s: %s%s\n", escRed, what, err, escReset)
}
