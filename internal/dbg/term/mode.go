package term

import (
	"errors"

	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("stdin and stdout must be terminals")

type State struct {
	st *term.State
	fd int
}

// MakeRaw puts the terminal connected to in into raw mode. out must be a
// terminal as well.
func MakeRaw(in, out int) (*State, error) {
	if !term.IsTerminal(in) || !term.IsTerminal(out) {
		return nil, ErrNotTerminal
	}
	st, err := term.MakeRaw(in)
	if err != nil {
		return nil, err
	}
	return &State{st: st, fd: in}, nil
}

func (s *State) Restore() error {
	return term.Restore(s.fd, s.st)
}
