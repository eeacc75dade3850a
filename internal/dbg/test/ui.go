package test

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/neovim/go-client/nvim"
)

// UI is an in-memory Neovim. Every command is recorded; split commands
// (ending in "new") open a window, "close!" closes the current one.
type UI struct {
	mu sync.Mutex

	nextWin nvim.Window
	nextBuf nvim.Buffer

	windows []nvim.Window
	bufs    map[nvim.Window]nvim.Buffer
	lines   map[nvim.Buffer][]string
	current nvim.Window

	commands []string
}

func NewUI() *UI {
	u := &UI{
		nextWin: 1000,
		nextBuf: 1,
		bufs:    make(map[nvim.Window]nvim.Buffer),
		lines:   make(map[nvim.Buffer][]string),
	}
	u.current = u.newWindow()
	return u
}

func (u *UI) newWindow() nvim.Window {
	w := u.nextWin
	u.nextWin++
	u.bufs[w] = u.nextBuf
	u.nextBuf++
	u.windows = append(u.windows, w)
	return w
}

func (u *UI) valid(w nvim.Window) bool {
	_, ok := u.bufs[w]
	return ok
}

func (u *UI) remove(w nvim.Window) {
	delete(u.bufs, w)
	for i, x := range u.windows {
		if x == w {
			u.windows = append(u.windows[:i], u.windows[i+1:]...)
			break
		}
	}
	if u.current == w && len(u.windows) > 0 {
		u.current = u.windows[0]
	}
}

func (u *UI) Command(cmd string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.commands = append(u.commands, cmd)

	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return errors.New("empty command")
	}
	switch {
	case strings.HasSuffix(fields[len(fields)-1], "new"):
		u.current = u.newWindow()
	case fields[0] == "close!" || fields[0] == "close":
		if len(u.windows) == 1 {
			return errors.New("E444: Cannot close last window")
		}
		u.remove(u.current)
	}
	return nil
}

func (u *UI) CurrentWindow() (nvim.Window, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.current, nil
}

func (u *UI) SetCurrentWindow(w nvim.Window) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.valid(w) {
		return fmt.Errorf("invalid window id: %d", w)
	}
	u.current = w
	return nil
}

func (u *UI) IsWindowValid(w nvim.Window) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.valid(w), nil
}

func (u *UI) WindowBuffer(w nvim.Window) (nvim.Buffer, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	b, ok := u.bufs[w]
	if !ok {
		return 0, fmt.Errorf("invalid window id: %d", w)
	}
	return b, nil
}

func (u *UI) SetBufferLines(b nvim.Buffer, start, end int, strict bool, replacement [][]byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if start != 0 || end != -1 {
		return errors.New("only whole buffer replacement is supported")
	}
	lines := make([]string, len(replacement))
	for i, l := range replacement {
		lines[i] = string(l)
	}
	u.lines[b] = lines
	return nil
}

func (u *UI) Eval(expr string, result interface{}) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch expr {
	case "winnr('$')":
		n, ok := result.(*int)
		if !ok {
			return fmt.Errorf("unexpected result type %T", result)
		}
		*n = len(u.windows)
		return nil
	}
	return fmt.Errorf("unsupported expression %q", expr)
}

// Split opens an extra window as a user would.
func (u *UI) Split() nvim.Window {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.current = u.newWindow()
	return u.current
}

// CloseWindow closes w behind the back of the panes.
func (u *UI) CloseWindow(w nvim.Window) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.remove(w)
}

// Lines returns the content of the buffer shown in w.
func (u *UI) Lines(w nvim.Window) []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lines[u.bufs[w]]
}

func (u *UI) Windows() []nvim.Window {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]nvim.Window(nil), u.windows...)
}

func (u *UI) Commands() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.commands...)
}

// CommandsWithPrefix returns the recorded commands starting with prefix.
func (u *UI) CommandsWithPrefix(prefix string) []string {
	var res []string
	for _, c := range u.Commands() {
		if strings.HasPrefix(c, prefix) {
			res = append(res, c)
		}
	}
	return res
}

func (u *UI) ResetCommands() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.commands = nil
}
