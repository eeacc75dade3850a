// Package ui models the Neovim windows that show debugger state.
//
// All functions in this package talk to Neovim and must run on the remote
// session loop; nothing here is safe for concurrent use.
package ui

import (
	"log/slog"
	"strings"

	"github.com/neovim/go-client/nvim"

	"gni.dev/neodbg/internal/remote"
)

// Pane is one Neovim window plus the buffer it shows. A zero window means
// the pane does not exist.
type Pane struct {
	c     remote.Client
	name  string
	split string

	win  nvim.Window
	buf  nvim.Buffer
	prev nvim.Window
}

func newPane(c remote.Client, name, split string) *Pane {
	return &Pane{c: c, name: name, split: split}
}

// Window returns the window handle, zero when the pane is closed.
func (p *Pane) Window() nvim.Window {
	return p.win
}

// Valid reports whether the pane window still exists in Neovim.
func (p *Pane) Valid() bool {
	return windowValid(p.c, p.win)
}

func windowValid(c remote.Client, w nvim.Window) bool {
	if w == 0 {
		return false
	}
	ok, err := c.IsWindowValid(w)
	if err != nil {
		slog.Debug("window check failed", "window", w, "err", err)
		return false
	}
	return ok
}

// adopt binds the pane to the current window.
func (p *Pane) adopt() error {
	w, err := p.c.CurrentWindow()
	if err != nil {
		return err
	}
	b, err := p.c.WindowBuffer(w)
	if err != nil {
		return err
	}
	p.win, p.buf = w, b
	return nil
}

// open runs the split command and binds the new window to a scratch
// buffer. It does nothing when the pane is already open.
func (p *Pane) open() error {
	if p.Valid() {
		return nil
	}
	if err := p.c.Command(p.split); err != nil {
		return err
	}
	if err := p.c.Command("setlocal buftype=nofile bufhidden=hide noswapfile nobuflisted"); err != nil {
		return err
	}
	if err := p.c.Command("file neodbg://" + p.name); err != nil {
		slog.Debug("naming pane buffer failed", "pane", p.name, "err", err)
	}
	return p.adopt()
}

// Focus makes the pane the current window, remembering the previous one.
func (p *Pane) Focus() {
	if !p.Valid() {
		return
	}
	cur, err := p.c.CurrentWindow()
	if err != nil {
		slog.Warn("reading current window failed", "err", err)
		return
	}
	p.prev = cur
	if err := p.c.SetCurrentWindow(p.win); err != nil {
		slog.Warn("focus failed", "pane", p.name, "err", err)
	}
}

// Unfocus returns to the window that was current before Focus, when that
// window still exists.
func (p *Pane) Unfocus() {
	prev := p.prev
	p.prev = 0
	if !windowValid(p.c, prev) {
		return
	}
	if err := p.c.SetCurrentWindow(prev); err != nil {
		slog.Warn("unfocus failed", "pane", p.name, "err", err)
	}
}

// Close closes the pane window and forgets it.
func (p *Pane) Close() {
	if !p.Valid() {
		p.win, p.buf = 0, 0
		return
	}
	p.Focus()
	if err := p.c.Command("close!"); err != nil {
		slog.Warn("close failed", "pane", p.name, "err", err)
	}
	p.Unfocus()
	p.win, p.buf = 0, 0
}

// SetLines replaces the whole pane content.
func (p *Pane) SetLines(lines []string) {
	if !p.Valid() {
		return
	}
	replacement := make([][]byte, len(lines))
	for i, l := range lines {
		// buffer lines cannot contain newlines
		replacement[i] = []byte(strings.ReplaceAll(l, "\n", `\n`))
	}
	if err := p.c.SetBufferLines(p.buf, 0, -1, true, replacement); err != nil {
		slog.Warn("writing pane failed", "pane", p.name, "err", err)
	}
}
