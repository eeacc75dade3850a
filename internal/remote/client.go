// Package remote owns the single msgpack-rpc connection to the Neovim
// instance that hosts the debugger panes.
package remote

import "github.com/neovim/go-client/nvim"

// Client is the part of the Neovim API used to drive panes. Its methods
// must only be called from the goroutine running Session.RunLoop.
type Client interface {
	Command(cmd string) error
	CurrentWindow() (nvim.Window, error)
	SetCurrentWindow(w nvim.Window) error
	IsWindowValid(w nvim.Window) (bool, error)
	WindowBuffer(w nvim.Window) (nvim.Buffer, error)
	SetBufferLines(b nvim.Buffer, start, end int, strict bool, replacement [][]byte) error
	Eval(expr string, result interface{}) error
}

var _ Client = (*nvim.Nvim)(nil)
