package controller

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"gni.dev/neodbg/internal/bridge"
	"gni.dev/neodbg/internal/dbg"
	"gni.dev/neodbg/internal/remote"
	"gni.dev/neodbg/internal/session"
	"gni.dev/neodbg/internal/ui"
)

var ErrNoRemoteUI = errors.New("no nvim to attach to (NVIM_LISTEN_ADDRESS is not set)")

type Options struct {
	Layout ui.Options
	// StopTimeout bounds the loop startup and shutdown.
	StopTimeout time.Duration
}

// Plugin is the user command that mirrors the debugger into Neovim.
type Plugin struct {
	d       dbg.Debugger
	connect func() (*remote.Session, error)
	opts    Options

	mu      sync.Mutex
	manager *session.Manager
	ctl     *Controller
}

// NewPlugin returns the start command for d. connect yields the shared
// remote session, or nil when no Neovim is available.
func NewPlugin(d dbg.Debugger, connect func() (*remote.Session, error), opts Options) *Plugin {
	return &Plugin{d: d, connect: connect, opts: opts}
}

// Start attaches to Neovim on first use and runs the UI loop. Calling it
// while the loop runs does nothing.
func (p *Plugin) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.manager == nil {
		sess, err := p.connect()
		if err != nil {
			return err
		}
		if sess == nil {
			return ErrNoRemoteUI
		}
		p.manager = session.New(sess, p.opts.StopTimeout)
		p.ctl = New(sess.Client(), ui.NewLayout(sess.Client(), p.opts.Layout))

		slog.Info("attached to nvim", "channel", sess.ChannelID())

		inv := bridge.New(sess)
		p.d.Subscribe(inv.Bridge(p.ctl.Dispatch, p.finalizer))
	}
	return p.manager.Start()
}

// Running reports whether the UI loop is up.
func (p *Plugin) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.manager != nil && p.manager.Running()
}

// Stop shuts the UI loop down; the panes stay as they are.
func (p *Plugin) Stop() {
	p.mu.Lock()
	m := p.manager
	p.mu.Unlock()
	if m != nil {
		m.Stop()
	}
}

// finalizer stops the loop once the exit handler is done, so no bridged
// call can be scheduled on a stopping loop.
func (p *Plugin) finalizer(ev dbg.Event) func() {
	if ev.Kind != dbg.Exited {
		return nil
	}
	return p.manager.Stop
}
