// Package session owns the goroutine that runs the remote UI loop.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"gni.dev/neodbg/internal/remote"
)

// StopMethod is the RPC request that makes the loop return.
const StopMethod = "neodbg_stop"

const DefaultTimeout = time.Second

var ErrStartTimeout = errors.New("session: loop did not start in time")

type State int

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Loop is a blocking single-goroutine event loop.
type Loop interface {
	RunLoop(h remote.RequestHandler, setup func()) error
	AsyncCall(fn func()) error
	StopLoop()
}

type Manager struct {
	loop    Loop
	timeout time.Duration

	mu    sync.Mutex
	state State
	done  chan struct{}
}

// New returns a manager for loop. timeout bounds both startup and the
// join on Stop; zero means DefaultTimeout.
func New(loop Loop, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{loop: loop, timeout: timeout}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Running() bool {
	return m.State() == Running
}

// Start launches the loop goroutine unless one is already running and
// waits until the loop accepts work.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.state != Idle {
		m.mu.Unlock()
		return nil
	}
	m.state = Running
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	ready := make(chan struct{})
	go func() {
		defer close(done)
		err := m.loop.RunLoop(m.handleRequest, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.done != done {
				// Start gave up waiting
				m.loop.StopLoop()
				return
			}
			close(ready)
		})
		if err != nil {
			slog.Error("ui loop ended", "err", err)
		} else {
			slog.Debug("ui loop ended")
		}
		m.mu.Lock()
		// the loop can also end from the remote side
		if m.done == done && m.state == Running {
			m.state = Idle
		}
		m.mu.Unlock()
	}()

	select {
	case <-ready:
		slog.Debug("ui loop started")
		return nil
	case <-done:
		return errors.New("session: loop exited during startup")
	case <-time.After(m.timeout):
		m.mu.Lock()
		defer m.mu.Unlock()
		select {
		case <-ready:
			return nil
		default:
		}
		if m.done == done {
			m.state = Idle
			m.done = nil
		}
		return ErrStartTimeout
	}
}

// Stop asks the loop to return and waits for its goroutine at most the
// manager timeout. It is a no-op unless the loop is running.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return
	}
	m.state = Stopping
	done := m.done
	m.mu.Unlock()

	if err := m.loop.AsyncCall(m.loop.StopLoop); err != nil {
		slog.Debug("stop not scheduled", "err", err)
	}

	select {
	case <-done:
	case <-time.After(m.timeout):
		slog.Warn("ui loop did not stop in time", "timeout", m.timeout)
	}

	m.mu.Lock()
	m.state = Idle
	m.mu.Unlock()
}

func (m *Manager) handleRequest(method string, args []interface{}) {
	switch method {
	case StopMethod:
		slog.Info("stop requested by nvim")
		m.loop.StopLoop()
	default:
		slog.Debug("ignoring request", "method", method)
	}
}
