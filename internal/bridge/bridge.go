// Package bridge runs work on the UI loop on behalf of the debugger
// goroutine and blocks the debugger until that work is done.
package bridge

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"gni.dev/neodbg/internal/dbg"
)

// Scheduler queues a function on a single-goroutine loop. It must fail
// instead of blocking when the loop is not running.
type Scheduler interface {
	AsyncCall(fn func()) error
}

// Invoker serializes bridged calls. Only one call is in flight at a time.
type Invoker struct {
	mu    sync.Mutex
	sched Scheduler
}

type pendingCall struct {
	fn       func()
	done     chan struct{}
	finalize func()
}

func New(s Scheduler) *Invoker {
	return &Invoker{sched: s}
}

// Call runs fn on the loop and waits for it. finalize, if not nil, runs on
// the calling goroutine after fn has finished and before the next Call may
// start.
func (inv *Invoker) Call(fn func(), finalize func()) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	pc := &pendingCall{
		fn:       fn,
		done:     make(chan struct{}, 1),
		finalize: finalize,
	}
	if err := inv.sched.AsyncCall(pc.run); err != nil {
		return fmt.Errorf("bridge: schedule: %w", err)
	}
	<-pc.done

	if pc.finalize != nil {
		pc.finalize()
	}
	return nil
}

func (pc *pendingCall) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("bridged call panicked", "panic", r, "stack", string(debug.Stack()))
		}
		pc.done <- struct{}{}
	}()
	pc.fn()
}

// Bridge wraps h so that calling the result on the debugger goroutine runs
// h on the loop. finalizer picks the finalize hook for each event and may
// be nil. Scheduling failures are logged and the event is dropped.
func (inv *Invoker) Bridge(h dbg.Handler, finalizer func(dbg.Event) func()) dbg.Handler {
	return func(ev dbg.Event) {
		var finalize func()
		if finalizer != nil {
			finalize = finalizer(ev)
		}
		if err := inv.Call(func() { h(ev) }, finalize); err != nil {
			slog.Warn("event dropped", "event", ev.Kind, "err", err)
		}
	}
}
