package dbg

import "sync"

// EventKind identifies a debugger lifecycle event.
type EventKind int

const (
	Continue EventKind = iota
	Stop
	Exited
	BreakpointCreated
	BreakpointModified
	BreakpointDeleted
)

func (k EventKind) String() string {
	switch k {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	case Exited:
		return "exited"
	case BreakpointCreated:
		return "breakpoint-created"
	case BreakpointModified:
		return "breakpoint-modified"
	case BreakpointDeleted:
		return "breakpoint-deleted"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers on the goroutine that drives the
// debugger. Payload fields are set according to Kind.
type Event struct {
	Kind EventKind

	// Snapshot is the state captured at a Stop.
	Snapshot *Snapshot
	// Breakpoint is the breakpoint affected by a breakpoint event.
	Breakpoint *Breakpoint
	// Breakpoints is the full list after a breakpoint event.
	Breakpoints []Breakpoint
	// ExitStatus is the target exit code for Exited.
	ExitStatus int
}

// Handler receives debugger events. It is called synchronously and the
// debugger does not proceed until it returns.
type Handler func(Event)

// Emitter fans events out to subscribed handlers.
type Emitter struct {
	mu       sync.Mutex
	handlers []Handler
}

func (e *Emitter) Subscribe(h Handler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, h)
	e.mu.Unlock()
}

func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	handlers := e.handlers
	e.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}
