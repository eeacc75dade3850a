package test

import (
	"fmt"

	"gni.dev/neodbg/internal/dbg"
)

// Engine is a scripted debugger. Execution commands raise Continue and then
// Stop with a snapshot of the scripted state, like a real engine would.
type Engine struct {
	dbg.Emitter

	Stack     []dbg.Frame
	ArgVars   []dbg.Variable
	LocalVars []dbg.Variable
	BPs       []dbg.Breakpoint
	FramesErr error

	// Calls records the control methods invoked, in order.
	Calls []string

	nextID int
}

var _ dbg.Debugger = (*Engine)(nil)

func (e *Engine) Frames() ([]dbg.Frame, error) {
	return e.Stack, e.FramesErr
}

func (e *Engine) Args(frame int) ([]dbg.Variable, error) {
	return e.ArgVars, nil
}

func (e *Engine) Locals(frame int) ([]dbg.Variable, error) {
	return e.LocalVars, nil
}

func (e *Engine) Breakpoints() ([]dbg.Breakpoint, error) {
	return append([]dbg.Breakpoint(nil), e.BPs...), nil
}

// StopHere raises Stop for the current scripted state.
func (e *Engine) StopHere() error {
	s, err := dbg.TakeSnapshot(e)
	if err != nil {
		return err
	}
	e.Emit(dbg.Event{Kind: dbg.Stop, Snapshot: s})
	return nil
}

// Exit raises Exited with the given status.
func (e *Engine) Exit(status int) {
	e.Emit(dbg.Event{Kind: dbg.Exited, ExitStatus: status})
}

func (e *Engine) resume(name string) error {
	e.Calls = append(e.Calls, name)
	e.Emit(dbg.Event{Kind: dbg.Continue})
	return e.StopHere()
}

func (e *Engine) Continue() error { return e.resume("continue") }
func (e *Engine) Next() error     { return e.resume("next") }
func (e *Engine) Step() error     { return e.resume("step") }
func (e *Engine) StepOut() error  { return e.resume("stepout") }

func (e *Engine) Restart() error {
	e.Calls = append(e.Calls, "restart")
	return nil
}

func (e *Engine) Detach() error {
	e.Calls = append(e.Calls, "detach")
	return nil
}

func (e *Engine) SetBreakpoint(bp *dbg.Breakpoint) (*dbg.Breakpoint, error) {
	e.nextID++
	nbp := *bp
	nbp.ID = e.nextID
	e.BPs = append(e.BPs, nbp)
	e.Emit(dbg.Event{Kind: dbg.BreakpointCreated, Breakpoint: &nbp, Breakpoints: e.BPs})
	return &nbp, nil
}

func (e *Engine) ClearBreakpoint(id int) error {
	for i, bp := range e.BPs {
		if bp.ID == id {
			e.BPs = append(e.BPs[:i:i], e.BPs[i+1:]...)
			e.Emit(dbg.Event{Kind: dbg.BreakpointDeleted, Breakpoint: &bp, Breakpoints: e.BPs})
			return nil
		}
	}
	return fmt.Errorf("no breakpoint with id %d", id)
}

func (e *Engine) AmendBreakpoint(id int, cond string) error {
	for i := range e.BPs {
		if e.BPs[i].ID == id {
			e.BPs[i].Cond = cond
			bp := e.BPs[i]
			e.Emit(dbg.Event{Kind: dbg.BreakpointModified, Breakpoint: &bp, Breakpoints: e.BPs})
			return nil
		}
	}
	return fmt.Errorf("no breakpoint with id %d", id)
}
