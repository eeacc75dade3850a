package dbg

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Frame is one entry of the call stack. Func is empty when the PC has no
// symbol and Entry is zero when the symbol start could not be resolved.
type Frame struct {
	PC    uint64
	Func  string
	Entry uint64
	File  string
	Line  int
}

type Variable struct {
	Name  string
	Value string
	// Err is set when the value could not be read from the target.
	Err error
}

type Breakpoint struct {
	ID   int
	Func string
	File string
	Line int
	Cond string
}

// Location returns the breakpoint position as shown to the user.
func (bp *Breakpoint) Location() string {
	if bp.File != "" && bp.Line > 0 {
		return fmt.Sprintf("%s:%d", bp.File, bp.Line)
	}
	return bp.Func
}

// ShortLocation is Location with the directory stripped.
func (bp *Breakpoint) ShortLocation() string {
	if bp.File != "" && bp.Line > 0 {
		return fmt.Sprintf("%s:%d", filepath.Base(bp.File), bp.Line)
	}
	return bp.Func
}

// Inspector is the read-only view of a stopped target.
type Inspector interface {
	// Frames returns the stack of the selected goroutine, innermost first.
	Frames() ([]Frame, error)
	// Args returns the arguments of the given frame.
	Args(frame int) ([]Variable, error)
	// Locals returns the local variables of the given frame.
	Locals(frame int) ([]Variable, error)
	// Breakpoints returns the user breakpoints in creation order.
	Breakpoints() ([]Breakpoint, error)
}

type Debugger interface {
	Inspector

	// Continue execution until the next stop or exit.
	Continue() error
	// Next steps over the current line.
	Next() error
	// Step steps into the current line.
	Step() error
	// StepOut runs until the current function returns.
	StepOut() error
	// Restart the target from the beginning.
	Restart() error
	// Set the given breakpoint in the program.
	SetBreakpoint(bp *Breakpoint) (*Breakpoint, error)
	// ClearBreakpoint removes the breakpoint with the given ID.
	ClearBreakpoint(id int) error
	// AmendBreakpoint changes the condition of a breakpoint.
	AmendBreakpoint(id int, cond string) error
	// Detach from the running program.
	Detach() error
	// Subscribe registers h for every event raised by the debugger.
	Subscribe(h Handler)
}

// ParseLocation parses a breakpoint location given as file:line or as a
// function name.
func ParseLocation(loc string) (*Breakpoint, error) {
	if loc == "" {
		return nil, errors.New("empty location")
	}
	if i := strings.LastIndexByte(loc, ':'); i > 0 {
		line, err := strconv.Atoi(loc[i+1:])
		if err == nil {
			if line <= 0 {
				return nil, fmt.Errorf("invalid line in %q", loc)
			}
			return &Breakpoint{File: loc[:i], Line: line}, nil
		}
	}
	if strings.ContainsAny(loc, " \t") {
		return nil, fmt.Errorf("invalid location %q", loc)
	}
	return &Breakpoint{Func: loc}, nil
}
