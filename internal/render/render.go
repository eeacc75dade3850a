// Package render turns debugger state into pane lines.
package render

import (
	"fmt"
	"log/slog"
	"strings"

	"gni.dev/neodbg/internal/dbg"
)

// ptrSize is the target pointer size in bytes.
const ptrSize = 8

const (
	argsHeader   = "Arguments:"
	localsHeader = "Locals:"
	noArgs       = "(no arguments)"
	noLocals     = "(no locals)"
)

// Stack renders one line per frame, innermost first.
func Stack(frames []dbg.Frame) []string {
	lines := make([]string, 0, len(frames))
	for i, f := range frames {
		lines = append(lines, frameLine(i, f))
	}
	return lines
}

func frameLine(i int, f dbg.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] from 0x%0*x", i, ptrSize*2, f.PC)
	if f.Func != "" {
		b.WriteString(" in ")
		b.WriteString(f.Func)
		if f.Entry != 0 && f.PC >= f.Entry {
			fmt.Fprintf(&b, "+%d", f.PC-f.Entry)
		}
	}
	if f.File != "" && f.Line > 0 {
		fmt.Fprintf(&b, " at %s:%d", f.File, f.Line)
	}
	return b.String()
}

// Locals renders the arguments and the locals of the selected frame.
// Variables whose value could not be read are left out.
func Locals(args, locals []dbg.Variable) []string {
	lines := []string{argsHeader}
	lines = appendVars(lines, "arg", noArgs, args)
	lines = append(lines, localsHeader)
	return appendVars(lines, "loc", noLocals, locals)
}

func appendVars(lines []string, kind, empty string, vars []dbg.Variable) []string {
	n := 0
	for _, v := range vars {
		if v.Err != nil {
			slog.Warn("variable unreadable", "name", v.Name, "err", v.Err)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s = %s", kind, v.Name, v.Value))
		n++
	}
	if n == 0 {
		lines = append(lines, empty)
	}
	return lines
}

// Breakpoints renders one line per breakpoint; the one with ID current is
// emphasised with double brackets. current 0 emphasises nothing.
func Breakpoints(bps []dbg.Breakpoint, current int) []string {
	lines := make([]string, 0, len(bps))
	for _, bp := range bps {
		if current != 0 && bp.ID == current {
			lines = append(lines, fmt.Sprintf("[[%d]] %s", bp.ID, bp.Location()))
		} else {
			lines = append(lines, fmt.Sprintf("[%d] %s", bp.ID, bp.Location()))
		}
	}
	return lines
}
