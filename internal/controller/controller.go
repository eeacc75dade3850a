// Package controller keeps the Neovim panes in sync with the debugger.
package controller

import (
	"fmt"
	"log/slog"
	"time"

	"gni.dev/neodbg/internal/dbg"
	"gni.dev/neodbg/internal/remote"
	"gni.dev/neodbg/internal/render"
	"gni.dev/neodbg/internal/ui"
)

// Controller applies debugger events to the layout. Dispatch must only be
// called on the remote session loop.
type Controller struct {
	c      remote.Client
	layout *ui.Layout

	lastFile string
	lastMod  time.Time
}

func New(c remote.Client, layout *ui.Layout) *Controller {
	return &Controller{c: c, layout: layout}
}

func (ctl *Controller) Layout() *ui.Layout {
	return ctl.layout
}

func (ctl *Controller) Dispatch(ev dbg.Event) {
	switch ev.Kind {
	case dbg.Stop:
		ctl.onStop(ev.Snapshot)
	case dbg.Continue:
		slog.Debug("target running")
	case dbg.Exited:
		ctl.onExit(ev.ExitStatus)
	case dbg.BreakpointCreated, dbg.BreakpointDeleted:
		ctl.refreshBreakpoints(ev.Breakpoints, 0)
	case dbg.BreakpointModified:
		current := 0
		if ev.Breakpoint != nil {
			current = ev.Breakpoint.ID
		}
		ctl.refreshBreakpoints(ev.Breakpoints, current)
	}
}

func (ctl *Controller) onStop(s *dbg.Snapshot) {
	if !ctl.layout.Started() {
		ctl.defineSigns()
		if err := ctl.layout.Create(); err != nil {
			slog.Error("creating layout failed", "err", err)
		}
	}
	ctl.command(fmt.Sprintf("sign unplace %d", ui.CurrentLineID))

	if s == nil || s.Line == 0 {
		return
	}

	reload := s.File != ctl.lastFile || !s.ModTimeKnown() || s.ModTime.After(ctl.lastMod)
	if reload {
		ctl.lastFile, ctl.lastMod = s.File, s.ModTime
	}

	ctl.layout.Source.SetSource(s.File, s.Line, reload)
	ctl.layout.Stack.SetLines(render.Stack(s.Frames))
	ctl.layout.Locals.SetLines(render.Locals(s.Args, s.Locals))
	ctl.refreshBreakpoints(s.Breakpoints, 0)
}

func (ctl *Controller) onExit(status int) {
	slog.Info("target exited", "status", status)
	ctl.layout.CloseAll()
	ctl.lastFile, ctl.lastMod = "", time.Time{}
}

func (ctl *Controller) refreshBreakpoints(bps []dbg.Breakpoint, current int) {
	ctl.layout.Breakpoints.SetLines(render.Breakpoints(bps, current))
	if !ctl.layout.Started() {
		return
	}
	ctl.command("sign unplace * group=" + ui.BreakpointGroup)
	for _, bp := range bps {
		if bp.File == "" || bp.Line <= 0 {
			continue
		}
		ctl.command(fmt.Sprintf("sign place %d group=%s name=%s line=%d file=%s",
			bp.ID, ui.BreakpointGroup, ui.BreakpointSign, bp.Line, bp.File))
	}
}

func (ctl *Controller) defineSigns() {
	ctl.command(fmt.Sprintf("sign define %s text=⇒", ui.CurrentLineSign))
	ctl.command(fmt.Sprintf("sign define %s text=●", ui.BreakpointSign))
}

func (ctl *Controller) command(cmd string) {
	if err := ctl.c.Command(cmd); err != nil {
		slog.Debug("command failed", "cmd", cmd, "err", err)
	}
}
