package ui

import (
	"fmt"
	"log/slog"

	"gni.dev/neodbg/internal/remote"
)

// Split commands, run in this order. Each split subdivides what the
// previous ones left, so the order decides the final arrangement.
const (
	stackSplit       = "botright vertical 60new"
	breakpointsSplit = "belowright 10new"
	sourceSplit      = "topleft 30new"
	localsSplit      = "belowright vertical 60new"
)

type Options struct {
	// HostHeight fixes the height of the console window; zero keeps it.
	HostHeight int
}

// Layout is the fixed set of panes of one debug session. The host pane is
// the window running the debugger console; it is adopted, never closed.
type Layout struct {
	c    remote.Client
	opts Options

	started bool

	Host        *Pane
	Stack       *Pane
	Breakpoints *Pane
	Source      *SourcePane
	Locals      *Pane
}

func NewLayout(c remote.Client, opts Options) *Layout {
	return &Layout{
		c:           c,
		opts:        opts,
		Host:        newPane(c, "host", ""),
		Stack:       newPane(c, "stack", stackSplit),
		Breakpoints: newPane(c, "breakpoints", breakpointsSplit),
		Source:      &SourcePane{newPane(c, "source", sourceSplit)},
		Locals:      newPane(c, "locals", localsSplit),
	}
}

func (l *Layout) Started() bool {
	return l.started
}

// owned returns the panes created and closed by the layout, in split order.
func (l *Layout) owned() []*Pane {
	return []*Pane{l.Stack, l.Breakpoints, l.Source.Pane, l.Locals}
}

// Create opens all panes. It does nothing if the layout already exists.
func (l *Layout) Create() error {
	if l.started {
		return nil
	}

	if l.Host.Valid() {
		// retry after a partial create, or a new run: split from the host again
		if err := l.c.SetCurrentWindow(l.Host.win); err != nil {
			return fmt.Errorf("focus host window: %w", err)
		}
	} else {
		var windows int
		if err := l.c.Eval("winnr('$')", &windows); err != nil {
			return fmt.Errorf("count windows: %w", err)
		}
		// more than one window means a previous layout is still around
		if windows <= 1 {
			if err := l.c.Command("tabnew"); err != nil {
				return fmt.Errorf("open tab: %w", err)
			}
		}
		if err := l.Host.adopt(); err != nil {
			return fmt.Errorf("adopt host window: %w", err)
		}
	}

	for _, p := range l.owned() {
		if err := p.open(); err != nil {
			return fmt.Errorf("open %s pane: %w", p.name, err)
		}
	}
	l.started = true

	if err := l.c.SetCurrentWindow(l.Host.win); err != nil {
		slog.Warn("focusing host failed", "err", err)
		return nil
	}
	if l.opts.HostHeight > 0 {
		if err := l.c.Command(fmt.Sprintf("resize %d | setlocal winfixheight", l.opts.HostHeight)); err != nil {
			slog.Warn("sizing host failed", "err", err)
		}
	}
	return nil
}

// CloseAll closes every pane except the host and marks the layout as not
// created.
func (l *Layout) CloseAll() {
	for _, p := range l.owned() {
		p.Close()
	}
	l.started = false
}
