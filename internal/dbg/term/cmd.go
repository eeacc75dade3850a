package term

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gni.dev/neodbg/internal/dbg"
)

// Starter starts the Neovim mirror of the debugger.
type Starter interface {
	Start() error
}

type command struct {
	aliases []string
	fn      func(args []string) error
}

type Commands struct {
	cmds []command
	d    dbg.Debugger
	nvim Starter
	out  io.Writer
}

// DebuggerCommands returns the console commands driving d. nvim may be nil
// when no Neovim is available.
func DebuggerCommands(d dbg.Debugger, nvim Starter) *Commands {
	c := &Commands{d: d, nvim: nvim, out: io.Discard}
	c.cmds = append(c.cmds,
		command{
			aliases: []string{"continue", "c"},
			fn:      c.cont,
		},
		command{
			aliases: []string{"next", "n"},
			fn:      c.next,
		},
		command{
			aliases: []string{"step", "s"},
			fn:      c.step,
		},
		command{
			aliases: []string{"stepout", "so"},
			fn:      c.stepOut,
		},
		command{
			aliases: []string{"break", "b"},
			fn:      c.setBreakpoint,
		},
		command{
			aliases: []string{"clear"},
			fn:      c.clearBreakpoint,
		},
		command{
			aliases: []string{"condition", "cond"},
			fn:      c.condition,
		},
		command{
			aliases: []string{"breakpoints", "bp"},
			fn:      c.breakpoints,
		},
		command{
			aliases: []string{"restart", "r"},
			fn:      c.restart,
		},
		command{
			aliases: []string{"nvim"},
			fn:      c.startNvim,
		},
		command{
			aliases: []string{"exit", "quit", "q"},
			fn:      c.exit,
		},
	)
	return c
}

func (c *Commands) Process(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return fmt.Errorf("empty command")
	}

	for _, cmd := range c.cmds {
		for _, alias := range cmd.aliases {
			if args[0] == alias {
				return cmd.fn(args[1:])
			}
		}
	}
	return fmt.Errorf("unknown command '%s'", args[0])
}

func (c *Commands) Close() error {
	return c.d.Detach()
}

func (c *Commands) exit(args []string) error {
	return io.EOF
}

func (c *Commands) cont(args []string) error {
	return c.d.Continue()
}

func (c *Commands) next(args []string) error {
	return c.d.Next()
}

func (c *Commands) step(args []string) error {
	return c.d.Step()
}

func (c *Commands) stepOut(args []string) error {
	return c.d.StepOut()
}

func (c *Commands) setBreakpoint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no location specified")
	}
	bp, err := dbg.ParseLocation(args[0])
	if err != nil {
		return err
	}
	bp.Cond = strings.Join(args[1:], " ")
	nbp, err := c.d.SetBreakpoint(bp)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Breakpoint %d set at %s\n", nbp.ID, nbp.ShortLocation())
	return nil
}

func (c *Commands) clearBreakpoint(args []string) error {
	id, err := breakpointID(args)
	if err != nil {
		return err
	}
	if err := c.d.ClearBreakpoint(id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Breakpoint %d cleared\n", id)
	return nil
}

func (c *Commands) condition(args []string) error {
	id, err := breakpointID(args)
	if err != nil {
		return err
	}
	return c.d.AmendBreakpoint(id, strings.Join(args[1:], " "))
}

func (c *Commands) breakpoints(args []string) error {
	bps, err := c.d.Breakpoints()
	if err != nil {
		return err
	}
	if len(bps) == 0 {
		fmt.Fprintln(c.out, "No breakpoints")
		return nil
	}
	for _, bp := range bps {
		if bp.Cond != "" {
			fmt.Fprintf(c.out, "%d\t%s if %s\n", bp.ID, bp.Location(), bp.Cond)
		} else {
			fmt.Fprintf(c.out, "%d\t%s\n", bp.ID, bp.Location())
		}
	}
	return nil
}

// restart brings the mirror up first so the first stop of the new run is
// shown.
func (c *Commands) restart(args []string) error {
	if c.nvim != nil {
		if err := c.nvim.Start(); err != nil {
			fmt.Fprintf(c.out, "nvim not started: %s\n", err)
		}
	}
	return c.d.Restart()
}

func (c *Commands) startNvim(args []string) error {
	if c.nvim == nil {
		return fmt.Errorf("no nvim to attach to")
	}
	return c.nvim.Start()
}

func breakpointID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("no breakpoint id specified")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid breakpoint id '%s'", args[0])
	}
	return id, nil
}
