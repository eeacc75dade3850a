package debug

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gni.dev/neodbg/internal/config"
	"gni.dev/neodbg/internal/controller"
	"gni.dev/neodbg/internal/dbg/delve"
	"gni.dev/neodbg/internal/dbg/term"
	"gni.dev/neodbg/internal/logging"
	"gni.dev/neodbg/internal/remote"
	"gni.dev/neodbg/internal/session"
	"gni.dev/neodbg/internal/ui"
)

func Run(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var argInit string
	dbgFlags := flag.NewFlagSet("debug", flag.ExitOnError)
	dbgFlags.StringVar(&argInit, "init", "", "initial command to run")
	dbgFlags.StringVar(&cfg.DelveAddr, "addr", cfg.DelveAddr, "address of the headless delve server")
	dbgFlags.StringVar(&cfg.Listen, "nvim", cfg.Listen, "nvim RPC address")
	if err := dbgFlags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logFile, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	d, err := delve.Connect(cfg.DelveAddr, cfg.StackDepth)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cache := remote.NewCache(cfg.Listen, session.StopMethod)
	plugin := controller.NewPlugin(d, cache.Session, controller.Options{
		Layout:      ui.Options{HostHeight: cfg.HostHeight},
		StopTimeout: cfg.StopTimeout,
	})
	if cfg.AutoStart && cfg.Listen != "" {
		if err := plugin.Start(); err != nil {
			slog.Warn("nvim not started", "err", err)
			fmt.Fprintln(os.Stderr, "nvim not started:", err)
		}
	}
	defer plugin.Stop()

	st, err := term.MakeRaw(int(os.Stdin.Fd()), int(os.Stdout.Fd()))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set terminal mode:", err)
		os.Exit(1)
	}
	defer st.Restore()

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.New(screen, "(neodbg) ", term.DebuggerCommands(d, plugin))
	if err := t.Run(argInit); err != nil && !errors.Is(err, io.EOF) {
		st.Restore()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
