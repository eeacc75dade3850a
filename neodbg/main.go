package main

import (
	"fmt"
	"os"

	"gni.dev/neodbg/neodbg/internal/debug"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: neodbg <command>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "debug":
		debug.Run(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, "Unknown command:", os.Args[1])
		os.Exit(1)
	}
}
