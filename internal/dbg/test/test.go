// Package test holds fakes of the debugger and of Neovim shared by the
// package tests.
package test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var tmpDir string

// Source writes a source fixture and returns its path. mtime sets the
// modification time when not zero.
func Source(name, content string, mtime time.Time) string {
	path := filepath.Join(tmpDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "failed to create fixture dir:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write fixture:", err)
		os.Exit(1)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			fmt.Fprintln(os.Stderr, "failed to set fixture time:", err)
			os.Exit(1)
		}
	}
	return path
}

func Run(m *testing.M) int {
	var err error
	tmpDir, err = os.MkdirTemp("", "neodbg-")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)
	return code
}
