package ui

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	CurrentLineSign = "NeodbgCurrentLine"
	BreakpointSign  = "NeodbgBreakpoint"
	BreakpointGroup = "NeodbgBreakpoints"

	// CurrentLineID is the id of the single current-line sign.
	CurrentLineID = 5000
)

// SourcePane shows the file the target is stopped in.
type SourcePane struct {
	*Pane
}

// SetSource shows file at line and marks the line. With reload the buffer
// is re-read from disk even if Neovim thinks it is unchanged.
func (s *SourcePane) SetSource(file string, line int, reload bool) {
	if !s.Valid() {
		return
	}
	s.Focus()
	defer s.Unfocus()

	edit := "edit"
	if reload {
		edit = "edit!"
	}
	name := escapeFilename(file)
	if err := s.c.Command(fmt.Sprintf("%s +%d %s", edit, line, name)); err != nil {
		slog.Warn("opening source failed", "file", file, "err", err)
		return
	}
	// file= takes the rest of the line as is, so it must stay last and unescaped
	cmd := fmt.Sprintf("sign place %d name=%s line=%d file=%s", CurrentLineID, CurrentLineSign, line, file)
	if err := s.c.Command(cmd); err != nil {
		slog.Warn("placing current line failed", "file", file, "err", err)
	}
}

var filenameEscaper = strings.NewReplacer(
	`\`, `\\`,
	" ", `\ `,
	"\t", `\	`,
	"%", `\%`,
	"#", `\#`,
	"|", `\|`,
	`"`, `\"`,
)

// escapeFilename quotes a path for use on an Ex command line.
func escapeFilename(name string) string {
	return filenameEscaper.Replace(name)
}
