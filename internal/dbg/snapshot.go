package dbg

import (
	"log/slog"
	"os"
	"time"
)

// Snapshot is the target state captured at one stop.
type Snapshot struct {
	File string
	// Line is 0 when the stop has no line information.
	Line int
	// ModTime is the zero time when the source timestamp is unknown.
	ModTime time.Time

	Frames      []Frame
	Args        []Variable
	Locals      []Variable
	Breakpoints []Breakpoint
}

func (s *Snapshot) ModTimeKnown() bool {
	return !s.ModTime.IsZero()
}

// TakeSnapshot reads the current stop from in. Only a failure to read the
// stack is fatal; everything else degrades to empty values.
func TakeSnapshot(in Inspector) (*Snapshot, error) {
	frames, err := in.Frames()
	if err != nil {
		return nil, err
	}
	s := &Snapshot{Frames: frames}
	if len(frames) > 0 {
		s.File = frames[0].File
		s.Line = frames[0].Line
		if s.File != "" {
			s.ModTime = modTime(s.File)
		}

		if s.Args, err = in.Args(0); err != nil {
			slog.Warn("reading arguments failed", "err", err)
		}
		if s.Locals, err = in.Locals(0); err != nil {
			slog.Warn("reading locals failed", "err", err)
		}
	}
	if s.Breakpoints, err = in.Breakpoints(); err != nil {
		slog.Warn("reading breakpoints failed", "err", err)
	}
	return s, nil
}

func modTime(file string) time.Time {
	fi, err := os.Stat(file)
	if err != nil {
		slog.Debug("source timestamp unavailable", "file", file, "err", err)
		return time.Time{}
	}
	return fi.ModTime()
}
