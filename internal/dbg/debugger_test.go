package dbg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var locationTests = []struct {
	loc  string
	want *Breakpoint
	err  bool
}{
	{loc: "main.go:12", want: &Breakpoint{File: "main.go", Line: 12}},
	{loc: "/src/a b/main.go:3", want: &Breakpoint{File: "/src/a b/main.go", Line: 3}},
	{loc: "main.main", want: &Breakpoint{Func: "main.main"}},
	{loc: "(*T).m", want: &Breakpoint{Func: "(*T).m"}},
	{loc: "main.go:0", err: true},
	{loc: "", err: true},
	{loc: "not a location", err: true},
}

func TestParseLocation(t *testing.T) {
	for i, test := range locationTests {
		bp, err := ParseLocation(test.loc)
		if test.err {
			assert.Error(t, err, "test #%d", i)
			continue
		}
		require.NoError(t, err, "test #%d", i)
		assert.Equal(t, test.want, bp, "test #%d", i)
	}
}

func TestBreakpointLocation(t *testing.T) {
	bp := Breakpoint{ID: 1, File: "/src/pkg/a.go", Line: 10}
	assert.Equal(t, "/src/pkg/a.go:10", bp.Location())
	assert.Equal(t, "a.go:10", bp.ShortLocation())

	bp = Breakpoint{ID: 2, Func: "main.main"}
	assert.Equal(t, "main.main", bp.Location())
	assert.Equal(t, "main.main", bp.ShortLocation())
}

func TestEmitterOrder(t *testing.T) {
	var e Emitter
	var got []string
	e.Subscribe(func(ev Event) { got = append(got, "a:"+ev.Kind.String()) })
	e.Subscribe(func(ev Event) { got = append(got, "b:"+ev.Kind.String()) })

	e.Emit(Event{Kind: Stop})
	e.Emit(Event{Kind: BreakpointModified})
	assert.Equal(t, []string{"a:stop", "b:stop", "a:breakpoint-modified", "b:breakpoint-modified"}, got)
}

type inspector struct {
	frames    []Frame
	framesErr error
	localsErr error
	bps       []Breakpoint
}

func (in *inspector) Frames() ([]Frame, error) { return in.frames, in.framesErr }
func (in *inspector) Args(int) ([]Variable, error) { return []Variable{{Name: "a", Value: "1"}}, nil }
func (in *inspector) Locals(int) ([]Variable, error) { return nil, in.localsErr }
func (in *inspector) Breakpoints() ([]Breakpoint, error) { return in.bps, nil }

func TestTakeSnapshot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(file, mtime, mtime))

	in := &inspector{
		frames:    []Frame{{PC: 0x10, File: file, Line: 4}, {PC: 0x20}},
		localsErr: errors.New("no locals"),
		bps:       []Breakpoint{{ID: 1, File: file, Line: 4}},
	}
	s, err := TakeSnapshot(in)
	require.NoError(t, err)
	assert.Equal(t, file, s.File)
	assert.Equal(t, 4, s.Line)
	assert.True(t, s.ModTimeKnown())
	assert.True(t, mtime.Equal(s.ModTime))
	assert.Len(t, s.Frames, 2)
	assert.Len(t, s.Args, 1)
	assert.Empty(t, s.Locals)
	assert.Len(t, s.Breakpoints, 1)
}

func TestTakeSnapshotMissingSource(t *testing.T) {
	s, err := TakeSnapshot(&inspector{frames: []Frame{{PC: 0x10, File: "/nonexistent/x.go", Line: 1}}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Line)
	assert.False(t, s.ModTimeKnown())

	s, err = TakeSnapshot(&inspector{})
	require.NoError(t, err)
	assert.Zero(t, s.Line)

	_, err = TakeSnapshot(&inspector{framesErr: errors.New("target running")})
	assert.Error(t, err)
}
