package term

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gni.dev/neodbg/internal/dbg"
	"gni.dev/neodbg/internal/dbg/test"
)

type MockTerminal struct {
	input     io.Reader
	chunkSize int
	output    bytes.Buffer
}

func NewMockTerminal(input string, ch int) *MockTerminal {
	return &MockTerminal{
		input:     strings.NewReader(input),
		chunkSize: ch,
	}
}

func (c *MockTerminal) Read(data []byte) (int, error) {
	b := make([]byte, c.chunkSize)
	n, err := c.input.Read(b)
	if err != nil {
		return 0, err
	}
	return copy(data, b[:n]), nil
}

func (c *MockTerminal) Write(data []byte) (int, error) {
	return c.output.Write(data)
}

type MockStarter struct {
	starts int
	err    error
}

func (s *MockStarter) Start() error {
	s.starts++
	return s.err
}

var inputTests = []struct {
	input string
	want  string
}{
	{
		input: "hello\r",
		want:  "hello",
	},
	{
		input: "aabb\x1b[D\x1b[D\177\r", // backspace
		want:  "abb",
	},
	{
		input: "a\177\x1b[C\177\r", // backspace
		want:  "",
	},
	{
		input: strings.Repeat("x", 200) + "\r",
		want:  strings.Repeat("x", 200),
	},
}

func TestInput(t *testing.T) {
	for i, test := range inputTests {
		for j := 1; j < len(test.input); j++ {
			screen := NewMockTerminal(test.input, j)
			tt := New(screen, "> ", DebuggerCommands(nil, nil))
			line, err := tt.t.ReadLine()
			assert.Equal(t, test.want, line, "test #%d", i)
			assert.NoError(t, err, "test #%d", i)
		}
	}
}

func run(t *testing.T, e dbg.Debugger, nvim Starter, input string) string {
	screen := NewMockTerminal(input, 3)
	tt := New(screen, "(neodbg) ", DebuggerCommands(e, nvim))
	require.NoError(t, tt.Run(""))
	return screen.output.String()
}

func TestRunControl(t *testing.T) {
	e := &test.Engine{}
	run(t, e, nil, "c\rnext\rs\rso\rq\rn\r")
	assert.Equal(t, []string{"continue", "next", "step", "stepout", "detach"}, e.Calls)
}

func TestRunDetachOnEOF(t *testing.T) {
	e := &test.Engine{}
	run(t, e, nil, "n\r")
	assert.Equal(t, []string{"next", "detach"}, e.Calls)
}

func TestRunInitCommand(t *testing.T) {
	e := &test.Engine{}
	screen := NewMockTerminal("", 1)
	tt := New(screen, "> ", DebuggerCommands(e, nil))
	require.NoError(t, tt.Run("step"))
	assert.Equal(t, []string{"step", "detach"}, e.Calls)
}

func TestBreakpointCommands(t *testing.T) {
	e := &test.Engine{}
	var events []dbg.EventKind
	e.Subscribe(func(ev dbg.Event) { events = append(events, ev.Kind) })

	out := run(t, e, nil, "b main.go:10\rbreak main.f i > 2\rcond 1 n == 0\rbp\rclear 2\rbp\r")
	assert.Contains(t, out, "Breakpoint 1 set at main.go:10")
	assert.Contains(t, out, "Breakpoint 2 set at main.f")
	assert.Contains(t, out, "1\tmain.go:10 if n == 0")
	assert.Contains(t, out, "2\tmain.f if i > 2")
	assert.Contains(t, out, "Breakpoint 2 cleared")
	assert.Equal(t, []dbg.Breakpoint{{ID: 1, File: "main.go", Line: 10, Cond: "n == 0"}}, e.BPs)
	assert.Equal(t, []dbg.EventKind{
		dbg.BreakpointCreated, dbg.BreakpointCreated, dbg.BreakpointModified, dbg.BreakpointDeleted,
	}, events)
}

func TestNoBreakpoints(t *testing.T) {
	out := run(t, &test.Engine{}, nil, "bp\r")
	assert.Contains(t, out, "No breakpoints")
}

var errorTests = []struct {
	input string
	want  string
}{
	{input: "foo\r", want: "unknown command 'foo'"},
	{input: "b\r", want: "no location specified"},
	{input: "b main.go:0\r", want: "invalid line"},
	{input: "clear\r", want: "no breakpoint id specified"},
	{input: "clear x\r", want: "invalid breakpoint id 'x'"},
	{input: "clear 7\r", want: "no breakpoint with id 7"},
	{input: "nvim\r", want: "no nvim to attach to"},
}

func TestCommandErrors(t *testing.T) {
	for i, tc := range errorTests {
		out := run(t, &test.Engine{}, nil, tc.input)
		assert.Contains(t, out, escRed+"Command failed: ", "test #%d", i)
		assert.Contains(t, out, tc.want, "test #%d", i)
	}
}

func TestNvimCommand(t *testing.T) {
	s := &MockStarter{}
	run(t, &test.Engine{}, s, "nvim\rnvim\r")
	assert.Equal(t, 2, s.starts)

	s = &MockStarter{err: errors.New("no nvim to attach to")}
	out := run(t, &test.Engine{}, s, "nvim\r")
	assert.Contains(t, out, "no nvim to attach to")
}

func TestRestartStartsNvim(t *testing.T) {
	s := &MockStarter{err: errors.New("not available")}
	e := &test.Engine{}
	out := run(t, e, s, "r\r")
	assert.Equal(t, 1, s.starts)
	assert.Contains(t, out, "nvim not started: not available")
	assert.Equal(t, []string{"restart", "detach"}, e.Calls)
}

func TestBreakpointSetShowsShortLocation(t *testing.T) {
	e := &test.Engine{}
	out := run(t, e, nil, "b /src/pkg/a.go:7\rbp\r")
	assert.Contains(t, out, "Breakpoint 1 set at a.go:7")
	assert.Contains(t, out, "1\t/src/pkg/a.go:7")
}
