package ui

import (
	"errors"
	"testing"

	"github.com/neovim/go-client/nvim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gni.dev/neodbg/internal/dbg/test"
)

func TestCreateLayout(t *testing.T) {
	u := test.NewUI()
	host, _ := u.CurrentWindow()
	l := NewLayout(u, Options{HostHeight: 12})

	require.NoError(t, l.Create())
	assert.True(t, l.Started())

	// single window: a new tab is opened and its window becomes the host
	assert.Equal(t, "tabnew", u.Commands()[0])
	assert.NotEqual(t, host, l.Host.Window())

	splits := []string{stackSplit, breakpointsSplit, sourceSplit, localsSplit}
	for i, p := range l.owned() {
		assert.True(t, p.Valid(), "pane #%d", i)
		assert.Contains(t, u.Commands(), splits[i], "pane #%d", i)
	}
	assert.Len(t, u.Windows(), 6)

	cur, _ := u.CurrentWindow()
	assert.Equal(t, l.Host.Window(), cur)
	assert.Contains(t, u.Commands(), "resize 12 | setlocal winfixheight")
}

func TestCreateReusesWindows(t *testing.T) {
	u := test.NewUI()
	u.Split()
	l := NewLayout(u, Options{})

	require.NoError(t, l.Create())
	assert.Empty(t, u.CommandsWithPrefix("tabnew"))
	assert.Len(t, u.Windows(), 6)
}

func TestCreateIdempotent(t *testing.T) {
	u := test.NewUI()
	l := NewLayout(u, Options{})

	require.NoError(t, l.Create())
	n := len(u.Commands())
	require.NoError(t, l.Create())
	assert.Len(t, u.Commands(), n)
}

func TestCloseAllKeepsHost(t *testing.T) {
	u := test.NewUI()
	l := NewLayout(u, Options{})
	require.NoError(t, l.Create())

	before := make([]nvim.Window, 0, 4)
	for _, p := range l.owned() {
		before = append(before, p.Window())
	}

	l.CloseAll()
	assert.False(t, l.Started())
	assert.True(t, l.Host.Valid())
	for i, p := range l.owned() {
		assert.False(t, p.Valid(), "pane #%d", i)
		assert.Zero(t, p.Window(), "pane #%d", i)
	}

	require.NoError(t, l.Create())
	for i, p := range l.owned() {
		assert.True(t, p.Valid(), "pane #%d", i)
		assert.NotEqual(t, before[i], p.Window(), "pane #%d", i)
	}
}

// CrampedUI refuses the given split once, like a terminal that is too small.
type CrampedUI struct {
	*test.UI
	refuse string
}

func (u *CrampedUI) Command(cmd string) error {
	if cmd == u.refuse {
		u.refuse = ""
		return errors.New("E36: Not enough room")
	}
	return u.UI.Command(cmd)
}

func TestCreateRetryKeepsHost(t *testing.T) {
	u := &CrampedUI{UI: test.NewUI(), refuse: localsSplit}
	l := NewLayout(u, Options{})

	require.Error(t, l.Create())
	assert.False(t, l.Started())
	host := l.Host.Window()

	require.NoError(t, l.Create())
	assert.True(t, l.Started())
	assert.Equal(t, host, l.Host.Window())
	for i, p := range l.owned() {
		assert.NotEqual(t, host, p.Window(), "pane #%d", i)
	}
	assert.Len(t, u.CommandsWithPrefix("tabnew"), 1)
	assert.Len(t, u.CommandsWithPrefix(stackSplit), 1)

	l.CloseAll()
	assert.True(t, l.Host.Valid())
	cur, _ := u.CurrentWindow()
	assert.Equal(t, host, cur)
}

func TestCloseAllTwice(t *testing.T) {
	u := test.NewUI()
	l := NewLayout(u, Options{})
	require.NoError(t, l.Create())

	l.CloseAll()
	n := len(u.Commands())
	l.CloseAll()
	assert.Len(t, u.Commands(), n)
}

func TestFocusRestore(t *testing.T) {
	u := test.NewUI()
	l := NewLayout(u, Options{})
	require.NoError(t, l.Create())

	other := l.Locals.Window()
	require.NoError(t, u.SetCurrentWindow(other))

	l.Stack.Focus()
	cur, _ := u.CurrentWindow()
	assert.Equal(t, l.Stack.Window(), cur)

	l.Stack.Unfocus()
	cur, _ = u.CurrentWindow()
	assert.Equal(t, other, cur)
}

func TestUnfocusStaleWindow(t *testing.T) {
	u := test.NewUI()
	l := NewLayout(u, Options{})
	require.NoError(t, l.Create())

	other := u.Split()
	l.Stack.Focus()
	u.CloseWindow(other)

	assert.NotPanics(t, l.Stack.Unfocus)
	cur, _ := u.CurrentWindow()
	assert.NotEqual(t, other, cur)
}

func TestInvalidPaneIsNoop(t *testing.T) {
	u := test.NewUI()
	l := NewLayout(u, Options{})

	l.Stack.Focus()
	l.Stack.Unfocus()
	l.Stack.SetLines([]string{"x"})
	l.Source.SetSource("/tmp/a.go", 3, true)
	l.Stack.Close()
	assert.Empty(t, u.Commands())

	require.NoError(t, l.Create())
	u.CloseWindow(l.Locals.Window())
	u.ResetCommands()
	l.Locals.SetLines([]string{"x"})
	l.Locals.Close()
	assert.Empty(t, u.Commands())
	assert.Zero(t, l.Locals.Window())
}

func TestSetLinesReplaces(t *testing.T) {
	u := test.NewUI()
	l := NewLayout(u, Options{})
	require.NoError(t, l.Create())

	l.Stack.SetLines([]string{"a", "b", "c"})
	l.Stack.SetLines([]string{"d"})
	assert.Equal(t, []string{"d"}, u.Lines(l.Stack.Window()))
}

func TestSetSource(t *testing.T) {
	u := test.NewUI()
	l := NewLayout(u, Options{})
	require.NoError(t, l.Create())
	host := l.Host.Window()
	u.ResetCommands()

	l.Source.SetSource("/src/my file.go", 42, true)
	l.Source.SetSource("/src/main.go", 7, false)

	assert.Equal(t, []string{
		`edit! +42 /src/my\ file.go`,
		`sign place 5000 name=NeodbgCurrentLine line=42 file=/src/my file.go`,
		`edit +7 /src/main.go`,
		`sign place 5000 name=NeodbgCurrentLine line=7 file=/src/main.go`,
	}, u.Commands())
	cur, _ := u.CurrentWindow()
	assert.Equal(t, host, cur)
}

var escapeTests = []struct {
	input string
	want  string
}{
	{input: "/a/b.go", want: "/a/b.go"},
	{input: "/a b/c.go", want: `/a\ b/c.go`},
	{input: "/a/#1%.go", want: `/a/\#1\%.go`},
	{input: `/a|b"c`, want: `/a\|b\"c`},
}

func TestEscapeFilename(t *testing.T) {
	for i, test := range escapeTests {
		assert.Equal(t, test.want, escapeFilename(test.input), "test #%d", i)
	}
}
