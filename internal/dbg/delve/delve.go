// Package delve drives a headless Delve server over its JSON-RPC API.
package delve

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"time"

	"github.com/go-delve/delve/service/api"
	"github.com/go-delve/delve/service/rpc2"

	"gni.dev/neodbg/internal/dbg"
)

// DefaultDepth is the number of frames loaded at each stop.
const DefaultDepth = 50

// currentGoroutine selects the goroutine the target stopped on.
const currentGoroutine = -1

var loadConfig = api.LoadConfig{
	FollowPointers:     true,
	MaxVariableRecurse: 1,
	MaxStringLen:       64,
	MaxArrayValues:     64,
	MaxStructFields:    -1,
}

type Delve struct {
	dbg.Emitter

	client *rpc2.RPCClient
	conn   net.Conn
	depth  int
}

var _ dbg.Debugger = (*Delve)(nil)

// Connect attaches to the headless server listening on addr. depth bounds
// the loaded stack; zero means DefaultDepth.
func Connect(addr string, depth int) (*Delve, error) {
	conn, err := tryConnect("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to delve at %s: %w", addr, err)
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	d := &Delve{
		client: rpc2.NewClientFromConn(conn),
		conn:   conn,
		depth:  depth,
	}
	if _, err := d.client.GetState(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("delve handshake: %w", err)
	}
	slog.Info("connected to delve", "addr", addr)
	return d, nil
}

// tryConnect retries while the server is still starting.
func tryConnect(network, address string) (conn net.Conn, err error) {
	for i := time.Duration(100); i < 5000; i += 100 {
		conn, err = net.Dial(network, address)
		if err == nil {
			return
		}
		time.Sleep(i * time.Millisecond)
	}
	return
}

func (d *Delve) Frames() ([]dbg.Frame, error) {
	st, err := d.client.Stacktrace(currentGoroutine, d.depth, 0, nil)
	if err != nil {
		return nil, err
	}
	frames := make([]dbg.Frame, 0, len(st))
	for _, f := range st {
		frames = append(frames, toFrame(f))
	}
	return frames, nil
}

func (d *Delve) Args(frame int) ([]dbg.Variable, error) {
	vars, err := d.client.ListFunctionArgs(scope(frame), loadConfig)
	if err != nil {
		return nil, err
	}
	return toVariables(vars), nil
}

func (d *Delve) Locals(frame int) ([]dbg.Variable, error) {
	vars, err := d.client.ListLocalVariables(scope(frame), loadConfig)
	if err != nil {
		return nil, err
	}
	return toVariables(vars), nil
}

func (d *Delve) Breakpoints() ([]dbg.Breakpoint, error) {
	bps, err := d.client.ListBreakpoints(false)
	if err != nil {
		return nil, err
	}
	return toBreakpoints(bps), nil
}

func (d *Delve) Continue() error {
	d.Emit(dbg.Event{Kind: dbg.Continue})
	var last *api.DebuggerState
	for st := range d.client.Continue() {
		last = st
	}
	if last == nil {
		return errors.New("delve: continue returned no state")
	}
	return d.stopped(last, nil)
}

func (d *Delve) Next() error {
	d.Emit(dbg.Event{Kind: dbg.Continue})
	return d.stopped(d.client.Next())
}

func (d *Delve) Step() error {
	d.Emit(dbg.Event{Kind: dbg.Continue})
	return d.stopped(d.client.Step())
}

func (d *Delve) StepOut() error {
	d.Emit(dbg.Event{Kind: dbg.Continue})
	return d.stopped(d.client.StepOut())
}

// stopped raises the event matching the state the target ended up in.
func (d *Delve) stopped(st *api.DebuggerState, err error) error {
	if st != nil && st.Exited {
		d.Emit(dbg.Event{Kind: dbg.Exited, ExitStatus: st.ExitStatus})
		return nil
	}
	if err == nil && st != nil {
		err = st.Err
	}
	if err != nil {
		return err
	}
	s, err := dbg.TakeSnapshot(d)
	if err != nil {
		return fmt.Errorf("reading stop state: %w", err)
	}
	d.Emit(dbg.Event{Kind: dbg.Stop, Snapshot: s})
	return nil
}

func (d *Delve) Restart() error {
	discarded, err := d.client.Restart(false)
	if err != nil {
		return err
	}
	for _, bp := range discarded {
		slog.Warn("breakpoint discarded on restart", "breakpoint", bp.Breakpoint.ID, "reason", bp.Reason)
	}
	return nil
}

func (d *Delve) SetBreakpoint(bp *dbg.Breakpoint) (*dbg.Breakpoint, error) {
	created, err := d.client.CreateBreakpoint(&api.Breakpoint{
		File:         bp.File,
		Line:         bp.Line,
		FunctionName: bp.Func,
		Cond:         bp.Cond,
	})
	if err != nil {
		return nil, err
	}
	nbp := toBreakpoint(created)
	d.emitBreakpoint(dbg.BreakpointCreated, &nbp)
	return &nbp, nil
}

func (d *Delve) ClearBreakpoint(id int) error {
	cleared, err := d.client.ClearBreakpoint(id)
	if err != nil {
		return err
	}
	bp := toBreakpoint(cleared)
	d.emitBreakpoint(dbg.BreakpointDeleted, &bp)
	return nil
}

func (d *Delve) AmendBreakpoint(id int, cond string) error {
	abp, err := d.client.GetBreakpoint(id)
	if err != nil {
		return err
	}
	abp.Cond = cond
	if err := d.client.AmendBreakpoint(abp); err != nil {
		return err
	}
	bp := toBreakpoint(abp)
	d.emitBreakpoint(dbg.BreakpointModified, &bp)
	return nil
}

func (d *Delve) emitBreakpoint(kind dbg.EventKind, bp *dbg.Breakpoint) {
	bps, err := d.Breakpoints()
	if err != nil {
		slog.Warn("listing breakpoints failed", "err", err)
	}
	d.Emit(dbg.Event{Kind: kind, Breakpoint: bp, Breakpoints: bps})
}

// Detach leaves the target running and closes the connection.
func (d *Delve) Detach() error {
	err := d.client.Detach(false)
	d.conn.Close()
	return err
}

func scope(frame int) api.EvalScope {
	return api.EvalScope{GoroutineID: currentGoroutine, Frame: frame}
}

func toFrame(f api.Stackframe) dbg.Frame {
	fr := dbg.Frame{
		PC:   f.PC,
		File: f.File,
		Line: f.Line,
	}
	if f.Function != nil {
		fr.Func = f.Function.Name()
		fr.Entry = f.Function.Value
	}
	return fr
}

func toVariables(vars []api.Variable) []dbg.Variable {
	res := make([]dbg.Variable, 0, len(vars))
	for i := range vars {
		v := &vars[i]
		dv := dbg.Variable{Name: v.Name}
		if v.Unreadable != "" {
			dv.Err = errors.New(v.Unreadable)
		} else {
			dv.Value = v.SinglelineString()
		}
		res = append(res, dv)
	}
	return res
}

func toBreakpoint(bp *api.Breakpoint) dbg.Breakpoint {
	return dbg.Breakpoint{
		ID:   bp.ID,
		Func: bp.FunctionName,
		File: bp.File,
		Line: bp.Line,
		Cond: bp.Cond,
	}
}

// toBreakpoints drops the internal breakpoints, which have negative ids,
// and orders the rest by creation.
func toBreakpoints(bps []*api.Breakpoint) []dbg.Breakpoint {
	res := make([]dbg.Breakpoint, 0, len(bps))
	for _, bp := range bps {
		if bp.ID <= 0 {
			continue
		}
		res = append(res, toBreakpoint(bp))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
