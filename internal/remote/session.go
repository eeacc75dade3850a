package remote

import (
	"errors"
	"log/slog"
	"sync"
)

const queueSize = 64

var (
	ErrLoopNotRunning = errors.New("remote: loop not running")
	ErrLoopRunning    = errors.New("remote: loop already running")
	ErrQueueFull      = errors.New("remote: call queue full")
)

// RequestHandler handles an RPC request sent by Neovim to this channel.
type RequestHandler func(method string, args []interface{})

// Session is the connection to Neovim plus the single-goroutine event loop
// that is allowed to use it.
type Session struct {
	client    Client
	channelID int

	calls chan func()

	mu      sync.Mutex
	running bool
	quit    chan struct{}
	handler RequestHandler

	// served is closed when the RPC receive side ends. It stays nil for
	// sessions without a connection, which never end on their own.
	served   chan struct{}
	serveErr error
}

// NewSession returns a session that issues commands through c.
func NewSession(c Client) *Session {
	return &Session{
		client: c,
		calls:  make(chan func(), queueSize),
	}
}

// Client returns the command sink. Use it only from inside the loop.
func (s *Session) Client() Client {
	return s.client
}

func (s *Session) ChannelID() int {
	return s.channelID
}

// RunLoop runs scheduled calls and forwarded requests on the calling
// goroutine until StopLoop is called or the connection ends. setup runs
// once the loop accepts work.
func (s *Session) RunLoop(h RequestHandler, setup func()) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrLoopRunning
	}
	s.running = true
	s.handler = h
	quit := make(chan struct{})
	s.quit = quit
	s.mu.Unlock()

	defer s.drain()

	if setup != nil {
		setup()
	}
	for {
		select {
		case fn := <-s.calls:
			fn()
		case <-quit:
			return nil
		case <-s.served:
			return s.serveErr
		}
	}
}

// drain marks the loop stopped and runs whatever was accepted before.
func (s *Session) drain() {
	s.mu.Lock()
	s.running = false
	s.handler = nil
	s.quit = nil
	s.mu.Unlock()

	for {
		select {
		case fn := <-s.calls:
			fn()
		default:
			return
		}
	}
}

// AsyncCall queues fn for the loop. It never blocks.
func (s *Session) AsyncCall(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrLoopNotRunning
	}
	select {
	case s.calls <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// StopLoop asks a running loop to return.
func (s *Session) StopLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quit != nil {
		close(s.quit)
		s.quit = nil
	}
}

// request forwards an incoming RPC request to the loop. The request is
// answered with nil right away; the handler runs later on the loop.
func (s *Session) request(method string, args []interface{}) (interface{}, error) {
	err := s.AsyncCall(func() {
		s.mu.Lock()
		h := s.handler
		s.mu.Unlock()
		if h != nil {
			h(method, args)
		}
	})
	if err != nil {
		slog.Warn("dropping request", "method", method, "err", err)
	}
	return nil, nil
}
