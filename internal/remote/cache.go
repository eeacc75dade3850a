package remote

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/neovim/go-client/nvim"
)

// MinVersion is the oldest Neovim release with the window API used by panes.
const MinVersion = ">= 0.5.0"

var ErrUnsupportedVersion = errors.New("remote: unsupported nvim version")

// Cache hands out the one Session of the process. The connection is made
// on first use and kept for the process lifetime.
type Cache struct {
	addr    string
	methods []string

	once sync.Once
	sess *Session
	err  error
}

// NewCache returns a cache for the Neovim listening at addr. An empty addr
// disables the remote UI. methods are the RPC requests forwarded to the loop.
func NewCache(addr string, methods ...string) *Cache {
	return &Cache{addr: addr, methods: methods}
}

// Session returns the shared session, or nil when no Neovim is available.
func (c *Cache) Session() (*Session, error) {
	c.once.Do(func() {
		if c.addr == "" {
			return
		}
		c.sess, c.err = Dial(c.addr, c.methods...)
	})
	return c.sess, c.err
}

// Dial connects to the Neovim listening at addr (unix socket path or
// host:port) and starts receiving on the connection.
func Dial(addr string, methods ...string) (*Session, error) {
	v, err := nvim.Dial(addr, nvim.DialServe(false), nvim.DialLogf(log.Printf))
	if err != nil {
		return nil, fmt.Errorf("dial nvim %s: %w", addr, err)
	}
	s := NewSession(v)
	for _, m := range methods {
		m := m
		err := v.RegisterHandler(m, func() (interface{}, error) {
			return s.request(m, nil)
		})
		if err != nil {
			v.Close()
			return nil, fmt.Errorf("register %s: %w", m, err)
		}
	}

	s.served = make(chan struct{})
	go func() {
		s.serveErr = v.Serve()
		slog.Debug("nvim connection closed", "err", s.serveErr)
		close(s.served)
	}()

	var version string
	if err := v.Eval(`matchstr(execute('version'), 'NVIM v\zs[^\n]*')`, &version); err != nil {
		v.Close()
		return nil, fmt.Errorf("query nvim version: %w", err)
	}
	if err := checkVersion(version); err != nil {
		v.Close()
		return nil, err
	}
	s.channelID = v.ChannelID()
	slog.Info("connected to nvim", "addr", addr, "version", version, "channel", s.channelID)
	return s, nil
}

func checkVersion(version string) error {
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	c, err := semver.NewConstraint(MinVersion)
	if err != nil {
		return err
	}
	// prereleases such as 0.10.0-dev still carry the API
	release, _ := v.SetPrerelease("")
	if !c.Check(&release) {
		return fmt.Errorf("%w: %s, need %s", ErrUnsupportedVersion, version, MinVersion)
	}
	return nil
}
