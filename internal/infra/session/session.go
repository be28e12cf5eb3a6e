package session

import (
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"targetmcp/internal/infra/transport"
)

// Session pairs one event-stream transport with the protocol server minted for it.
type Session struct {
	ID        string
	Transport *transport.SSETransport
	Server    *mcp.Server
	OpenedAt  time.Time

	mu   sync.Mutex
	live *mcp.ServerSession
}

func New(tr *transport.SSETransport, server *mcp.Server) *Session {
	return &Session{
		ID:        tr.SessionID(),
		Transport: tr,
		Server:    server,
		OpenedAt:  time.Now(),
	}
}

// Attach records the protocol session once the server has connected.
func (s *Session) Attach(live *mcp.ServerSession) {
	s.mu.Lock()
	s.live = live
	s.mu.Unlock()
}

// Close stops the protocol session and the transport. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	live := s.live
	s.live = nil
	s.mu.Unlock()

	var err error
	if live != nil {
		err = live.Close()
	}
	if s.Transport != nil {
		_ = s.Transport.Close()
	}
	return err
}

func sinceOpened(s *Session) time.Duration {
	if s == nil || s.OpenedAt.IsZero() {
		return 0
	}
	return time.Since(s.OpenedAt)
}
