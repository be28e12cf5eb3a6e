package gateway

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"targetmcp/internal/buildinfo"
	"targetmcp/internal/domain"
	"targetmcp/internal/infra/dispatch"
	"targetmcp/internal/infra/mcpcodec"
	"targetmcp/internal/infra/session"
	"targetmcp/internal/infra/telemetry"
)

// ToolLister yields tools in discovery order. *registry.Registry satisfies it.
type ToolLister interface {
	List() []domain.Tool
}

type Options struct {
	SSEPath         string
	MessagesPath    string
	MaxMessageBytes int64
	ShutdownTimeout time.Duration
	Gatherer        prometheus.Gatherer
	Health          *telemetry.HealthTracker
}

// Server mints protocol servers over the shared tool registry and runs them
// on the pipe or event-stream binding.
type Server struct {
	tools      ToolLister
	dispatcher *dispatch.Dispatcher
	sessions   *session.Registry
	logger     *zap.Logger
	opts       Options
}

func NewServer(tools ToolLister, dispatcher *dispatch.Dispatcher, sessions *session.Registry, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = session.NewRegistry(logger, nil)
	}
	if opts.SSEPath == "" {
		opts.SSEPath = domain.DefaultSSEPath
	}
	if opts.MessagesPath == "" {
		opts.MessagesPath = domain.DefaultMessagesPath
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = domain.DefaultMaxMessageBytes
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = time.Duration(domain.DefaultShutdownTimeoutSeconds) * time.Second
	}
	return &Server{
		tools:      tools,
		dispatcher: dispatcher,
		sessions:   sessions,
		logger:     logger.Named("gateway"),
		opts:       opts,
	}
}

// NewProtocolServer returns a fresh MCP server answering tools/list and
// tools/call from the registry. Each session gets its own instance.
func (s *Server) NewProtocolServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    domain.ServerName,
		Version: buildinfo.Version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})
	server.AddReceivingMiddleware(s.toolsMiddleware())
	return server
}

// Listing is the current tools/list payload.
func (s *Server) Listing() []*mcp.Tool {
	return mcpcodec.ToListing(s.tools.List())
}

func (s *Server) Sessions() *session.Registry {
	return s.sessions
}
