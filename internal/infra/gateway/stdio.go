package gateway

import (
	"context"
	"errors"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"targetmcp/internal/infra/telemetry"
	"targetmcp/internal/infra/transport"
)

// RunStdio serves a single protocol session over the process pipes until the
// peer hangs up or ctx is cancelled. Both count as a clean exit.
func (s *Server) RunStdio(ctx context.Context, streams *transport.Streams) error {
	s.logger.Info("server starting", telemetry.ModeField("stdio"), zap.Int("tools", len(s.Listing())))

	err := s.NewProtocolServer().Run(ctx, transport.Stdio(streams))
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, io.EOF),
		errors.Is(err, mcp.ErrConnectionClosed):
		s.logger.Info("server stopped", telemetry.ModeField("stdio"))
		return nil
	default:
		return err
	}
}
