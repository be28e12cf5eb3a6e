package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/session"
	"targetmcp/internal/infra/telemetry"
	"targetmcp/internal/infra/transport"
)

const healthListener = "sse_listener"

// Handler routes the event-stream binding plus metrics and health.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(telemetry.RequestLogger(s.logger.Named("http")))

	r.Get(s.opts.SSEPath, s.handleStream)
	r.Post(s.opts.MessagesPath, s.handleMessage)
	telemetry.MountObservability(r, s.opts.Gatherer, s.opts.Health)
	return r
}

// RunSSE listens on addr and serves until ctx is cancelled.
func (s *Server) RunSSE(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts event-stream clients on ln. On cancellation every session is
// closed first, then the HTTP server drains within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			telemetry.ModeField("sse"),
			zap.String("addr", ln.Addr().String()),
			zap.Int("tools", len(s.Listing())),
		)
		errCh <- srv.Serve(ln)
	}()
	s.opts.Health.Set(healthListener, true, ln.Addr().String())

	select {
	case err := <-errCh:
		s.opts.Health.Set(healthListener, false, "stopped")
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.opts.Health.Set(healthListener, false, "shutting down")
	s.sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown error", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped", telemetry.ModeField("sse"))
	return nil
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	tr, err := transport.NewSSETransport(w, transport.SSEOptions{
		MessagesPath:    s.opts.MessagesPath,
		MaxMessageBytes: s.opts.MaxMessageBytes,
		Logger:          s.logger,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	server := s.NewProtocolServer()
	sess := session.New(tr, server)
	if err := s.sessions.Register(sess); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() {
		s.sessions.Unregister(sess.ID)
		_ = sess.Close()
	}()

	live, err := server.Connect(r.Context(), tr, nil)
	if err != nil {
		s.logger.Warn("connect session failed", telemetry.SessionIDField(sess.ID), zap.Error(err))
		return
	}
	sess.Attach(live)

	select {
	case <-r.Context().Done():
	case <-tr.Done():
	}
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(domain.SessionIDQueryParam)
	sess, err := s.sessions.Lookup(id)
	if err != nil {
		s.logger.Warn("message for unknown session",
			telemetry.EventField(telemetry.EventSessionMissing),
			telemetry.SessionIDField(id),
		)
		http.Error(w, "No transport/server found for sessionId", http.StatusBadRequest)
		return
	}
	sess.Transport.HandlePostMessage(w, r)
}
