package app

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/gateway"
	"targetmcp/internal/infra/hashutil"
	"targetmcp/internal/infra/registry"
	"targetmcp/internal/infra/telemetry"
	"targetmcp/internal/infra/transport"
)

const healthTools = "tools"

// Application runs the server in the configured mode.
type Application struct {
	cfg      domain.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	health   *telemetry.HealthTracker
	tools    *registry.Registry
	gateway  *gateway.Server
	streams  *transport.Streams
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Config   domain.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Health   *telemetry.HealthTracker
	Tools    *registry.Registry
	Gateway  *gateway.Server
	// Streams replaces stdin/stdout in pipe mode.
	Streams *transport.Streams
}

func NewApplication(opts ApplicationOptions) *Application {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Application{
		cfg:      opts.Config,
		logger:   logger.Named("app"),
		registry: opts.Registry,
		health:   opts.Health,
		tools:    opts.Tools,
		gateway:  opts.Gateway,
		streams:  opts.Streams,
	}
}

// Run blocks until the transport stops or ctx is cancelled. Cancellation is a
// clean shutdown and returns nil.
func (a *Application) Run(ctx context.Context) error {
	a.reportTools()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(runCtx)

	if addr := a.cfg.Metrics.ListenAddress; addr != "" {
		group.Go(func() error {
			return telemetry.StartHTTPServer(groupCtx, telemetry.HTTPServerOptions{
				Addr:     addr,
				Health:   a.health,
				Registry: a.registry,
			}, a.logger)
		})
	}

	group.Go(func() error {
		defer cancel()
		if a.cfg.SSE {
			return a.gateway.RunSSE(groupCtx, ListenAddress(a.cfg.Port))
		}
		return a.gateway.RunStdio(groupCtx, a.streams)
	})

	return group.Wait()
}

func (a *Application) reportTools() {
	names := a.tools.Names()
	etag := hashutil.ListingETag(a.logger, a.gateway.Listing())
	a.health.Set(healthTools, true, strings.TrimSpace(fmt.Sprintf("%d tools %s", len(names), hashutil.Short(etag))))
	a.logger.Info("tool registry ready",
		zap.Strings("tools", names),
		zap.String("etag", etag),
	)
}

// ListenAddress binds every interface on port.
func ListenAddress(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}
