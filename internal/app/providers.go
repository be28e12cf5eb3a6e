package app

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/catalog"
	"targetmcp/internal/infra/dispatch"
	"targetmcp/internal/infra/gateway"
	"targetmcp/internal/infra/registry"
	"targetmcp/internal/infra/session"
	"targetmcp/internal/infra/telemetry"
	"targetmcp/internal/tools/adobe"
	"targetmcp/internal/tools/manifests"
)

func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func NewMetrics(reg *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(reg)
}

func NewHealthTracker() *telemetry.HealthTracker {
	return telemetry.NewHealthTracker()
}

func NewAdobeClient(cfg domain.Config, logger *zap.Logger) *adobe.Client {
	return adobe.NewClient(cfg.Adobe, adobe.WithLogger(logger))
}

// NewFunctionRegistry registers every compiled tool implementation.
func NewFunctionRegistry(client *adobe.Client) (*catalog.FunctionRegistry, error) {
	functions := catalog.NewFunctionRegistry()
	if err := adobe.Register(functions, client); err != nil {
		return nil, err
	}
	return functions, nil
}

// NewToolRoot selects the discovery root: the configured directory, or the
// embedded manifests when none is set.
func NewToolRoot(cfg domain.Config) fs.FS {
	if cfg.ToolsDir == "" {
		return manifests.FS()
	}
	return os.DirFS(cfg.ToolsDir)
}

func NewDiscoverer(root fs.FS, functions *catalog.FunctionRegistry, logger *zap.Logger, metrics domain.Metrics) *catalog.Discoverer {
	return catalog.NewDiscoverer(catalog.DiscovererOptions{
		Root:      root,
		Functions: functions,
		Logger:    logger,
		Metrics:   metrics,
	})
}

// NewToolRegistry runs discovery once; the registry is fixed for the life of the process.
func NewToolRegistry(ctx context.Context, discoverer *catalog.Discoverer, logger *zap.Logger) (*registry.Registry, error) {
	tools, err := discoverer.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return registry.New(tools, logger), nil
}

func NewDispatcher(tools *registry.Registry, logger *zap.Logger, metrics domain.Metrics) *dispatch.Dispatcher {
	return dispatch.New(tools, logger, metrics)
}

func NewSessionRegistry(logger *zap.Logger, metrics domain.Metrics) *session.Registry {
	return session.NewRegistry(logger, metrics)
}

func NewGatewayServer(
	tools *registry.Registry,
	dispatcher *dispatch.Dispatcher,
	sessions *session.Registry,
	metricsRegistry *prometheus.Registry,
	health *telemetry.HealthTracker,
	logger *zap.Logger,
) *gateway.Server {
	return gateway.NewServer(tools, dispatcher, sessions, logger, gateway.Options{
		ShutdownTimeout: time.Duration(domain.DefaultShutdownTimeoutSeconds) * time.Second,
		Gatherer:        metricsRegistry,
		Health:          health,
	})
}
