package app

import (
	"context"

	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/telemetry"
)

// ValidateTools runs discovery against cfg without starting a transport and
// returns the names that would be advertised.
func ValidateTools(ctx context.Context, cfg domain.Config, logger *zap.Logger) ([]string, error) {
	client := NewAdobeClient(cfg, logger)
	functions, err := NewFunctionRegistry(client)
	if err != nil {
		return nil, err
	}
	discoverer := NewDiscoverer(NewToolRoot(cfg), functions, logger, telemetry.NewNoopMetrics())
	tools, err := NewToolRegistry(ctx, discoverer, logger)
	if err != nil {
		return nil, err
	}

	names := tools.Names()
	logger.Info("tool modules validated",
		zap.String("root", toolRootName(cfg)),
		zap.Int("tools", len(names)),
	)
	return names, nil
}

func toolRootName(cfg domain.Config) string {
	if cfg.ToolsDir == "" {
		return "embedded"
	}
	return cfg.ToolsDir
}
