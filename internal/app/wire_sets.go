//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
)

var CoreInfraSet = wire.NewSet(
	NewMetricsRegistry,
	NewMetrics,
	NewHealthTracker,
)

var ToolSet = wire.NewSet(
	NewAdobeClient,
	NewFunctionRegistry,
	NewToolRoot,
	NewDiscoverer,
	NewToolRegistry,
	NewDispatcher,
)

var ServerSet = wire.NewSet(
	NewSessionRegistry,
	NewGatewayServer,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	ToolSet,
	ServerSet,
	wire.Struct(new(ApplicationOptions), "Config", "Logger", "Registry", "Health", "Tools", "Gateway"),
	NewApplication,
)
