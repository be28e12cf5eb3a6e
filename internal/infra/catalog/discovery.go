package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/telemetry"
)

// Discoverer loads tool manifests from a filesystem root and binds them to
// registered functions.
type Discoverer struct {
	root      fs.FS
	functions *FunctionRegistry
	logger    *zap.Logger
	metrics   domain.Metrics
}

type DiscovererOptions struct {
	Root      fs.FS
	Functions *FunctionRegistry
	Logger    *zap.Logger
	Metrics   domain.Metrics
}

func NewDiscoverer(opts DiscovererOptions) *Discoverer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	functions := opts.Functions
	if functions == nil {
		functions = NewFunctionRegistry()
	}
	return &Discoverer{
		root:      opts.Root,
		functions: functions,
		logger:    logger.Named("discovery"),
		metrics:   metrics,
	}
}

// Discover walks the root in lexical order and returns every valid tool.
// Broken manifests are logged and skipped; an unreadable root is fatal.
func (d *Discoverer) Discover(ctx context.Context) ([]domain.Tool, error) {
	if d.root == nil {
		return nil, fmt.Errorf("%w: no root configured", domain.ErrDiscoveryRoot)
	}
	if _, err := fs.Stat(d.root, "."); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDiscoveryRoot, err)
	}

	d.logger.Debug("discovering tools", telemetry.EventField(telemetry.EventDiscoveryStart))

	var tools []domain.Tool
	err := fs.WalkDir(d.root, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if name == "." {
				return fmt.Errorf("%w: %v", domain.ErrDiscoveryRoot, walkErr)
			}
			d.skip(name, walkErr)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if name != "." && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !isManifest(name) {
			return nil
		}

		tool, err := d.load(name)
		if err != nil {
			d.skip(name, err)
			return nil
		}
		d.logger.Debug("tool discovered",
			telemetry.EventField(telemetry.EventToolDiscovered),
			telemetry.ToolField(tool.Name()),
			telemetry.PathField(name),
		)
		tools = append(tools, tool)
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name())
	}
	d.logger.Info("tools discovered", zap.Int("count", len(tools)), zap.Strings("tools", names))
	d.metrics.SetDiscoveredTools(len(tools))
	return tools, nil
}

func (d *Discoverer) load(name string) (domain.Tool, error) {
	data, err := fs.ReadFile(d.root, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := decodeManifest(name, data)
	if err != nil {
		return nil, err
	}
	if err := validateManifest(m); err != nil {
		return nil, err
	}
	params, err := normalizeParameters(m.Definition.Function.Parameters)
	if err != nil {
		return nil, err
	}
	fn, ok := d.functions.Resolve(m.Function)
	if !ok {
		return nil, fmt.Errorf("function %q is not registered", m.Function)
	}
	return domain.NewFuncTool(m.schema(params), fn), nil
}

func (d *Discoverer) skip(name string, err error) {
	d.logger.Warn("skipping tool module",
		telemetry.EventField(telemetry.EventModuleSkipped),
		telemetry.PathField(name),
		zap.Error(err),
	)
}
