package registry

import (
	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/telemetry"
)

// Registry holds discovered tools in discovery order. It is never mutated
// after New returns, so concurrent readers need no locking.
type Registry struct {
	tools []domain.Tool
	index map[string]domain.Tool
}

// New builds a registry from tools. When two tools share a name the first one
// wins lookups; later duplicates stay in the listing and are logged.
func New(tools []domain.Tool, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("registry")

	r := &Registry{
		tools: make([]domain.Tool, 0, len(tools)),
		index: make(map[string]domain.Tool, len(tools)),
	}
	for _, tool := range tools {
		if tool == nil {
			continue
		}
		r.tools = append(r.tools, tool)
		name := tool.Name()
		if _, exists := r.index[name]; exists {
			logger.Warn("duplicate tool name; first registration wins",
				telemetry.EventField(telemetry.EventDuplicateTool),
				telemetry.ToolField(name),
			)
			continue
		}
		r.index[name] = tool
	}
	return r
}

func (r *Registry) List() []domain.Tool {
	return append([]domain.Tool(nil), r.tools...)
}

func (r *Registry) Lookup(name string) (domain.Tool, bool) {
	tool, ok := r.index[name]
	return tool, ok
}

func (r *Registry) Len() int {
	return len(r.tools)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, tool := range r.tools {
		names = append(names, tool.Name())
	}
	return names
}
