package catalog

import (
	"fmt"
	"sort"
	"sync"

	"targetmcp/internal/domain"
)

// FunctionRegistry maps manifest function keys to compiled tool implementations.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]domain.ToolFunc
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: make(map[string]domain.ToolFunc)}
}

func (r *FunctionRegistry) Register(key string, fn domain.ToolFunc) error {
	if key == "" {
		return fmt.Errorf("register function: key is required")
	}
	if fn == nil {
		return fmt.Errorf("register function %q: nil function", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[key]; exists {
		return fmt.Errorf("register function %q: already registered", key)
	}
	r.funcs[key] = fn
	return nil
}

func (r *FunctionRegistry) Resolve(key string) (domain.ToolFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[key]
	return fn, ok
}

func (r *FunctionRegistry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.funcs))
	for key := range r.funcs {
		keys = append(keys, key)
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
