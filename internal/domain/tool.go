package domain

import "context"

// ToolFunc is the callable half of a tool contract. Implementations receive the
// caller's arguments verbatim, including any keys the schema does not declare.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Tool is a named, schema-described invocable operation.
type Tool interface {
	Name() string
	Describe() ToolSchema
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// ToolSchema is the declarative half of a tool contract.
type ToolSchema struct {
	Name        string
	Description string
	// Parameters is the declared JSON Schema of the arguments object,
	// e.g. {"type": "object", "properties": {...}, "required": [...]}.
	Parameters map[string]any
}

// Required returns the mandatory argument names in declaration order.
func (s ToolSchema) Required() []string {
	if s.Parameters == nil {
		return nil
	}
	switch raw := s.Parameters["required"].(type) {
	case []string:
		return append([]string(nil), raw...)
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if name, ok := item.(string); ok {
				out = append(out, name)
			}
		}
		return out
	default:
		return nil
	}
}

// FuncTool binds a schema to a function.
type FuncTool struct {
	Schema ToolSchema
	Func   ToolFunc
}

// NewFuncTool returns a Tool backed by fn.
func NewFuncTool(schema ToolSchema, fn ToolFunc) *FuncTool {
	return &FuncTool{Schema: schema, Func: fn}
}

func (t *FuncTool) Name() string { return t.Schema.Name }

func (t *FuncTool) Describe() ToolSchema { return t.Schema }

func (t *FuncTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if t.Func == nil {
		return nil, E(CodeInternal, "tool.invoke", "tool "+t.Schema.Name+" has no function", nil)
	}
	return t.Func(ctx, args)
}

var _ Tool = (*FuncTool)(nil)

// CloneJSONValue deep-copies maps and slices decoded from JSON, YAML or TOML.
func CloneJSONValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = CloneJSONValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = CloneJSONValue(v)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}
