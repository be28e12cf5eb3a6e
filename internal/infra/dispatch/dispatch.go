package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/mcpcodec"
	"targetmcp/internal/infra/telemetry"
)

// JSON-RPC error codes returned to protocol clients.
const (
	CodeMethodNotFound int64 = -32601
	CodeInvalidParams  int64 = -32602
	CodeInternalError  int64 = -32603
)

// UnknownToolLabel is the metric label for calls naming no registered tool.
const UnknownToolLabel = "unknown"

// ToolSource resolves tool names. *registry.Registry satisfies it.
type ToolSource interface {
	Lookup(name string) (domain.Tool, bool)
}

type Dispatcher struct {
	tools   ToolSource
	logger  *zap.Logger
	metrics domain.Metrics
	now     func() time.Time
}

func New(tools ToolSource, logger *zap.Logger, metrics domain.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Dispatcher{
		tools:   tools,
		logger:  logger.Named("dispatch"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Call decodes wire arguments and dispatches. Empty or null arguments are
// treated as an empty object.
func (d *Dispatcher) Call(ctx context.Context, name string, raw json.RawMessage) (*mcp.CallToolResult, error) {
	args, err := DecodeArguments(raw)
	if err != nil {
		d.observe(ctx, name, d.metricLabel(name), d.now(), err)
		return nil, err
	}
	return d.Dispatch(ctx, name, args)
}

// Dispatch looks up name, checks required arguments in declared order,
// invokes the tool and encodes its result.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (result *mcp.CallToolResult, err error) {
	start := d.now()
	label := UnknownToolLabel
	defer func() { d.observe(ctx, name, label, start, err) }()

	tool, ok := d.tools.Lookup(name)
	if !ok {
		return nil, domain.E(domain.CodeNotFound, "dispatch", "Unknown tool: "+name, domain.ErrToolNotFound)
	}
	label = name
	if args == nil {
		args = map[string]any{}
	}

	for _, field := range tool.Describe().Required() {
		if _, present := args[field]; !present {
			return nil, domain.E(domain.CodeInvalidParams, "dispatch", "Missing required parameter: "+field, domain.ErrMissingParameter)
		}
	}

	value, err := invoke(ctx, tool, args)
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "dispatch", "API error: "+domain.MessageOf(err), err)
	}

	result, err = mcpcodec.TextResult(value)
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "dispatch", "API error: "+err.Error(), err)
	}
	return result, nil
}

func invoke(ctx context.Context, tool domain.Tool, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return tool.Invoke(ctx, args)
}

// metricLabel keeps caller-supplied names out of metric labels unless they
// name a registered tool.
func (d *Dispatcher) metricLabel(name string) string {
	if _, ok := d.tools.Lookup(name); ok {
		return name
	}
	return UnknownToolLabel
}

func (d *Dispatcher) observe(ctx context.Context, name, label string, start time.Time, err error) {
	duration := d.now().Sub(start)
	outcome := domain.CallOutcomeSuccess
	if err != nil {
		code, _ := domain.CodeFrom(err)
		outcome = domain.OutcomeFromCode(code)
	}
	d.metrics.ObserveToolCall(domain.CallMetric{Tool: label, Outcome: outcome, Duration: duration})

	logger := telemetry.LoggerWithRequest(ctx, d.logger)
	fields := []zap.Field{
		telemetry.ToolField(name),
		telemetry.OutcomeField(string(outcome)),
		telemetry.DurationField(duration),
	}
	if err != nil {
		logger.Warn("tool call failed", append(fields, telemetry.EventField(telemetry.EventToolCallFailure), zap.Error(err))...)
		return
	}
	logger.Info("tool call", append(fields, telemetry.EventField(telemetry.EventToolCall))...)
}

// DecodeArguments parses the wire arguments object.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, domain.E(domain.CodeInvalidParams, "dispatch", "Invalid arguments: expected an object", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// ProtocolError converts a dispatch error into the JSON-RPC error sent to clients.
func ProtocolError(err error) *jsonrpc.Error {
	if err == nil {
		return nil
	}
	code, _ := domain.CodeFrom(err)
	var wire int64
	switch code {
	case domain.CodeNotFound:
		wire = CodeMethodNotFound
	case domain.CodeInvalidParams:
		wire = CodeInvalidParams
	default:
		wire = CodeInternalError
	}
	return &jsonrpc.Error{Code: wire, Message: domain.MessageOf(err)}
}
