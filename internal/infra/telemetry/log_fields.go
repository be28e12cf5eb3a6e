package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldTool       = "tool"
	FieldSessionID  = "session_id"
	FieldOutcome    = "outcome"
	FieldPath       = "path"
	FieldMode       = "mode"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

const (
	EventDiscoveryStart  = "discovery_start"
	EventModuleSkipped   = "module_skipped"
	EventToolDiscovered  = "tool_discovered"
	EventDuplicateTool   = "duplicate_tool"
	EventToolCall        = "tool_call"
	EventToolCallFailure = "tool_call_failure"
	EventSessionOpen     = "session_open"
	EventSessionClose    = "session_close"
	EventSessionMissing  = "session_missing"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ToolField(name string) zap.Field {
	return zap.String(FieldTool, name)
}

func SessionIDField(id string) zap.Field {
	return zap.String(FieldSessionID, id)
}

func OutcomeField(outcome string) zap.Field {
	return zap.String(FieldOutcome, outcome)
}

func PathField(path string) zap.Field {
	return zap.String(FieldPath, path)
}

func ModeField(mode string) zap.Field {
	return zap.String(FieldMode, mode)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
