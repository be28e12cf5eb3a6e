package domain

import "time"

// CallOutcome labels the result of a tool call.
type CallOutcome string

const (
	// CallOutcomeSuccess indicates the tool returned a result.
	CallOutcomeSuccess CallOutcome = "success"
	// CallOutcomeNotFound indicates the tool name was unknown.
	CallOutcomeNotFound CallOutcome = "not_found"
	// CallOutcomeInvalidParams indicates a required argument was missing.
	CallOutcomeInvalidParams CallOutcome = "invalid_params"
	// CallOutcomeInternalError indicates the tool itself failed.
	CallOutcomeInternalError CallOutcome = "internal_error"
)

// OutcomeFromCode maps an error code to a call outcome.
func OutcomeFromCode(code ErrorCode) CallOutcome {
	switch code {
	case CodeNotFound:
		return CallOutcomeNotFound
	case CodeInvalidParams:
		return CallOutcomeInvalidParams
	default:
		return CallOutcomeInternalError
	}
}

// CallMetric captures a single dispatch observation.
type CallMetric struct {
	Tool     string
	Outcome  CallOutcome
	Duration time.Duration
}

// Metrics records runtime observations.
type Metrics interface {
	ObserveToolCall(metric CallMetric)
	ObserveSessionOpened()
	SetActiveSessions(count int)
	SetDiscoveredTools(count int)
}
