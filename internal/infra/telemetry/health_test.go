package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthTracker_ReportSortedAndDegraded(t *testing.T) {
	tracker := NewHealthTracker()
	tracker.Set("registry", true, "")
	tracker.Set("listener", true, "")

	report := tracker.Report()
	assert.Equal(t, "ok", report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "listener", report.Checks[0].Name)

	tracker.Set("registry", false, "empty")
	assert.Equal(t, "degraded", tracker.Report().Status)

	tracker.Remove("registry")
	assert.Equal(t, "ok", tracker.Report().Status)
}

func TestHealthTracker_NilSafe(t *testing.T) {
	var tracker *HealthTracker
	tracker.Set("x", false, "")
	assert.Equal(t, "ok", tracker.Report().Status)
}
