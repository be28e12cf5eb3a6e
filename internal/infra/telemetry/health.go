package telemetry

import (
	"sort"
	"sync"
	"time"
)

// HealthTracker aggregates readiness checks reported by the running components.
type HealthTracker struct {
	mu     sync.RWMutex
	checks map[string]HealthCheck
	now    func() time.Time
}

type HealthCheck struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Detail    string    `json:"detail,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type HealthReport struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks,omitempty"`
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		checks: make(map[string]HealthCheck),
		now:    time.Now,
	}
}

func (h *HealthTracker) Set(name string, healthy bool, detail string) {
	if h == nil || name == "" {
		return
	}
	h.mu.Lock()
	h.checks[name] = HealthCheck{
		Name:      name,
		Healthy:   healthy,
		Detail:    detail,
		UpdatedAt: h.now(),
	}
	h.mu.Unlock()
}

func (h *HealthTracker) Remove(name string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	delete(h.checks, name)
	h.mu.Unlock()
}

// Report returns "ok" only when every registered check is healthy.
func (h *HealthTracker) Report() HealthReport {
	if h == nil {
		return HealthReport{Status: "ok"}
	}
	h.mu.RLock()
	checks := make([]HealthCheck, 0, len(h.checks))
	for _, check := range h.checks {
		checks = append(checks, check)
	}
	h.mu.RUnlock()

	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })

	status := "ok"
	for _, check := range checks {
		if !check.Healthy {
			status = "degraded"
			break
		}
	}
	return HealthReport{Status: status, Checks: checks}
}
