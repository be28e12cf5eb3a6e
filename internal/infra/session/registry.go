package session

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"targetmcp/internal/domain"
	"targetmcp/internal/infra/telemetry"
)

// Registry tracks live event-stream sessions by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
	metrics  domain.Metrics
}

func NewRegistry(logger *zap.Logger, metrics domain.Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger.Named("sessions"),
		metrics:  metrics,
	}
}

func (r *Registry) Register(s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("register session: id is required")
	}
	r.mu.Lock()
	if _, exists := r.sessions[s.ID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("register session %s: %w", s.ID, domain.ErrSessionExists)
	}
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.ObserveSessionOpened()
	r.metrics.SetActiveSessions(count)
	r.logger.Info("session opened",
		telemetry.EventField(telemetry.EventSessionOpen),
		telemetry.SessionIDField(s.ID),
		zap.Int("active", count),
	)
	return nil
}

// Unregister removes id and reports whether it was present.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	count := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return false
	}

	r.metrics.SetActiveSessions(count)
	r.logger.Info("session closed",
		telemetry.EventField(telemetry.EventSessionClose),
		telemetry.SessionIDField(id),
		telemetry.DurationField(sinceOpened(s)),
		zap.Int("active", count),
	)
	return true
}

func (r *Registry) Lookup(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// CloseAll closes and removes every session. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		if err := s.Close(); err != nil {
			r.logger.Warn("close session failed", telemetry.SessionIDField(s.ID), zap.Error(err))
		}
	}
	r.metrics.SetActiveSessions(0)
	if len(sessions) > 0 {
		r.logger.Info("closed all sessions", zap.Int("count", len(sessions)))
	}
}
