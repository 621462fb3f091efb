package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"finsight/pkg/config"
)

// DefaultSessionID is used when a client does not supply a session ID.
const DefaultSessionID = "default"

type session struct {
	controller *Controller
	createdAt  time.Time
	lastAccess time.Time
}

// Manager keeps per-session workflow controllers in memory. Sessions do not
// persist beyond the process; idle ones are expired by a scheduled sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	cron     *cron.Cron
	factory  func() *Controller
	logger   *zap.Logger
}

// NewManager builds a Manager. factory creates a Controller wired with the
// session's collaborators. The sweep schedule comes from configuration
// (cron syntax, e.g. "@every 10m").
func NewManager(cfg *config.SessionConfig, factory func() *Controller, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		sessions: make(map[string]*session),
		ttl:      cfg.TTL,
		cron:     cron.New(),
		factory:  factory,
		logger:   logger,
	}
	if _, err := m.cron.AddFunc(cfg.SweepSchedule, m.sweep); err != nil {
		return nil, err
	}
	m.cron.Start()
	return m, nil
}

// Get returns the controller for the given session ID, creating the session
// on first use. An empty ID maps to the default session.
func (m *Manager) Get(id string) *Controller {
	if id == "" {
		id = DefaultSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = &session{
			controller: m.factory(),
			createdAt:  time.Now(),
		}
		m.sessions[id] = s
		m.logger.Info("Session created", zap.String("session_id", id))
	}
	s.lastAccess = time.Now()
	return s.controller
}

// NewSession creates a fresh session under a generated ID and returns the
// ID.
func (m *Manager) NewSession() string {
	id := uuid.New().String()
	m.Get(id)
	return id
}

// Delete removes a session outright.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.logger.Info("Session deleted", zap.String("session_id", id))
	}
}

// Stop halts the expiry sweeper.
func (m *Manager) Stop() {
	m.cron.Stop()
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.lastAccess.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Expired idle sessions", zap.Int("removed", removed))
	}
}
