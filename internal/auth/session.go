package auth

import (
	"context"
	"sync"
	"time"

	"github.com/antonvlasov/finsync/internal/bus"
	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

// SessionStore caches the session record in the client's lightweight store.
// It is a convenience cache only — validity is never trusted from storage
// without recomputation.
type SessionStore interface {
	SaveSession(ctx context.Context, s *models.Session) error
	DeleteSession(ctx context.Context) error
}

// sessionManager is the concrete implementation of [SessionManager].
// Expiry is detected lazily: the first validity check (window focus,
// periodic tick) that observes an expired session drops it and publishes
// the session-expired event so every surface re-authenticates.
type sessionManager struct {
	store       SessionStore
	events      *bus.Bus
	idleTimeout time.Duration
	logger      *logger.Logger
	now         func() time.Time

	mu      sync.Mutex
	current *models.Session
}

// NewSessionManager constructs a [SessionManager] with the given idle
// timeout, persisting through store and signaling through events.
func NewSessionManager(store SessionStore, events *bus.Bus, idleTimeout time.Duration, log *logger.Logger) SessionManager {
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}

	return &sessionManager{
		store:       store,
		events:      events,
		idleTimeout: idleTimeout,
		logger:      log,
		now:         time.Now,
	}
}

// CreateSession implements [SessionManager].
func (m *sessionManager) CreateSession(ctx context.Context) (models.Session, error) {
	now := m.now()
	session := &models.Session{
		Token:          utils.NewUUID(),
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(m.idleTimeout),
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	if err := m.store.SaveSession(ctx, session); err != nil {
		// The in-memory session still stands; the store is only a cache.
		logger.FromContext(ctx).Err(err).Msg("failed to cache session")
	}

	return *session, nil
}

// IsSessionValid implements [SessionManager].
func (m *sessionManager) IsSessionValid(ctx context.Context) bool {
	m.mu.Lock()
	session := m.current
	expired := session != nil && !session.ValidAt(m.now())
	if expired {
		m.current = nil
	}
	m.mu.Unlock()

	if expired {
		if err := m.store.DeleteSession(ctx); err != nil {
			logger.FromContext(ctx).Err(err).Msg("failed to drop cached session")
		}
		m.events.Publish(bus.TopicSessionExpired, session.Token)
		return false
	}

	return session != nil
}

// Touch implements [SessionManager].
func (m *sessionManager) Touch(ctx context.Context) {
	m.mu.Lock()
	session := m.current
	if session != nil && session.ValidAt(m.now()) {
		now := m.now()
		session.LastActivityAt = now
		session.ExpiresAt = now.Add(m.idleTimeout)
	} else {
		session = nil
	}
	m.mu.Unlock()

	if session != nil {
		if err := m.store.SaveSession(ctx, session); err != nil {
			logger.FromContext(ctx).Err(err).Msg("failed to refresh cached session")
		}
	}
}

// Invalidate implements [SessionManager].
func (m *sessionManager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()

	if err := m.store.DeleteSession(ctx); err != nil {
		logger.FromContext(ctx).Err(err).Msg("failed to drop cached session")
	}
	if had {
		m.events.Publish(bus.TopicSessionExpired, nil)
	}
}

// Current implements [SessionManager].
func (m *sessionManager) Current() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}
