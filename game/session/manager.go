package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/service"
	"github.com/wricardo/maze-game/internal/observability"
)

var (
	// ErrSessionNotFound is shared with the service layer
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// idAttempts bounds the retries on a generated ID collision
const idAttempts = 8

// Option customizes a Manager
type Option func(*Manager)

// WithPersistence stores sessions in p and restores them from it on demand
func WithPersistence(p SessionPersistence) Option {
	return func(m *Manager) { m.store = p }
}

// WithIdleTTL expires sessions idle for longer than ttl. Zero keeps sessions forever.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock overrides the time source used for access times and expiry
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the manager logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// Manager owns the live sessions. Sessions are keyed by lower-cased ID and,
// when a store is configured, written through to it. A session idle past the
// TTL is gone for good: it is dropped from memory and from the store.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*service.Session
	store    SessionPersistence
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = observability.GetLogger().Named("session")
	}
	return m
}

func key(id string) string { return strings.ToLower(id) }

// idle reports whether sess has outlived the TTL. Callers hold m.mu.
func (m *Manager) idle(sess *service.Session) bool {
	return m.ttl > 0 && m.now().Sub(sess.LastAccessedAt) > m.ttl
}

// Create carves a maze for config and registers it under id, or under a
// generated 4-character ID when id is empty.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		for attempt := 0; attempt < idAttempts; attempt++ {
			id = newSessionID()
			if _, taken := m.sessions[key(id)]; !taken {
				break
			}
		}
	}
	if _, taken := m.sessions[key(id)]; taken {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := m.now()
	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = sess

	// A store failure leaves the session usable in memory
	if m.store != nil {
		if err := m.store.Save(sess); err != nil {
			m.logger.Warn("failed to persist session", zap.String("session", id), zap.Error(err))
		}
	}
	return sess, nil
}

// Get returns a live session, restoring it from the store when it is not in
// memory. Idle sessions are expired on the spot.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	expired := ok && m.idle(sess)
	m.mu.RUnlock()

	switch {
	case expired:
		m.expire(sess.ID)
		return nil, ErrSessionNotFound
	case ok:
		return sess, nil
	case m.store == nil || !m.store.Exists(id):
		return nil, ErrSessionNotFound
	}

	loaded, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idle(loaded) {
		m.dropStored(loaded.ID)
		return nil, ErrSessionNotFound
	}
	// Another caller may have restored it first
	if cached, ok := m.sessions[key(id)]; ok {
		return cached, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

// List returns the sessions held in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Count returns the number of sessions held in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Delete removes a session from memory and from the store
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))
	m.mu.Unlock()

	if m.store != nil && m.store.Exists(id) {
		if err := m.store.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// Evict drops a session from memory and keeps its stored copy
func (m *Manager) Evict(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// Touch marks a session as accessed now
func (m *Manager) Touch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = m.now()
	return nil
}

// Save writes a session through to the store
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return nil
	}

	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.store.Save(sess)
}

// Expire removes every idle session from memory and from the store and
// returns how many went.
func (m *Manager) Expire() int {
	m.mu.Lock()
	var ids []string
	for k, sess := range m.sessions {
		if m.idle(sess) {
			delete(m.sessions, k)
			ids = append(ids, sess.ID)
		}
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.dropStored(id)
	}
	return len(ids)
}

// expire removes a single idle session
func (m *Manager) expire(id string) {
	m.mu.Lock()
	delete(m.sessions, key(id))
	m.mu.Unlock()
	m.dropStored(id)
}

func (m *Manager) dropStored(id string) {
	if m.store == nil {
		return
	}
	if err := m.store.Delete(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		m.logger.Warn("failed to delete expired session", zap.String("session", id), zap.Error(err))
	}
}

// PruneOrphans drops sessions whose stored copy is gone, e.g. deleted by
// another instance or an expired Redis key.
func (m *Manager) PruneOrphans() int {
	if m.store == nil {
		return 0
	}

	pruned := 0
	for _, sess := range m.List() {
		if m.store.Exists(sess.ID) {
			continue
		}
		if err := m.Evict(sess.ID); err == nil {
			pruned++
		}
	}
	return pruned
}

// Restore loads every stored session into memory. Stored sessions already
// past the TTL are deleted instead.
func (m *Manager) Restore() error {
	if m.store == nil {
		return nil
	}

	ids, err := m.store.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	restored, expired := 0, 0
	for _, id := range ids {
		if _, ok := m.sessions[key(id)]; ok {
			continue
		}

		sess, err := m.store.Load(id)
		if err != nil {
			m.logger.Warn("failed to load persisted session", zap.String("session", id), zap.Error(err))
			continue
		}
		if m.idle(sess) {
			m.dropStored(id)
			expired++
			continue
		}
		m.sessions[key(id)] = sess
		restored++
	}

	if restored > 0 || expired > 0 {
		m.logger.Info("restored persisted sessions", zap.Int("count", restored), zap.Int("expired", expired))
	}
	return nil
}

// Flush writes every session in memory to the store
func (m *Manager) Flush() error {
	if m.store == nil {
		return nil
	}

	failed := 0
	for _, sess := range m.List() {
		if err := m.store.Save(sess); err != nil {
			m.logger.Warn("failed to save session", zap.String("session", sess.ID), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}

// newSessionID returns 4 random hex characters
func newSessionID() string {
	b := make([]byte, 2)
	rand.Read(b)
	return hex.EncodeToString(b)
}
