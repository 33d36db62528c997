package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/domain"
)

const (
	DefaultSessionTTL   = time.Hour
	DefaultReapInterval = 5 * time.Minute
)

// SessionStore keeps sessions in memory and evicts the ones idle past the TTL.
// Callers always receive deep copies; writes go through Update.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// StoreOption configures a SessionStore
type StoreOption func(*SessionStore)

// WithClock replaces the wall clock, mainly for tests
func WithClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) { s.now = now }
}

// WithReapInterval sets how often the reaper wakes up
func WithReapInterval(d time.Duration) StoreOption {
	return func(s *SessionStore) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewSessionStore creates an empty store. The reaper is not running until Start.
func NewSessionStore(ttl time.Duration, opts ...StoreOption) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &SessionStore{
		sessions: make(map[string]*domain.Session),
		locks:    make(map[string]*sync.Mutex),
		ttl:      ttl,
		interval: DefaultReapInterval,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the idle lifetime of a session
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func (s *SessionStore) expired(sess *domain.Session, now time.Time) bool {
	return now.Sub(sess.LastActivity) > s.ttl
}

// Create allocates and stores a new empty session
func (s *SessionStore) Create() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *SessionStore) createLocked() *domain.Session {
	sess := domain.NewSession(s.now())
	s.sessions[sess.SessionID] = sess.Clone()
	log.Info().Str("session_id", sess.SessionID).Msg("Created new session")
	return sess
}

// Get returns the session if it exists and has not expired. An expired
// session is evicted before reporting it as not found.
func (s *SessionStore) Get(id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if s.expired(sess, s.now()) {
		s.evictLocked(id)
		log.Info().Str("session_id", id).Msg("Session expired")
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return sess.Clone(), nil
}

// GetOrCreate returns the live session for id, or a new one when id is
// empty, unknown or expired. Expired sessions are evicted here as in Get.
func (s *SessionStore) GetOrCreate(id string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			if !s.expired(sess, s.now()) {
				return sess.Clone()
			}
			s.evictLocked(id)
			log.Info().Str("session_id", id).Msg("Session expired, creating a new one")
		}
	}
	return s.createLocked()
}

// Update refreshes the session's last activity and stores a copy of it.
// LastActivity never moves backwards.
func (s *SessionStore) Update(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if prev, ok := s.sessions[sess.SessionID]; ok && prev.LastActivity.After(now) {
		now = prev.LastActivity
	}
	if sess.LastActivity.After(now) {
		now = sess.LastActivity
	}
	sess.LastActivity = now
	s.sessions[sess.SessionID] = sess.Clone()
	log.Debug().Str("session_id", sess.SessionID).Msg("Updated session")
}

// Delete removes a session
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.evictLocked(id)
	log.Info().Str("session_id", id).Msg("Deleted session")
	return nil
}

// Count returns the number of stored sessions, including expired ones the
// reaper has not collected yet.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Lock serializes read-modify-write cycles on one session. The returned
// function releases the lock.
func (s *SessionStore) Lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *SessionStore) evictLocked(id string) {
	delete(s.sessions, id)
	s.locksMu.Lock()
	delete(s.locks, id)
	s.locksMu.Unlock()
}

// Reap evicts every expired session and returns how many were removed
func (s *SessionStore) Reap() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []string
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.evictLocked(id)
		log.Info().Str("session_id", id).Msg("Cleaned up expired session")
	}
	if len(expired) > 0 {
		log.Info().Int("count", len(expired)).Msg("Cleaned up expired sessions")
	}
	return len(expired)
}

// Start launches the background reaper. Calling Start on a running store is a no-op.
func (s *SessionStore) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	log.Info().Dur("interval", s.interval).Dur("ttl", s.ttl).Msg("Session reaper started")
}

func (s *SessionStore) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap()
		}
	}
}

// Stop cancels the reaper and waits for it to exit
func (s *SessionStore) Stop() {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Info().Msg("Session reaper stopped")
}
