package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eugenenazirov/boxfit/internal/fit"
	"github.com/eugenenazirov/boxfit/internal/form"
)

const (
	// DefaultMaxSessions caps the number of live sessions held in memory.
	DefaultMaxSessions = 1000
	// DefaultSessionTTL is how long an untouched session survives.
	DefaultSessionTTL = 30 * time.Minute
)

var (
	// ErrSessionNotFound indicates the session does not exist or has expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionLimit indicates no more sessions can be created right now.
	ErrSessionLimit = errors.New("session limit reached")
)

// Session is one user's working form together with its last check results.
// Evaluated is false until the first check, then stays true.
type Session struct {
	ID        string
	State     form.State
	Results   []fit.Result
	Evaluated bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Storage provides access to the sessions used by the API.
type Storage interface {
	Create() (Session, error)
	Get(id string) (Session, error)
	Update(id string, fn func(Session) (Session, error)) (Session, error)
	Delete(id string) error
}

// Option configures a MemoryStorage.
type Option func(*MemoryStorage)

// WithMaxSessions overrides the live session cap. Values <= 0 keep the default.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStorage) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithTTL overrides the idle expiry. Values <= 0 keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStorage) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStorage) {
		s.clock = clock
	}
}

// MemoryStorage keeps sessions in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]Session

	maxSessions int
	ttl         time.Duration
	clock       func() time.Time
	newID       func() (string, error)
}

// NewMemoryStorage initialises an empty session store.
func NewMemoryStorage(opts ...Option) *MemoryStorage {
	s := &MemoryStorage{
		sessions:    make(map[string]Session),
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID: generateSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session holding the initial form.
func (s *MemoryStorage) Create() (Session, error) {
	id, err := s.newID()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if len(s.sessions) >= s.maxSessions {
		s.sweepLocked(now)
		if len(s.sessions) >= s.maxSessions {
			return Session{}, ErrSessionLimit
		}
	}

	sess := Session{
		ID:        id,
		State:     form.New(),
		Results:   []fit.Result{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[id] = sess
	return cloneSession(sess), nil
}

// Get returns a copy of the session.
func (s *MemoryStorage) Get(id string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.expired(sess, s.clock()) {
		return Session{}, ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

// Update applies fn to the session under the write lock and stores its result.
// When fn fails the session is left unchanged.
func (s *MemoryStorage) Update(id string, fn func(Session) (Session, error)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return Session{}, ErrSessionNotFound
	}

	updated, err := fn(cloneSession(sess))
	if err != nil {
		return Session{}, err
	}
	updated.ID = sess.ID
	updated.CreatedAt = sess.CreatedAt
	updated.UpdatedAt = now

	s.sessions[id] = cloneSession(updated)
	return updated, nil
}

// Delete removes the session. An expired session is dropped but still
// reported as not found.
func (s *MemoryStorage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	if s.expired(sess, s.clock()) {
		return ErrSessionNotFound
	}
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStorage) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.clock())
}

// Len reports the number of sessions currently held, expired ones included.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStorage) sweepLocked(now time.Time) int {
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStorage) expired(sess Session, now time.Time) bool {
	return now.Sub(sess.UpdatedAt) > s.ttl
}

// cloneSession copies the result slices; form.State is already immutable.
func cloneSession(src Session) Session {
	out := src
	out.Results = make([]fit.Result, len(src.Results))
	for i, r := range src.Results {
		r.FittingProducts = append([]string{}, r.FittingProducts...)
		out.Results[i] = r
	}
	return out
}

func generateSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
