package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrStateNotFound   = errors.New("session state not found")
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

const defaultSessionTTL = time.Hour

// Store keeps sessions between turns of the same conversation.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, st *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// StoreOption customizes MemoryStore.
type StoreOption func(*MemoryStore)

// WithTTL evicts sessions idle for longer than ttl. Zero disables eviction.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

type storedSession struct {
	session *Session
	savedAt time.Time
}

// MemoryStore holds sessions in process memory only. Load and Save copy, so the
// caller owns the returned handle exclusively.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(opts ...StoreOption) (*MemoryStore, error) {
	store := &MemoryStore{
		sessions: make(map[string]storedSession),
		ttl:      defaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return store, nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := sessionKey(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	if s.expired(stored) {
		delete(s.sessions, key)
		return nil, ErrStateNotFound
	}
	return stored.session.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, st *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st == nil {
		return ErrNilSessionState
	}
	key, err := sessionKey(st.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = storedSession{session: st.Clone(), savedAt: s.now()}
	s.sweepLocked()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	key, err := sessionKey(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(stored storedSession) bool {
	return s.ttl > 0 && s.now().Sub(stored.savedAt) > s.ttl
}

func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	for key, stored := range s.sessions {
		if s.expired(stored) {
			delete(s.sessions, key)
		}
	}
}

func sessionKey(sessionID string) (string, error) {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return "", ErrInvalidSession
	}
	return trimmed, nil
}
