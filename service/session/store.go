package session

import (
	"context"
	"sync"
	"time"

	"github.com/anandbobba/Innovex-Service/tools/errs"
	"github.com/google/uuid"
)

const DefaultTTL = 15 * time.Minute

// sweep margin: the deletion timer fires slightly after the expiry instant
// so Get never races a token that is still formally valid.
const expireMargin = 2 * time.Second

// Session is an opaque, time-limited credential issued after unlock.
// SpocID is empty for PIN-based sessions (full access).
type Session struct {
	Token     string    `json:"token"`
	SpocID    string    `json:"spocId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store abstracts session persistence so the in-memory map can be swapped
// for a shared external store when running more than one instance.
type Store interface {
	Issue(ctx context.Context, spocID string, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Revoke(ctx context.Context, token string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	byTok map[string]*Session

	Clock func() time.Time // injectable for tests; nil => time.Now
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byTok: make(map[string]*Session)}
}

func (s *MemoryStore) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *MemoryStore) Issue(ctx context.Context, spocID string, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sess := &Session{
		Token:     uuid.NewString(),
		SpocID:    spocID,
		ExpiresAt: s.now().Add(ttl),
	}
	s.mu.Lock()
	s.byTok[sess.Token] = sess
	s.mu.Unlock()

	time.AfterFunc(ttl+expireMargin, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.byTok[sess.Token]; ok && !s.now().Before(cur.ExpiresAt) {
			delete(s.byTok, sess.Token)
		}
	})
	return sess, nil
}

// Get returns the session if it exists and has not expired. Expired entries
// are evicted here as well, in case the timer has not fired yet.
func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.byTok[token]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.ErrTokenExpired
	}
	if !s.now().Before(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.byTok, token)
		s.mu.Unlock()
		return nil, errs.ErrTokenExpired
	}
	return sess, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.byTok, token)
	s.mu.Unlock()
	return nil
}
