package chatbot

import (
	"context"
	"sync"
	"time"

	"github.com/campus-buddy/backend/internal/storage/models"
)

// MaxTurns bounds each session's history. The Redis client trims to the same length.
const MaxTurns = 200

// Store keeps chat turns per session. The Redis client in internal/cache/redis
// satisfies it for multi-instance deployments.
type Store interface {
	Append(ctx context.Context, sessionID string, turns ...models.Turn) error
	History(ctx context.Context, sessionID string) ([]models.Turn, error)
	Reset(ctx context.Context, sessionID string) error
}

type memorySession struct {
	turns   []models.Turn
	touched time.Time
}

// MemoryStore is the single-instance Store. Sessions idle for longer than
// the TTL are dropped on the next write; a zero TTL keeps them forever.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
	swept    time.Time
}

type MemoryOption func(*MemoryStore)

// WithIdleTTL evicts sessions that have not been read or written within ttl.
func WithIdleTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, turns ...models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdle(now)

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &memorySession{}
		s.sessions[sessionID] = sess
	}
	sess.turns = append(sess.turns, turns...)
	if over := len(sess.turns) - MaxTurns; over > 0 {
		sess.turns = append([]models.Turn(nil), sess.turns[over:]...)
	}
	sess.touched = now
	return nil
}

func (s *MemoryStore) History(_ context.Context, sessionID string) ([]models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return []models.Turn{}, nil
	}
	if s.expired(sess, now) {
		delete(s.sessions, sessionID)
		return []models.Turn{}, nil
	}
	sess.touched = now

	cp := make([]models.Turn, len(sess.turns))
	copy(cp, sess.turns)
	return cp, nil
}

func (s *MemoryStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(sess *memorySession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.touched) > s.ttl
}

// evictIdle scans at most once per TTL and must be called with mu held.
func (s *MemoryStore) evictIdle(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.swept) < s.ttl {
		return
	}
	s.swept = now
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
		}
	}
}
