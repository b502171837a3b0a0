package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/homecook/pkg/repository"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Load(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]Session), now: time.Now}
}

func (m *MemorySessions) Save(_ context.Context, s Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *MemorySessions) Load(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !s.ExpiresAt.IsZero() && m.now().After(s.ExpiresAt) {
		delete(m.sessions, token)
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemorySessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// RedisSessions keeps sessions in Redis so every gateway instance sees them.
type RedisSessions struct {
	redis *repository.RedisRepository
}

func NewRedisSessions(r *repository.RedisRepository) *RedisSessions {
	return &RedisSessions{redis: r}
}

func sessionKey(token string) string {
	return "session:" + token
}

func (r *RedisSessions) Save(ctx context.Context, s Session, ttl time.Duration) error {
	return r.redis.SetJSON(ctx, sessionKey(s.Token), s, ttl)
}

func (r *RedisSessions) Load(ctx context.Context, token string) (*Session, error) {
	var s Session
	if err := r.redis.GetJSON(ctx, sessionKey(token), &s); err != nil {
		if errors.Is(err, repository.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *RedisSessions) Delete(ctx context.Context, token string) error {
	return r.redis.Del(ctx, sessionKey(token))
}
