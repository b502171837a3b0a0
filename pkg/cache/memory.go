package cache

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu   sync.RWMutex
	tags map[string]map[string]entry
	gens map[string]int64
	ttl  time.Duration
	now  func() time.Time
}

// NewMemory returns a process-local cache; ttl <= 0 keeps entries until
// invalidated.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		tags: make(map[string]map[string]entry),
		gens: make(map[string]int64),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *Memory) Get(_ context.Context, tag, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.tags[tag][key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		return nil, false, nil
	}
	return e.data, true, nil
}

func (m *Memory) Generation(_ context.Context, tag string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[tag], nil
}

func (m *Memory) Put(_ context.Context, tag, key string, gen int64, data []byte) error {
	e := entry{data: append([]byte(nil), data...)}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[tag] != gen {
		return nil
	}
	entries, ok := m.tags[tag]
	if !ok {
		entries = make(map[string]entry)
		m.tags[tag] = entries
	}
	entries[key] = e
	return nil
}

func (m *Memory) Invalidate(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tag := range tags {
		delete(m.tags, tag)
		m.gens[tag]++
	}
	return nil
}

func (m *Memory) Close() error {
	return m.Invalidate(context.Background(), m.tagNames()...)
}

func (m *Memory) tagNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tags))
	for t := range m.tags {
		names = append(names, t)
	}
	return names
}
