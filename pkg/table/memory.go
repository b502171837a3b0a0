package table

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps tables in process. It backs the "memory" driver and the
// tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]Row)}
}

// Seed appends rows without going through Insert.
func (m *MemoryStore) Seed(table string, rows ...Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.tables[table] = append(m.tables[table], r.Clone())
	}
}

// Rows returns a copy of every row currently in table.
func (m *MemoryStore) Rows(table string) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Row, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		out = append(out, r.Clone())
	}
	return out
}

func (m *MemoryStore) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError("select", table, err)
	}

	m.mu.RLock()
	var out []Row
	for _, r := range m.tables[table] {
		if matchAll(r, q.Filters) {
			out = append(out, r.Clone())
		}
	}
	m.mu.RUnlock()

	if len(q.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, s := range q.Sort {
				c := compare(out[i][s.Column], out[j][s.Column])
				if c == 0 {
					continue
				}
				if s.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	if err := embed(ctx, m, out, q.Relations); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Row{}
	}
	return out, nil
}

func (m *MemoryStore) Insert(ctx context.Context, table string, rows ...Row) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError("insert", table, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		stored := r.Clone()
		m.tables[table] = append(m.tables[table], stored)
		out = append(out, stored.Clone())
	}
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, table string, patch Row, filters ...Filter) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError("update", table, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []Row{}
	for _, r := range m.tables[table] {
		if !matchAll(r, filters) {
			continue
		}
		for k, v := range patch {
			r[k] = v
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, table string, filters ...Filter) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError("delete", table, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := []Row{}
	kept := m.tables[table][:0:0]
	for _, r := range m.tables[table] {
		if matchAll(r, filters) {
			deleted = append(deleted, r)
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	return deleted, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() error { return nil }

func matchAll(r Row, filters []Filter) bool {
	for _, f := range filters {
		if !match(r, f) {
			return false
		}
	}
	return true
}

func match(r Row, f Filter) bool {
	v := keyOf(r[f.Column])
	switch f.Op {
	case OpIn:
		vals, _ := f.Value.([]any)
		for _, want := range vals {
			if v == keyOf(want) {
				return true
			}
		}
		return false
	default:
		return v == keyOf(f.Value)
	}
}

func compare(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	sa, sb := keyOf(a), keyOf(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
