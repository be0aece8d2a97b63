package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	val       []byte
	expiresAt time.Time
}

type memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	maxKeys int
}

// NewMemory returns an in-process cache. When maxKeys is reached, expired
// entries are swept and, if still full, the soonest-expiring entry is evicted.
func NewMemory(maxKeys int) Cache {
	return newMemory(maxKeys, time.Now)
}

func newMemory(maxKeys int, now func() time.Time) *memory {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &memory{entries: map[string]memoryEntry{}, now: now, maxKeys: maxKeys}
}

func (m *memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true, nil
}

func (m *memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxKeys {
		m.evictLocked()
	}
	e := memoryEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *memory) evictLocked() {
	now := m.now()
	var victim string
	var victimAt time.Time
	for k, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, k)
			continue
		}
		if victim == "" || (!e.expiresAt.IsZero() && (victimAt.IsZero() || e.expiresAt.Before(victimAt))) {
			victim, victimAt = k, e.expiresAt
		}
	}
	if len(m.entries) >= m.maxKeys && victim != "" {
		delete(m.entries, victim)
	}
}

func (m *memory) Close() error { return nil }
