package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cast"
)

type memEntry struct {
	value   string
	expires time.Time
}

// memory is a process-local Client with the same expiry semantics. Used when redis.addrs is empty
// and in tests.
type memory struct {
	mu   sync.Mutex
	data map[string]memEntry
	now  func() time.Time
}

func NewMemory() Client {
	return &memory{data: map[string]memEntry{}, now: time.Now}
}

func (m *memory) getLocked(key string) (memEntry, bool) {
	e, ok := m.data[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.data, key)
		return memEntry{}, false
	}
	return e, true
}

func (m *memory) expiry(dur time.Duration) time.Time {
	if dur <= 0 {
		return time.Time{}
	}
	return m.now().Add(dur)
}

func (m *memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = memEntry{value: value, expires: m.expiry(ttl)}
	return nil
}

func (m *memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.getLocked(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *memory) SetOnce(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.getLocked(key); ok {
		return false, nil
	}
	m.data[key] = memEntry{value: value, expires: m.expiry(ttl)}
	return true, nil
}

func (m *memory) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.getLocked(key)
	if !ok {
		e = memEntry{value: "0", expires: m.expiry(window)}
	}
	n, err := cast.ToInt64E(e.value)
	if err != nil {
		return 0, fmt.Errorf("failed to incr key: %w", err)
	}
	n++
	e.value = cast.ToString(n)
	m.data[key] = e
	return n, nil
}
