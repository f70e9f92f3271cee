package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory はプロセス内キャッシュ。期限切れは読んだときに消す。
// 読まれないまま残ったものは書き込み時にまとめて消す（1分に1回）。
type Memory struct {
	mu        sync.Mutex
	items     map[string]entry
	now       func() time.Time
	lastPurge time.Time
}

func NewMemory() *Memory {
	return &Memory{items: map[string]entry{}, now: time.Now}
}

var _ Cache = (*Memory)(nil)

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.items, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set は ttl<=0 なら無期限
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.purgeLocked()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) purgeLocked() {
	now := m.now()
	if now.Sub(m.lastPurge) < time.Minute {
		return
	}
	m.lastPurge = now
	for k, e := range m.items {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.items, k)
		}
	}
}

func (m *Memory) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}
