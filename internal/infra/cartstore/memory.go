package cartstore

import (
	"context"
	"sync"
	"time"

	"restaurant/internal/cart"
)

// Memory はプロセス内のストレージ（1セッション=1ブラウザ相当）
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	subs   map[string]map[int]func(string)
	nextID int
}

func NewMemory() *Memory {
	return &Memory{
		values: map[string]string{},
		subs:   map[string]map[int]func(string){},
	}
}

var _ cart.Storage = (*Memory)(nil)

func (m *Memory) Read(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Write は保存して購読者に新しい値を渡す（ロックの外で呼ぶ）
func (m *Memory) Write(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	m.values[key] = value
	fns := make([]func(string), 0, len(m.subs[key]))
	for _, fn := range m.subs[key] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
	return nil
}

// Subscribe はctxが終わるかunsubscribeで解除
func (m *Memory) Subscribe(ctx context.Context, key string, fn func(newValue string)) (func(), error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	if m.subs[key] == nil {
		m.subs[key] = map[int]func(string){}
	}
	m.subs[key][id] = fn
	m.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[key], id)
			if len(m.subs[key]) == 0 {
				delete(m.subs, key)
			}
			m.mu.Unlock()
		})
	}

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			unsubscribe()
		}()
	}
	return unsubscribe, nil
}

// 値も購読者も無い
func (m *Memory) empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values) == 0 && len(m.subs) == 0
}

func (m *Memory) watched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs) > 0
}

type memorySession struct {
	store    *Memory
	lastUsed time.Time
}

// MemoryProvider はセッションごとに Memory を持つ。
// 読むだけではセッションを作らない。idleTTL 触られなかったセッションは消す（購読中は残す）。
type MemoryProvider struct {
	mu        sync.Mutex
	sessions  map[string]*memorySession
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type MemoryProviderOption func(*MemoryProvider)

// WithIdleTTL は <=0 なら DefaultTTL
func WithIdleTTL(d time.Duration) MemoryProviderOption {
	return func(p *MemoryProvider) {
		if d > 0 {
			p.idleTTL = d
		}
	}
}

func NewMemoryProvider(opts ...MemoryProviderOption) *MemoryProvider {
	p := &MemoryProvider{
		sessions: map[string]*memorySession{},
		idleTTL:  DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *MemoryProvider) ForSession(sessionID string) cart.Storage {
	return &memoryHandle{provider: p, sessionID: sessionID}
}

// Len は保持しているセッション数
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// lookup はセッションを引いて最終利用時刻を更新する。create=false なら無いときに作らない
func (p *MemoryProvider) lookup(sessionID string, create bool) *Memory {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.sweepLocked(now)

	s, ok := p.sessions[sessionID]
	if ok && p.expired(s, now) {
		delete(p.sessions, sessionID)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		s = &memorySession{store: NewMemory()}
		p.sessions[sessionID] = s
	}
	s.lastUsed = now
	return s.store
}

func (p *MemoryProvider) expired(s *memorySession, now time.Time) bool {
	return now.Sub(s.lastUsed) >= p.idleTTL && !s.store.watched()
}

// 全件なめるので間隔を空ける。空のセッション（購読が終わったものなど）は1間隔で消す
func (p *MemoryProvider) sweepLocked(now time.Time) {
	interval := min(p.idleTTL, time.Minute)
	if now.Sub(p.lastSweep) < interval {
		return
	}
	p.lastSweep = now

	for id, s := range p.sessions {
		if p.expired(s, now) || (now.Sub(s.lastUsed) >= interval && s.store.empty()) {
			delete(p.sessions, id)
		}
	}
}

type memoryHandle struct {
	provider  *MemoryProvider
	sessionID string
}

var _ cart.Storage = (*memoryHandle)(nil)

func (h *memoryHandle) Read(ctx context.Context, key string) (string, bool, error) {
	m := h.provider.lookup(h.sessionID, false)
	if m == nil {
		return "", false, nil
	}
	return m.Read(ctx, key)
}

func (h *memoryHandle) Write(ctx context.Context, key string, value string) error {
	return h.provider.lookup(h.sessionID, true).Write(ctx, key, value)
}

func (h *memoryHandle) Subscribe(ctx context.Context, key string, fn func(newValue string)) (func(), error) {
	return h.provider.lookup(h.sessionID, true).Subscribe(ctx, key, fn)
}
