package cart

import (
	"context"
	"sync"
)

// Engine は1つのカート（1ストレージキー）を扱う。
// mirror は描画用のコピーで、正は常に store 側。
type Engine struct {
	store     Storage
	key       string
	onReadErr func(error)

	mu     sync.RWMutex
	mirror []Line
}

type Option func(*Engine)

// WithKey は保存キーを変える（既定は "cart"）
func WithKey(key string) Option {
	return func(e *Engine) {
		if key != "" {
			e.key = key
		}
	}
}

// WithReadErrorHandler は読み込み・パース失敗の通知先。失敗自体は空カートとして扱う。
func WithReadErrorHandler(fn func(error)) Option {
	return func(e *Engine) {
		e.onReadErr = fn
	}
}

func NewEngine(store Storage, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		key:    StorageKey,
		mirror: []Line{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key は保存キー
func (e *Engine) Key() string {
	return e.key
}

// Hydrate はストレージから読み直してミラーを更新する
func (e *Engine) Hydrate(ctx context.Context) []Line {
	lines := e.load(ctx)
	e.setMirror(lines)
	return cloneLines(lines)
}

// ApplyDelta は itemID の数量を delta 動かして保存する。
// 読み込みに失敗しても空カートから続行する。書き込み失敗はそのまま返し、ミラーは変えない。
func (e *Engine) ApplyDelta(ctx context.Context, itemID string, delta int) ([]Line, error) {
	if itemID == "" {
		return nil, ErrEmptyItem
	}

	lines := Apply(e.load(ctx), itemID, delta)

	raw, err := Encode(lines)
	if err != nil {
		return nil, err
	}
	if err := e.store.Write(ctx, e.key, raw); err != nil {
		return nil, err
	}

	e.setMirror(lines)
	return cloneLines(lines), nil
}

// Add は「追加」ボタン。Incrementと同じ遷移。
func (e *Engine) Add(ctx context.Context, itemID string) ([]Line, error) {
	return e.ApplyDelta(ctx, itemID, 1)
}

func (e *Engine) Increment(ctx context.Context, itemID string) ([]Line, error) {
	return e.ApplyDelta(ctx, itemID, 1)
}

func (e *Engine) Decrement(ctx context.Context, itemID string) ([]Line, error) {
	return e.ApplyDelta(ctx, itemID, -1)
}

// HandleChange は変更通知の値をそのまま使ってミラーを作り直す（ストレージは読まない）
func (e *Engine) HandleChange(newValue string) {
	lines, err := Decode(newValue)
	if err != nil {
		e.readFailed(err)
	}
	e.setMirror(lines)
}

// Watch は他のコンテキストからの変更を購読する
func (e *Engine) Watch(ctx context.Context) (func(), error) {
	return e.store.Subscribe(ctx, e.key, e.HandleChange)
}

// Lines はミラーのコピー
func (e *Engine) Lines() []Line {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneLines(e.mirror)
}

// Quantity はミラー上の数量（行が無ければ0）。UIで「追加」か「+/-」かを選ぶのに使う。
func (e *Engine) Quantity(itemID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return QuantityOf(e.mirror, itemID)
}

func (e *Engine) load(ctx context.Context) []Line {
	raw, ok, err := e.store.Read(ctx, e.key)
	if err != nil {
		e.readFailed(err)
		return []Line{}
	}
	if !ok {
		return []Line{}
	}

	lines, err := Decode(raw)
	if err != nil {
		e.readFailed(err)
	}
	return lines
}

func (e *Engine) setMirror(lines []Line) {
	e.mu.Lock()
	e.mirror = cloneLines(lines)
	e.mu.Unlock()
}

func (e *Engine) readFailed(err error) {
	if e.onReadErr != nil {
		e.onReadErr(err)
	}
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
