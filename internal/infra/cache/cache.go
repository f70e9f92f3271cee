// Package cache は一覧系の読み取り結果キャッシュ
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// キャッシュキー
const (
	KeyMenuAll        = "menu:all"
	KeyCategoryAll    = "category:all"
	keyNamespaceDelim = ":"
)

type Cache interface {
	// Get はヒットしなければ ok=false
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// GetJSON はJSONで保存された値を dst に読む
func GetJSON(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cache %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}

// Nop は何も保持しない（キャッシュ無効時）
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (Nop) Del(context.Context, ...string) error {
	return nil
}
