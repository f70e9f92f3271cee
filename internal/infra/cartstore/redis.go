package cartstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"restaurant/internal/cart"

	"github.com/redis/go-redis/v9"
)

// セッションのカートは最後の書き込みから30日で消える
const DefaultTTL = 30 * 24 * time.Hour

// Redis はGET/SETで保存し、変更はPub/Subで他のレプリカ（他タブ）に流す。
// 読んで変えて書くのは非アトミック（後勝ち）。
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, namespace string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: namespace + ":", ttl: ttl}
}

var _ cart.Storage = (*Redis)(nil)

// ForSession はセッション用に名前空間を切ったストレージを返す
func (r *Redis) ForSession(sessionID string) cart.Storage {
	return &Redis{
		client: r.client,
		prefix: r.prefix + sessionID + ":",
		ttl:    r.ttl,
	}
}

func (r *Redis) dataKey(key string) string {
	return r.prefix + key
}

func (r *Redis) channel(key string) string {
	return r.prefix + key + ":changed"
}

func (r *Redis) Read(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.dataKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Write(ctx context.Context, key string, value string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.dataKey(key), value, r.ttl)
		pipe.Publish(ctx, r.channel(key), value)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Subscribe は購読が確立してから返る
func (r *Redis) Subscribe(ctx context.Context, key string, fn func(newValue string)) (func(), error) {
	ps := r.client.Subscribe(ctx, r.channel(key))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", key, err)
	}

	stop := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(stop)
			_ = ps.Close()
		})
	}

	ch := ps.Channel()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(msg.Payload)
			}
		}
	}()

	return unsubscribe, nil
}
