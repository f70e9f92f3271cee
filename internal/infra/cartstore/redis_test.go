package cartstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "cart", time.Hour), mr
}

func TestRedis_ReadWrite(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	s := r.ForSession("sess1")

	_, ok, err := s.Read(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "cart", `[{"item":"a","quantity":1}]`))

	v, ok, err := s.Read(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"item":"a","quantity":1}]`, v)

	// キーはセッションで名前空間を切る
	assert.True(t, mr.Exists("cart:sess1:cart"))
	assert.Equal(t, time.Hour, mr.TTL("cart:sess1:cart"))
}

func TestRedis_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	require.NoError(t, r.ForSession("s1").Write(ctx, "cart", "one"))

	_, ok, err := r.ForSession("s2").Read(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_SubscribeReceivesWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, _ := newTestRedis(t)
	s := r.ForSession("sess1")

	var (
		mu  sync.Mutex
		got []string
	)
	unsub, err := s.Subscribe(ctx, "cart", func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, s.Write(ctx, "cart", "v1"))
	require.NoError(t, r.ForSession("other").Write(ctx, "cart", "ignored"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "v1"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedis_DefaultTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := NewRedis(client, "cart", 0)
	assert.Equal(t, DefaultTTL, r.ttl)
}
