package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-supply-api/internal/cart"
)

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func newStorage(mock *mockCmdable, session string, opts ...Option) *Storage {
	s := &Storage{client: mock, session: session, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func TestStorage_KeyPerSession(t *testing.T) {
	s := newStorage(newMockCmdable(), "abc")
	assert.Equal(t, "cart-items:abc", s.Key())
	assert.Equal(t, "abc", s.Session())
}

func TestNew_GeneratesSession(t *testing.T) {
	a := New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	b := New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	assert.NotEmpty(t, a.Session())
	assert.NotEqual(t, a.Session(), b.Session())
}

func TestStorage_CartRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := newStorage(mock, "s1", WithTTL(time.Hour))

	c := cart.New(ctx, store)
	c.AddToCart(ctx, 1, 2)
	c.AddToCart(ctx, 4, 1)

	assert.JSONEq(t, `[{"productId":1,"quantity":2},{"productId":4,"quantity":1}]`, mock.data["cart-items:s1"])
	assert.Equal(t, time.Hour, mock.ttls["cart-items:s1"])
	assert.Equal(t, c.Items(), cart.New(ctx, newStorage(mock, "s1")).Items())
	assert.Empty(t, cart.New(ctx, newStorage(mock, "s2")).Items())
}

func TestStorage_ReadMissingIsEmpty(t *testing.T) {
	data, err := newStorage(newMockCmdable(), "nobody").Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStorage_Clear(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := newStorage(mock, "s1")
	require.NoError(t, store.Write(ctx, []byte(`[]`)))

	require.NoError(t, store.Clear(ctx))
	_, ok := mock.data["cart-items:s1"]
	assert.False(t, ok)
}

func TestStorage_FailuresAreWrapped(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.err = errors.New("connection refused")
	store := newStorage(mock, "s1")

	_, err := store.Read(ctx)
	require.ErrorContains(t, err, "read cart s1")
	require.ErrorIs(t, store.Write(ctx, []byte(`[]`)), mock.err)

	c := cart.New(ctx, store)
	c.AddToCart(ctx, 1, 1)
	assert.Equal(t, 1, c.ItemCount(), "storage failures never reach the caller")
}
