package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightproxy/internal/models"
)

var (
	_ ResultStore = (*RedisStore)(nil)
	_ ResultStore = (*MemoryStore)(nil)
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Host = mr.Host()
	cfg.Port = mr.Port()
	cfg.TTL = time.Minute

	s, err := NewRedisStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestRedisStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	want := sampleItineraries()
	require.NoError(t, s.Put(ctx, "search-1", want))
	assert.True(t, mr.Exists("flights:search:search-1"))

	got, err := s.Get(ctx, "search-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStore_NotFoundVersusEmpty(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)

	_, err := s.Get(ctx, "never-written")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "empty", nil))
	got, err := s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, s.Put(ctx, "id", []models.Itinerary{{ID: "a"}}))
	assert.Equal(t, time.Minute, mr.TTL("flights:search:id"))

	mr.FastForward(time.Minute)
	_, err := s.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}
