package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rayhandestian/quickbites/models"
	"github.com/rayhandestian/quickbites/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingStore struct {
	users map[string]*models.User
	calls int
}

func (s *countingStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.calls++
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func newCache(t *testing.T, next repository.UserStore, observe repository.CacheObserver) (*repository.CachedUserStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewCachedUserStore(next, client, time.Minute, observe, zap.NewNop()), mr
}

func TestCachedUserStore_HitAfterMiss(t *testing.T) {
	next := &countingStore{users: map[string]*models.User{"B1": {ID: "B1", FCMToken: "T2"}}}
	var hits, misses int
	cache, mr := newCache(t, next, func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})

	ctx := context.Background()
	u, err := cache.FindByID(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "T2", u.FCMToken)

	u, err = cache.FindByID(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "T2", u.FCMToken)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	ttl := mr.TTL("fcm_token:B1")
	assert.Equal(t, time.Minute, ttl)
}

func TestCachedUserStore_DoesNotCacheMissingToken(t *testing.T) {
	next := &countingStore{users: map[string]*models.User{"S1": {ID: "S1"}}}
	cache, mr := newCache(t, next, nil)

	for i := 0; i < 2; i++ {
		u, err := cache.FindByID(context.Background(), "S1")
		require.NoError(t, err)
		assert.Empty(t, u.FCMToken)
	}
	assert.Equal(t, 2, next.calls)
	assert.False(t, mr.Exists("fcm_token:S1"))
}

func TestCachedUserStore_PropagatesNotFound(t *testing.T) {
	next := &countingStore{users: map[string]*models.User{}}
	cache, _ := newCache(t, next, nil)

	_, err := cache.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestCachedUserStore_FallsThroughWhenRedisDown(t *testing.T) {
	next := &countingStore{users: map[string]*models.User{"B1": {ID: "B1", FCMToken: "T2"}}}
	cache, mr := newCache(t, next, nil)
	mr.Close()

	u, err := cache.FindByID(context.Background(), "B1")
	require.NoError(t, err)
	assert.Equal(t, "T2", u.FCMToken)
	assert.Equal(t, 1, next.calls)
}

func TestCachedUserStore_NilUserIsNotFound(t *testing.T) {
	next := &countingStore{users: map[string]*models.User{"B1": nil}}
	cache, mr := newCache(t, next, nil)

	u, err := cache.FindByID(context.Background(), "B1")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.Nil(t, u)
	assert.False(t, mr.Exists("fcm_token:B1"))
}
