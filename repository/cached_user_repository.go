package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rayhandestian/quickbites/logger"
	"github.com/rayhandestian/quickbites/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tokenKeyPrefix = "fcm_token:"

// CacheObserver is told about every cache lookup.
type CacheObserver func(hit bool)

// CachedUserStore keeps recently resolved device tokens in Redis. Only users
// with a token are cached; misses and Redis failures fall through to next.
type CachedUserStore struct {
	next    UserStore
	client  *redis.Client
	ttl     time.Duration
	observe CacheObserver
	logger  *zap.Logger
}

func NewCachedUserStore(next UserStore, client *redis.Client, ttl time.Duration, observe CacheObserver, logger *zap.Logger) *CachedUserStore {
	if observe == nil {
		observe = func(bool) {}
	}
	return &CachedUserStore{next: next, client: client, ttl: ttl, observe: observe, logger: logger}
}

func (c *CachedUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	key := tokenKeyPrefix + id

	token, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil && token != "":
		c.observe(true)
		return &models.User{ID: id, FCMToken: token}, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.logger.Warn("token cache read failed",
			zap.String("event_id", logger.EventID(ctx)),
			zap.String("user_id", id),
			zap.Error(err),
		)
	}
	c.observe(false)

	user, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.FCMToken != "" {
		if err := c.client.Set(ctx, key, user.FCMToken, c.ttl).Err(); err != nil {
			c.logger.Warn("token cache write failed",
				zap.String("event_id", logger.EventID(ctx)),
				zap.String("user_id", id),
				zap.Error(err),
			)
		}
	}
	return user, nil
}
