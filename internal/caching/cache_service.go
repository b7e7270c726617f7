package caching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "elafcatalog"

// TreeCache keeps encoded category forests per tenant.
type TreeCache interface {
	// GetTree returns nil, nil on a cache miss.
	GetTree(ctx context.Context, tenantID uuid.UUID) ([]byte, error)
	SetTree(ctx context.Context, tenantID uuid.UUID, data []byte, ttl time.Duration) error
	DeleteTree(ctx context.Context, tenantID uuid.UUID) error
	Ping(ctx context.Context) error
}

type redisTreeCache struct {
	client redis.UniversalClient
}

// NewRedisTreeCache connects to addr, which may carry a redis:// or rediss://
// scheme.
func NewRedisTreeCache(addr, password string, db int, logger *zap.Logger) TreeCache {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(err))
	} else {
		logger.Debug("redis connection established", zap.String("addr", parsedAddr))
	}

	return NewTreeCache(client)
}

// NewTreeCache wraps an existing client.
func NewTreeCache(client redis.UniversalClient) TreeCache {
	return &redisTreeCache{client: client}
}

func treeKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:tree:%s", keyPrefix, tenantID.String())
}

func (r *redisTreeCache) GetTree(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	data, err := r.client.Get(ctx, treeKey(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}
	return data, nil
}

func (r *redisTreeCache) SetTree(ctx context.Context, tenantID uuid.UUID, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, treeKey(tenantID), data, ttl).Err()
}

func (r *redisTreeCache) DeleteTree(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Del(ctx, treeKey(tenantID)).Err()
}

func (r *redisTreeCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
