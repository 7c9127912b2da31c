package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper provides at-most-once processing guards backed by Redis SETNX.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to acquire a dedup lock for a given handler + entity key.
// Returns true if this is the FIRST time processing, false on a duplicate.
// If Redis is unavailable, processing is allowed rather than blocked.
func (d *Deduper) AcquireOnce(ctx context.Context, handler, key string) bool {
	dedupKey := fmt.Sprintf("dedup:%s:%s", handler, key)

	ok, err := d.rdb.SetNX(ctx, dedupKey, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("handler", handler),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("key", key),
			zap.String("dedup_key", dedupKey),
		)
	}

	return ok
}

// Release frees an acquired key so the operation can be retried. Call when
// the work guarded by AcquireOnce failed and the caller wants the next
// delivery to go through.
func (d *Deduper) Release(ctx context.Context, handler, key string) {
	dedupKey := fmt.Sprintf("dedup:%s:%s", handler, key)

	if err := d.rdb.Del(ctx, dedupKey).Err(); err != nil && d.logger != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.String("handler", handler),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
