// Package cache keeps rendered map review pages in redis.
//
// Every map has a version counter. Pages are stored under the version that was
// current when the page was read from the database, and writers bump the
// version after they commit. A page computed from data that a concurrent
// writer then replaced therefore lands under a version nobody reads again.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewsBack/internal/review/repo"
)

// VersionTTL bounds the life of a version counter. Pages must expire sooner,
// otherwise a lapsed counter restarting at zero could revive them.
const VersionTTL = 24 * time.Hour

// Redis is a listing cache backed by a redis client.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis constructs a Redis cache keeping pages for ttl.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func versionKey(itemID int64) string {
	return fmt.Sprintf("reviews:item:%d:ver", itemID)
}

func pageKey(itemID, version int64, page int) string {
	return fmt.Sprintf("reviews:item:%d:v%d:p%d", itemID, version, page)
}

// Get returns the cached page and the version it was looked up under. The
// version must be passed back to Put when the page is a miss.
func (c *Redis) Get(ctx context.Context, itemID int64, page int) ([]repo.Review, int64, bool, error) {
	version, err := c.rdb.Get(ctx, versionKey(itemID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, err
	}
	data, err := c.rdb.Get(ctx, pageKey(itemID, version, page)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, false, nil
	}
	if err != nil {
		return nil, version, false, err
	}
	reviews, err := decodePage(data)
	if err != nil {
		return nil, version, false, err
	}
	return reviews, version, true, nil
}

// Put stores a page computed after Get reported version.
func (c *Redis) Put(ctx context.Context, itemID, version int64, page int, reviews []repo.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, pageKey(itemID, version, page), data, c.ttl).Err()
}

// Invalidate retires every cached page of itemID.
func (c *Redis) Invalidate(ctx context.Context, itemID int64) error {
	key := versionKey(itemID)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, VersionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func decodePage(data []byte) ([]repo.Review, error) {
	reviews := []repo.Review{}
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("decode cached page: %w", err)
	}
	return reviews, nil
}
