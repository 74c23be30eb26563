package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedKey is the sorted set holding the newest post ids for the
	// global feed, scored by creation timestamp.
	FeedKey = "feed:recent"

	// FeedCacheCap is the maximum number of post ids kept in the index.
	// Pages past the cap are served straight from the database.
	FeedCacheCap = 500

	// FeedCacheTTL bounds staleness if the worker stops maintaining the
	// index; an expired key is rewarmed on the next feed read.
	FeedCacheTTL = 24 * time.Hour
)

// PostScore pairs a post id with its creation timestamp score.
type PostScore struct {
	PostID    string
	Timestamp int64 // Unix milliseconds
}

// FeedIndex is a cache of recent post ids for the global feed. It stores
// ids only; likes, comments and author data are always joined at read
// time, so the derived counts can never go stale here.
type FeedIndex interface {
	// Add inserts a post into the index and trims to the cap.
	Add(ctx context.Context, post PostScore) error

	// Remove deletes a post from the index.
	Remove(ctx context.Context, postID string) error

	// Page returns post ids for one page, newest first. ok is false when
	// the requested window extends past the cached range and the caller
	// must fall back to the store.
	Page(ctx context.Context, limit, offset int) (ids []string, ok bool, err error)

	// Warm bulk-loads the index.
	Warm(ctx context.Context, posts []PostScore) error

	// Exists reports whether the index key is present.
	Exists(ctx context.Context) (bool, error)
}

// RedisFeedIndex implements FeedIndex using a Redis sorted set.
type RedisFeedIndex struct {
	client *redis.Client
}

// NewFeedIndex creates a FeedIndex backed by Redis.
func NewFeedIndex(client *redis.Client) FeedIndex {
	return &RedisFeedIndex{client: client}
}

// Add inserts the post id with its timestamp score and trims the set to
// the cap in one pipeline.
func (c *RedisFeedIndex) Add(ctx context.Context, post PostScore) error {
	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, FeedKey, redis.Z{
		Score:  float64(post.Timestamp),
		Member: post.PostID,
	})

	// ZREMRANGEBYRANK keeps the highest FeedCacheCap scores (newest).
	pipe.ZRemRangeByRank(ctx, FeedKey, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, FeedKey, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add post to feed index: %w", err)
	}
	return nil
}

// Remove deletes the post id from the index.
func (c *RedisFeedIndex) Remove(ctx context.Context, postID string) error {
	if err := c.client.ZRem(ctx, FeedKey, postID).Err(); err != nil {
		return fmt.Errorf("remove post from feed index: %w", err)
	}
	return nil
}

// Page reads one page newest-first with ZREVRANGE. For equal scores Redis
// orders members in reverse lexical order, which matches the store's
// "created_at DESC, id DESC" tie-break on text ids.
func (c *RedisFeedIndex) Page(ctx context.Context, limit, offset int) ([]string, bool, error) {
	size, err := c.client.ZCard(ctx, FeedKey).Result()
	if err != nil {
		return nil, false, fmt.Errorf("feed index size: %w", err)
	}
	if size == 0 {
		return nil, false, nil
	}

	// When the set is at the cap it holds only the newest FeedCacheCap
	// ids, so a window reaching past it must come from the store. Below
	// the cap the index covers every post and any window is answerable,
	// including short or empty trailing pages.
	if size >= FeedCacheCap && int64(offset+limit) > size {
		return nil, false, nil
	}

	ids, err := c.client.ZRevRange(ctx, FeedKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("feed index page: %w", err)
	}

	c.client.Expire(ctx, FeedKey, FeedCacheTTL)
	return ids, true, nil
}

// Warm bulk-inserts post ids in one pipeline.
func (c *RedisFeedIndex) Warm(ctx context.Context, posts []PostScore) error {
	if len(posts) == 0 {
		return nil
	}

	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{Score: float64(p.Timestamp), Member: p.PostID}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, FeedKey, members...)
	pipe.ZRemRangeByRank(ctx, FeedKey, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, FeedKey, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warm feed index: %w", err)
	}
	return nil
}

// Exists reports whether the index key is present (false after TTL expiry
// or on a fresh deployment; the feed service rewarms it).
func (c *RedisFeedIndex) Exists(ctx context.Context) (bool, error) {
	n, err := c.client.Exists(ctx, FeedKey).Result()
	if err != nil {
		return false, fmt.Errorf("check feed index exists: %w", err)
	}
	return n > 0, nil
}
