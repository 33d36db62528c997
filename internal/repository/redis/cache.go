package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTranscriptTTL = 24 * time.Hour

func transcriptKey(videoID string) string {
	return key("transcript", videoID)
}

// TranscriptCache keeps fetched transcripts so re-ingesting a video skips
// the YouTube round-trips.
type TranscriptCache struct {
	client *Client
	ttl    time.Duration
}

// NewTranscriptCache creates a new transcript cache
func NewTranscriptCache(client *Client, ttl time.Duration) *TranscriptCache {
	if ttl <= 0 {
		ttl = defaultTranscriptTTL
	}
	return &TranscriptCache{client: client, ttl: ttl}
}

// Get returns the cached transcript, reporting a miss with ok=false
func (c *TranscriptCache) Get(ctx context.Context, videoID string) (string, bool, error) {
	text, err := c.client.rdb.Get(ctx, transcriptKey(videoID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read transcript cache: %w", err)
	}
	return text, true, nil
}

// Set caches a transcript
func (c *TranscriptCache) Set(ctx context.Context, videoID, transcript string) error {
	return c.client.rdb.Set(ctx, transcriptKey(videoID), transcript, c.ttl).Err()
}

// Invalidate removes a cached transcript
func (c *TranscriptCache) Invalidate(ctx context.Context, videoID string) error {
	return c.client.rdb.Del(ctx, transcriptKey(videoID)).Err()
}

// FlushAll drops every cached transcript and returns how many were removed
func (c *TranscriptCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := transcriptKey("*")
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
