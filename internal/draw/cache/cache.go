// Package cache holds the Redis-backed winner announcement cache. A resolved
// draw is terminal, so the public winner endpoint can serve from cache
// without invalidation concerns.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	"luckydraw/pkg/platform/sentinel"
)

const keyPrefix = "draw:winner:"

// WinnerAnnouncement is the cached public-safe resolution view. Contact
// phones never enter the cache.
type WinnerAnnouncement struct {
	Resolved   bool                     `json:"resolved"`
	Winner     *id.UserID               `json:"winner_id,omitempty"`
	Method     *models.ResolutionMethod `json:"method,omitempty"`
	ResolvedAt *time.Time               `json:"resolved_at,omitempty"`
}

// WinnerCache caches resolved announcements in Redis. A nil client disables
// caching; every method degrades to a miss.
type WinnerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *WinnerCache {
	return &WinnerCache{client: client, ttl: ttl}
}

// Get returns the cached announcement or sentinel.ErrNotFound on a miss.
func (c *WinnerCache) Get(ctx context.Context, drawID id.DrawID) (*WinnerAnnouncement, error) {
	if c == nil || c.client == nil {
		return nil, sentinel.ErrNotFound
	}
	raw, err := c.client.Get(ctx, keyPrefix+drawID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("winner cache get: %w", err)
	}
	var ann WinnerAnnouncement
	if err := json.Unmarshal(raw, &ann); err != nil {
		return nil, fmt.Errorf("winner cache decode: %w", err)
	}
	return &ann, nil
}

// Set stores a resolved announcement. Unresolved views are never cached:
// their state can still change.
func (c *WinnerCache) Set(ctx context.Context, drawID id.DrawID, ann WinnerAnnouncement) error {
	if c == nil || c.client == nil || !ann.Resolved {
		return nil
	}
	raw, err := json.Marshal(ann)
	if err != nil {
		return fmt.Errorf("winner cache encode: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+drawID.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("winner cache set: %w", err)
	}
	return nil
}

// Invalidate drops a draw's cached announcement, used by the delete cascade.
func (c *WinnerCache) Invalidate(ctx context.Context, drawID id.DrawID) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, keyPrefix+drawID.String()).Err(); err != nil {
		return fmt.Errorf("winner cache invalidate: %w", err)
	}
	return nil
}
