// Package presence tracks which users are online. Redis holds a TTL-backed
// presence key plus a shared online set; the user document's online/lastActive
// flags are mirrored so directory reads see the same state.
package presence

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "presence:"
	onlineSetKey = "online_users"
)

// Directory is the slice of the user store presence needs.
type Directory interface {
	SetPresence(ctx context.Context, userID string, online bool) error
}

type Tracker struct {
	rdb   *redis.Client
	users Directory
	ttl   time.Duration
}

func NewTracker(rdb *redis.Client, users Directory, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 120 * time.Second
	}
	return &Tracker{rdb: rdb, users: users, ttl: ttl}
}

// SetOnline marks userID online in Redis and the user directory.
func (t *Tracker) SetOnline(ctx context.Context, userID string) error {
	pipe := t.rdb.Pipeline()
	pipe.Set(ctx, keyPrefix+userID, time.Now().Unix(), t.ttl)
	pipe.SAdd(ctx, onlineSetKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("presence: set online %s: %w", userID, err)
	}
	if err := t.users.SetPresence(ctx, userID, true); err != nil {
		// Redis is the live source; the mirror lagging is logged, not fatal.
		log.Printf("presence: mirror online failed for %s: %v", userID, err)
	}
	return nil
}

// SetOffline removes userID from the online set and updates the directory.
func (t *Tracker) SetOffline(ctx context.Context, userID string) error {
	pipe := t.rdb.Pipeline()
	pipe.Del(ctx, keyPrefix+userID)
	pipe.SRem(ctx, onlineSetKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("presence: set offline %s: %w", userID, err)
	}
	if err := t.users.SetPresence(ctx, userID, false); err != nil {
		log.Printf("presence: mirror offline failed for %s: %v", userID, err)
	}
	return nil
}

// Online reports whether userID currently has a live presence key.
func (t *Tracker) Online(ctx context.Context, userID string) (bool, error) {
	n, err := t.rdb.Exists(ctx, keyPrefix+userID).Result()
	if err != nil {
		return false, fmt.Errorf("presence: check %s: %w", userID, err)
	}
	return n > 0, nil
}
