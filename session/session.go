// Package session caches TA session snapshots in Redis, keyed by a
// dispatcher-assigned session ID, so a pool of simulator processes can
// observe an in-flight session's progress after a restart. The cache is
// advisory: the state machine itself never reads from it, and a missing
// entry simply means the session starts over from IDLE.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/cardsim/termauth/ta"
)

// Cache stores ta.Snapshot values in Redis with a per-entry TTL.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a Cache backed by the given Redis options. A zero ttl
// means entries never expire.
func New(opts *redis.Options, ttl time.Duration) *Cache {
	return &Cache{rdb: redis.NewClient(opts), ttl: ttl}
}

// Ping verifies the Redis connection is usable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func key(sessionID string) string {
	return "tasim:session:" + sessionID
}

// Put stores snap under sessionID, refreshing the TTL.
func (c *Cache) Put(ctx context.Context, sessionID string, snap ta.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("session: encoding snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, key(sessionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("session: storing snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot stored under sessionID, and whether one
// exists.
func (c *Cache) Get(ctx context.Context, sessionID string) (ta.Snapshot, bool, error) {
	data, err := c.rdb.Get(ctx, key(sessionID)).Bytes()
	if err == redis.Nil {
		return ta.Snapshot{}, false, nil
	}
	if err != nil {
		return ta.Snapshot{}, false, fmt.Errorf("session: loading snapshot: %w", err)
	}
	var snap ta.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ta.Snapshot{}, false, fmt.Errorf("session: decoding snapshot: %w", err)
	}
	return snap, true, nil
}

// Delete removes the snapshot stored under sessionID, if any.
func (c *Cache) Delete(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, key(sessionID)).Err()
}

// Close releases the underlying Redis client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
