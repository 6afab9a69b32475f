// Package cache keeps recently read tasks in Redis (cache-aside). The
// database stays the source of truth: writers delete the entry, readers
// refill it on a miss.
//
// A reader may load a row just before a concurrent write commits and try to
// store it after the writer already invalidated the key. To keep that stale
// copy out, Delete leaves a short-lived fence next to the key and Set only
// writes while no fence exists. Both steps run as Lua scripts, so each is
// atomic on the server.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the task is not cached.
var ErrMiss = errors.New("cache miss")

// TaskCache is the read-through cache used by the task service. Set may
// decline to store a task that was invalidated moments ago.
type TaskCache interface {
	Get(ctx context.Context, userID, taskID string) (*models.Task, error)
	Set(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, taskID string) error
}

// Key is the Redis key of a cached task. The owner is part of the key so a
// lookup can never return another user's task.
func Key(userID, taskID string) string {
	return "task:" + userID + ":" + taskID
}

func fenceKey(userID, taskID string) string {
	return Key(userID, taskID) + ":fence"
}

// FenceTTL bounds how long after an invalidation a fill is refused. It must
// outlive a database read on the Get path.
const FenceTTL = 10 * time.Second

// DefaultTTL is used when a non-positive TTL is configured.
const DefaultTTL = 5 * time.Minute

const setUnlessFencedSrc = `
if redis.call("EXISTS", KEYS[2]) == 1 then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`

const fenceAndDeleteSrc = `
redis.call("SET", KEYS[2], "1", "PX", ARGV[1])
return redis.call("DEL", KEYS[1])
`

var (
	setUnlessFenced = redis.NewScript(setUnlessFencedSrc)
	fenceAndDelete  = redis.NewScript(fenceAndDeleteSrc)
)

// Client is the subset of go-redis the cache needs. *redis.Client and
// *redis.ClusterClient satisfy it.
type Client interface {
	redis.Scripter
	Get(ctx context.Context, key string) *redis.StringCmd
}

type RedisCache struct {
	rdb Client
	ttl time.Duration
}

func NewRedisCache(rdb Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Connect dials addr and pings it once.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	val, err := c.rdb.Get(ctx, Key(userID, taskID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	t := &models.Task{}
	if err := json.Unmarshal(val, t); err != nil {
		return nil, fmt.Errorf("decode cached task: %w", err)
	}
	return t, nil
}

func (c *RedisCache) Set(ctx context.Context, task *models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	keys := []string{Key(task.UserID, task.ID), fenceKey(task.UserID, task.ID)}
	return setUnlessFenced.Run(ctx, c.rdb, keys, data, c.ttl.Milliseconds()).Err()
}

// Delete drops the cached task and fences the key against fills for FenceTTL.
func (c *RedisCache) Delete(ctx context.Context, userID, taskID string) error {
	keys := []string{Key(userID, taskID), fenceKey(userID, taskID)}
	return fenceAndDelete.Run(ctx, c.rdb, keys, FenceTTL.Milliseconds()).Err()
}

// NopCache is used when no Redis address is configured; every Get misses.
type NopCache struct{}

func (NopCache) Get(context.Context, string, string) (*models.Task, error) { return nil, ErrMiss }
func (NopCache) Set(context.Context, *models.Task) error                   { return nil }
func (NopCache) Delete(context.Context, string, string) error              { return nil }
