package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "moodboard:session:"

// NewRedisClient dials Redis with timeouts short enough that a dead Redis
// degrades session handling instead of hanging requests.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// RedisStore keeps session state in Redis with a TTL, so state survives
// process restarts and is shared across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get loads a session state; expired sessions read as absent.
func (r *RedisStore) Get(ctx context.Context, id string) (State, bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, err
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, false, err
	}
	return st, true, nil
}

// Put saves a session state and refreshes its TTL.
func (r *RedisStore) Put(ctx context.Context, id string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+id, raw, r.ttl).Err()
}

// Healthy reports whether the backing Redis answers a ping.
func (r *RedisStore) Healthy(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}
