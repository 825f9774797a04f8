// Package checkpoint persists the poller's cursor so a watcher can
// resume after a restart without skipping or repeating a block.
//
// Only the index of the next block to process is stored. The hash is
// re-resolved on resume.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/blockberries/chainxt/poller"
)

// Store loads and saves cursor indices by key.
type Store interface {
	// Load returns the saved index for key. ok is false if nothing was
	// saved yet.
	Load(ctx context.Context, key string) (index uint32, ok bool, err error)
	Save(ctx context.Context, key string, index uint32) error
}

// Resume returns the saved index for key, or fallback when there is none.
func Resume(ctx context.Context, s Store, key string, fallback uint32) (uint32, error) {
	index, ok, err := s.Load(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("checkpoint: load %s: %w", key, err)
	}
	if !ok {
		return fallback, nil
	}
	return index, nil
}

// Handler wraps next so that every block it delivers successfully is
// checkpointed as the index after it. A failed save fails the block, so
// the run stops there and next sees that block again on restart.
func Handler(s Store, key string, next poller.Handler) poller.Handler {
	return func(ctx context.Context, ev poller.BlockEvents) error {
		if err := next(ctx, ev); err != nil {
			return err
		}
		if err := s.Save(ctx, key, ev.Cursor.Index+1); err != nil {
			return fmt.Errorf("checkpoint: save %s at #%d: %w", key, ev.Cursor.Index+1, err)
		}
		return nil
	}
}

// MemoryStore keeps checkpoints in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	indices map[string]uint32
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{indices: make(map[string]uint32)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (uint32, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	index, ok := m.indices[key]
	return index, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, index uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indices[key] = index
	return nil
}

// RedisStore keeps checkpoints in Redis as decimal strings.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore stores checkpoints through client under prefix+key.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisStoreFromURL connects to the Redis server at url. A url that
// does not parse is used as a plain host:port address.
func NewRedisStoreFromURL(url, prefix string) (*RedisStore, *redis.Client) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opt)
	return NewRedisStore(client, prefix), client
}

func (r *RedisStore) Load(ctx context.Context, key string) (uint32, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	index, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("checkpoint: corrupt value %q under %s: %w", val, r.prefix+key, err)
	}
	return uint32(index), true, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, index uint32) error {
	return r.client.Set(ctx, r.prefix+key, strconv.FormatUint(uint64(index), 10), 0).Err()
}
