package credstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores the record as a single hash, so a group write is one
// HSET and a clear is one DEL.
type RedisBackend struct {
	rdb *redis.Client
	key string
}

func NewRedisBackend(rdb *redis.Client, namespace string) *RedisBackend {
	return &RedisBackend{rdb: rdb, key: RedisKey(namespace)}
}

// RedisKey returns the hash key holding the record for namespace.
func RedisKey(namespace string) string {
	return "supplyline:" + namespace + ":session"
}

func (b *RedisBackend) Load(ctx context.Context) (map[string]string, error) {
	values, err := b.rdb.HGetAll(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", b.key, err)
	}
	return values, nil
}

func (b *RedisBackend) Save(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]any, 0, 2*len(values))
	for k, v := range values {
		args = append(args, k, v)
	}
	if err := b.rdb.HSet(ctx, b.key, args...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", b.key, err)
	}
	return nil
}

func (b *RedisBackend) Clear(ctx context.Context) error {
	if err := b.rdb.Del(ctx, b.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", b.key, err)
	}
	return nil
}
