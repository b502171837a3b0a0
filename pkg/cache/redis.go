package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis shares the cache between gateway instances. Each tag keeps a set of
// its entry keys so invalidation can drop them together, and a counter that
// Put watches so a stale load cannot land after an invalidation.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis namespaces every key with prefix, normally the redis.key_prefix
// the session store uses too.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) entryKey(tag, key string) string {
	return r.prefix + "cache:" + tag + ":" + key
}

func (r *Redis) tagKey(tag string) string {
	return r.prefix + "cache-tag:" + tag
}

func (r *Redis) genKey(tag string) string {
	return r.prefix + "cache-gen:" + tag
}

func (r *Redis) Get(ctx context.Context, tag, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.entryKey(tag, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *Redis) Generation(ctx context.Context, tag string) (int64, error) {
	return generation(ctx, r.client, r.genKey(tag))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, c getter, key string) (int64, error) {
	gen, err := c.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *Redis) Put(ctx context.Context, tag, key string, gen int64, data []byte) error {
	genKey := r.genKey(tag)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, r.entryKey(tag, key), data, r.ttl)
			p.SAdd(ctx, r.tagKey(tag), r.entryKey(tag, key))
			if r.ttl > 0 {
				p.Expire(ctx, r.tagKey(tag), r.ttl)
			}
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		// invalidated while storing
		return nil
	}
	return err
}

// Invalidate bumps the generation before dropping entries: a Put that
// committed first is deleted here, one that commits later fails its watch.
func (r *Redis) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		if err := r.client.Incr(ctx, r.genKey(tag)).Err(); err != nil {
			return err
		}
		keys, err := r.client.SMembers(ctx, r.tagKey(tag)).Result()
		if err != nil {
			return err
		}
		keys = append(keys, r.tagKey(tag))
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close leaves the shared client to its owner.
func (r *Redis) Close() error { return nil }
