package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pulse:session:"

// RedisSessionStore keeps the session in redis, e.g. to share one login across machines.
type RedisSessionStore struct {
	client    *redis.Client
	namespace string
}

var _ SessionStore = (*RedisSessionStore)(nil)

func NewRedisSessionStore(client *redis.Client, namespace string) *RedisSessionStore {
	if strings.TrimSpace(namespace) == "" {
		namespace = "default"
	}
	return &RedisSessionStore{client: client, namespace: namespace}
}

func (r *RedisSessionStore) key(k string) string {
	return redisKeyPrefix + r.namespace + ":" + k
}

func (r *RedisSessionStore) LoadSession(ctx context.Context) (string, string, error) {
	vals, err := r.client.MGet(ctx, r.key(keyAccessToken), r.key(keyUser)).Result()
	if err != nil {
		return "", "", fmt.Errorf("failed to load session: %w", err)
	}
	str := func(v any) string {
		s, _ := v.(string)
		return s
	}
	return str(vals[0]), str(vals[1]), nil
}

func (r *RedisSessionStore) SaveSession(ctx context.Context, token, userJSON string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(userJSON) == "" {
		return errors.New("token and user are both required")
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.MSet(ctx, r.key(keyAccessToken), token, r.key(keyUser), userJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) ClearSession(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(keyAccessToken), r.key(keyUser)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}
