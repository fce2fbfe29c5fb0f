package redis

import (
	"context"
	"fmt"
	"strconv"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisIdentityRepository struct {
	client *redis.Client
	key    string
}

func NewRedisIdentityRepository(client *redis.Client) ports.IdentityRepository {
	return &RedisIdentityRepository{
		client: client,
		key:    "wardenbot:identities",
	}
}

func (r *RedisIdentityRepository) Register(ctx context.Context, handle string, account domain.AccountID) error {
	if handle == "" {
		return nil
	}
	if err := r.client.HSet(ctx, r.key, handle, int64(account)).Err(); err != nil {
		return fmt.Errorf("failed to register handle in Redis: %w", err)
	}
	return nil
}

func (r *RedisIdentityRepository) Resolve(ctx context.Context, handle string) (domain.AccountID, error) {
	val, err := r.client.HGet(ctx, r.key, handle).Result()
	if err == redis.Nil {
		return 0, domain.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve handle from Redis: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt identity record for %q: %w", handle, err)
	}
	return domain.AccountID(id), nil
}
