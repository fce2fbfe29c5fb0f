package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisCooldownRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisCooldownRepository(client *redis.Client) ports.CooldownRepository {
	return &RedisCooldownRepository{
		client: client,
		prefix: "wardenbot:cooldowns:",
	}
}

func (r *RedisCooldownRepository) key(group domain.GroupID) string {
	return r.prefix + string(group)
}

func (r *RedisCooldownRepository) Get(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.CooldownRecord, error) {
	data, err := r.client.HGet(ctx, r.key(group), fieldKey(account)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown record from Redis: %w", err)
	}

	var rec domain.CooldownRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cooldown record: %w", err)
	}
	return &rec, nil
}

func (r *RedisCooldownRepository) Put(ctx context.Context, group domain.GroupID, groupTitle string, rec *domain.CooldownRecord) error {
	cp := *rec
	cp.GroupTitle = groupTitle

	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to marshal cooldown record: %w", err)
	}
	if err := r.client.HSet(ctx, r.key(group), fieldKey(rec.Account), data).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown record in Redis: %w", err)
	}
	return nil
}
