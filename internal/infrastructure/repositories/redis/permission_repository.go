package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisPermissionRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisPermissionRepository(client *redis.Client) ports.PermissionRepository {
	return &RedisPermissionRepository{
		client: client,
		prefix: "wardenbot:admins:",
	}
}

func (r *RedisPermissionRepository) adminsKey(group domain.GroupID) string {
	return r.prefix + string(group)
}

func (r *RedisPermissionRepository) titleKey(group domain.GroupID) string {
	return r.prefix + string(group) + ":title"
}

func fieldKey(a domain.AccountID) string {
	return strconv.FormatInt(int64(a), 10)
}

func (r *RedisPermissionRepository) Upsert(ctx context.Context, group domain.GroupID, groupTitle string, rec *domain.PermissionRecord) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("failed to marshal permission record: %w", err)
	}

	existed, err := r.client.HExists(ctx, r.adminsKey(group), fieldKey(rec.Account)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check permission record in Redis: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.adminsKey(group), fieldKey(rec.Account), data)
	if groupTitle != "" {
		pipe.Set(ctx, r.titleKey(group), groupTitle, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to set permission record in Redis: %w", err)
	}
	return existed, nil
}

func (r *RedisPermissionRepository) Remove(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error) {
	rec, err := r.Get(ctx, group, account)
	if err != nil {
		return nil, err
	}
	if err := r.client.HDel(ctx, r.adminsKey(group), fieldKey(account)).Err(); err != nil {
		return nil, fmt.Errorf("failed to delete permission record from Redis: %w", err)
	}
	return rec, nil
}

func (r *RedisPermissionRepository) Get(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error) {
	data, err := r.client.HGet(ctx, r.adminsKey(group), fieldKey(account)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotAnAdmin
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get permission record from Redis: %w", err)
	}

	var rec domain.PermissionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permission record: %w", err)
	}
	return &rec, nil
}

func (r *RedisPermissionRepository) List(ctx context.Context, group domain.GroupID) ([]*domain.PermissionRecord, error) {
	entries, err := r.client.HGetAll(ctx, r.adminsKey(group)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list permission records from Redis: %w", err)
	}

	recs := make([]*domain.PermissionRecord, 0, len(entries))
	for _, data := range entries {
		var rec domain.PermissionRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permission record: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}

func (r *RedisPermissionRepository) GroupTitle(ctx context.Context, group domain.GroupID) (string, error) {
	title, err := r.client.Get(ctx, r.titleKey(group)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get group title from Redis: %w", err)
	}
	return title, nil
}
