package presence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// PresenceKeyPrefix 心跳 Redis Key 前缀
	PresenceKeyPrefix = "daifugo:presence:"

	// DefaultTTL 心跳记录保留时间
	DefaultTTL = 10 * time.Minute
)

// BuildPresenceKey 构建心跳 Key
// Key: daifugo:presence:{roomId}:{playerId}
func BuildPresenceKey(roomID, playerID string) string {
	return fmt.Sprintf("%s%s:%s", PresenceKeyPrefix, roomID, playerID)
}

// RedisTracker 基于 Redis 的心跳记录，多实例共享
// Value 为毫秒时间戳，过期后视为没有记录
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisTracker 创建 Redis 心跳记录
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "PresenceTracker"),
	}
}

// Touch 记录心跳并续期
func (t *RedisTracker) Touch(ctx context.Context, roomID, playerID string, at time.Time) error {
	key := BuildPresenceKey(roomID, playerID)
	if err := t.client.Set(ctx, key, at.UnixMilli(), t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to touch presence: %w", err)
	}
	return nil
}

// LastSeen 最后一次心跳时间
func (t *RedisTracker) LastSeen(ctx context.Context, roomID, playerID string) (time.Time, bool, error) {
	key := BuildPresenceKey(roomID, playerID)
	val, err := t.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get presence: %w", err)
	}

	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		t.logger.Warn("Invalid presence value", "key", key, "value", val)
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}
