package cache

import (
	"context"
	"time"

	"PartnerGo/storage/redis"
)

// 消费端幂等标记：MQ 至少投递一次，靠 SetNX 去重
// 处理失败时取消标记，让重投能再次处理

func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key("message", "processing", messageID)

	return redis.Client().SetNX(ctx, key, 1, ttl).Result()
}

func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key("message", "processing", messageID)

	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed 处理完成后延长标记 TTL，覆盖更久的重投窗口
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key("message", "processing", messageID)

	return redis.Client().Set(ctx, key, 1, ttl).Err()
}
