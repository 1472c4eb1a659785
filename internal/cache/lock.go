package cache

import (
	"context"
	"time"

	"PartnerGo/storage/redis"
)

// SetNX 实现的分布式锁，提醒调度器多实例部署时防止重复扫描

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key("lock", key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key("lock", key)

	return redis.Client().Del(ctx, fullkey).Err()
}
