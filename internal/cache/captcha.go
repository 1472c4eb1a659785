package cache

import (
	"PartnerGo/config"
	"PartnerGo/storage/redis"
	"context"
	"time"

	ri "github.com/redis/go-redis/v9"
)

// 验证码存储：pgo:captcha:{phoneHash}
// TTL: CAPTCHA_EXPIRE_SECONDS（默认 120 秒）

// 每日发送计数：pgo:captcha:count:{phoneHash}:{date}
// TTL: 到次日零点自动过期

const (
	cap = "captcha"
)

// SetCaptcha 存储验证码
func SetCaptcha(ctx context.Context, phoneHash, code string) error {
	key := redis.Key(cap, phoneHash)
	ttl := time.Duration(config.Cfg.CaptchaExpireSeconds) * time.Second

	return redis.Client().Set(ctx, key, code, ttl).Err()
}

func GetCaptcha(ctx context.Context, phoneHash string) (string, error) {
	key := redis.Key(cap, phoneHash)
	return redis.Client().Get(ctx, key).Result()
}

func DeleteCaptcha(ctx context.Context, phoneHash string) error {
	key := redis.Key(cap, phoneHash)
	return redis.Client().Del(ctx, key).Err()
}

// IncrCaptchaCount 增加今日发送计数，返回当前次数
func IncrCaptchaCount(ctx context.Context, phoneHash string) (int, error) {
	date := time.Now().Format("2006-01-02")
	key := redis.Key(cap, "count", phoneHash, date)

	count, err := redis.Client().Incr(ctx, key).Result()

	if err != nil {
		return 0, err // 具体在业务层处理报错
	}

	if count == 1 { // 今天第一次发送，设定到次日零点过期
		now := time.Now()
		tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		redis.Client().Expire(ctx, key, tomorrow.Sub(now))
	}

	return int(count), nil
}

func GetCaptchaCount(ctx context.Context, phoneHash string) (int, error) {
	date := time.Now().Format("2006-01-02")
	key := redis.Key(cap, "count", phoneHash, date)

	count, err := redis.Client().Get(ctx, key).Int()
	if err == ri.Nil {
		return 0, nil
	}

	return count, err
}
