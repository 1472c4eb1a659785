package cache

import (
	"PartnerGo/storage/redis"
	"context"
	"time"

	"github.com/google/uuid"
)

// 滑块验证 token 存储。同一手机号当日发送超过阈值后，
// 必须先通过第三方滑块验证换取 verification token，再携带它请求验证码。

// 滑块验证 token：pgo:slider:verify:{phoneHash}
// TTL: 10分钟（验证通过后生成，用于后续发送验证码）

const (
	sli = "slider"
)

// SetSliderVerificationToken 存储滑块验证通过后的 token
func SetSliderVerificationToken(ctx context.Context, phoneHash string) (string, error) {
	token := uuid.New().String()
	key := redis.Key(sli, "verify", phoneHash)
	err := redis.Client().Set(ctx, key, token, 10*time.Minute).Err()
	return token, err
}

// ValidateSliderVerificationToken 验证滑块验证 token
func ValidateSliderVerificationToken(ctx context.Context, phoneHash, token string) bool {
	key := redis.Key(sli, "verify", phoneHash)
	storedToken, err := redis.Client().Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return storedToken == token
}
