package cache

import (
	"PartnerGo/config"
	"PartnerGo/internal/flow"
	"PartnerGo/storage/redis"
	"context"
	"encoding/json"
	"strconv"
	"time"

	ri "github.com/redis/go-redis/v9"
)

// 向导会话状态整体存入 Redis，一个会话一个 key。
// 忙碌位随状态一起持久化，没有超时：挂死的异步调用只能靠会话 TTL 兜底。

// 会话：pgo:onboarding:session:{sessionID}
// TTL: ONBOARDING_SESSION_HOURS（默认 72 小时）

// 活跃索引：pgo:onboarding:active（zset，score 为最后活动时间）
// 提醒调度器按 score 扫描停滞会话

const (
	ob = "onboarding"
)

// OnboardingSession 会话持久化结构
type OnboardingSession struct {
	ID           string     `json:"id"`
	UserPublicID int64      `json:"user_public_id,omitempty"` // 验证通过前为 0
	PhoneHash    string     `json:"phone_hash,omitempty"`
	Nav          flow.State `json:"nav"`
	Destination  string     `json:"destination,omitempty"`
	ReminderSent bool       `json:"reminder_sent,omitempty"`
	UpdatedAt    int64      `json:"updated_at"`
}

func sessionTTL() time.Duration {
	return time.Duration(config.Cfg.OnboardingSessionHours) * time.Hour
}

// SetSession 写入会话并刷新活跃索引
func SetSession(ctx context.Context, s *OnboardingSession) error {
	s.UpdatedAt = time.Now().Unix()

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	key := redis.Key(ob, "session", s.ID)
	if err := redis.Client().Set(ctx, key, data, sessionTTL()).Err(); err != nil {
		return err
	}

	// 收尾或取消的会话不再进入提醒扫描
	activeKey := redis.Key(ob, "active")
	if s.Nav.Finalized || s.Nav.Cancelled {
		return redis.Client().ZRem(ctx, activeKey, s.ID).Err()
	}
	return redis.Client().ZAdd(ctx, activeKey, ri.Z{
		Score:  float64(s.UpdatedAt),
		Member: s.ID,
	}).Err()
}

// GetSession 读取会话，不存在时返回 (nil, nil)
func GetSession(ctx context.Context, sessionID string) (*OnboardingSession, error) {
	key := redis.Key(ob, "session", sessionID)
	data, err := redis.Client().Get(ctx, key).Bytes()
	if err != nil {
		if err == ri.Nil {
			return nil, nil
		}
		return nil, err
	}

	var s OnboardingSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func DeleteSession(ctx context.Context, sessionID string) error {
	key := redis.Key(ob, "session", sessionID)
	activeKey := redis.Key(ob, "active")
	if err := redis.Client().ZRem(ctx, activeKey, sessionID).Err(); err != nil {
		return err
	}
	return redis.Client().Del(ctx, key).Err()
}

// DeactivateSession 把会话移出活跃索引，之后不再进入提醒扫描
// 会话本身保留，用户回来还能继续
func DeactivateSession(ctx context.Context, sessionID string) error {
	activeKey := redis.Key(ob, "active")
	return redis.Client().ZRem(ctx, activeKey, sessionID).Err()
}

// StaleSessionIDs 返回最后活动时间早于 before 的活跃会话
func StaleSessionIDs(ctx context.Context, before time.Time, limit int64) ([]string, error) {
	activeKey := redis.Key(ob, "active")
	return redis.Client().ZRangeByScore(ctx, activeKey, &ri.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(before.Unix(), 10),
		Count: limit,
	}).Result()
}
