package cache

import (
	"context"
	"strconv"

	"PartnerGo/internal/model"
)

// 按 public_id 缓存用户行，secondary 会话创建和对账都要查账号
// 空值也缓存，挡住对不存在账号的穿透查询

// UserProfileCache 用户缓存结构
// model.User 的 JSON 标签把敏感字段排除在响应外，缓存需要完整行，单独建结构
type UserProfileCache struct {
	ID          int64             `json:"id"`
	PublicID    int64             `json:"public_id"`
	Name        string            `json:"name"`
	PhoneCipher []byte            `json:"phone_cipher,omitempty"`
	PhoneHash   *string           `json:"phone_hash,omitempty"`
	Role        model.PartnerRole `json:"role"`
	Status      model.UserStatus  `json:"status"`
	City        string            `json:"city"`
	OnboardedAt *int64            `json:"onboarded_at,omitempty"`
}

func userCacheFromModel(u *model.User) *UserProfileCache {
	return &UserProfileCache{
		ID:          u.ID,
		PublicID:    u.PublicID,
		Name:        u.Name,
		PhoneCipher: u.PhoneCipher,
		PhoneHash:   u.PhoneHash,
		Role:        u.Role,
		Status:      u.Status,
		City:        u.City,
		OnboardedAt: u.OnboardedAt,
	}
}

func (c *UserProfileCache) toModel() *model.User {
	u := &model.User{
		PublicID:    c.PublicID,
		Name:        c.Name,
		PhoneCipher: c.PhoneCipher,
		PhoneHash:   c.PhoneHash,
		Role:        c.Role,
		Status:      c.Status,
		City:        c.City,
		OnboardedAt: c.OnboardedAt,
	}
	u.ID = c.ID
	return u
}

// SetUserProfile 写入用户缓存，user 为 nil 时写入空值标识
func SetUserProfile(ctx context.Context, publicID int64, user *model.User) error {
	key := strconv.FormatInt(publicID, 10)

	if user == nil {
		return UserProfileProtectedCache.Set(ctx, key, nil)
	}
	return UserProfileProtectedCache.Set(ctx, key, userCacheFromModel(user))
}

// GetUserProfile 读取用户缓存
// hit 为 false 表示未命中需要回源；hit 且 user 为 nil 表示空值命中
func GetUserProfile(ctx context.Context, publicID int64) (user *model.User, hit bool, err error) {
	key := strconv.FormatInt(publicID, 10)

	var cached UserProfileCache
	hit, empty, err := UserProfileProtectedCache.Get(ctx, key, &cached)
	if err != nil {
		return nil, false, err
	}
	if !hit || empty {
		return nil, hit, nil
	}

	return cached.toModel(), true, nil
}

// InvalidateUserProfile 账号行变更后删除缓存
func InvalidateUserProfile(ctx context.Context, publicID int64) error {
	key := strconv.FormatInt(publicID, 10)
	return UserProfileProtectedCache.Delete(ctx, key)
}
