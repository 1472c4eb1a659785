package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"PartnerGo/internal/cache"
	"PartnerGo/internal/flow"
	"PartnerGo/internal/model"
	"PartnerGo/internal/queue"
	"PartnerGo/pkg/logger"
	"PartnerGo/pkg/snowflake"
	"PartnerGo/storage/database"
	"PartnerGo/utils"
)

var (
	profileService *ProfileService
	profileOnce    sync.Once
)

func Profile() *ProfileService {
	profileOnce.Do(func() {
		profileService = &ProfileService{}
	})
	return profileService
}

type ProfileService struct{}

// GetByPhoneHash 按手机号哈希查询用户，不存在返回 (nil, nil)
func (s *ProfileService) GetByPhoneHash(ctx context.Context, phoneHash string) (*model.User, error) {
	var user model.User
	err := database.DB().WithContext(ctx).
		Where("phone_hash = ?", phoneHash).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by phone hash: %w", err)
	}
	return &user, nil
}

func (s *ProfileService) GetByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	cached, hit, err := cache.GetUserProfile(ctx, publicID)
	if err != nil {
		logger.Logger.Warn("Failed to read user profile cache",
			zap.Int64("user_public_id", publicID),
			zap.Error(err),
		)
	} else if hit {
		return cached, nil
	}

	var user model.User
	err = database.DB().WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 空值也回填，挡住穿透
			if cerr := cache.SetUserProfile(ctx, publicID, nil); cerr != nil {
				logger.Logger.Warn("Failed to cache user profile miss",
					zap.Int64("user_public_id", publicID),
					zap.Error(cerr),
				)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by public id: %w", err)
	}

	if cerr := cache.SetUserProfile(ctx, publicID, &user); cerr != nil {
		logger.Logger.Warn("Failed to cache user profile",
			zap.Int64("user_public_id", publicID),
			zap.Error(cerr),
		)
	}

	return &user, nil
}

// EnsureUser 按手机号取回或创建用户
// 新用户带 customer 哨兵身份和 onboarding 状态落库
func (s *ProfileService) EnsureUser(ctx context.Context, phone string) (*model.User, bool, error) {
	phoneHash := utils.HashPhone(phone)

	user, err := s.GetByPhoneHash(ctx, phoneHash)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		return user, false, nil
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate user ID: %w", err)
	}

	phoneCipherBase64, err := utils.EncryptPhone(phone)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encrypt phone: %w", err)
	}
	phoneCipherBytes, err := base64.StdEncoding.DecodeString(phoneCipherBase64)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode phone cipher: %w", err)
	}

	user = &model.User{
		PublicID:    publicID,
		PhoneCipher: phoneCipherBytes,
		PhoneHash:   &phoneHash,
		Role:        model.PartnerRoleCustomer,
		Status:      model.UserStatusOnboarding,
	}

	if err := database.DB().WithContext(ctx).Create(user).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Logger.Info("New user created",
		zap.Int64("public_id", publicID),
	)

	return user, true, nil
}

// Snapshot 把账号记录映射成导航对账需要的远端快照
// 账号不存在时返回 nil，对账按无快照处理
func (s *ProfileService) Snapshot(user *model.User) *flow.AccountSnapshot {
	if user == nil {
		return nil
	}
	snap := &flow.AccountSnapshot{}
	if user.HasName() {
		snap.Name = user.Name
	}
	// customer 哨兵不算已提交身份，对账时走无身份分支
	if user.HasCommittedRole() {
		snap.Role = flow.Role(user.Role)
	}
	return snap
}

// CommitOnboarding 入驻收尾的落库提交，幂等：已收尾的账号直接返回
// 用户资料与资质申请在一个事务里写入
func (s *ProfileService) CommitOnboarding(
	ctx context.Context,
	userPublicID int64,
	role flow.Role,
	draft *cache.ProfileDraft,
) error {
	err := database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("public_id = ?", userPublicID).First(&user).Error; err != nil {
			return fmt.Errorf("failed to load user for commit: %w", err)
		}

		if user.OnboardedAt != nil && user.Role == model.PartnerRole(role) {
			return nil
		}

		now := time.Now().Unix()
		updates := map[string]interface{}{
			"role":         string(role),
			"status":       string(model.UserStatusActive),
			"onboarded_at": now,
		}
		if draft != nil {
			if draft.Name != "" {
				updates["name"] = draft.Name
			}
			if draft.City != "" {
				updates["city"] = draft.City
			}
		}

		if err := tx.Model(&model.User{}).
			Where("public_id = ?", userPublicID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if draft != nil && draft.Driver != nil && roleIncludesDriver(role) {
			if err := upsertDriverApplication(tx, userPublicID, draft.Driver); err != nil {
				return err
			}
		}
		if draft != nil && draft.Merchant != nil && roleIncludesMerchant(role) {
			if err := upsertMerchantApplication(tx, userPublicID, draft.Merchant); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	// 账号行已变，缓存失效
	if cerr := cache.InvalidateUserProfile(ctx, userPublicID); cerr != nil {
		logger.Logger.Warn("Failed to invalidate user profile cache",
			zap.Int64("user_public_id", userPublicID),
			zap.Error(cerr),
		)
	}

	return nil
}

func roleIncludesDriver(role flow.Role) bool {
	return role == flow.RoleDriver || role == flow.RoleBoth
}

func roleIncludesMerchant(role flow.Role) bool {
	return role == flow.RoleMerchant || role == flow.RoleBoth
}

func applicationStatus(docsUploaded bool) model.ApplicationStatus {
	if docsUploaded {
		return model.ApplicationStatusSubmitted
	}
	return model.ApplicationStatusSkipped
}

func upsertDriverApplication(tx *gorm.DB, userPublicID int64, d *cache.DriverDraft) error {
	var app model.DriverApplication
	err := tx.Where("user_public_id = ?", userPublicID).First(&app).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to query driver application: %w", err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		publicID, idErr := snowflake.NextID()
		if idErr != nil {
			return fmt.Errorf("failed to generate application ID: %w", idErr)
		}
		app = model.DriverApplication{
			PublicID:     publicID,
			UserPublicID: userPublicID,
		}
	}

	app.LicenseNumber = d.LicenseNumber
	app.VehicleType = d.VehicleType
	app.VehiclePlate = d.VehiclePlate
	app.DocsUploaded = d.DocsUploaded
	app.DocFileIDs = strings.Join(d.DocFileIDs, ",")
	app.Status = applicationStatus(d.DocsUploaded)

	if err := tx.Save(&app).Error; err != nil {
		return fmt.Errorf("failed to save driver application: %w", err)
	}
	return nil
}

func upsertMerchantApplication(tx *gorm.DB, userPublicID int64, m *cache.MerchantDraft) error {
	var app model.MerchantApplication
	err := tx.Where("user_public_id = ?", userPublicID).First(&app).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to query merchant application: %w", err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		publicID, idErr := snowflake.NextID()
		if idErr != nil {
			return fmt.Errorf("failed to generate application ID: %w", idErr)
		}
		app = model.MerchantApplication{
			PublicID:     publicID,
			UserPublicID: userPublicID,
		}
	}

	app.StoreName = m.StoreName
	app.BusinessLicense = m.BusinessLicense
	app.StoreAddress = m.StoreAddress
	app.Category = m.Category
	app.DocsUploaded = m.DocsUploaded
	app.DocFileIDs = strings.Join(m.DocFileIDs, ",")
	app.Status = applicationStatus(m.DocsUploaded)

	if err := tx.Save(&app).Error; err != nil {
		return fmt.Errorf("failed to save merchant application: %w", err)
	}
	return nil
}

// SyncDraftAsync 资料草稿异步落库，尽力而为
// 发布失败只记日志，不阻断向导导航
func (s *ProfileService) SyncDraftAsync(sessionID string, userPublicID int64, fields map[string]interface{}) {
	if len(fields) == 0 {
		return
	}

	msg := model.ProfileSyncMessage{
		SessionID:    sessionID,
		UserPublicID: userPublicID,
		Fields:       fields,
	}

	if err := queue.PublishProfileSync(msg); err != nil {
		logger.Logger.Warn("Failed to publish profile sync message",
			zap.String("session_id", sessionID),
			zap.Int64("user_public_id", userPublicID),
			zap.Error(err),
		)
	}
}

// GetPhoneBySessionUser 解密指定账号的手机号，提醒短信用
// 账号不存在或没有手机号时返回空串
func (s *ProfileService) GetPhoneBySessionUser(ctx context.Context, userPublicID int64) (string, string, error) {
	user, err := s.GetByPublicID(ctx, userPublicID)
	if err != nil {
		return "", "", err
	}
	if user == nil || len(user.PhoneCipher) == 0 {
		return "", "", nil
	}

	phone, err := utils.DecryptPhone(user.PhoneCipher)
	if err != nil {
		return "", "", fmt.Errorf("failed to decrypt phone: %w", err)
	}

	return phone, user.Name, nil
}

// ApplySyncMessage worker 侧消费资料同步消息，把草稿字段写进用户表
func (s *ProfileService) ApplySyncMessage(ctx context.Context, msg *model.ProfileSyncMessage) error {
	if msg.UserPublicID == 0 {
		// 匿名阶段的草稿没有账号可写，等收尾时一并落库
		return nil
	}

	updates := map[string]interface{}{}
	if name, ok := msg.Fields["name"].(string); ok && name != "" {
		updates["name"] = name
	}
	if city, ok := msg.Fields["city"].(string); ok && city != "" {
		updates["city"] = city
	}
	if len(updates) == 0 {
		return nil
	}

	err := database.DB().WithContext(ctx).Model(&model.User{}).
		Where("public_id = ?", msg.UserPublicID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to apply profile sync: %w", err)
	}

	if cerr := cache.InvalidateUserProfile(ctx, msg.UserPublicID); cerr != nil {
		logger.Logger.Warn("Failed to invalidate user profile cache",
			zap.Int64("user_public_id", msg.UserPublicID),
			zap.Error(cerr),
		)
	}

	return nil
}
