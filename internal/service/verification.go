package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"PartnerGo/config"
	"PartnerGo/internal/cache"
	pkgerrors "PartnerGo/pkg/errors"
	"PartnerGo/pkg/logger"
	"PartnerGo/pkg/slider"
	"PartnerGo/pkg/sms"
	"PartnerGo/utils"
)

var (
	verificationService *VerificationService
	verifyOnce          sync.Once
)

func Verification() *VerificationService {
	verifyOnce.Do(func() {
		verificationService = &VerificationService{}
	})

	return verificationService
}

type VerificationService struct{}

func generateCaptchaCode() string {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// SendCaptcha 发送验证码短信
// 当日发送次数超过阈值后必须先过滑块验证，超过每日上限直接限流
func (s *VerificationService) SendCaptcha(
	ctx context.Context,
	phone string,
	captchaVerifyParam string,
) error {
	phoneHash := utils.HashPhone(phone)

	count, err := cache.IncrCaptchaCount(ctx, phoneHash)
	if err != nil {
		return fmt.Errorf("failed to check captcha count: %w", err)
	}

	if count > config.Cfg.CaptchaMaxDaily {
		return pkgerrors.CaptchaRateLimited
	}

	needSlider := count > config.Cfg.CaptchaSliderThreshold

	if needSlider {
		if captchaVerifyParam == "" {
			return pkgerrors.VerificationSliderRequired
		}

		if !cache.ValidateSliderVerificationToken(ctx, phoneHash, captchaVerifyParam) {
			return pkgerrors.VerificationSliderFailed
		}
	}

	code := generateCaptchaCode()

	if err := cache.SetCaptcha(ctx, phoneHash, code); err != nil {
		return fmt.Errorf("failed to store captcha: %w", err)
	}

	// 发送失败时删除已存储的验证码，避免用户拿不到码却占着限额
	if err := sms.SendCaptchaSMS(ctx, phone, code); err != nil {
		cache.DeleteCaptcha(ctx, phoneHash)
		logger.Logger.Error("Failed to send captcha SMS",
			zap.String("phone", phone),
			zap.Error(err),
		)

		if config.Cfg.IsDevelopment() {
			return fmt.Errorf("failed to send SMS: %w", err)
		}
	}

	return nil
}

// VerifySlider 验证滑块 token，成功后下发可复用的验证凭证
func (s *VerificationService) VerifySlider(
	ctx context.Context,
	phone string,
	sceneID string,
	captchaVerifyParam string,
) (string, time.Time, error) {
	phoneHash := utils.HashPhone(phone)

	if sceneID != config.Cfg.CaptchaSceneId {
		return "", time.Time{}, pkgerrors.VerificationSliderFailed
	}

	valid, err := slider.Verify(ctx, captchaVerifyParam, sceneID)
	if err != nil {
		logger.Logger.Error("Failed to verify slider token",
			zap.String("phone", phone),
			zap.Error(err),
		)
		return "", time.Time{}, pkgerrors.VerificationSliderFailed
	}

	if !valid {
		logger.Logger.Warn("Slider verification failed",
			zap.String("phone", phone),
		)
		return "", time.Time{}, pkgerrors.VerificationSliderFailed
	}

	verifyToken, err := cache.SetSliderVerificationToken(ctx, phoneHash)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate verify token: %w", err)
	}

	expiresAt := time.Now().Add(5 * time.Minute)
	return verifyToken, expiresAt, nil
}

// VerifyCaptcha 核对验证码，匹配后立即删除，一码一用
func (s *VerificationService) VerifyCaptcha(
	ctx context.Context,
	phone string,
	code string,
) error {
	phoneHash := utils.HashPhone(phone)

	storedCode, err := cache.GetCaptcha(ctx, phoneHash)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return pkgerrors.VerificationCodeExpired
		}
		return fmt.Errorf("failed to get captcha: %w", err)
	}

	if storedCode != code {
		return pkgerrors.VerificationCodeInvalid
	}

	cache.DeleteCaptcha(ctx, phoneHash)
	return nil
}
