package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"PartnerGo/internal/cache"
	"PartnerGo/internal/model"
	"PartnerGo/internal/model/dto"
	pkgerrors "PartnerGo/pkg/errors"
	"PartnerGo/pkg/logger"
	"PartnerGo/pkg/token"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{}
	})
	return authService
}

type AuthService struct{}

// RefreshToken 刷新令牌对
// refresh token 必须通过签名校验并与 Redis 中存储的一致
func (s *AuthService) RefreshToken(
	ctx context.Context,
	refreshToken string,
) (*dto.RefreshTokenResponse, error) {
	userIDStr, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, pkgerrors.AuthCodeInvalid
	}

	if !cache.ValidateRefreshTokenExists(ctx, userIDStr, refreshToken) {
		return nil, pkgerrors.AuthCodeInvalid
	}

	var userID int64
	if _, err := fmt.Sscanf(userIDStr, "%d", &userID); err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	user, err := Profile().GetByPublicID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.Unauthorized
	}

	accessToken, newRefreshToken, expiresIn, err := token.GenerateTokenPair(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := cache.SetRefreshToken(ctx, userIDStr, newRefreshToken); err != nil {
		logger.Logger.Warn("Failed to update refresh token in Redis",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
	}

	phoneVerified := user.PhoneHash != nil && *user.PhoneHash != ""

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    expiresIn,
		User: dto.AuthUserSnapshot{
			ID:            userIDStr,
			Name:          user.Name,
			Role:          string(user.Role),
			Status:        model.StatusToStringMap[user.Status],
			PhoneVerified: phoneVerified,
			IsNewUser:     false,
		},
	}, nil
}
