package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"PartnerGo/config"
	"PartnerGo/internal/model/dto"
	"PartnerGo/internal/service"
	pkgerrors "PartnerGo/pkg/errors"
	"PartnerGo/pkg/response"
	"PartnerGo/utils"
)

// SendCaptcha 发送验证码
// POST /v1/auth/phone/send-code
func SendCaptcha(ctx context.Context, c *app.RequestContext) {
	var req dto.SendCodeRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if !utils.ValidatePhone(req.Phone) {
		response.Error(ctx, c, pkgerrors.PhoneInvalid)
		return
	}

	if err := service.Verification().SendCaptcha(ctx, req.Phone, req.SliderToken); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"sent": true,
	})
}

// VerifySlider 滑块验证
// POST /v1/auth/phone/verify-slider
func VerifySlider(ctx context.Context, c *app.RequestContext) {
	var req dto.VerifySliderRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if !utils.ValidatePhone(req.Phone) {
		response.Error(ctx, c, pkgerrors.PhoneInvalid)
		return
	}

	sceneID := req.SceneID
	if sceneID == "" {
		sceneID = config.Cfg.CaptchaSceneId
	}

	verifyToken, expiresAt, err := service.Verification().VerifySlider(ctx, req.Phone, sceneID, req.SliderToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.VerifySliderResponse{
		SliderVerificationToken: verifyToken,
		ExpiresAt:               expiresAt.Unix(),
	})
}

// RefreshToken 刷新访问令牌
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Auth().RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
