package slider

import (
	"context"
	"fmt"

	captcha "github.com/alibabacloud-go/captcha-20230305/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"
	"go.uber.org/zap"

	"PartnerGo/pkg/errors"
	"PartnerGo/pkg/logger"
)

// AliyunClient 阿里云验证码客户端实现
type AliyunClient struct {
	client *captcha.Client
}

func NewAliyunClient() (*AliyunClient, error) {
	cred, err := credential.NewCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun credential: %w", err)
	}

	clientConfig := &openapi.Config{
		Credential: cred,
		Endpoint:   tea.String("captcha.cn-hangzhou.aliyuncs.com"),
	}

	client, err := captcha.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create captcha client: %w", err)
	}

	return &AliyunClient{
		client: client,
	}, nil
}

// Verify 验证滑块 token
// 前端滑块组件返回的参数已包含 appkey、verifyToken 等全部验证信息
func (c *AliyunClient) Verify(ctx context.Context, captchaVerifyParam, sceneID string) (bool, error) {
	if captchaVerifyParam == "" {
		return false, errors.ErrCaptchaTokenRequired
	}

	request := &captcha.VerifyIntelligentCaptchaRequest{
		CaptchaVerifyParam: tea.String(captchaVerifyParam),
		SceneId:            tea.String(sceneID),
	}

	response, err := c.client.VerifyIntelligentCaptcha(request)
	if err != nil {
		logger.Logger.Error("Failed to verify captcha",
			zap.String("scene", sceneID),
			zap.Error(err),
		)
		return false, fmt.Errorf("failed to verify captcha: %w", err)
	}

	if response == nil || response.Body == nil {
		return false, errors.ErrCaptchaResponseNil
	}

	body := response.Body

	if body.Result != nil && body.Result.VerifyResult != nil && *body.Result.VerifyResult {
		logger.Logger.Info("Captcha verification successful",
			zap.String("scene", sceneID),
		)
		return true, nil
	}

	if body.Code != nil && *body.Code != "200" {
		message := ""
		if body.Message != nil {
			message = *body.Message
		}
		logger.Logger.Warn("Captcha verification failed",
			zap.String("code", *body.Code),
			zap.String("message", message),
			zap.String("scene", sceneID),
		)
		return false, fmt.Errorf("%w: %s - %s", errors.ErrCaptchaVerificationFailed, *body.Code, message)
	}

	logger.Logger.Warn("Captcha verification failed: verify result is false",
		zap.String("scene", sceneID),
	)
	return false, errors.ErrCaptchaVerificationFailed
}
