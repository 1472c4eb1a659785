package slider

import (
	"context"

	"PartnerGo/pkg/errors"
)

// MockClient 开发环境使用的 Mock 客户端，不做真实验证
type MockClient struct{}

// Verify token 不为空即视为通过
func (m *MockClient) Verify(ctx context.Context, captchaVerifyParam, sceneID string) (bool, error) {
	if captchaVerifyParam == "" {
		return false, errors.ErrCaptchaTokenRequired
	}

	return true, nil
}
