package dto

// ========== Auth 相关 DTO ==========

// SendCodeRequest 发送验证码请求
type SendCodeRequest struct {
	Phone       string `json:"phone" binding:"required"`
	SliderToken string `json:"slider_token,omitempty"`
}

// VerifySliderRequest 滑块验证请求
// scene_id 缺省时使用服务端配置的默认场景
type VerifySliderRequest struct {
	Phone       string `json:"phone" binding:"required"`
	SceneID     string `json:"scene_id,omitempty"`
	SliderToken string `json:"slider_token" binding:"required"`
}

// VerifySliderResponse 滑块验证响应
type VerifySliderResponse struct {
	SliderVerificationToken string `json:"slider_verification_token"`
	ExpiresAt               int64  `json:"expires_at"`
}

// VerifyCodeRequest 验证码校验请求（提交 6 位验证码）
type VerifyCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"` // 6 位数字
}

// VerifyCodeResponse 验证通过后的响应：
// 新签发的令牌对、账号快照，以及协调后的向导状态
type VerifyCodeResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresIn    int                 `json:"expires_in"`
	User         AuthUserSnapshot    `json:"user"`
	State        OnboardingStateData `json:"state"`
}

// AuthUserSnapshot 验证时的账号快照
type AuthUserSnapshot struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	PhoneVerified bool   `json:"phone_verified"`
	IsNewUser     bool   `json:"is_new_user"`
}

// RefreshTokenRequest 刷新 token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse 刷新 token 响应
type RefreshTokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int              `json:"expires_in"`
	User         AuthUserSnapshot `json:"user"`
}
