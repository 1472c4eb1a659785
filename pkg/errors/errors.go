package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证与验证码相关错误。
var (
	AuthCodeInvalid            = Definition{Code: "AUTH_CODE_INVALID", Message: "Auth code invalid"}
	PhoneAlreadyRegistered     = Definition{Code: "PHONE_ALREADY_REGISTERED", Message: "Phone already registered"}
	PhoneInvalid               = Definition{Code: "INVALID_PHONE", Message: "Phone number invalid"}
	CaptchaRateLimited         = Definition{Code: "CAPTCHA_RATE_LIMITED", Message: "Captcha rate limited"}
	VerificationCodeExpired    = Definition{Code: "VERIFICATION_CODE_EXPIRED", Message: "Verification code expired"}
	VerificationCodeInvalid    = Definition{Code: "VERIFICATION_CODE_INVALID", Message: "Verification code invalid"}
	VerificationSliderRequired = Definition{Code: "VERIFICATION_SLIDER_REQUIRED", Message: "Slider verification required"}
	VerificationSliderFailed   = Definition{Code: "VERIFICATION_SLIDER_FAILED", Message: "Slider verification failed"}
	Unauthorized               = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID              = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	TooManyRequests            = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// 入驻向导错误。
var (
	OnboardingSessionNotFound = Definition{Code: "ONBOARDING_SESSION_NOT_FOUND", Message: "Onboarding session not found"}
	OnboardingBusy            = Definition{Code: "ONBOARDING_BUSY", Message: "Another onboarding operation is in flight"}
	OnboardingFinalized       = Definition{Code: "ONBOARDING_FINALIZED", Message: "Onboarding already finalized"}
	OnboardingCancelled       = Definition{Code: "ONBOARDING_CANCELLED", Message: "Onboarding already cancelled"}
	OnboardingStepInvalid     = Definition{Code: "ONBOARDING_STEP_INVALID", Message: "Onboarding step invalid"}
	OnboardingRoleAlreadySet  = Definition{Code: "ONBOARDING_ROLE_ALREADY_SET", Message: "Partner role already selected"}
	OnboardingRoleInvalid     = Definition{Code: "ONBOARDING_ROLE_INVALID", Message: "Partner role invalid"}
	OnboardingModeInvalid     = Definition{Code: "ONBOARDING_MODE_INVALID", Message: "Onboarding mode invalid"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	AuthCodeInvalid.Code:            AuthCodeInvalid,
	PhoneAlreadyRegistered.Code:     PhoneAlreadyRegistered,
	PhoneInvalid.Code:               PhoneInvalid,
	CaptchaRateLimited.Code:         CaptchaRateLimited,
	VerificationCodeExpired.Code:    VerificationCodeExpired,
	VerificationCodeInvalid.Code:    VerificationCodeInvalid,
	VerificationSliderRequired.Code: VerificationSliderRequired,
	VerificationSliderFailed.Code:   VerificationSliderFailed,
	Unauthorized.Code:               Unauthorized,
	InvalidUserID.Code:              InvalidUserID,
	TooManyRequests.Code:            TooManyRequests,
	OnboardingSessionNotFound.Code:  OnboardingSessionNotFound,
	OnboardingBusy.Code:             OnboardingBusy,
	OnboardingFinalized.Code:        OnboardingFinalized,
	OnboardingCancelled.Code:        OnboardingCancelled,
	OnboardingStepInvalid.Code:      OnboardingStepInvalid,
	OnboardingRoleAlreadySet.Code:   OnboardingRoleAlreadySet,
	OnboardingRoleInvalid.Code:      OnboardingRoleInvalid,
	OnboardingModeInvalid.Code:      OnboardingModeInvalid,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
