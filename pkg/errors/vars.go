package errors

import "errors"

// 内部基础设施错误，不直接面向客户端。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected token signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrUserIDNotFound               = errors.New("user id not found in token")
	ErrUnsupportedCaptchaProvider   = errors.New("unsupported captcha provider")
	ErrUnsupportedSMSProvider       = errors.New("unsupported sms provider")
	ErrCaptchaTokenRequired         = errors.New("captcha verify token is required")
	ErrCaptchaResponseNil           = errors.New("captcha verify response is nil")
	ErrCaptchaVerificationFailed    = errors.New("captcha verification failed")
)
