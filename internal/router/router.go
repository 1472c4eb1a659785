package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"PartnerGo/config"
	"PartnerGo/internal/handler"
	"PartnerGo/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	if config.Cfg.RateLimitEnabled {
		h.Use(middleware.GeneralRateLimitMiddleware())
	}
	if config.Cfg.CSRFEnabled {
		h.Use(middleware.CSRFMiddleware()) // 仅 H5 渠道需要
	}
	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware()) // 认证接口限流
	{
		auth.POST("/token/refresh", handler.RefreshToken)

		// 验证码相关路由
		captcha := auth.Group("/phone", middleware.CaptchaRateLimitMiddleware())
		{
			captcha.POST("/send-code", handler.SendCaptcha)
			captcha.POST("/verify-slider", handler.VerifySlider)
		}
	}

	// 入驻向导路由
	// 会话创建对匿名开放（fresh 模式），加开身份流程在 service 层校验登录态
	onboarding := v1.Group("/onboarding")
	onboarding.Use(middleware.OptionalAuthMiddleware())
	onboarding.Use(middleware.OnboardingNavRateLimitMiddleware())
	{
		sessions := onboarding.Group("/sessions")
		{
			sessions.POST("", handler.StartOnboarding)
			sessions.GET("/:id", handler.GetOnboardingState)
			sessions.POST("/:id/role", handler.SelectOnboardingRole)
			sessions.POST("/:id/advance", handler.AdvanceOnboarding)
			sessions.POST("/:id/retreat", handler.RetreatOnboarding)
			sessions.POST("/:id/skip", handler.SkipOnboarding)
			sessions.POST("/:id/submit-code", handler.SubmitOnboardingCode)
		}
	}
}
