package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"PartnerGo/internal/middleware"
	"PartnerGo/internal/model/dto"
	"PartnerGo/internal/service"
	"PartnerGo/pkg/response"
)

// currentUserPublicID 从上下文取当前登录用户，匿名请求返回 0
func currentUserPublicID(ctx context.Context, c *app.RequestContext) int64 {
	uidStr, ok := middleware.GetUserID(ctx, c)
	if !ok {
		return 0
	}

	uid, err := strconv.ParseInt(uidStr, 10, 64)
	if err != nil {
		return 0
	}
	return uid
}

// StartOnboarding 创建入驻向导会话
// POST /v1/onboarding/sessions
func StartOnboarding(ctx context.Context, c *app.RequestContext) {
	var req dto.StartOnboardingRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Onboarding().StartSession(ctx, &req, currentUserPublicID(ctx, c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetOnboardingState 查询向导会话状态
// GET /v1/onboarding/sessions/:id
func GetOnboardingState(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	result, err := service.Onboarding().GetState(ctx, sessionID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// SelectOnboardingRole 身份选择
// POST /v1/onboarding/sessions/:id/role
func SelectOnboardingRole(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	var req dto.SelectRoleRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Onboarding().SelectRole(ctx, sessionID, req.Role)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// AdvanceOnboarding 前进一步
// POST /v1/onboarding/sessions/:id/advance
func AdvanceOnboarding(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	var req dto.AdvanceRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Onboarding().Advance(ctx, sessionID, req.Payload)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// RetreatOnboarding 后退一步
// POST /v1/onboarding/sessions/:id/retreat
func RetreatOnboarding(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	result, err := service.Onboarding().Retreat(ctx, sessionID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// SkipOnboarding 跳过当前步骤
// POST /v1/onboarding/sessions/:id/skip
func SkipOnboarding(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	result, err := service.Onboarding().Skip(ctx, sessionID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// SubmitOnboardingCode 验证码校验并对账
// POST /v1/onboarding/sessions/:id/submit-code
func SubmitOnboardingCode(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	var req dto.VerifyCodeRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Onboarding().SubmitCode(ctx, sessionID, req.Phone, req.Code)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
