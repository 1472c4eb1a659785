package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"PartnerGo/internal/cache"
	"PartnerGo/internal/flow"
	"PartnerGo/internal/model"
	"PartnerGo/internal/model/dto"
	"PartnerGo/internal/queue"
	pkgerrors "PartnerGo/pkg/errors"
	"PartnerGo/pkg/logger"
	"PartnerGo/pkg/metrics"
	"PartnerGo/pkg/token"
	"PartnerGo/utils"
)

var (
	onboardingService *OnboardingService
	onboardingOnce    sync.Once
)

func Onboarding() *OnboardingService {
	onboardingOnce.Do(func() {
		onboardingService = &OnboardingService{}
	})
	return onboardingService
}

// OnboardingService 入驻向导的会话编排层。
// 导航语义全部在 flow 包里，这里只负责加载/持久化会话、
// 接线收尾与取消回调、以及验证码提交这一个异步操作。
type OnboardingService struct{}

const (
	modeFresh     = "fresh"
	modeSecondary = "secondary"

	destinationHome         = "home"
	destinationMerchantHome = "merchant-home"

	sessionLockTTL = 30 * time.Second
)

// lockSession 串行化同一会话上的并发变更请求。
// 忙碌位随会话持久化，但 load 到写回之间是丢失更新窗口：
// 两个请求可以同时读到 Busy=false 并都通过门禁。
// 所以所有读改写操作必须先抢到会话锁。
func (s *OnboardingService) lockSession(ctx context.Context, sessionID string) (func(), error) {
	key := "onboarding:session:" + sessionID

	locked, err := cache.TryLock(ctx, key, sessionLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !locked {
		return nil, pkgerrors.OnboardingBusy
	}

	return func() {
		if err := cache.Unlock(context.Background(), key); err != nil {
			logger.Logger.Warn("Failed to release session lock",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}, nil
}

// StartSession 创建向导会话
// fresh 模式匿名发起；secondary 模式要求已登录且已有合作身份
func (s *OnboardingService) StartSession(
	ctx context.Context,
	req *dto.StartOnboardingRequest,
	userPublicID int64,
) (*dto.OnboardingStateData, error) {
	var mode flow.Mode

	switch req.Mode {
	case modeFresh:
		mode = flow.FreshMode()
	case modeSecondary:
		role, ok := flow.ParseRole(req.Role)
		if !ok {
			return nil, pkgerrors.OnboardingRoleInvalid
		}
		mode, ok = flow.SecondaryMode(role)
		if !ok {
			return nil, pkgerrors.OnboardingRoleInvalid
		}
		if userPublicID == 0 {
			return nil, pkgerrors.Unauthorized
		}
	default:
		return nil, pkgerrors.OnboardingModeInvalid
	}

	sess := &cache.OnboardingSession{
		ID:           uuid.NewString(),
		UserPublicID: userPublicID,
	}

	if req.Mode == modeSecondary {
		user, err := Profile().GetByPublicID(ctx, userPublicID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, pkgerrors.Unauthorized
		}
		if user.PhoneHash != nil {
			sess.PhoneHash = *user.PhoneHash
		}
	}

	nav := flow.NewNavigator(mode, s.hooksFor(sess))
	sess.Nav = nav.State()

	if err := cache.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	metrics.RecordOnboardingStarted(ctx, req.Mode)
	logger.Logger.Info("Onboarding session started",
		zap.String("session_id", sess.ID),
		zap.String("mode", req.Mode),
		zap.Int64("user_public_id", userPublicID),
	)

	return s.stateData(sess), nil
}

// GetState 查询会话状态
func (s *OnboardingService) GetState(ctx context.Context, sessionID string) (*dto.OnboardingStateData, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.stateData(sess), nil
}

// SelectRole 身份选择，只允许一次
func (s *OnboardingService) SelectRole(ctx context.Context, sessionID, roleStr string) (*dto.OnboardingStateData, error) {
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	role, ok := flow.ParseRole(roleStr)
	if !ok || !role.Concrete() {
		return nil, pkgerrors.OnboardingRoleInvalid
	}

	nav := flow.Restore(sess.Nav, s.hooksFor(sess))
	if err := nav.SelectRole(role); err != nil {
		return nil, err
	}

	sess.Nav = nav.State()
	if err := cache.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return s.stateData(sess), nil
}

// Advance 前进一步，payload 按当前步骤解释并累积到草稿
// 验证码步骤只能通过 SubmitCode 前进
func (s *OnboardingService) Advance(
	ctx context.Context,
	sessionID string,
	payload json.RawMessage,
) (*dto.OnboardingStateData, error) {
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	nav := flow.Restore(sess.Nav, s.hooksFor(sess))

	step := nav.CurrentStep()
	if step == flow.StepVerify {
		return nil, pkgerrors.OnboardingStepInvalid
	}

	if err := s.absorbPayload(ctx, sess, step, payload); err != nil {
		return nil, err
	}

	if err := nav.Advance(ctx); err != nil {
		return nil, err
	}

	sess.Nav = nav.State()
	if err := cache.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return s.stateData(sess), nil
}

// Retreat 后退一步
// 加开身份流程在首步后退视为取消
func (s *OnboardingService) Retreat(ctx context.Context, sessionID string) (*dto.OnboardingStateData, error) {
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	nav := flow.Restore(sess.Nav, s.hooksFor(sess))
	if err := nav.Retreat(ctx); err != nil {
		return nil, err
	}

	sess.Nav = nav.State()

	// 取消的加开流程连会话一起清掉，之后查询按不存在处理
	if sess.Nav.Cancelled {
		if err := cache.DeleteSession(ctx, sess.ID); err != nil {
			logger.Logger.Warn("Failed to delete cancelled session",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		}
		return s.stateData(sess), nil
	}

	if err := cache.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return s.stateData(sess), nil
}

// Skip 跳过当前步骤，仅资质材料步骤可跳过
func (s *OnboardingService) Skip(ctx context.Context, sessionID string) (*dto.OnboardingStateData, error) {
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	nav := flow.Restore(sess.Nav, s.hooksFor(sess))
	if err := nav.Skip(ctx); err != nil {
		return nil, err
	}

	sess.Nav = nav.State()
	if err := cache.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return s.stateData(sess), nil
}

// SubmitCode 验证码提交：向导里唯一的异步操作
// 核对验证码、绑定账号、然后按远端快照对账定位。
// 忙碌位在整个过程中置起并随会话持久化，操作期间其他导航请求会被拒绝
func (s *OnboardingService) SubmitCode(
	ctx context.Context,
	sessionID string,
	phone string,
	code string,
) (*dto.VerifyCodeResponse, error) {
	if !utils.ValidatePhone(phone) {
		return nil, pkgerrors.PhoneInvalid
	}

	// 会话锁覆盖整个复合操作，忙碌位只是暴露给客户端的状态
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	nav := flow.Restore(sess.Nav, s.hooksFor(sess))
	if nav.CurrentStep() != flow.StepVerify {
		return nil, pkgerrors.OnboardingStepInvalid
	}

	if err := nav.BeginAsync(); err != nil {
		return nil, err
	}

	sess.Nav = nav.State()
	if err := cache.SetSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	resp, opErr := s.submitCodeLocked(ctx, sess, nav, phone, code)

	nav.EndAsync()
	sess.Nav = nav.State()
	if err := cache.SetSession(ctx, sess); err != nil {
		logger.Logger.Error("Failed to persist session after code submit",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}

	if opErr != nil {
		return nil, opErr
	}

	resp.State = *s.stateData(sess)
	return resp, nil
}

// submitCodeLocked 置起忙碌位之后的实际工作
func (s *OnboardingService) submitCodeLocked(
	ctx context.Context,
	sess *cache.OnboardingSession,
	nav *flow.Navigator,
	phone string,
	code string,
) (*dto.VerifyCodeResponse, error) {
	if err := Verification().VerifyCaptcha(ctx, phone, code); err != nil {
		return nil, err
	}

	phoneHash := utils.HashPhone(phone)

	// 会话已绑定账号时，提交的手机号必须还是同一个账号
	if sess.UserPublicID != 0 {
		existing, err := Profile().GetByPhoneHash(ctx, phoneHash)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.PublicID != sess.UserPublicID {
			return nil, pkgerrors.PhoneAlreadyRegistered
		}
	}

	user, isNewUser, err := Profile().EnsureUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	sess.UserPublicID = user.PublicID
	sess.PhoneHash = phoneHash

	// 远端快照对账：已提交身份直接收尾，有姓名跳身份选择，否则回资料步骤
	snap := Profile().Snapshot(user)
	outcome, err := nav.Reconcile(ctx, snap)
	if err != nil {
		return nil, err
	}

	metrics.RecordReconcileOutcome(ctx, string(outcome))
	logger.Logger.Info("Onboarding session reconciled",
		zap.String("session_id", sess.ID),
		zap.Int64("user_public_id", user.PublicID),
		zap.String("outcome", string(outcome)),
	)

	userIDStr := fmt.Sprintf("%d", user.PublicID)
	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := cache.SetRefreshToken(ctx, userIDStr, refreshToken); err != nil {
		logger.Logger.Warn("Failed to store refresh token in Redis",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
	}

	// 对账可能已收尾并更新了账号，取最新状态回给客户端
	if outcome == flow.ReconcileFinalized {
		if fresh, err := Profile().GetByPublicID(ctx, user.PublicID); err == nil && fresh != nil {
			user = fresh
		}
	}

	return &dto.VerifyCodeResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User: dto.AuthUserSnapshot{
			ID:            userIDStr,
			Name:          user.Name,
			Role:          string(user.Role),
			Status:        model.StatusToStringMap[user.Status],
			PhoneVerified: true,
			IsNewUser:     isNewUser,
		},
	}, nil
}

// absorbPayload 把步骤载荷写进资料草稿
// 资料步骤（姓名、城市）额外触发一次异步落库
func (s *OnboardingService) absorbPayload(
	ctx context.Context,
	sess *cache.OnboardingSession,
	step flow.Step,
	payload json.RawMessage,
) error {
	if len(payload) == 0 {
		return nil
	}

	draft, err := cache.GetDraft(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}

	switch step {
	case flow.StepInfo:
		var p dto.InfoPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return pkgerrors.OnboardingStepInvalid
		}
		draft.Name = p.Name
		draft.City = p.City

		Profile().SyncDraftAsync(sess.ID, sess.UserPublicID, map[string]interface{}{
			"name": p.Name,
			"city": p.City,
		})

	case flow.StepDriverForm:
		var p dto.DriverFormPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return pkgerrors.OnboardingStepInvalid
		}
		if draft.Driver == nil {
			draft.Driver = &cache.DriverDraft{}
		}
		draft.Driver.LicenseNumber = p.LicenseNumber
		draft.Driver.VehicleType = p.VehicleType
		draft.Driver.VehiclePlate = p.VehiclePlate

	case flow.StepMerchantForm:
		var p dto.MerchantFormPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return pkgerrors.OnboardingStepInvalid
		}
		if draft.Merchant == nil {
			draft.Merchant = &cache.MerchantDraft{}
		}
		draft.Merchant.StoreName = p.StoreName
		draft.Merchant.BusinessLicense = p.BusinessLicense
		draft.Merchant.StoreAddress = p.StoreAddress
		draft.Merchant.Category = p.Category

	case flow.StepDriverDocs:
		var p dto.DocsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return pkgerrors.OnboardingStepInvalid
		}
		if draft.Driver == nil {
			draft.Driver = &cache.DriverDraft{}
		}
		draft.Driver.DocsUploaded = true
		draft.Driver.DocFileIDs = p.FileIDs

	case flow.StepMerchantDocs:
		var p dto.DocsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return pkgerrors.OnboardingStepInvalid
		}
		if draft.Merchant == nil {
			draft.Merchant = &cache.MerchantDraft{}
		}
		draft.Merchant.DocsUploaded = true
		draft.Merchant.DocFileIDs = p.FileIDs

	default:
		// 欢迎页等步骤没有载荷，静默忽略
		return nil
	}

	if err := cache.SetDraft(ctx, sess.ID, draft); err != nil {
		return fmt.Errorf("failed to persist draft: %w", err)
	}
	return nil
}

// hooksFor 为会话接线导航器回调
// Finalize 负责落库提交、发布完成事件、决定落地页；只会被调用一次
func (s *OnboardingService) hooksFor(sess *cache.OnboardingSession) flow.Hooks {
	return flow.Hooks{
		Finalize: func(ctx context.Context, role flow.Role) error {
			if sess.UserPublicID == 0 {
				return pkgerrors.Unauthorized
			}

			draft, err := cache.GetDraft(ctx, sess.ID)
			if err != nil {
				return fmt.Errorf("failed to load draft for finalize: %w", err)
			}

			if err := Profile().CommitOnboarding(ctx, sess.UserPublicID, role, draft); err != nil {
				return err
			}

			sess.Destination = destinationFor(role)

			if err := queue.PublishOnboardingCompleted(model.OnboardingCompletedMessage{
				SessionID:    sess.ID,
				UserPublicID: sess.UserPublicID,
				Role:         string(role),
				Secondary:    sess.Nav.Mode.Secondary,
				Destination:  sess.Destination,
			}); err != nil {
				// 事件丢失不回滚已提交的入驻
				logger.Logger.Warn("Failed to publish onboarding completed event",
					zap.String("session_id", sess.ID),
					zap.Error(err),
				)
			}

			if err := cache.DeleteDraft(ctx, sess.ID); err != nil {
				logger.Logger.Warn("Failed to delete draft after finalize",
					zap.String("session_id", sess.ID),
					zap.Error(err),
				)
			}

			metrics.RecordOnboardingFinalized(ctx, string(role), sess.Nav.Mode.Secondary)
			logger.Logger.Info("Onboarding finalized",
				zap.String("session_id", sess.ID),
				zap.Int64("user_public_id", sess.UserPublicID),
				zap.String("role", string(role)),
				zap.String("destination", sess.Destination),
			)

			return nil
		},
		CancelSecondary: func(ctx context.Context) error {
			if err := cache.DeleteDraft(ctx, sess.ID); err != nil {
				logger.Logger.Warn("Failed to delete draft after cancel",
					zap.String("session_id", sess.ID),
					zap.Error(err),
				)
			}

			metrics.RecordOnboardingCancelled(ctx)
			logger.Logger.Info("Secondary onboarding cancelled",
				zap.String("session_id", sess.ID),
				zap.Int64("user_public_id", sess.UserPublicID),
			)
			return nil
		},
	}
}

func destinationFor(role flow.Role) string {
	if roleIncludesMerchant(role) {
		return destinationMerchantHome
	}
	return destinationHome
}

func (s *OnboardingService) load(ctx context.Context, sessionID string) (*cache.OnboardingSession, error) {
	if sessionID == "" {
		return nil, pkgerrors.OnboardingSessionNotFound
	}

	sess, err := cache.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return nil, pkgerrors.OnboardingSessionNotFound
	}
	return sess, nil
}

// stateData 把会话状态展开成渲染层需要的结构
// 序列与进度即时重算，不做持久化
func (s *OnboardingService) stateData(sess *cache.OnboardingSession) *dto.OnboardingStateData {
	st := sess.Nav

	plan := flow.Plan(st.Mode, st.Role)
	steps := make([]string, len(plan))
	for i, p := range plan {
		steps[i] = string(p)
	}

	mode := modeFresh
	secondaryRole := ""
	if st.Mode.Secondary {
		mode = modeSecondary
		secondaryRole = string(st.Mode.SecondaryRole)
	}

	return &dto.OnboardingStateData{
		SessionID:     sess.ID,
		Mode:          mode,
		SecondaryRole: secondaryRole,
		Role:          string(st.Role),
		Step:          string(st.Step),
		Plan:          steps,
		Progress:      flow.ProgressPercent(plan, st.Step),
		Busy:          st.Busy,
		Finalized:     st.Finalized,
		Cancelled:     st.Cancelled,
		Destination:   sess.Destination,
	}
}
