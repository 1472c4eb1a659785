package flow

import (
	"context"
	"errors"
	"testing"

	pkgerrors "PartnerGo/pkg/errors"
)

// hookRecorder 记录协作方回调的调用情况
type hookRecorder struct {
	finalized   int
	finalRole   Role
	cancelled   int
	finalizeErr error
}

func (h *hookRecorder) hooks() Hooks {
	return Hooks{
		Finalize: func(_ context.Context, role Role) error {
			h.finalized++
			h.finalRole = role
			return h.finalizeErr
		},
		CancelSecondary: func(_ context.Context) error {
			h.cancelled++
			return nil
		},
	}
}

func advanceTo(t *testing.T, n *Navigator, step Step) {
	t.Helper()
	for i := 0; i < 16; i++ {
		if n.CurrentStep() == step {
			return
		}
		if err := n.Advance(context.Background()); err != nil {
			t.Fatalf("advance towards %q: %v", step, err)
		}
	}
	t.Fatalf("never reached %q, stuck at %q", step, n.CurrentStep())
}

func TestAdvanceWalksFreshPlan(t *testing.T) {
	rec := &hookRecorder{}
	n := NewNavigator(FreshMode(), rec.hooks())

	if got := n.CurrentStep(); got != StepWelcome {
		t.Fatalf("initial step = %q, want %q", got, StepWelcome)
	}

	advanceTo(t, n, StepRole)
	if err := n.SelectRole(RoleDriver); err != nil {
		t.Fatalf("SelectRole: %v", err)
	}
	// 身份选择后位置按标识保持，不因序列变长而漂移
	if got := n.CurrentStep(); got != StepRole {
		t.Fatalf("step after SelectRole = %q, want %q", got, StepRole)
	}

	advanceTo(t, n, StepDriverDocs)
	if rec.finalized != 0 {
		t.Fatal("finalize invoked before last step")
	}
}

func TestAdvanceAtLastStepFinalizesOnce(t *testing.T) {
	rec := &hookRecorder{}
	n := NewNavigator(FreshMode(), rec.hooks())
	advanceTo(t, n, StepRole)
	if err := n.SelectRole(RoleMerchant); err != nil {
		t.Fatalf("SelectRole: %v", err)
	}
	advanceTo(t, n, StepMerchantDocs)

	if err := n.Advance(context.Background()); err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if rec.finalized != 1 || rec.finalRole != RoleMerchant {
		t.Fatalf("finalize calls = %d role = %q, want 1 %q", rec.finalized, rec.finalRole, RoleMerchant)
	}

	// 终止后不再发生任何导航
	if err := n.Advance(context.Background()); !errors.Is(err, pkgerrors.OnboardingFinalized) {
		t.Fatalf("advance after finalize = %v, want OnboardingFinalized", err)
	}
	if rec.finalized != 1 {
		t.Fatalf("finalize calls after second advance = %d, want 1", rec.finalized)
	}
	if got := n.CurrentStep(); got != StepMerchantDocs {
		t.Fatalf("step changed after finalize: %q", got)
	}
}

func TestRetreatAtZeroFreshIsNoop(t *testing.T) {
	rec := &hookRecorder{}
	n := NewNavigator(FreshMode(), rec.hooks())

	if err := n.Retreat(context.Background()); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if got := n.CurrentStep(); got != StepWelcome {
		t.Fatalf("step = %q, want %q", got, StepWelcome)
	}
	if rec.cancelled != 0 {
		t.Fatal("fresh retreat at zero must not cancel")
	}
}

func TestRetreatAtZeroSecondaryCancels(t *testing.T) {
	rec := &hookRecorder{}
	mode, _ := SecondaryMode(RoleMerchant)
	n := NewNavigator(mode, rec.hooks())

	if got := n.CurrentStep(); got != StepMerchantForm {
		t.Fatalf("initial secondary step = %q, want %q", got, StepMerchantForm)
	}
	if err := n.Retreat(context.Background()); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if rec.cancelled != 1 {
		t.Fatalf("cancel calls = %d, want 1", rec.cancelled)
	}
	if got := n.CurrentStep(); got != StepMerchantForm {
		t.Fatalf("position decremented below zero: %q", got)
	}
	if err := n.Advance(context.Background()); !errors.Is(err, pkgerrors.OnboardingCancelled) {
		t.Fatalf("advance after cancel = %v, want OnboardingCancelled", err)
	}
}

func TestRetreatDecrements(t *testing.T) {
	n := NewNavigator(FreshMode(), Hooks{})
	advanceTo(t, n, StepVerify)
	if err := n.Retreat(context.Background()); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if got := n.CurrentStep(); got != StepPhoneInput {
		t.Fatalf("step = %q, want %q", got, StepPhoneInput)
	}
}

func TestJumpToUnknownLabelIsNoop(t *testing.T) {
	n := NewNavigator(FreshMode(), Hooks{})
	if n.JumpTo(StepDriverForm) {
		// role 未选，driver_form 不在序列中
		t.Fatal("jump to absent label succeeded")
	}
	if got := n.CurrentStep(); got != StepWelcome {
		t.Fatalf("step moved on failed jump: %q", got)
	}

	if !n.JumpTo(StepInfo) {
		t.Fatal("jump to present label failed")
	}
	if got := n.CurrentStep(); got != StepInfo {
		t.Fatalf("step = %q, want %q", got, StepInfo)
	}
}

func TestSkipOnlyOnDocsSteps(t *testing.T) {
	rec := &hookRecorder{}
	n := NewNavigator(FreshMode(), rec.hooks())
	advanceTo(t, n, StepRole)
	if err := n.SelectRole(RoleBoth); err != nil {
		t.Fatalf("SelectRole: %v", err)
	}

	if err := n.Skip(context.Background()); !errors.Is(err, pkgerrors.OnboardingStepInvalid) {
		t.Fatalf("skip on %q = %v, want OnboardingStepInvalid", StepRole, err)
	}

	advanceTo(t, n, StepDriverDocs)
	if err := n.Skip(context.Background()); err != nil {
		t.Fatalf("skip on docs: %v", err)
	}
	if got := n.CurrentStep(); got != StepMerchantForm {
		t.Fatalf("step after skip = %q, want %q", got, StepMerchantForm)
	}

	// both 的最后一个资质步骤 skip 等价于收尾
	advanceTo(t, n, StepMerchantDocs)
	if err := n.Skip(context.Background()); err != nil {
		t.Fatalf("skip at last: %v", err)
	}
	if rec.finalized != 1 || rec.finalRole != RoleBoth {
		t.Fatalf("finalize = %d role %q, want 1 %q", rec.finalized, rec.finalRole, RoleBoth)
	}
}

func TestSelectRoleOnlyOnce(t *testing.T) {
	n := NewNavigator(FreshMode(), Hooks{})
	if err := n.SelectRole(RoleDriver); err != nil {
		t.Fatalf("first SelectRole: %v", err)
	}
	if err := n.SelectRole(RoleMerchant); !errors.Is(err, pkgerrors.OnboardingRoleAlreadySet) {
		t.Fatalf("second SelectRole = %v, want OnboardingRoleAlreadySet", err)
	}

	if err := n.SelectRole(RoleNone); !errors.Is(err, pkgerrors.OnboardingRoleInvalid) {
		t.Fatalf("SelectRole(none) = %v, want OnboardingRoleInvalid", err)
	}

	mode, _ := SecondaryMode(RoleDriver)
	sec := NewNavigator(mode, Hooks{})
	if err := sec.SelectRole(RoleMerchant); !errors.Is(err, pkgerrors.OnboardingModeInvalid) {
		t.Fatalf("secondary SelectRole = %v, want OnboardingModeInvalid", err)
	}
}

func TestBusyGatesTriggeringOperations(t *testing.T) {
	n := NewNavigator(FreshMode(), Hooks{})
	if err := n.BeginAsync(); err != nil {
		t.Fatalf("BeginAsync: %v", err)
	}
	if err := n.BeginAsync(); !errors.Is(err, pkgerrors.OnboardingBusy) {
		t.Fatalf("second BeginAsync = %v, want OnboardingBusy", err)
	}
	if err := n.Advance(context.Background()); !errors.Is(err, pkgerrors.OnboardingBusy) {
		t.Fatalf("advance while busy = %v, want OnboardingBusy", err)
	}
	if err := n.Retreat(context.Background()); !errors.Is(err, pkgerrors.OnboardingBusy) {
		t.Fatalf("retreat while busy = %v, want OnboardingBusy", err)
	}
	if err := n.SelectRole(RoleDriver); !errors.Is(err, pkgerrors.OnboardingBusy) {
		t.Fatalf("select role while busy = %v, want OnboardingBusy", err)
	}

	// 失败路径也要清忙碌位
	n.EndAsync()
	if err := n.Advance(context.Background()); err != nil {
		t.Fatalf("advance after EndAsync: %v", err)
	}
}

func TestBusySurvivesRestore(t *testing.T) {
	n := NewNavigator(FreshMode(), Hooks{})
	if err := n.BeginAsync(); err != nil {
		t.Fatalf("BeginAsync: %v", err)
	}

	// 另一个请求从持久化状态恢复出的实例必须看到同一个忙碌位。
	// 忙碌位只在实例内生效，写回之前的窗口由服务层的会话锁覆盖。
	other := Restore(n.State(), Hooks{})
	if !other.Busy() {
		t.Fatal("restored navigator lost the busy flag")
	}
	if err := other.BeginAsync(); !errors.Is(err, pkgerrors.OnboardingBusy) {
		t.Fatalf("BeginAsync on restored busy state = %v, want OnboardingBusy", err)
	}
	if err := other.Advance(context.Background()); !errors.Is(err, pkgerrors.OnboardingBusy) {
		t.Fatalf("advance on restored busy state = %v, want OnboardingBusy", err)
	}
}

func TestRestoreRepairsCorruptStep(t *testing.T) {
	st := State{Mode: FreshMode(), Role: RoleNone, Step: StepDriverForm} // 不属于当前序列
	n := Restore(st, Hooks{})
	if got := n.CurrentStep(); got != StepWelcome {
		t.Fatalf("restored step = %q, want %q", got, StepWelcome)
	}
}

func TestStateRoundTrip(t *testing.T) {
	rec := &hookRecorder{}
	n := NewNavigator(FreshMode(), rec.hooks())
	advanceTo(t, n, StepInfo)

	restored := Restore(n.State(), rec.hooks())
	if got := restored.CurrentStep(); got != StepInfo {
		t.Fatalf("restored step = %q, want %q", got, StepInfo)
	}
	if restored.Progress() != n.Progress() {
		t.Fatalf("progress mismatch after restore")
	}
}
