package flow

import (
	"context"
	"testing"
)

// 决策表的四种组合加异常快照兜底，全部在 fresh/both 场景下验证，
// 同时覆盖规格里的两个具名场景（Musa 回到身份选择、新用户落到资料填写）。
func TestReconcileDecisionTable(t *testing.T) {
	tests := []struct {
		name        string
		snap        *AccountSnapshot
		wantOutcome ReconcileOutcome
		wantStep    Step
		wantFinal   int
		wantRole    Role
	}{
		{
			name:        "name and committed role finalizes immediately",
			snap:        &AccountSnapshot{Name: "Musa", Role: RoleDriver},
			wantOutcome: ReconcileFinalized,
			wantFinal:   1,
			wantRole:    RoleDriver,
		},
		{
			name:        "name with customer sentinel jumps to role",
			snap:        &AccountSnapshot{Name: "Musa", Role: RoleCustomer},
			wantOutcome: ReconcileAtRole,
			wantStep:    StepRole,
		},
		{
			name:        "name without any role jumps to role",
			snap:        &AccountSnapshot{Name: "Musa"},
			wantOutcome: ReconcileAtRole,
			wantStep:    StepRole,
		},
		{
			name:        "no name ignores committed role",
			snap:        &AccountSnapshot{Role: RoleMerchant},
			wantOutcome: ReconcileAtInfo,
			wantStep:    StepInfo,
		},
		{
			name:        "empty snapshot treated as new user",
			snap:        &AccountSnapshot{},
			wantOutcome: ReconcileAtInfo,
			wantStep:    StepInfo,
		},
		{
			name:        "nil snapshot falls back to new user branch",
			snap:        nil,
			wantOutcome: ReconcileAtInfo,
			wantStep:    StepInfo,
		},
		{
			name:        "unknown role value is not committed",
			snap:        &AccountSnapshot{Name: "Musa", Role: Role("vip")},
			wantOutcome: ReconcileAtRole,
			wantStep:    StepRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &hookRecorder{}
			n := NewNavigator(FreshMode(), rec.hooks())
			advanceTo(t, n, StepVerify)

			outcome, err := n.Reconcile(context.Background(), tt.snap)
			if err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			if outcome != tt.wantOutcome {
				t.Fatalf("outcome = %q, want %q", outcome, tt.wantOutcome)
			}
			if rec.finalized != tt.wantFinal {
				t.Fatalf("finalize calls = %d, want %d", rec.finalized, tt.wantFinal)
			}
			if tt.wantFinal > 0 && rec.finalRole != tt.wantRole {
				t.Fatalf("finalized role = %q, want %q", rec.finalRole, tt.wantRole)
			}
			if tt.wantStep != "" && n.CurrentStep() != tt.wantStep {
				t.Fatalf("step = %q, want %q", n.CurrentStep(), tt.wantStep)
			}
		})
	}
}

// both 场景下位置必须落在 role（索引 4）而不是 info（索引 3）
func TestReconcileJumpTargetsInBothPlan(t *testing.T) {
	rec := &hookRecorder{}
	n := NewNavigator(FreshMode(), rec.hooks())
	advanceTo(t, n, StepVerify)

	if _, err := n.Reconcile(context.Background(), &AccountSnapshot{Name: "Musa", Role: RoleCustomer}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	plan := Plan(FreshMode(), RoleBoth)
	if idx := IndexOf(plan, n.CurrentStep()); idx != 4 {
		t.Fatalf("index in both-plan = %d, want 4", idx)
	}
}

func TestReconcileRunsWhileBusy(t *testing.T) {
	rec := &hookRecorder{}
	n := NewNavigator(FreshMode(), rec.hooks())
	advanceTo(t, n, StepVerify)

	// 提交验证码的异步操作持有忙碌位，协调必须照常工作
	if err := n.BeginAsync(); err != nil {
		t.Fatalf("BeginAsync: %v", err)
	}
	outcome, err := n.Reconcile(context.Background(), &AccountSnapshot{Name: "Aisha", Role: RoleMerchant})
	if err != nil {
		t.Fatalf("Reconcile while busy: %v", err)
	}
	if outcome != ReconcileFinalized || rec.finalized != 1 {
		t.Fatalf("outcome = %q finalize = %d, want finalized once", outcome, rec.finalized)
	}
	n.EndAsync()
}

func TestReconcileRejectedAfterFinalize(t *testing.T) {
	rec := &hookRecorder{}
	n := NewNavigator(FreshMode(), rec.hooks())
	advanceTo(t, n, StepVerify)

	if _, err := n.Reconcile(context.Background(), &AccountSnapshot{Name: "Musa", Role: RoleBoth}); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	if _, err := n.Reconcile(context.Background(), &AccountSnapshot{Name: "Musa", Role: RoleBoth}); err == nil {
		t.Fatal("second Reconcile accepted after finalize")
	}
	if rec.finalized != 1 {
		t.Fatalf("finalize calls = %d, want 1", rec.finalized)
	}
}
