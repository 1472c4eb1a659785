package flow

import (
	"reflect"
	"testing"
)

func TestPlanFresh(t *testing.T) {
	head := []Step{StepWelcome, StepPhoneInput, StepVerify, StepInfo, StepRole}

	tests := []struct {
		name    string
		role    Role
		wantLen int
		tail    []Step
	}{
		{"none", RoleNone, 5, nil},
		{"driver", RoleDriver, 7, []Step{StepDriverForm, StepDriverDocs}},
		{"merchant", RoleMerchant, 7, []Step{StepMerchantForm, StepMerchantDocs}},
		{"both", RoleBoth, 9, []Step{StepDriverForm, StepDriverDocs, StepMerchantForm, StepMerchantDocs}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Plan(FreshMode(), tt.role)
			if len(plan) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(plan), tt.wantLen)
			}
			if !reflect.DeepEqual(plan[:5], head) {
				t.Errorf("head = %v, want %v", plan[:5], head)
			}
			if !reflect.DeepEqual(plan[5:], append([]Step{}, tt.tail...)) {
				t.Errorf("tail = %v, want %v", plan[5:], tt.tail)
			}
		})
	}
}

func TestPlanSecondary(t *testing.T) {
	tests := []struct {
		role Role
		want []Step
	}{
		{RoleDriver, []Step{StepDriverForm, StepDriverDocs}},
		{RoleMerchant, []Step{StepMerchantForm, StepMerchantDocs}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			mode, ok := SecondaryMode(tt.role)
			if !ok {
				t.Fatalf("SecondaryMode(%q) rejected", tt.role)
			}
			plan := Plan(mode, RoleNone)
			if !reflect.DeepEqual(plan, tt.want) {
				t.Fatalf("plan = %v, want %v", plan, tt.want)
			}
			if IndexOf(plan, StepWelcome) != -1 {
				t.Errorf("secondary plan must not contain %q", StepWelcome)
			}
		})
	}
}

func TestSecondaryModeRejectsNonSingleRoles(t *testing.T) {
	for _, role := range []Role{RoleNone, RoleBoth, RoleCustomer, Role("rider")} {
		if _, ok := SecondaryMode(role); ok {
			t.Errorf("SecondaryMode(%q) accepted, want rejected", role)
		}
	}
}

func TestPlanIsRecomputedNotShared(t *testing.T) {
	a := Plan(FreshMode(), RoleDriver)
	a[0] = StepRole
	b := Plan(FreshMode(), RoleDriver)
	if b[0] != StepWelcome {
		t.Fatal("Plan returned shared backing storage")
	}
}

func TestProgressPercent(t *testing.T) {
	plan := Plan(FreshMode(), RoleBoth) // 9 步

	tests := []struct {
		step Step
		want int
	}{
		{StepWelcome, 100 * 1 / 9},
		{StepRole, 100 * 5 / 9},
		{StepMerchantDocs, 100},
	}
	for _, tt := range tests {
		if got := ProgressPercent(plan, tt.step); got != tt.want {
			t.Errorf("ProgressPercent(%q) = %d, want %d", tt.step, got, tt.want)
		}
	}

	if got := ProgressPercent(plan, Step("bogus")); got != 0 {
		t.Errorf("ProgressPercent(bogus) = %d, want 0", got)
	}
}

func TestStepIsDocs(t *testing.T) {
	docs := map[Step]bool{StepDriverDocs: true, StepMerchantDocs: true}
	for _, s := range Plan(FreshMode(), RoleBoth) {
		if s.IsDocs() != docs[s] {
			t.Errorf("%q IsDocs = %v, want %v", s, s.IsDocs(), docs[s])
		}
	}
}
