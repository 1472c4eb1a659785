package model

import "testing"

func TestHasName(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"nil user", nil, false},
		{"empty name", &User{}, false},
		{"with name", &User{Name: "张三"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.HasName(); got != tt.want {
				t.Fatalf("HasName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasCommittedRole(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"nil user", nil, false},
		{"zero value", &User{}, false},
		{"customer sentinel", &User{Role: PartnerRoleCustomer}, false},
		{"driver", &User{Role: PartnerRoleDriver}, true},
		{"merchant", &User{Role: PartnerRoleMerchant}, true},
		{"both", &User{Role: PartnerRoleBoth}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.HasCommittedRole(); got != tt.want {
				t.Fatalf("HasCommittedRole() = %v, want %v", got, tt.want)
			}
		})
	}
}
