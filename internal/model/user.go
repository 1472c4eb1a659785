package model

// UserStatus 用户状态枚举
type UserStatus string

const (
	UserStatusOnboarding UserStatus = "onboarding" // 入驻向导进行中
	UserStatusActive     UserStatus = "active"     // 入驻完成，正常使用
	UserStatusSuspended  UserStatus = "suspended"  // 风控或运营冻结
)

// PartnerRole 账号已提交的合作身份。
// customer 是哨兵值：账号已存在（比如只下过单的顾客）但还没有真实的合作身份。
type PartnerRole string

const (
	PartnerRoleCustomer PartnerRole = "customer"
	PartnerRoleDriver   PartnerRole = "driver"
	PartnerRoleMerchant PartnerRole = "merchant"
	PartnerRoleBoth     PartnerRole = "both"
)

// User 用户模型

type User struct {
	BaseModel
	PublicID    int64       `gorm:"uniqueIndex;not null" json:"public_id"`
	Name        string      `gorm:"type:varchar(64);not null;default:''" json:"name"`
	PhoneCipher []byte      `gorm:"type:bytea" json:"-"`                // 手机号密文，不对外暴露
	PhoneHash   *string     `gorm:"uniqueIndex;type:char(64)" json:"-"` // 手机号哈希，用于查询
	Role        PartnerRole `gorm:"type:varchar(16);not null;default:'customer';index:idx_users_role" json:"role"`
	Status      UserStatus  `gorm:"type:varchar(16);not null;default:'onboarding';index:idx_users_status" json:"status"`
	City        string      `gorm:"type:varchar(64);not null;default:''" json:"city"`

	// 入驻完成标记，Finalize 幂等提交的落点
	OnboardedAt *int64 `gorm:"type:bigint" json:"onboarded_at,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// HasName 远端快照是否携带展示姓名
func (u *User) HasName() bool {
	return u != nil && u.Name != ""
}

// HasCommittedRole 是否已提交真实合作身份（customer 哨兵不算）
func (u *User) HasCommittedRole() bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case PartnerRoleDriver, PartnerRoleMerchant, PartnerRoleBoth:
		return true
	}
	return false
}

// StatusToStringMap 状态到响应字符串
var StatusToStringMap = map[UserStatus]string{
	UserStatusOnboarding: "onboarding",
	UserStatusActive:     "active",
	UserStatusSuspended:  "suspended",
}
