package flow

// Step 入驻向导的步骤标识，固定枚举，不允许运行时扩展
type Step string

const (
	StepWelcome      Step = "welcome"
	StepPhoneInput   Step = "phone_input"
	StepVerify       Step = "verify"
	StepInfo         Step = "info"
	StepRole         Step = "role"
	StepDriverForm   Step = "driver_form"
	StepDriverDocs   Step = "driver_docs"
	StepMerchantForm Step = "merchant_form"
	StepMerchantDocs Step = "merchant_docs"
)

// IsDocs 资质材料步骤允许跳过，其余步骤不允许
func (s Step) IsDocs() bool {
	return s == StepDriverDocs || s == StepMerchantDocs
}

// Valid 判断是否为已知步骤
func (s Step) Valid() bool {
	switch s {
	case StepWelcome, StepPhoneInput, StepVerify, StepInfo, StepRole,
		StepDriverForm, StepDriverDocs, StepMerchantForm, StepMerchantDocs:
		return true
	}
	return false
}

// Role 合作伙伴身份选择
type Role string

const (
	RoleNone     Role = ""
	RoleDriver   Role = "driver"
	RoleMerchant Role = "merchant"
	RoleBoth     Role = "both"

	// RoleCustomer 远端账号的哨兵值，表示账号存在但还没有真正的合作伙伴身份
	RoleCustomer Role = "customer"
)

// Concrete 是否为一个具体的可入驻身份
func (r Role) Concrete() bool {
	return r == RoleDriver || r == RoleMerchant || r == RoleBoth
}

// ParseRole 解析请求中的身份取值, 只接受具体身份
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if r.Concrete() {
		return r, true
	}
	return RoleNone, false
}

// Mode 入驻模式：全新入驻，或在已有账号上加开第二身份
// 构造后只读
type Mode struct {
	Secondary     bool `json:"secondary"`
	SecondaryRole Role `json:"secondary_role,omitempty"`
}

func FreshMode() Mode {
	return Mode{}
}

// SecondaryMode 加开身份模式，只允许 driver / merchant 单一身份
func SecondaryMode(role Role) (Mode, bool) {
	if role != RoleDriver && role != RoleMerchant {
		return Mode{}, false
	}
	return Mode{Secondary: true, SecondaryRole: role}, true
}
