package dto

import "encoding/json"

// ========== 入驻向导相关 DTO ==========

// StartOnboardingRequest 创建向导会话请求
// mode 为 secondary 时必须携带 role（driver / merchant），且要求已登录
type StartOnboardingRequest struct {
	Mode string `json:"mode" binding:"required"` // fresh, secondary
	Role string `json:"role,omitempty"`
}

// OnboardingStateData 暴露给渲染层的全部状态：
// 当前步骤、进度（0-100）、忙碌位，以及可执行的导航操作结果
type OnboardingStateData struct {
	SessionID     string   `json:"session_id"`
	Mode          string   `json:"mode"` // fresh, secondary
	SecondaryRole string   `json:"secondary_role,omitempty"`
	Role          string   `json:"role,omitempty"`
	Step          string   `json:"step"`
	Plan          []string `json:"plan"`
	Progress      int      `json:"progress"` // 0-100
	Busy          bool     `json:"busy"`
	Finalized     bool     `json:"finalized"`
	Cancelled     bool     `json:"cancelled"`
	Destination   string   `json:"destination,omitempty"` // 收尾后的落地页
}

// AdvanceRequest 前进请求，payload 按当前步骤解释
type AdvanceRequest struct {
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SelectRoleRequest 身份选择请求
type SelectRoleRequest struct {
	Role string `json:"role" binding:"required"` // driver, merchant, both
}

// InfoPayload 资料填写步骤的载荷
type InfoPayload struct {
	Name string `json:"name" binding:"required"`
	City string `json:"city,omitempty"`
}

// DriverFormPayload 骑手表单步骤的载荷
type DriverFormPayload struct {
	LicenseNumber string `json:"license_number" binding:"required"`
	VehicleType   string `json:"vehicle_type" binding:"required"` // bike, ebike, car
	VehiclePlate  string `json:"vehicle_plate,omitempty"`
}

// MerchantFormPayload 商家表单步骤的载荷
type MerchantFormPayload struct {
	StoreName       string `json:"store_name" binding:"required"`
	BusinessLicense string `json:"business_license" binding:"required"`
	StoreAddress    string `json:"store_address,omitempty"`
	Category        string `json:"category,omitempty"`
}

// DocsPayload 资质材料步骤的载荷，材料为可选项
type DocsPayload struct {
	FileIDs []string `json:"file_ids,omitempty"`
}
