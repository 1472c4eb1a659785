package model

// ApplicationStatus 资质申请状态
type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "draft"     // 表单已提交，材料未齐
	ApplicationStatusSubmitted ApplicationStatus = "submitted" // 材料已提交，等待审核
	ApplicationStatusSkipped   ApplicationStatus = "skipped"   // 材料被跳过，入驻后补
)

// DriverApplication 骑手/司机入驻申请，driver_form 与 driver_docs 两步的落库载体
type DriverApplication struct {
	BaseModel
	PublicID      int64             `gorm:"uniqueIndex;not null" json:"public_id"`
	UserPublicID  int64             `gorm:"index;not null" json:"user_public_id"`
	LicenseNumber string            `gorm:"type:varchar(64);not null;default:''" json:"license_number"`
	VehicleType   string            `gorm:"type:varchar(32);not null;default:''" json:"vehicle_type"` // bike, ebike, car
	VehiclePlate  string            `gorm:"type:varchar(16);not null;default:''" json:"vehicle_plate"`
	DocsUploaded  bool              `gorm:"not null;default:false" json:"docs_uploaded"`
	DocFileIDs    string            `gorm:"type:text;not null;default:''" json:"doc_file_ids"` // 逗号分隔的文件 ID
	Status        ApplicationStatus `gorm:"type:varchar(16);not null;default:'draft'" json:"status"`
}

func (DriverApplication) TableName() string {
	return "driver_applications"
}

// MerchantApplication 商家入驻申请，merchant_form 与 merchant_docs 两步的落库载体
type MerchantApplication struct {
	BaseModel
	PublicID       int64             `gorm:"uniqueIndex;not null" json:"public_id"`
	UserPublicID   int64             `gorm:"index;not null" json:"user_public_id"`
	StoreName      string            `gorm:"type:varchar(128);not null;default:''" json:"store_name"`
	BusinessLicense string           `gorm:"type:varchar(64);not null;default:''" json:"business_license"`
	StoreAddress   string            `gorm:"type:varchar(256);not null;default:''" json:"store_address"`
	Category       string            `gorm:"type:varchar(32);not null;default:''" json:"category"`
	DocsUploaded   bool              `gorm:"not null;default:false" json:"docs_uploaded"`
	DocFileIDs     string            `gorm:"type:text;not null;default:''" json:"doc_file_ids"` // 逗号分隔的文件 ID
	Status         ApplicationStatus `gorm:"type:varchar(16);not null;default:'draft'" json:"status"`
}

func (MerchantApplication) TableName() string {
	return "merchant_applications"
}
