package cache

import (
	"PartnerGo/config"
	"PartnerGo/storage/redis"
	"context"
	"encoding/json"
	"time"

	ri "github.com/redis/go-redis/v9"
)

// 资料草稿：pgo:onboarding:draft:{sessionID}
// 各步骤提交的表单内容先落草稿，收尾时一次性写库。
// TTL: ONBOARDING_DRAFT_HOURS（默认 168 小时），比会话长，
// 会话过期重建后草稿仍可回填。

// ProfileDraft 向导过程中累积的资料
type ProfileDraft struct {
	Name     string `json:"name,omitempty"`
	City     string `json:"city,omitempty"`
	Driver   *DriverDraft   `json:"driver,omitempty"`
	Merchant *MerchantDraft `json:"merchant,omitempty"`
}

type DriverDraft struct {
	LicenseNumber string   `json:"license_number,omitempty"`
	VehicleType   string   `json:"vehicle_type,omitempty"`
	VehiclePlate  string   `json:"vehicle_plate,omitempty"`
	DocsUploaded  bool     `json:"docs_uploaded"`
	DocFileIDs    []string `json:"doc_file_ids,omitempty"`
}

type MerchantDraft struct {
	StoreName       string   `json:"store_name,omitempty"`
	BusinessLicense string   `json:"business_license,omitempty"`
	StoreAddress    string   `json:"store_address,omitempty"`
	Category        string   `json:"category,omitempty"`
	DocsUploaded    bool     `json:"docs_uploaded"`
	DocFileIDs      []string `json:"doc_file_ids,omitempty"`
}

func draftTTL() time.Duration {
	return time.Duration(config.Cfg.OnboardingDraftHours) * time.Hour
}

func SetDraft(ctx context.Context, sessionID string, d *ProfileDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}

	key := redis.Key(ob, "draft", sessionID)
	return redis.Client().Set(ctx, key, data, draftTTL()).Err()
}

// GetDraft 读取草稿，不存在时返回空草稿
func GetDraft(ctx context.Context, sessionID string) (*ProfileDraft, error) {
	key := redis.Key(ob, "draft", sessionID)
	data, err := redis.Client().Get(ctx, key).Bytes()
	if err != nil {
		if err == ri.Nil {
			return &ProfileDraft{}, nil
		}
		return nil, err
	}

	var d ProfileDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func DeleteDraft(ctx context.Context, sessionID string) error {
	key := redis.Key(ob, "draft", sessionID)
	return redis.Client().Del(ctx, key).Err()
}
