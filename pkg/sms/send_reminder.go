package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"PartnerGo/config"
)

// SendOnboardingReminderSMS 发送入驻停滞提醒短信
// 提醒模板未配置时跳过，不算错误
func SendOnboardingReminderSMS(ctx context.Context, phone, name string) error {
	cfg := config.Cfg

	if cfg.SMSReminderTemplate == "" {
		return nil
	}

	templateParam := map[string]string{
		"name": name,
	}
	paramJSON, err := json.Marshal(templateParam)
	if err != nil {
		return fmt.Errorf("failed to marshal template param: %w", err)
	}

	return SendSingle(ctx, phone, cfg.SMSSignName, cfg.SMSReminderTemplate, string(paramJSON))
}
