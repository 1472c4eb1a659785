package sms

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"PartnerGo/config"
	"PartnerGo/pkg/errors"
	"PartnerGo/pkg/logger"
)

// Client 短信客户端接口
// templateParam 为 JSON 字符串
type Client interface {
	SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error
}

var (
	smsClient Client
	smsOnce   sync.Once
	smsErr    error
)

func Init() error {
	smsOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.SMSProvider {
		case "aliyun":
			smsClient, smsErr = NewAliyunClient()
		case "mock":
			smsClient = NewMockClient()
		default:
			smsErr = errors.ErrUnsupportedSMSProvider
		}

		if smsErr != nil {
			logger.Logger.Error("Failed to initialize SMS client", zap.Error(smsErr))
			return
		}

		logger.Logger.Info("SMS client initialized successfully",
			zap.String("provider", cfg.SMSProvider),
		)
	})

	return smsErr
}

func GetClient() Client {
	if smsClient == nil {
		panic("SMS client not initialized, call sms.Init() first")
	}
	return smsClient
}

func SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error {
	return GetClient().SendSingle(ctx, phone, signName, templateCode, templateParam)
}
