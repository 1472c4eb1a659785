package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"PartnerGo/internal/cache"
	"PartnerGo/internal/model"
	"PartnerGo/pkg/logger"
	"PartnerGo/pkg/metrics"
	"PartnerGo/pkg/sms"
	"PartnerGo/storage/mq"
	"PartnerGo/utils"
)

// ProfileSyncApplier 资料同步消息的落库方，worker 启动时注入
// service 层不能被 queue 包直接引用，否则成环
type ProfileSyncApplier interface {
	ApplySyncMessage(ctx context.Context, msg *model.ProfileSyncMessage) error
	GetPhoneBySessionUser(ctx context.Context, userPublicID int64) (string, string, error)
}

var profileApplier ProfileSyncApplier

func SetProfileSyncApplier(a ProfileSyncApplier) {
	profileApplier = a
}

// StartProfileSyncConsumer 消费资料草稿同步消息
func StartProfileSyncConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.ProfileSyncMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal profile sync message: %w", err)
		}

		ok, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !ok {
			logger.Logger.Info("Message already processed, skipping",
				zap.String("message_id", msg.MessageID),
			)
			return nil
		}

		if profileApplier == nil {
			return fmt.Errorf("profile sync applier not set")
		}

		if err := profileApplier.ApplySyncMessage(ctx, &msg); err != nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return err
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueProfileSync,
		ConsumerTag:   "profile_sync_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartOnboardingCompletedConsumer 消费入驻完成事件
// 目前只做审计日志，下游系统（派单、结算）各自订阅同一交换机
func StartOnboardingCompletedConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.OnboardingCompletedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal onboarding completed message: %w", err)
		}

		logger.Logger.Info("Onboarding completed event received",
			zap.String("message_id", msg.MessageID),
			zap.String("session_id", msg.SessionID),
			zap.Int64("user_public_id", msg.UserPublicID),
			zap.String("role", msg.Role),
			zap.Bool("secondary", msg.Secondary),
			zap.String("destination", msg.Destination),
		)

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueOnboardingCompleted,
		ConsumerTag:   "onboarding_completed_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartOnboardingReminderConsumer 消费停滞会话提醒（延迟投递）
// 投递时会话可能已经收尾或取消，先校验再发短信
func StartOnboardingReminderConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.OnboardingReminderMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal onboarding reminder message: %w", err)
		}

		ok, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !ok {
			return nil
		}

		if err := processReminder(ctx, &msg); err != nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return err
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueOnboardingReminder,
		ConsumerTag:   "onboarding_reminder_consumer",
		PrefetchCount: 5,
		Handler:       handler,
	})
}

func processReminder(ctx context.Context, msg *model.OnboardingReminderMessage) error {
	sess, err := cache.GetSession(ctx, msg.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load session for reminder: %w", err)
	}

	// 会话消失、已收尾、已取消或已提醒过都直接吞掉
	if sess == nil || sess.Nav.Finalized || sess.Nav.Cancelled || sess.ReminderSent {
		return nil
	}

	if sess.UserPublicID == 0 {
		// 匿名会话没有可联系的手机号
		return nil
	}

	if profileApplier == nil {
		return fmt.Errorf("profile sync applier not set")
	}

	phone, name, err := profileApplier.GetPhoneBySessionUser(ctx, sess.UserPublicID)
	if err != nil {
		return fmt.Errorf("failed to resolve phone for reminder: %w", err)
	}
	if phone == "" {
		return nil
	}

	start := time.Now()
	if err := sms.SendOnboardingReminderSMS(ctx, phone, name); err != nil {
		metrics.RecordSMSSent(ctx, "reminder", "failed", time.Since(start).Seconds())
		return fmt.Errorf("failed to send reminder SMS: %w", err)
	}
	metrics.RecordSMSSent(ctx, "reminder", "success", time.Since(start).Seconds())

	sess.ReminderSent = true
	if err := cache.SetSession(ctx, sess); err != nil {
		logger.Logger.Warn("Failed to persist reminder flag",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Onboarding reminder sent",
		zap.String("session_id", sess.ID),
		zap.String("step", string(sess.Nav.Step)),
		zap.String("phone_hash", utils.HashPhone(phone)),
	)

	return nil
}

// StartAllConsumers 启动全部消费者，阻塞直到所有消费者退出
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"profile_sync", StartProfileSyncConsumer},
		{"onboarding_completed", StartOnboardingCompletedConsumer},
		{"onboarding_reminder", StartOnboardingReminderConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}
