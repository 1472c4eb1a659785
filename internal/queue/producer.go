package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"PartnerGo/internal/model"
	"PartnerGo/pkg/logger"
	"PartnerGo/pkg/snowflake"
	"PartnerGo/storage/mq"
)

func ensureMessageID(current, prefix string) (string, error) {
	if current != "" {
		return current, nil
	}

	id, err := snowflake.NextID()
	if err != nil {
		return "", fmt.Errorf("failed to generate message ID: %w", err)
	}
	return fmt.Sprintf("%s_%d", prefix, id), nil
}

// PublishProfileSync 发布资料草稿同步消息
func PublishProfileSync(msg model.ProfileSyncMessage) error {
	id, err := ensureMessageID(msg.MessageID, "profile_sync")
	if err != nil {
		return err
	}
	msg.MessageID = id
	msg.OccurredAt = time.Now().Format(time.RFC3339)

	err = mq.PublishMessage(
		mq.ExchangeEvents,
		mq.RoutingKeyProfileSync,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish profile sync message",
			zap.String("message_id", msg.MessageID),
			zap.String("session_id", msg.SessionID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published profile sync message",
		zap.String("message_id", msg.MessageID),
		zap.String("session_id", msg.SessionID),
	)

	return nil
}

// PublishOnboardingCompleted 发布入驻完成事件
func PublishOnboardingCompleted(msg model.OnboardingCompletedMessage) error {
	id, err := ensureMessageID(msg.MessageID, "ob_completed")
	if err != nil {
		return err
	}
	msg.MessageID = id
	msg.OccurredAt = time.Now().Format(time.RFC3339)

	err = mq.PublishMessage(
		mq.ExchangeEvents,
		mq.RoutingKeyOnboardingCompleted,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish onboarding completed event",
			zap.String("message_id", msg.MessageID),
			zap.String("session_id", msg.SessionID),
			zap.Int64("user_public_id", msg.UserPublicID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published onboarding completed event",
		zap.String("message_id", msg.MessageID),
		zap.Int64("user_public_id", msg.UserPublicID),
		zap.String("role", msg.Role),
	)

	return nil
}

// PublishOnboardingReminder 发布停滞会话提醒（延迟消息）
// 延迟超过 24 小时属于调度器配置错误，直接拒绝
func PublishOnboardingReminder(msg model.OnboardingReminderMessage) error {
	id, err := ensureMessageID(msg.MessageID, "ob_reminder")
	if err != nil {
		return err
	}
	msg.MessageID = id
	msg.ScheduledAt = time.Now().Format(time.RFC3339)

	delay := time.Duration(msg.DelaySeconds) * time.Second
	if delay > 24*time.Hour {
		return fmt.Errorf("delay %v exceeds 24 hours limit", delay)
	}

	err = mq.PublishDelayedMessage(
		mq.ExchangeDelayed,
		mq.RoutingKeyOnboardingReminder,
		delay,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish onboarding reminder message",
			zap.String("message_id", msg.MessageID),
			zap.String("session_id", msg.SessionID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published onboarding reminder message",
		zap.String("message_id", msg.MessageID),
		zap.String("session_id", msg.SessionID),
		zap.Duration("delay", delay),
	)

	return nil
}
