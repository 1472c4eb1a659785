package schedule

// 提醒调度器：周期扫描停滞的入驻会话，投递延迟提醒消息
// 每个会话最多提醒一次，投递后移出活跃索引

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"PartnerGo/config"
	"PartnerGo/internal/cache"
	"PartnerGo/internal/model"
	"PartnerGo/internal/queue"
	"PartnerGo/pkg/logger"
)

const (
	scanLockKey   = "reminder_scan"
	scanBatchSize = 500
)

var (
	reminderSchedulerOnce sync.Once
	reminderSchedulerInst *ReminderScheduler
)

type ReminderScheduler struct {
	logger       *zap.Logger
	scanRunning  bool
	scanMu       sync.Mutex
	lastScanTime time.Time
}

func GetReminderScheduler() *ReminderScheduler {
	reminderSchedulerOnce.Do(func() {
		reminderSchedulerInst = &ReminderScheduler{
			logger: logger.Logger,
		}
	})
	return reminderSchedulerInst
}

// ScanStalledSessions 扫描停滞会话并投递提醒
// 分布式锁保证多实例部署时一轮只扫一次
func (s *ReminderScheduler) ScanStalledSessions(ctx context.Context) error {
	s.scanMu.Lock()
	if s.scanRunning {
		s.scanMu.Unlock()
		s.logger.Info("Reminder scan already running, skipping")
		return nil
	}
	s.scanRunning = true
	s.scanMu.Unlock()

	defer func() {
		s.scanMu.Lock()
		s.scanRunning = false
		s.scanMu.Unlock()
	}()

	lockTTL := time.Duration(config.Cfg.ReminderScanIntervalSec) * time.Second
	locked, err := cache.TryLock(ctx, scanLockKey, lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !locked {
		s.logger.Info("Another instance holds the reminder scan lock, skipping")
		return nil
	}

	startTime := time.Now()
	s.lastScanTime = startTime

	idle := time.Duration(config.Cfg.ReminderIdleMinutes) * time.Minute
	before := startTime.Add(-idle)

	sessionIDs, err := cache.StaleSessionIDs(ctx, before, scanBatchSize)
	if err != nil {
		return fmt.Errorf("failed to scan stale sessions: %w", err)
	}

	if len(sessionIDs) == 0 {
		return nil
	}

	s.logger.Info("Found stalled onboarding sessions",
		zap.Int("count", len(sessionIDs)),
		zap.Time("stalled_before", before),
	)

	published := 0
	for i, sessionID := range sessionIDs {
		sess, err := cache.GetSession(ctx, sessionID)
		if err != nil {
			s.logger.Warn("Failed to load stalled session",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
			continue
		}

		// 会话过期或已结束的残留索引直接清掉
		if sess == nil || sess.Nav.Finalized || sess.Nav.Cancelled || sess.ReminderSent {
			if err := cache.DeactivateSession(ctx, sessionID); err != nil {
				s.logger.Warn("Failed to deactivate session",
					zap.String("session_id", sessionID),
					zap.Error(err),
				)
			}
			continue
		}

		// 按序号错峰投递，避免短信瞬时打满
		msg := model.OnboardingReminderMessage{
			SessionID:    sess.ID,
			PhoneHash:    sess.PhoneHash,
			Step:         string(sess.Nav.Step),
			DelaySeconds: (i % 60) * 5,
		}

		if err := queue.PublishOnboardingReminder(msg); err != nil {
			s.logger.Error("Failed to publish reminder for stalled session",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
			continue
		}

		if err := cache.DeactivateSession(ctx, sess.ID); err != nil {
			s.logger.Warn("Failed to deactivate session after reminder",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		}
		published++
	}

	s.logger.Info("Reminder scan completed",
		zap.Int("scanned", len(sessionIDs)),
		zap.Int("published", published),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return nil
}
