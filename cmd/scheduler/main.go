package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"PartnerGo/config"
	"PartnerGo/internal/schedule"
	"PartnerGo/pkg/logger"
	"PartnerGo/pkg/metrics"
	"PartnerGo/pkg/otel"
	"PartnerGo/pkg/snowflake"
	"PartnerGo/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	otelShutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
		ServiceName:  config.Cfg.ServiceName + "-scheduler",
		Environment:  config.Cfg.Environment,
		OTLPEndpoint: config.Cfg.OTLPEndpoint,
		SampleRatio:  config.Cfg.OTelSampler,
	})
	if err != nil {
		logger.Logger.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()

		if err := metrics.InitMetrics(); err != nil {
			logger.Logger.Warn("Failed to initialize business metrics", zap.Error(err))
		}
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 消息 ID 生成依赖 snowflake
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", "partnergo-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	go runReminderScanLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runReminderScanLoop 周期性扫描停滞的入驻会话并投递提醒消息
// 扫描间隔由 REMINDER_SCAN_INTERVAL_SEC 控制
func runReminderScanLoop(ctx context.Context) {
	s := schedule.GetReminderScheduler()

	interval := time.Duration(config.Cfg.ReminderScanIntervalSec) * time.Second
	if config.Cfg.Environment == "development" {
		interval = 1 * time.Minute
		logger.Logger.Info("Reminder scan loop running in development mode with 1m interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := s.ScanStalledSessions(runCtx); err != nil {
				logger.Logger.Error("Stalled session scan run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
