package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 入驻向导相关指标集合
type OTelMetrics struct {
	OnboardingStartedTotal   metric.Int64Counter
	OnboardingFinalizedTotal metric.Int64Counter
	OnboardingCancelledTotal metric.Int64Counter
	OnboardingReconcileTotal metric.Int64Counter

	SMSSentTotal    metric.Int64Counter
	SMSSendDuration metric.Float64Histogram
}

var (
	metrics *OTelMetrics
	meter   = otel.Meter("partnergo")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	m := &OTelMetrics{}

	m.OnboardingStartedTotal, err = meter.Int64Counter(
		"onboarding_sessions_started_total",
		metric.WithDescription("Total number of onboarding sessions started"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	m.OnboardingFinalizedTotal, err = meter.Int64Counter(
		"onboarding_sessions_finalized_total",
		metric.WithDescription("Total number of onboarding sessions finalized"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	m.OnboardingCancelledTotal, err = meter.Int64Counter(
		"onboarding_sessions_cancelled_total",
		metric.WithDescription("Total number of secondary onboarding sessions cancelled"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	m.OnboardingReconcileTotal, err = meter.Int64Counter(
		"onboarding_reconcile_total",
		metric.WithDescription("Total number of remote reconciliations by outcome"),
		metric.WithUnit("{reconcile}"),
	)
	if err != nil {
		return err
	}

	m.SMSSentTotal, err = meter.Int64Counter(
		"sms_sent_total",
		metric.WithDescription("Total number of SMS sent"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	m.SMSSendDuration, err = meter.Float64Histogram(
		"sms_send_duration_seconds",
		metric.WithDescription("Time spent sending SMS in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

func GetMetrics() *OTelMetrics {
	return metrics
}

// 包级辅助函数带 nil 保护，指标未初始化时静默跳过

func RecordOnboardingStarted(ctx context.Context, mode string) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.OnboardingStartedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
	))
}

func RecordOnboardingFinalized(ctx context.Context, role string, secondary bool) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.OnboardingFinalizedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.Bool("secondary", secondary),
	))
}

func RecordOnboardingCancelled(ctx context.Context) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.OnboardingCancelledTotal.Add(ctx, 1)
}

func RecordReconcileOutcome(ctx context.Context, outcome string) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.OnboardingReconcileTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func RecordSMSSent(ctx context.Context, template, status string, duration float64) {
	m := GetMetrics()
	if m == nil {
		return
	}
	m.SMSSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template", template),
		attribute.String("status", status),
	))
	m.SMSSendDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("template", template),
	))
}
