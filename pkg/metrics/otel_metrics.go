package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 注册流程相关指标
type OTelMetrics struct {
	WizardStartedTotal   metric.Int64Counter
	StepOutcomeTotal     metric.Int64Counter
	CodeDispatchTotal    metric.Int64Counter
	CodeDispatchDuration metric.Float64Histogram
	LoginTotal           metric.Int64Counter
	RegistrationTotal    metric.Int64Counter
	EmailDeliveryTotal   metric.Int64Counter
}

var (
	// 全局指标实例，InitMetrics 之前为 nil，记录函数直接忽略
	metrics *OTelMetrics
	mu      sync.RWMutex
)

// InitMetrics 在 MeterProvider 设置之后调用
func InitMetrics() error {
	meter := otel.Meter("pantiss")
	m := &OTelMetrics{}
	var err error

	if m.WizardStartedTotal, err = meter.Int64Counter(
		"wizard_started_total",
		metric.WithDescription("Total number of registration wizards created"),
		metric.WithUnit("{wizard}"),
	); err != nil {
		return err
	}

	if m.StepOutcomeTotal, err = meter.Int64Counter(
		"wizard_step_outcome_total",
		metric.WithDescription("Step submissions by outcome"),
		metric.WithUnit("{submission}"),
	); err != nil {
		return err
	}

	if m.CodeDispatchTotal, err = meter.Int64Counter(
		"verification_code_dispatch_total",
		metric.WithDescription("Verification code dispatches by channel and status"),
		metric.WithUnit("{code}"),
	); err != nil {
		return err
	}

	if m.CodeDispatchDuration, err = meter.Float64Histogram(
		"verification_code_dispatch_duration_seconds",
		metric.WithDescription("Time spent dispatching a verification code"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if m.LoginTotal, err = meter.Int64Counter(
		"login_total",
		metric.WithDescription("Login attempts by kind and status"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return err
	}

	if m.RegistrationTotal, err = meter.Int64Counter(
		"registration_total",
		metric.WithDescription("Final submissions by kind and status"),
		metric.WithUnit("{registration}"),
	); err != nil {
		return err
	}

	if m.EmailDeliveryTotal, err = meter.Int64Counter(
		"email_delivery_total",
		metric.WithDescription("Emails delivered by the worker"),
		metric.WithUnit("{email}"),
	); err != nil {
		return err
	}

	mu.Lock()
	metrics = m
	mu.Unlock()
	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	mu.RLock()
	defer mu.RUnlock()
	return metrics
}

func RecordWizardStarted(ctx context.Context, kind string) {
	if m := GetMetrics(); m != nil {
		m.WizardStartedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordStepOutcome outcome: accepted, rejected, completed
func RecordStepOutcome(ctx context.Context, kind, step, outcome string) {
	if m := GetMetrics(); m != nil {
		m.StepOutcomeTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("step", step),
			attribute.String("outcome", outcome),
		))
	}
}

func RecordCodeDispatch(ctx context.Context, channel, status string, duration float64) {
	if m := GetMetrics(); m != nil {
		attrs := metric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("status", status),
		)
		m.CodeDispatchTotal.Add(ctx, 1, attrs)
		m.CodeDispatchDuration.Record(ctx, duration, attrs)
	}
}

func RecordLogin(ctx context.Context, kind, status string) {
	if m := GetMetrics(); m != nil {
		m.LoginTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", status),
		))
	}
}

func RecordRegistration(ctx context.Context, kind, status string) {
	if m := GetMetrics(); m != nil {
		m.RegistrationTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", status),
		))
	}
}

func RecordEmailDelivery(ctx context.Context, category, status string) {
	if m := GetMetrics(); m != nil {
		m.EmailDeliveryTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("category", category),
			attribute.String("status", status),
		))
	}
}
