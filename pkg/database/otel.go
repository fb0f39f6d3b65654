package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var (
	instrumentsOnce sync.Once
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram

	// 口令哈希和加密后的 Aadhar 不进 span
	sensitiveColumns = regexp.MustCompile(`(password_hash|aadhar_cipher|token|secret)\s*=\s*('[^']*'|\$\d+)`)
)

func initInstruments() {
	meter := otel.Meter("pantiss.gorm")
	dbQueriesTotal, _ = meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	dbQueryDuration, _ = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
}

// OTELPlugin GORM OpenTelemetry 插件
type OTELPlugin struct {
	tracer trace.Tracer
	config PluginConfig
}

// PluginConfig 插件配置
type PluginConfig struct {
	ServiceName   string
	EnableMetrics bool
	MaxSQLLength  int
}

func DefaultPluginConfig() PluginConfig {
	return PluginConfig{
		ServiceName:   "pantiss-onboarding",
		EnableMetrics: true,
		MaxSQLLength:  500,
	}
}

func NewOTELPlugin(config PluginConfig) *OTELPlugin {
	if config.ServiceName == "" {
		config.ServiceName = "pantiss-onboarding"
	}
	if config.MaxSQLLength <= 0 {
		config.MaxSQLLength = 500
	}
	instrumentsOnce.Do(initInstruments)

	return &OTELPlugin{
		tracer: otel.Tracer(config.ServiceName + ".gorm"),
		config: config,
	}
}

// Name 实现 gorm.Plugin 接口
func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

// Initialize 注册回调
func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	callbacks := db.Callback()

	errs := []error{
		callbacks.Query().Before("gorm:query").Register("otel:before_query", p.before),
		callbacks.Query().After("gorm:query").Register("otel:after_query", p.after),
		callbacks.Create().Before("gorm:create").Register("otel:before_create", p.before),
		callbacks.Create().After("gorm:create").Register("otel:after_create", p.after),
		callbacks.Update().Before("gorm:update").Register("otel:before_update", p.before),
		callbacks.Update().After("gorm:update").Register("otel:after_update", p.after),
		callbacks.Delete().Before("gorm:delete").Register("otel:before_delete", p.before),
		callbacks.Delete().After("gorm:delete").Register("otel:after_delete", p.after),
		callbacks.Row().Before("gorm:row").Register("otel:before_row", p.before),
		callbacks.Row().After("gorm:row").Register("otel:after_row", p.after),
		callbacks.Raw().Before("gorm:raw").Register("otel:before_raw", p.before),
		callbacks.Raw().After("gorm:raw").Register("otel:after_raw", p.after),
	}
	return errors.Join(errs...)
}

func (p *OTELPlugin) before(db *gorm.DB) {
	ctx, span := p.tracer.Start(db.Statement.Context, "db."+tableName(db),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemPostgreSQL,
			attribute.String("db.table", tableName(db)),
		),
	)

	db.InstanceSet("otel:start_time", time.Now())
	db.InstanceSet("otel:span", span)
	db.Statement.Context = ctx
}

func (p *OTELPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet("otel:span")
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	operation := operationName(db.Statement.SQL.String())
	span.SetName(operation)
	span.SetAttributes(
		semconv.DBStatement(p.sanitize(db.Statement.SQL.String())),
		semconv.DBOperation(strings.TrimPrefix(operation, "db.")),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	)

	status := "success"
	switch {
	case db.Error == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(db.Error, gorm.ErrRecordNotFound):
		span.SetStatus(codes.Ok, "record not found")
	default:
		status = "error"
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if !p.config.EnableMetrics {
		return
	}

	var duration float64
	if startV, ok := db.InstanceGet("otel:start_time"); ok {
		if start, ok := startV.(time.Time); ok {
			duration = time.Since(start).Seconds()
		}
	}
	p.record(db.Statement.Context, operation, status, duration)
}

func (p *OTELPlugin) record(ctx context.Context, operation, status string, duration float64) {
	if dbQueriesTotal == nil || dbQueryDuration == nil {
		return
	}
	opts := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.status", status),
	)
	dbQueriesTotal.Add(ctx, 1, opts)
	dbQueryDuration.Record(ctx, duration, opts)
}

// sanitize 截断并遮蔽敏感列
func (p *OTELPlugin) sanitize(sql string) string {
	if len(sql) > p.config.MaxSQLLength {
		sql = sql[:p.config.MaxSQLLength] + "..."
	}
	return sensitiveColumns.ReplaceAllString(sql, "$1=***")
}

func tableName(db *gorm.DB) string {
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	return "unknown"
}

func operationName(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case sql == "":
		return "db.unknown"
	case strings.HasPrefix(sql, "SELECT"):
		return "db.select"
	case strings.HasPrefix(sql, "INSERT"):
		return "db.insert"
	case strings.HasPrefix(sql, "UPDATE"):
		return "db.update"
	case strings.HasPrefix(sql, "DELETE"):
		return "db.delete"
	default:
		return "db.query"
	}
}

// WithDefaultOTELPlugin 使用默认配置添加 OpenTelemetry 插件
func WithDefaultOTELPlugin(db *gorm.DB, serviceName string) error {
	config := DefaultPluginConfig()
	config.ServiceName = serviceName
	return db.Use(NewOTELPlugin(config))
}
