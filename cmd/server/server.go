package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/internal/middleware"
	"Pantiss/internal/router"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/metrics"
	pkgotel "Pantiss/pkg/otel"
	"Pantiss/pkg/slider"
	"Pantiss/pkg/sms"
	"Pantiss/pkg/snowflake"
	"Pantiss/pkg/token"
	"Pantiss/storage"
	"Pantiss/storage/database"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg := config.Cfg
	if err := cfg.Validate(); err != nil {
		logger.Logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	shutdownOTel, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
		ServiceName:       cfg.ServiceName,
		Environment:       cfg.Environment,
		OTLPEndpoint:      cfg.OTelEndpoint,
		OTLPEnabled:       cfg.OTelEnabled,
		PrometheusEnabled: cfg.PrometheusEnabled,
	})
	if err != nil {
		logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			logger.Logger.Warn("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	// 必须在 provider 设置之后
	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize domain metrics", zap.Error(err))
	}

	// 初始化存储层，未启用的后端不连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if cfg.UsesPostgres() {
		if err := database.Migrate(); err != nil {
			logger.Logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	if err := snowflake.Init(cfg.SnowflakeMachineID, cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := sms.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize SMS service", zap.Error(err))
	}

	// 滑块不可用时按未启用处理
	if err := slider.Init(); err != nil {
		logger.Logger.Warn("Slider verification disabled", zap.Error(err))
	}

	// token 在中间件前初始化，middleware 依赖 token
	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	}

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	hd, err := buildHandler(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to build services", zap.Error(err))
	}

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	opts := []hertzconfig.Option{
		server.WithHostPorts(addr),
		server.WithExitWaitTime(3 * time.Second),
	}

	// 追踪中间件要在路由注册前挂上
	var tracerMW app.HandlerFunc
	if cfg.OTelEnabled {
		var tracerOpt hertzconfig.Option
		tracerOpt, tracerMW = middleware.NewServerTracerConfig()
		opts = append(opts, tracerOpt)
	}

	h := server.Default(opts...)
	if tracerMW != nil {
		h.Use(tracerMW)
	}
	router.Register(h, hd)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.ServiceName),
		zap.String("addr", addr),
		zap.String("environment", cfg.Environment),
		zap.String("session_store", cfg.SessionStore),
		zap.String("account_store", cfg.AccountStore),
		zap.Bool("rabbitmq", cfg.RabbitMQEnabled),
	)

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
