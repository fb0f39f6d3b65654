package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/internal/cache"
	"Pantiss/internal/queue"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/mail"
	"Pantiss/pkg/metrics"
	pkgotel "Pantiss/pkg/otel"
	"Pantiss/pkg/sms"
	"Pantiss/storage"
	"Pantiss/storage/redis"
)

func main() {
	logger.Init()
	defer logger.Sync()
	log := logger.Component("worker")

	cfg := config.Cfg
	if !cfg.RabbitMQEnabled {
		log.Fatal("Worker requires RABBITMQ_ENABLED=true")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	shutdownOTel, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
		ServiceName:  cfg.ServiceName + "-worker",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		OTLPEnabled:  cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(shutdownCtx)
	}()

	if err := metrics.InitMetrics(); err != nil {
		log.Warn("Failed to initialize domain metrics", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := sms.Init(); err != nil {
		log.Fatal("Failed to initialize SMS service", zap.Error(err))
	}

	mailer, err := mail.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize mail sender", zap.Error(err))
	}

	// 多个 worker 实例共享 Redis 去重；memory 只在单实例下可靠
	var dedup cache.Locker
	if cfg.UsesRedis() {
		dedup = cache.NewRedis(redis.Client())
	} else {
		log.Warn("Using in-memory dedup, run a single worker instance")
		dedup = cache.NewMemory()
	}

	log.Info("Worker service starting",
		zap.String("service", cfg.ServiceName+"-worker"),
		zap.String("environment", cfg.Environment),
		zap.String("mail_provider", cfg.MailProvider),
	)

	if err := queue.NewWorker(mailer, sms.GetClient(), dedup).Start(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		log.Error("Worker stopped with error", zap.Error(err))
	}

	log.Info("Worker service shutting down gracefully")
}
