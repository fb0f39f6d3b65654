package main

import (
	"time"

	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/internal/cache"
	"Pantiss/internal/handler"
	"Pantiss/internal/queue"
	"Pantiss/internal/repository"
	"Pantiss/internal/service"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/mail"
	"Pantiss/pkg/slider"
	"Pantiss/pkg/sms"
	"Pantiss/storage/database"
	"Pantiss/storage/redis"
)

// newStore memory 模式只适合单实例
func newStore(cfg config.Config) cache.Store {
	if cfg.SessionStore == "redis" {
		return cache.NewRedis(redis.Client())
	}
	logger.Logger.Warn("Using in-memory session store, wizards are lost on restart")
	return cache.NewMemory()
}

func newAccountRepository(cfg config.Config) repository.AccountRepository {
	if cfg.UsesPostgres() {
		return repository.NewGormAccountRepository(database.DB())
	}
	logger.Logger.Warn("Using in-memory account repository, accounts are lost on restart")
	return repository.NewMemoryAccountRepository()
}

// newPublisher RabbitMQ 关闭时在进程内直接执行 worker 逻辑
func newPublisher(cfg config.Config, store cache.Store) (service.EventPublisher, error) {
	if cfg.RabbitMQEnabled {
		return queue.NewProducer(), nil
	}

	mailer, err := mail.New(cfg)
	if err != nil {
		return nil, err
	}
	logger.Logger.Info("RabbitMQ disabled, delivering emails in-process",
		zap.String("mail_provider", cfg.MailProvider),
	)
	return queue.NewInline(queue.NewWorker(mailer, sms.GetClient(), store)), nil
}

func buildHandler(cfg config.Config) (*handler.Handler, error) {
	store := newStore(cfg)

	events, err := newPublisher(cfg, store)
	if err != nil {
		return nil, err
	}

	verifier := service.NewVerificationService(
		store,
		service.NewDispatchSender(sms.GetClient(), events),
		slider.GetClient(),
		service.PolicyFromConfig(cfg),
	)
	accounts := service.NewAccountService(newAccountRepository(cfg), store, store, events, cfg.EncryptionKey)
	wizards := service.NewOnboardingService(store, store, verifier, accounts, accounts,
		time.Duration(cfg.WizardTTLMinutes)*time.Minute)

	return handler.New(wizards, accounts), nil
}
