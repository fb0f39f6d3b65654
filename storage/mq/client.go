package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/logger"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

// Init 建立连接并声明拓扑，重复调用只生效一次
func Init() error {
	connOnce.Do(func() {
		conn, connErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if connErr != nil {
			connErr = fmt.Errorf("dial rabbitmq %s: %w", config.Cfg.RabbitMQAddr, connErr)
			return
		}

		ch, err := conn.Channel()
		if err != nil {
			connErr = fmt.Errorf("open setup channel: %w", err)
			return
		}
		defer ch.Close()

		if err := DeclareTopology(ch); err != nil {
			connErr = err
			return
		}

		logger.Logger.Info("RabbitMQ initialized",
			zap.String("exchange", ExchangeOnboarding),
		)
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

// Healthy 未启用或连接正常
func Healthy() bool {
	return conn == nil || !conn.IsClosed()
}

func Close(ctx context.Context) error {
	if conn == nil || conn.IsClosed() {
		return nil
	}

	pubMutex.Lock()
	if publisherCh != nil {
		_ = publisherCh.Close()
		publisherCh = nil
	}
	pubMutex.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
