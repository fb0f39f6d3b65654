package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/logger"
	pkgmq "Pantiss/pkg/mq"
)

// 发布用的 channel 复用，关闭后下次发布时重建

var (
	publisherCh *amqp.Channel
	pubMutex    sync.Mutex
)

func getPublisherChannel() (*amqp.Channel, error) {
	pubMutex.Lock()
	defer pubMutex.Unlock()

	if publisherCh != nil && !publisherCh.IsClosed() {
		return publisherCh, nil
	}

	if conn == nil || conn.IsClosed() {
		return nil, fmt.Errorf("rabbitmq connection is not open")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publish channel: %w", err)
	}
	publisherCh = ch

	closeChan := ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr := <-closeChan; amqpErr != nil {
			logger.Logger.Warn("Publisher channel closed, will recreate on next publish",
				zap.String("component", "rabbitmq"),
				zap.String("reason", amqpErr.Reason),
			)
		}
	}()

	return ch, nil
}

// Publish 以 JSON 发布到 onboarding exchange
func Publish(ctx context.Context, routingKey string, body interface{}) error {
	ch, err := getPublisherChannel()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		MessageId:    uuid.NewString(),
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	ic := pkgmq.NewInstrumentedChannel(ch, config.Cfg.ServiceName)
	if err := ic.PublishWithContext(ctx, ExchangeOnboarding, routingKey, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	return nil
}
