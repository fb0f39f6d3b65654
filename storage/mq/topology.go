package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 一个 topic exchange，两条业务队列，处理失败的消息进死信队列
const (
	ExchangeOnboarding = "pantiss.onboarding"
	ExchangeDeadLetter = "pantiss.onboarding.dlx"

	QueueEmailCode    = "pantiss.email_code"
	QueueRegistration = "pantiss.registration"
	QueueDeadLetter   = "pantiss.onboarding.dead"

	RoutingKeyEmailCode             = "code.email"
	RoutingKeyRegistrationCompleted = "registration.completed"
)

type binding struct {
	queue      string
	routingKey string
}

var bindings = []binding{
	{queue: QueueEmailCode, routingKey: RoutingKeyEmailCode},
	{queue: QueueRegistration, routingKey: RoutingKeyRegistrationCompleted},
}

// DeclareTopology 声明 exchange、队列和绑定，幂等
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeOnboarding, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeOnboarding, err)
	}
	if err := ch.ExchangeDeclare(ExchangeDeadLetter, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeDeadLetter, err)
	}

	if _, err := ch.QueueDeclare(QueueDeadLetter, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDeadLetter, err)
	}
	if err := ch.QueueBind(QueueDeadLetter, "", ExchangeDeadLetter, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueDeadLetter, err)
	}

	args := amqp.Table{"x-dead-letter-exchange": ExchangeDeadLetter}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.routingKey, ExchangeOnboarding, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}
