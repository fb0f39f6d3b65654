package queue

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Pantiss/pkg/logger"
	"Pantiss/storage/mq"
	"Pantiss/utils"
)

// PublishFunc 发布到 onboarding exchange，默认 mq.Publish
type PublishFunc func(ctx context.Context, routingKey string, body interface{}) error

// Producer 通过 RabbitMQ 投递任务和事件
type Producer struct {
	publish PublishFunc
}

func NewProducer() *Producer {
	return &Producer{publish: mq.Publish}
}

// NewProducerWith 测试或自定义传输使用
func NewProducerWith(publish PublishFunc) *Producer {
	return &Producer{publish: publish}
}

// PublishEmailCode 发布邮箱验证码任务
func (p *Producer) PublishEmailCode(ctx context.Context, task EmailCodeTask) error {
	if task.MessageID == "" {
		task.MessageID = uuid.NewString()
	}

	if err := p.publish(ctx, mq.RoutingKeyEmailCode, task); err != nil {
		logger.Logger.Error("Failed to publish email code task",
			zap.String("message_id", task.MessageID),
			zap.String("email", utils.MaskEmail(task.Email)),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published email code task",
		zap.String("message_id", task.MessageID),
	)
	return nil
}

// PublishRegistrationCompleted 发布注册完成事件
func (p *Producer) PublishRegistrationCompleted(ctx context.Context, evt RegistrationCompleted) error {
	if evt.MessageID == "" {
		evt.MessageID = uuid.NewString()
	}

	if err := p.publish(ctx, mq.RoutingKeyRegistrationCompleted, evt); err != nil {
		logger.Logger.Error("Failed to publish registration event",
			zap.String("message_id", evt.MessageID),
			zap.String("account_id", evt.AccountID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published registration event",
		zap.String("message_id", evt.MessageID),
		zap.String("account_id", evt.AccountID),
		zap.String("kind", evt.Kind),
	)
	return nil
}

// Inline 未启用 RabbitMQ 时在进程内直接执行 worker 逻辑
type Inline struct {
	worker *Worker
}

func NewInline(w *Worker) *Inline {
	return &Inline{worker: w}
}

func (i *Inline) PublishEmailCode(ctx context.Context, task EmailCodeTask) error {
	if task.MessageID == "" {
		task.MessageID = uuid.NewString()
	}
	return i.worker.DeliverEmailCode(ctx, task)
}

// PublishRegistrationCompleted 欢迎通知不影响注册结果，失败只记日志
func (i *Inline) PublishRegistrationCompleted(ctx context.Context, evt RegistrationCompleted) error {
	if evt.MessageID == "" {
		evt.MessageID = uuid.NewString()
	}
	if err := i.worker.Welcome(ctx, evt); err != nil {
		logger.Logger.Warn("Inline welcome delivery failed",
			zap.String("account_id", evt.AccountID),
			zap.Error(err),
		)
	}
	return nil
}
