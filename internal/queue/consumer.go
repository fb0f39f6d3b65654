package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Pantiss/internal/cache"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/mail"
	"Pantiss/pkg/metrics"
	"Pantiss/pkg/sms"
	"Pantiss/storage/mq"
	"Pantiss/utils"
)

// 同一条消息 24 小时内只处理一次
const dedupTTL = 24 * time.Hour

// Worker 消费验证码任务和注册事件
type Worker struct {
	mail  mail.Sender
	sms   sms.Client
	dedup cache.Locker // 为 nil 时不去重
}

func NewWorker(mailer mail.Sender, smsClient sms.Client, dedup cache.Locker) *Worker {
	return &Worker{mail: mailer, sms: smsClient, dedup: dedup}
}

// DeliverEmailCode 发送邮箱验证码
func (w *Worker) DeliverEmailCode(ctx context.Context, task EmailCodeTask) error {
	err := w.mail.Send(ctx, mail.CodeMessage(task.Email, task.Code))
	metrics.RecordEmailDelivery(ctx, "code", status(err))
	if err != nil {
		return fmt.Errorf("deliver email code: %w", err)
	}
	return nil
}

// Welcome 发送欢迎邮件，有手机号时再发一条短信
func (w *Worker) Welcome(ctx context.Context, evt RegistrationCompleted) error {
	err := w.mail.Send(ctx, mail.WelcomeMessage(evt.Email, evt.Name, evt.Kind))
	metrics.RecordEmailDelivery(ctx, "welcome", status(err))
	if err != nil {
		return fmt.Errorf("deliver welcome email: %w", err)
	}

	if evt.Phone == "" || w.sms == nil {
		return nil
	}
	if err := sms.SendWelcomeSMS(ctx, w.sms, evt.Phone, evt.Name); err != nil {
		// 邮件已经发出，短信失败不重投
		logger.Logger.Warn("Failed to send welcome SMS",
			zap.String("account_id", evt.AccountID),
			zap.String("phone", utils.MaskDigits(evt.Phone, 4)),
			zap.Error(err),
		)
	}
	return nil
}

// HandleEmailCode 队列消息入口
func (w *Worker) HandleEmailCode(ctx context.Context, body []byte) error {
	var task EmailCodeTask
	if err := json.Unmarshal(body, &task); err != nil {
		// 格式错误重投也不会成功，直接丢弃
		logger.Logger.Error("Dropping malformed email code task", zap.Error(err))
		return nil
	}

	return w.once(ctx, task.MessageID, func() error {
		return w.DeliverEmailCode(ctx, task)
	})
}

func (w *Worker) HandleRegistration(ctx context.Context, body []byte) error {
	var evt RegistrationCompleted
	if err := json.Unmarshal(body, &evt); err != nil {
		logger.Logger.Error("Dropping malformed registration event", zap.Error(err))
		return nil
	}

	return w.once(ctx, evt.MessageID, func() error {
		return w.Welcome(ctx, evt)
	})
}

// once 用 SETNX 标记消息，处理失败时释放标记以便重投
func (w *Worker) once(ctx context.Context, messageID string, fn func() error) error {
	if w.dedup == nil || messageID == "" {
		return fn()
	}

	token, ok, err := w.dedup.TryLock(ctx, "msg:"+messageID, dedupTTL)
	if err != nil {
		logger.Logger.Warn("Failed to check message processed status",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		return fn()
	}
	if !ok {
		logger.Logger.Info("Message already processed, skipping",
			zap.String("message_id", messageID),
		)
		return nil
	}

	if err := fn(); err != nil {
		_ = w.dedup.Unlock(ctx, "msg:"+messageID, token)
		return err
	}
	return nil
}

// Start 启动所有消费者，任一退出即返回
func (w *Worker) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mq.Consume(ctx, mq.ConsumeOptions{
			Queue:         mq.QueueEmailCode,
			ConsumerTag:   "email_code_consumer",
			PrefetchCount: 10,
			Handler:       w.HandleEmailCode,
		})
	})
	g.Go(func() error {
		return mq.Consume(ctx, mq.ConsumeOptions{
			Queue:         mq.QueueRegistration,
			ConsumerTag:   "registration_consumer",
			PrefetchCount: 10,
			Handler:       w.HandleRegistration,
		})
	})

	return g.Wait()
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
