package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/internal/cache"
	"Pantiss/internal/queue"
	"Pantiss/internal/wizard"
	"Pantiss/pkg/breaker"
	"Pantiss/pkg/errors"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/metrics"
	"Pantiss/pkg/slider"
	"Pantiss/pkg/sms"
	"Pantiss/utils"
)

const (
	dispatchTimeout = 10 * time.Second
	sliderPassTTL   = 10 * time.Minute
)

// EventPublisher 邮箱验证码任务和注册完成事件的出口，RabbitMQ 或进程内 worker
type EventPublisher interface {
	PublishEmailCode(ctx context.Context, task queue.EmailCodeTask) error
	PublishRegistrationCompleted(ctx context.Context, evt queue.RegistrationCompleted) error
}

// CodeSender 把验证码送达目标
type CodeSender interface {
	SendCode(ctx context.Context, ch wizard.Channel, destination, code string) error
}

// DispatchSender 手机走短信，邮箱投递给 worker；两条链路各有一个熔断器
type DispatchSender struct {
	sms        sms.Client
	events     EventPublisher
	smsBreaker *breaker.CircuitBreaker
	mqBreaker  *breaker.CircuitBreaker
	now        func() time.Time
}

func NewDispatchSender(smsClient sms.Client, events EventPublisher) *DispatchSender {
	return &DispatchSender{
		sms:        smsClient,
		events:     events,
		smsBreaker: breaker.New("sms", 5, 30*time.Second),
		mqBreaker:  breaker.New("email-code", 5, 30*time.Second),
		now:        time.Now,
	}
}

func (d *DispatchSender) SendCode(ctx context.Context, ch wizard.Channel, destination, code string) error {
	switch ch {
	case wizard.ChannelPhone:
		if d.sms == nil {
			return fmt.Errorf("sms client not configured")
		}
		return d.smsBreaker.Call(ctx, func(ctx context.Context) error {
			return sms.SendCaptchaSMS(ctx, d.sms, destination, code)
		})
	case wizard.ChannelEmail:
		return d.mqBreaker.Call(ctx, func(ctx context.Context) error {
			return d.events.PublishEmailCode(ctx, queue.EmailCodeTask{
				Email:       destination,
				Code:        code,
				RequestedAt: d.now(),
			})
		})
	default:
		return errors.CodeChannelInvalid
	}
}

// CodePolicy 0 表示不启用对应限制
type CodePolicy struct {
	TTL             time.Duration
	MaxDaily        int
	SliderThreshold int
}

func PolicyFromConfig(cfg config.Config) CodePolicy {
	return CodePolicy{
		TTL:             time.Duration(cfg.CodeExpireSeconds) * time.Second,
		MaxDaily:        cfg.CodeMaxDaily,
		SliderThreshold: cfg.CodeSliderThreshold,
	}
}

// VerificationService 生成、发送、校验一次性验证码
type VerificationService struct {
	codes  cache.CodeStore
	sender CodeSender
	slider slider.Client // nil 表示不做滑块校验
	policy CodePolicy
	now    func() time.Time
}

func NewVerificationService(codes cache.CodeStore, sender CodeSender, sliderClient slider.Client, policy CodePolicy) *VerificationService {
	return &VerificationService{
		codes:  codes,
		sender: sender,
		slider: sliderClient,
		policy: policy,
		now:    time.Now,
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendCode 计数、滑块、生成并发送验证码；发送失败时删除已存储的验证码
func (s *VerificationService) SendCode(ctx context.Context, ch wizard.Channel, destination, sliderToken, remoteIP string) error {
	if !ch.Valid() {
		return errors.CodeChannelInvalid
	}
	destHash := utils.HashContact(destination)

	count, err := s.codes.IncrDailyCount(ctx, string(ch), destHash, s.now())
	if err != nil {
		return fmt.Errorf("failed to count code sends: %w", err)
	}
	if s.policy.MaxDaily > 0 && count > s.policy.MaxDaily {
		return errors.CaptchaRateLimited
	}

	if s.policy.SliderThreshold > 0 && count > s.policy.SliderThreshold {
		if err := s.checkSlider(ctx, destHash, sliderToken, remoteIP); err != nil {
			return err
		}
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	if err := s.codes.SetCode(ctx, string(ch), destHash, code, s.policy.TTL); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	start := s.now()
	dispatchCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	err = s.sender.SendCode(dispatchCtx, ch, destination, code)
	metrics.RecordCodeDispatch(ctx, string(ch), dispatchStatus(err), s.now().Sub(start).Seconds())
	if err != nil {
		if delErr := s.codes.DeleteCode(ctx, string(ch), destHash); delErr != nil {
			logger.Logger.Warn("Failed to delete undelivered code", zap.Error(delErr))
		}
		logger.Logger.Error("Failed to dispatch verification code",
			zap.String("channel", string(ch)),
			zap.String("destination", maskDestination(ch, destination)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", errors.CodeDispatchFailed, err)
	}

	logger.Logger.Info("Verification code dispatched",
		zap.String("channel", string(ch)),
		zap.String("destination", maskDestination(ch, destination)),
		zap.Int("daily_count", count),
	)
	return nil
}

func (s *VerificationService) checkSlider(ctx context.Context, destHash, token, remoteIP string) error {
	if s.slider == nil {
		return nil
	}

	passed, err := s.codes.SliderPassed(ctx, destHash)
	if err != nil {
		return fmt.Errorf("failed to read slider state: %w", err)
	}
	if passed {
		return nil
	}
	if token == "" {
		return errors.VerificationSliderRequired
	}

	ok, err := s.slider.Verify(ctx, token, remoteIP)
	if err != nil || !ok {
		if err != nil && !stderrors.Is(err, slider.ErrVerificationFailed) {
			logger.Logger.Warn("Slider verification error", zap.String("remote_ip", remoteIP), zap.Error(err))
		}
		return errors.VerificationSliderFailed
	}

	if err := s.codes.MarkSliderPassed(ctx, destHash, sliderPassTTL); err != nil {
		logger.Logger.Warn("Failed to record slider pass", zap.Error(err))
	}
	return nil
}

// MatchCode 只比对，不消耗验证码
func (s *VerificationService) MatchCode(ctx context.Context, ch wizard.Channel, destination, code string) (bool, error) {
	stored, err := s.codes.GetCode(ctx, string(ch), utils.HashContact(destination))
	if stderrors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read code: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1, nil
}

// Invalidate 验证通过后删除验证码
func (s *VerificationService) Invalidate(ctx context.Context, ch wizard.Channel, destination string) {
	if err := s.codes.DeleteCode(ctx, string(ch), utils.HashContact(destination)); err != nil {
		logger.Logger.Warn("Failed to delete used code", zap.Error(err))
	}
}

func dispatchStatus(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func maskDestination(ch wizard.Channel, destination string) string {
	if ch == wizard.ChannelEmail {
		return utils.MaskEmail(destination)
	}
	return utils.MaskDigits(destination, 4)
}
