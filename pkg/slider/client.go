package slider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/logger"
)

var (
	ErrTokenRequired      = errors.New("slider token is required")
	ErrResponseNil        = errors.New("slider verification response is nil")
	ErrVerificationFailed = errors.New("slider verification failed")
)

// Client 滑块验证客户端接口
type Client interface {
	// Verify 校验前端滑块组件返回的 token，remoteIP 仅用于日志
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

var (
	sliderClient Client
	sliderOnce   sync.Once
	sliderErr    error
)

// Init 初始化滑块验证客户端，provider 为 none 时不启用
func Init() error {
	sliderOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.CaptchaProvider {
		case "aliyun":
			sliderClient, sliderErr = NewAliyunClient(cfg)
		case "mock":
			sliderClient = &MockClient{}
		case "none":
			return
		default:
			sliderErr = fmt.Errorf("unsupported captcha provider: %s", cfg.CaptchaProvider)
		}

		if sliderErr != nil {
			logger.Logger.Error("Failed to initialize slider client", zap.Error(sliderErr))
			return
		}

		logger.Logger.Info("Slider client initialized",
			zap.String("provider", cfg.CaptchaProvider),
		)
	})

	return sliderErr
}

// GetClient 未启用时返回 nil
func GetClient() Client {
	return sliderClient
}
