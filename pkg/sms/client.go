package sms

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/logger"
)

// Client 短信通道，验证码和注册通知共用
type Client interface {
	// SendSingle phone 为 10 位本地号码，国家码由实现补齐；templateParam 为 JSON
	SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error
}

var providers = map[string]func() (Client, error){
	"aliyun": func() (Client, error) { return NewAliyunClient(config.Cfg) },
	"mock":   func() (Client, error) { return NewMockClient(), nil },
}

var (
	smsClient Client
	smsOnce   sync.Once
	smsErr    error
)

// Init 按 SMS_PROVIDER 创建客户端，重复调用只生效一次
func Init() error {
	smsOnce.Do(func() {
		provider := config.Cfg.SMSProvider
		build, ok := providers[provider]
		if !ok {
			smsErr = fmt.Errorf("unsupported SMS provider: %s", provider)
			return
		}

		smsClient, smsErr = build()
		if smsErr != nil {
			smsErr = fmt.Errorf("init %s sms client: %w", provider, smsErr)
			return
		}

		logger.Logger.Info("SMS client initialized", zap.String("provider", provider))
	})

	return smsErr
}

func GetClient() Client {
	if smsClient == nil {
		panic("SMS client not initialized, call sms.Init() first")
	}
	return smsClient
}
