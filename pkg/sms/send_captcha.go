package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"Pantiss/config"
)

// SendCaptchaSMS 用验证码模板发送 6 位验证码
func SendCaptchaSMS(ctx context.Context, c Client, phone, code string) error {
	cfg := config.Cfg
	return send(ctx, c, phone, cfg.SMSSignName, cfg.SMSTemplateCode, map[string]string{"code": code})
}

// SendWelcomeSMS 注册成功通知，未配置模板时跳过
func SendWelcomeSMS(ctx context.Context, c Client, phone, name string) error {
	cfg := config.Cfg
	if cfg.SMSWelcomeTemplateCode == "" {
		return nil
	}
	return send(ctx, c, phone, cfg.SMSSignName, cfg.SMSWelcomeTemplateCode, map[string]string{"name": name})
}

func send(ctx context.Context, c Client, phone, signName, templateCode string, param map[string]string) error {
	paramJSON, err := json.Marshal(param)
	if err != nil {
		return fmt.Errorf("failed to marshal template param: %w", err)
	}

	return c.SendSingle(ctx, phone, signName, templateCode, string(paramJSON))
}
