package sms

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"Pantiss/pkg/logger"
)

type MockCall struct {
	Phone         string
	SignName      string
	TemplateCode  string
	TemplateParam string
}

// MockClient 记录调用的短信客户端，本地开发和测试使用
type MockClient struct {
	mu    sync.Mutex
	calls []MockCall

	// failNext 为 true 时，下一次调用返回错误并自动复位
	failNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext {
		m.failNext = false
		return errors.New("mock sms send failure")
	}

	m.calls = append(m.calls, MockCall{
		Phone:         phone,
		SignName:      signName,
		TemplateCode:  templateCode,
		TemplateParam: templateParam,
	})
	// 本地开发时从日志里拿验证码
	logger.Logger.Debug("SMS not sent, mock provider",
		zap.String("template", templateCode),
		zap.String("param", templateParam),
	)
	return nil
}

// FailNext 让下一次发送失败
func (m *MockClient) FailNext() {
	m.mu.Lock()
	m.failNext = true
	m.mu.Unlock()
}

// Calls 返回成功发送的副本
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
