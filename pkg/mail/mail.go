package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"Pantiss/config"
	"Pantiss/pkg/logger"
)

// Message 纯文本邮件
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender 邮件发送接口，worker 使用
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New 按 MAIL_PROVIDER 选择实现，log 只写日志，用于本地开发
func New(cfg config.Config) (Sender, error) {
	switch cfg.MailProvider {
	case "", "smtp":
		return NewSMTPSender(cfg), nil
	case "log":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.MailProvider)
	}
}

// LogSender 不发信，把邮件写进日志
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.Logger.Info("Mail not sent, log provider",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// SMTPSender 基于 net/smtp，服务端支持时自动 STARTTLS
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(cfg config.Config) *SMTPSender {
	s := &SMTPSender{
		addr: net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.SMTPFrom,
	}
	if cfg.SMTPUsername != "" {
		s.auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return s
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, Render(s.from, msg))
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", s.addr, err)
		}
		return nil
	}
}

// Render 生成 RFC 5322 报文
func Render(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// CodeMessage 邮箱验证码
func CodeMessage(to, code string) Message {
	return Message{
		To:      to,
		Subject: "Your Pantiss verification code",
		Body:    fmt.Sprintf("Your verification code is %s.\nIf you did not request it, ignore this email.\n", code),
	}
}

// WelcomeMessage 注册完成通知
func WelcomeMessage(to, name, kind string) Message {
	audience := "job seeker"
	if kind == "business" {
		audience = "business"
	}
	return Message{
		To:      to,
		Subject: "Welcome to Pantiss",
		Body:    fmt.Sprintf("Hi %s,\nyour %s account is ready. Sign in to complete your profile.\n", name, audience),
	}
}

// MockSender 记录发送的邮件
type MockSender struct {
	mu       sync.Mutex
	sent     []Message
	failNext bool
}

func (m *MockSender) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext {
		m.failNext = false
		return fmt.Errorf("mock smtp failure")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *MockSender) FailNext() {
	m.mu.Lock()
	m.failNext = true
	m.mu.Unlock()
}

func (m *MockSender) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
