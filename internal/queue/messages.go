package queue

import "time"

// EmailCodeTask 邮箱验证码投递任务，由 worker 通过 SMTP 发送
type EmailCodeTask struct {
	MessageID   string    `json:"message_id"`
	Email       string    `json:"email"`
	Code        string    `json:"code"`
	RequestedAt time.Time `json:"requested_at"`
}

// RegistrationCompleted 注册完成事件，worker 发欢迎邮件和短信
type RegistrationCompleted struct {
	MessageID    string    `json:"message_id"`
	AccountID    string    `json:"account_id"`
	Kind         string    `json:"kind"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	RegisteredAt time.Time `json:"registered_at"`
}
