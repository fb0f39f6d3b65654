package wizard

import (
	"time"

	"Pantiss/internal/model"
)

// Channel 验证码渠道
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelPhone
}

// ChannelState 本次会话内某渠道的验证码状态
type ChannelState struct {
	Sent        bool   `json:"sent"`
	Destination string `json:"destination"`
	Verified    bool   `json:"verified"`
}

// Session 一次注册向导，整体序列化后存入会话存储
type Session struct {
	ID             string                   `json:"id"`
	Kind           model.AccountKind        `json:"kind"`
	Position       int                      `json:"position"`
	Draft          model.Draft              `json:"draft"`
	Codes          map[Channel]ChannelState `json:"codes"`
	Sheet          ExperienceSheet          `json:"sheet"`
	ICardConfirmed bool                     `json:"icard_confirmed"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// New 创建空草稿，位置在登录页
func New(id string, kind model.AccountKind, now time.Time) *Session {
	return &Session{
		ID:        id,
		Kind:      kind,
		Position:  0,
		Draft:     model.NewDraft(kind),
		Codes:     map[Channel]ChannelState{},
		Sheet:     NewExperienceSheet(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) Steps() []Step {
	return Steps(s.Kind)
}

func (s *Session) Current() Step {
	steps := s.Steps()
	return steps[s.clamp(s.Position)]
}

func (s *Session) IsLast() bool {
	return s.Position >= len(s.Steps())-1
}

// Advance 浅合并 partial 后前进一步；已在最后一步时不移动，返回 true 表示向导完成
func (s *Session) Advance(p model.Partial) (completed bool) {
	if p != nil {
		p.MergeInto(&s.Draft)
	}
	if s.IsLast() {
		return true
	}
	s.moveTo(s.Position + 1)
	return false
}

// Retreat 后退一步，不校验也不改草稿
func (s *Session) Retreat() {
	s.moveTo(s.Position - 1)
}

// moveTo 位置变化后 I-Card 需要重新确认
func (s *Session) moveTo(pos int) {
	pos = s.clamp(pos)
	if pos != s.Position {
		s.ICardConfirmed = false
	}
	s.Position = pos
}

// BeginSignup 登录页点击注册，只有在登录页时生效
func (s *Session) BeginSignup() bool {
	if s.Current() != StepLogin {
		return false
	}
	s.moveTo(s.Position + 1)
	return true
}

// CodeState 未发送过的渠道返回零值
func (s *Session) CodeState(ch Channel) ChannelState {
	if s.Codes == nil {
		return ChannelState{}
	}
	return s.Codes[ch]
}

func (s *Session) SetCodeState(ch Channel, st ChannelState) {
	if s.Codes == nil {
		s.Codes = map[Channel]ChannelState{}
	}
	s.Codes[ch] = st
}

// Email 当前草稿中的邮箱
func (s *Session) Email() string {
	if s.Draft.Seeker != nil {
		return s.Draft.Seeker.Email
	}
	if s.Draft.Business != nil {
		return s.Draft.Business.Email
	}
	return ""
}

func (s *Session) clamp(pos int) int {
	last := len(s.Steps()) - 1
	if pos < 0 {
		return 0
	}
	if pos > last {
		return last
	}
	return pos
}
