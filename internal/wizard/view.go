package wizard

import (
	"time"

	"Pantiss/internal/model"
)

// StepInfo 进度条上的一个节点
type StepInfo struct {
	Step  Step   `json:"step"`
	Title string `json:"title,omitempty"`
}

// View 返回给客户端的会话快照，不含密码和验证码
type View struct {
	ID             string                   `json:"id"`
	Kind           model.AccountKind        `json:"kind"`
	Step           Step                     `json:"step"`
	Position       int                      `json:"position"`
	Steps          []StepInfo               `json:"steps"`
	Draft          model.Draft              `json:"draft"`
	Codes          map[Channel]ChannelState `json:"codes"`
	Sheet          *ExperienceSheet         `json:"sheet,omitempty"`
	ICardConfirmed bool                     `json:"icard_confirmed"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func (s *Session) View() View {
	steps := make([]StepInfo, 0, len(s.Steps()))
	for _, st := range s.Steps() {
		steps = append(steps, StepInfo{Step: st, Title: st.Title()})
	}

	codes := make(map[Channel]ChannelState, len(s.Codes))
	for ch, st := range s.Codes {
		codes[ch] = st
	}

	v := View{
		ID:             s.ID,
		Kind:           s.Kind,
		Step:           s.Current(),
		Position:       s.Position,
		Steps:          steps,
		Draft:          redact(s.Draft),
		Codes:          codes,
		ICardConfirmed: s.ICardConfirmed,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.Kind == model.KindSeeker {
		sheet := s.Sheet
		v.Sheet = &sheet
	}
	return v
}

func redact(d model.Draft) model.Draft {
	out := model.Draft{}
	if d.Seeker != nil {
		cp := *d.Seeker
		cp.Password, cp.ConfirmPassword, cp.EmailOTP, cp.MobileOTP = "", "", "", ""
		out.Seeker = &cp
	}
	if d.Business != nil {
		cp := *d.Business
		cp.Password, cp.ConfirmPassword, cp.EmailOTP, cp.PhoneOTP = "", "", "", ""
		out.Business = &cp
	}
	return out
}
