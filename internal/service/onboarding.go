package service

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Pantiss/internal/cache"
	"Pantiss/internal/model"
	"Pantiss/internal/validation"
	"Pantiss/internal/wizard"
	"Pantiss/pkg/errors"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/metrics"
	"Pantiss/utils"
)

const (
	lockTTL       = 15 * time.Second
	lockAttempts  = 20
	lockRetryWait = 25 * time.Millisecond
)

// SubmitResult 提交当前步骤的结果；Auth 非空表示登录或注册成功
type SubmitResult struct {
	Wizard    *wizard.View `json:"wizard,omitempty"`
	Completed bool         `json:"completed"`
	Auth      *AuthResult  `json:"auth,omitempty"`
}

// SendCodeRequest 发送验证码
type SendCodeRequest struct {
	Channel     wizard.Channel `json:"channel"`
	Destination string         `json:"destination"`
	SliderToken string         `json:"slider_token"`
}

// OnboardingService 注册向导；同一个向导的操作通过锁串行执行，每次操作后整体写回
type OnboardingService struct {
	sessions  cache.SessionStore
	locker    cache.Locker
	verifier  *VerificationService
	auth      Authenticator
	registrar Registrar
	ttl       time.Duration
	newID     func() string
	now       func() time.Time
}

func NewOnboardingService(
	sessions cache.SessionStore,
	locker cache.Locker,
	verifier *VerificationService,
	auth Authenticator,
	registrar Registrar,
	ttl time.Duration,
) *OnboardingService {
	return &OnboardingService{
		sessions:  sessions,
		locker:    locker,
		verifier:  verifier,
		auth:      auth,
		registrar: registrar,
		ttl:       ttl,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Create 新建向导，位置在登录页
func (s *OnboardingService) Create(ctx context.Context, kind model.AccountKind) (*wizard.View, error) {
	if !kind.Valid() {
		return nil, errors.WizardKindInvalid
	}

	sess := wizard.New(s.newID(), kind, s.now())
	if err := s.sessions.SaveSession(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save wizard: %w", err)
	}

	metrics.RecordWizardStarted(ctx, string(kind))
	logger.Logger.Info("Wizard created",
		zap.String("wizard_id", sess.ID),
		zap.String("kind", string(kind)),
	)

	view := sess.View()
	return &view, nil
}

func (s *OnboardingService) Get(ctx context.Context, id string) (*wizard.View, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := sess.View()
	return &view, nil
}

// Discard 离开向导，草稿丢弃
func (s *OnboardingService) Discard(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete wizard: %w", err)
	}
	logger.Logger.Info("Wizard discarded", zap.String("wizard_id", id))
	return nil
}

func (s *OnboardingService) BeginSignup(ctx context.Context, id string) (*wizard.View, error) {
	return s.viewAfter(ctx, id, func(sess *wizard.Session) (bool, error) {
		if !sess.BeginSignup() {
			return false, errors.WizardStepInvalid
		}
		return false, nil
	})
}

func (s *OnboardingService) Back(ctx context.Context, id string) (*wizard.View, error) {
	return s.viewAfter(ctx, id, func(sess *wizard.Session) (bool, error) {
		sess.Retreat()
		return false, nil
	})
}

// Submit 按当前步骤解析并校验提交的数据，通过后前进一步
func (s *OnboardingService) Submit(ctx context.Context, id string, raw []byte) (*SubmitResult, error) {
	var result SubmitResult

	sess, err := s.mutate(ctx, id, func(sess *wizard.Session) (bool, error) {
		step := sess.Current()
		done, auth, err := s.submitStep(ctx, sess, raw)
		metrics.RecordStepOutcome(ctx, string(sess.Kind), string(step), stepOutcome(err))
		if err != nil {
			return false, err
		}
		result.Completed = done
		result.Auth = auth
		return done, nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Completed {
		view := sess.View()
		result.Wizard = &view
	}
	return &result, nil
}

func (s *OnboardingService) submitStep(ctx context.Context, sess *wizard.Session, raw []byte) (bool, *AuthResult, error) {
	env := s.env(sess)

	switch sess.Current() {
	case wizard.StepLogin:
		form, err := decodeAndCheck(raw, validation.Login, env)
		if err != nil {
			return false, nil, err
		}
		auth, err := s.auth.Login(ctx, sess.Kind, form.Email, form.Password)
		if err != nil {
			return false, nil, err
		}
		return false, auth, nil

	case wizard.StepSignup:
		return false, nil, s.submitSignup(ctx, sess, raw, env)

	case wizard.StepJobRole:
		return acceptStep(ctx, s, sess, raw, validation.JobRole, env)

	case wizard.StepOrganizationType:
		return acceptStep(ctx, s, sess, raw, validation.OrganizationType, env)

	case wizard.StepPersonalDetails:
		return acceptStep(ctx, s, sess, raw, validation.PersonalDetails, env)

	case wizard.StepCompanyDetails:
		return acceptStep(ctx, s, sess, raw, validation.CompanyDetails, env)

	case wizard.StepExperience:
		return false, nil, s.submitExperience(sess, raw, env)

	case wizard.StepICard:
		auth, err := s.complete(ctx, sess)
		if err != nil {
			return false, nil, err
		}
		return true, auth, nil

	default:
		return false, nil, errors.WizardStepInvalid
	}
}

// acceptStep 通用步骤：校验、合并；最后一步通过即为最终提交
func acceptStep[T model.Partial](
	ctx context.Context,
	s *OnboardingService,
	sess *wizard.Session,
	raw []byte,
	rules *validation.Ruleset[T],
	env validation.Env,
) (bool, *AuthResult, error) {
	form, err := decodeAndCheck(raw, rules, env)
	if err != nil {
		return false, nil, err
	}
	if !sess.Advance(form) {
		return false, nil, nil
	}
	auth, err := s.register(ctx, sess)
	if err != nil {
		return false, nil, err
	}
	return true, auth, nil
}

func (s *OnboardingService) submitSignup(ctx context.Context, sess *wizard.Session, raw []byte, env validation.Env) error {
	switch sess.Kind {
	case model.KindSeeker:
		form, err := decodeAndCheck(raw, validation.SeekerSignup, env)
		if err != nil {
			return err
		}
		if err := s.verifySent(ctx, sess, map[wizard.Channel]codeField{
			wizard.ChannelEmail: {field: "email_otp", destination: form.Email, code: form.EmailOTP},
			wizard.ChannelPhone: {field: "mobile_otp", destination: form.Mobile, code: form.MobileOTP},
		}); err != nil {
			return err
		}
		sess.Advance(form)
		return nil

	case model.KindBusiness:
		form, err := decodeAndCheck(raw, validation.BusinessSignup, env)
		if err != nil {
			return err
		}
		if err := s.verifySent(ctx, sess, map[wizard.Channel]codeField{
			wizard.ChannelEmail: {field: "email_otp", destination: form.Email, code: form.EmailOTP},
			wizard.ChannelPhone: {field: "phone_otp", destination: form.Phone, code: form.PhoneOTP},
		}); err != nil {
			return err
		}
		sess.Advance(form)
		return nil

	default:
		return errors.WizardKindInvalid
	}
}

type codeField struct {
	field       string
	destination string
	code        string
}

// verifySent 只校验本次会话已发送过的渠道；验证码按表单中的联系方式查找
// 全部通过后才消耗验证码，部分失败时用户可以直接重试
func (s *OnboardingService) verifySent(ctx context.Context, sess *wizard.Session, fields map[wizard.Channel]codeField) error {
	errs := validation.FieldErrors{}
	var matched []wizard.Channel

	for _, ch := range []wizard.Channel{wizard.ChannelEmail, wizard.ChannelPhone} {
		st := sess.CodeState(ch)
		if !st.Sent {
			continue
		}
		f := fields[ch]
		if st.Verified && sameDestination(st.Destination, f.destination) {
			continue
		}

		ok, err := s.verifier.MatchCode(ctx, ch, f.destination, f.code)
		if err != nil {
			return err
		}
		if !ok {
			errs.Add(f.field, errors.VerificationCodeInvalid.Message)
			continue
		}
		matched = append(matched, ch)
	}
	if err := errs.Err(); err != nil {
		return err
	}

	for _, ch := range matched {
		f := fields[ch]
		s.verifier.Invalidate(ctx, ch, f.destination)
		sess.SetCodeState(ch, wizard.ChannelState{Sent: true, Destination: f.destination, Verified: true})
	}
	return nil
}

func sameDestination(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// submitExperience 请求体可选；带了则整体替换编辑表后再提交
func (s *OnboardingService) submitExperience(sess *wizard.Session, raw []byte, env validation.Env) error {
	if !emptyBody(raw) {
		var form model.ExperienceForm
		if err := json.Unmarshal(raw, &form); err != nil {
			return errors.InvalidRequest
		}
		sess.Sheet = wizard.ExperienceSheet{Fresher: form.Fresher, Records: form.Experiences}
		if form.Fresher || sess.Sheet.Records == nil {
			sess.Sheet.Records = []model.EmploymentRecord{}
		}
	}

	form := sess.Sheet.Form()
	if err := validation.Experience(form, env).Err(); err != nil {
		return err
	}
	if form.Fresher {
		form.Experiences = []model.EmploymentRecord{}
	}
	sess.Advance(form)
	return nil
}

// SendCode 只能在注册页发送；联系方式格式错误按字段报错，不会发送
func (s *OnboardingService) SendCode(ctx context.Context, id string, req SendCodeRequest, remoteIP string) (*wizard.View, error) {
	if !req.Channel.Valid() {
		return nil, errors.CodeChannelInvalid
	}

	return s.viewAfter(ctx, id, func(sess *wizard.Session) (bool, error) {
		if sess.Current() != wizard.StepSignup {
			return false, errors.WizardStepInvalid
		}

		destination := strings.TrimSpace(req.Destination)
		if err := checkDestination(sess.Kind, req.Channel, destination); err != nil {
			return false, err
		}

		if err := s.verifier.SendCode(ctx, req.Channel, destination, req.SliderToken, remoteIP); err != nil {
			return false, err
		}

		sess.SetCodeState(req.Channel, wizard.ChannelState{Sent: true, Destination: destination})
		return false, nil
	})
}

func checkDestination(kind model.AccountKind, ch wizard.Channel, destination string) error {
	errs := validation.FieldErrors{}
	switch ch {
	case wizard.ChannelEmail:
		if !utils.ValidateEmail(destination) {
			errs.Add("email", "Invalid email address")
		}
	case wizard.ChannelPhone:
		if kind == model.KindBusiness {
			if !utils.ValidatePhone(destination) {
				errs.Add("phone", "Phone number must be 10 digits")
			}
		} else if !utils.ValidatePhone(destination) {
			errs.Add("mobile", "Mobile number must be 10 digits")
		}
	}
	return errs.Err()
}

func (s *OnboardingService) SetFresher(ctx context.Context, id string, on bool) (*wizard.View, error) {
	return s.editSheet(ctx, id, func(sheet *wizard.ExperienceSheet) error {
		sheet.SetFresher(on)
		return nil
	})
}

func (s *OnboardingService) AddRecord(ctx context.Context, id string) (*wizard.View, error) {
	return s.editSheet(ctx, id, func(sheet *wizard.ExperienceSheet) error {
		sheet.Add()
		return nil
	})
}

func (s *OnboardingService) UpdateRecord(ctx context.Context, id string, index int, rec model.EmploymentRecord) (*wizard.View, error) {
	return s.editSheet(ctx, id, func(sheet *wizard.ExperienceSheet) error {
		if !sheet.Update(index, rec) {
			return errors.ExperienceIndexInvalid
		}
		return nil
	})
}

func (s *OnboardingService) RemoveRecord(ctx context.Context, id string, index int) (*wizard.View, error) {
	return s.editSheet(ctx, id, func(sheet *wizard.ExperienceSheet) error {
		if !sheet.Remove(index) {
			return errors.ExperienceIndexInvalid
		}
		return nil
	})
}

func (s *OnboardingService) editSheet(ctx context.Context, id string, fn func(sheet *wizard.ExperienceSheet) error) (*wizard.View, error) {
	return s.viewAfter(ctx, id, func(sess *wizard.Session) (bool, error) {
		if sess.Current() != wizard.StepExperience {
			return false, errors.WizardStepInvalid
		}
		return false, fn(&sess.Sheet)
	})
}

// ICard 信息卡只在求职者的最后一步可用
func (s *OnboardingService) ICard(ctx context.Context, id string) (*wizard.ICard, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Current() != wizard.StepICard {
		return nil, errors.WizardStepInvalid
	}
	card := wizard.BuildICard(sess.Draft.Seeker, sess.ICardConfirmed, s.now())
	return &card, nil
}

func (s *OnboardingService) ConfirmICard(ctx context.Context, id string) (*wizard.ICard, error) {
	var card wizard.ICard
	_, err := s.mutate(ctx, id, func(sess *wizard.Session) (bool, error) {
		if sess.Current() != wizard.StepICard {
			return false, errors.WizardStepInvalid
		}
		sess.ICardConfirmed = true
		card = wizard.BuildICard(sess.Draft.Seeker, true, s.now())
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// CompleteICard 求职者的最终提交，必须先确认信息卡
func (s *OnboardingService) CompleteICard(ctx context.Context, id string) (*SubmitResult, error) {
	var result SubmitResult
	_, err := s.mutate(ctx, id, func(sess *wizard.Session) (bool, error) {
		if sess.Current() != wizard.StepICard {
			return false, errors.WizardStepInvalid
		}
		auth, err := s.complete(ctx, sess)
		metrics.RecordStepOutcome(ctx, string(sess.Kind), string(wizard.StepICard), stepOutcome(err))
		if err != nil {
			return false, err
		}
		result.Completed = true
		result.Auth = auth
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *OnboardingService) complete(ctx context.Context, sess *wizard.Session) (*AuthResult, error) {
	if !sess.ICardConfirmed {
		return nil, errors.ICardNotConfirmed
	}
	return s.register(ctx, sess)
}

func (s *OnboardingService) register(ctx context.Context, sess *wizard.Session) (*AuthResult, error) {
	auth, err := s.registrar.Register(ctx, sess.Kind, sess.Draft)
	if err != nil {
		return nil, err
	}
	logger.Logger.Info("Wizard completed",
		zap.String("wizard_id", sess.ID),
		zap.String("kind", string(sess.Kind)),
		zap.String("account_id", auth.AccountID),
	)
	return auth, nil
}

func (s *OnboardingService) env(sess *wizard.Session) validation.Env {
	return validation.Env{
		Today:         s.now(),
		EmailCodeSent: sess.CodeState(wizard.ChannelEmail).Sent,
		PhoneCodeSent: sess.CodeState(wizard.ChannelPhone).Sent,
	}
}

func (s *OnboardingService) load(ctx context.Context, id string) (*wizard.Session, error) {
	sess, err := s.sessions.GetSession(ctx, id)
	if stderrors.Is(err, cache.ErrNotFound) {
		return nil, errors.WizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard: %w", err)
	}
	return sess, nil
}

func (s *OnboardingService) viewAfter(ctx context.Context, id string, fn func(sess *wizard.Session) (bool, error)) (*wizard.View, error) {
	sess, err := s.mutate(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	view := sess.View()
	return &view, nil
}

// mutate 加锁读出会话，fn 成功后写回并刷新过期时间；done 为 true 时删除会话
// fn 返回错误时不写回，会话保持操作前的状态
func (s *OnboardingService) mutate(ctx context.Context, id string, fn func(sess *wizard.Session) (done bool, err error)) (*wizard.Session, error) {
	key := "wizard:" + id
	token, err := s.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			logger.Logger.Warn("Failed to release wizard lock", zap.String("wizard_id", id), zap.Error(err))
		}
	}()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	done, err := fn(sess)
	if err != nil {
		return nil, err
	}

	if done {
		if err := s.sessions.DeleteSession(ctx, id); err != nil {
			logger.Logger.Warn("Failed to delete completed wizard", zap.String("wizard_id", id), zap.Error(err))
		}
		return sess, nil
	}

	sess.UpdatedAt = s.now()
	if err := s.sessions.SaveSession(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save wizard: %w", err)
	}
	return sess, nil
}

func (s *OnboardingService) acquire(ctx context.Context, key string) (string, error) {
	for i := 0; i < lockAttempts; i++ {
		token, ok, err := s.locker.TryLock(ctx, key, lockTTL)
		if err != nil {
			return "", fmt.Errorf("failed to lock wizard: %w", err)
		}
		if ok {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockRetryWait):
		}
	}
	return "", errors.WizardBusy
}

// decodeAndCheck 解析失败返回 INVALID_REQUEST，校验失败返回字段错误
func decodeAndCheck[T any](raw []byte, rules *validation.Ruleset[T], env validation.Env) (T, error) {
	var form T
	if !emptyBody(raw) {
		if err := json.Unmarshal(raw, &form); err != nil {
			return form, errors.InvalidRequest
		}
	}
	if err := rules.Check(form, env).Err(); err != nil {
		return form, err
	}
	return form, nil
}

func emptyBody(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func stepOutcome(err error) string {
	var fe validation.FieldErrors
	switch {
	case err == nil:
		return "accepted"
	case stderrors.As(err, &fe):
		return "rejected"
	default:
		return "failed"
	}
}
