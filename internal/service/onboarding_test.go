package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"Pantiss/internal/model"
	"Pantiss/internal/validation"
	"Pantiss/internal/wizard"
	"Pantiss/pkg/errors"
)

type OnboardingSuite struct {
	suite.Suite
	h *harness
}

func TestOnboardingSuite(t *testing.T) {
	suite.Run(t, new(OnboardingSuite))
}

func (s *OnboardingSuite) SetupTest() {
	s.h = newHarness(s.T(), CodePolicy{TTL: 10 * time.Minute}, nil)
}

func (s *OnboardingSuite) body(v interface{}) []byte {
	data, err := json.Marshal(v)
	s.Require().NoError(err)
	return data
}

// fieldErrors 断言错误为字段错误并返回
func (s *OnboardingSuite) fieldErrors(err error) validation.FieldErrors {
	var fe validation.FieldErrors
	s.Require().ErrorAs(err, &fe)
	return fe
}

func (s *OnboardingSuite) create(kind model.AccountKind) string {
	view, err := s.h.wizards.Create(s.h.ctx, kind)
	s.Require().NoError(err)
	s.Equal(wizard.StepLogin, view.Step)
	return view.ID
}

func (s *OnboardingSuite) toSignup(kind model.AccountKind) string {
	id := s.create(kind)
	view, err := s.h.wizards.BeginSignup(s.h.ctx, id)
	s.Require().NoError(err)
	s.Equal(wizard.StepSignup, view.Step)
	return id
}

func (s *OnboardingSuite) submit(id string, v interface{}) *SubmitResult {
	res, err := s.h.wizards.Submit(s.h.ctx, id, s.body(v))
	s.Require().NoError(err)
	return res
}

func seekerSignupForm() model.SeekerSignupForm {
	return model.SeekerSignupForm{
		Name:            "Asha Rao",
		Email:           "asha@example.com",
		Mobile:          "9876543210",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func personalDetailsForm() model.PersonalDetailsForm {
	return model.PersonalDetailsForm{
		DOB:         "1990-05-01",
		Aadhar:      "123412341234",
		AadharFile:  blob("aadhar"),
		ProfilePic:  blob("pic"),
		Certificate: blob("cert"),
		License:     blob("license"),
		Bio:         "Designer with five years of product work",
	}
}

func (s *OnboardingSuite) TestCreateRejectsUnknownKind() {
	_, err := s.h.wizards.Create(s.h.ctx, model.AccountKind("admin"))
	s.ErrorIs(err, errors.WizardKindInvalid)
}

func (s *OnboardingSuite) TestUnknownWizard() {
	_, err := s.h.wizards.Get(s.h.ctx, "missing")
	s.ErrorIs(err, errors.WizardNotFound)

	_, err = s.h.wizards.Back(s.h.ctx, "missing")
	s.ErrorIs(err, errors.WizardNotFound)
}

func (s *OnboardingSuite) TestSeekerHappyPath() {
	ctx := s.h.ctx
	id := s.toSignup(model.KindSeeker)

	_, err := s.h.wizards.SendCode(ctx, id, SendCodeRequest{Channel: wizard.ChannelEmail, Destination: "asha@example.com"}, "")
	s.Require().NoError(err)
	view, err := s.h.wizards.SendCode(ctx, id, SendCodeRequest{Channel: wizard.ChannelPhone, Destination: "9876543210"}, "")
	s.Require().NoError(err)
	s.True(view.Codes[wizard.ChannelEmail].Sent)
	s.True(view.Codes[wizard.ChannelPhone].Sent)

	form := seekerSignupForm()
	form.EmailOTP = s.h.code(s.T(), wizard.ChannelEmail, "asha@example.com")
	form.MobileOTP = s.h.code(s.T(), wizard.ChannelPhone, "9876543210")
	res := s.submit(id, form)
	s.Equal(wizard.StepJobRole, res.Wizard.Step)
	s.True(res.Wizard.Codes[wizard.ChannelEmail].Verified)
	s.Empty(res.Wizard.Draft.Seeker.Password)

	res = s.submit(id, model.JobRoleForm{JobRole: "Designer"})
	s.Equal(wizard.StepPersonalDetails, res.Wizard.Step)

	res = s.submit(id, personalDetailsForm())
	s.Equal(wizard.StepExperience, res.Wizard.Step)

	_, err = s.h.wizards.UpdateRecord(ctx, id, 0, model.EmploymentRecord{
		Company: "Acme", Role: "Designer", FromDate: "2020-01-01", ToDate: "2022-07-01", Tenure: "bogus", LastIncome: 1000,
	})
	s.Require().NoError(err)
	res, err = s.h.wizards.Submit(ctx, id, nil)
	s.Require().NoError(err)
	s.Equal(wizard.StepICard, res.Wizard.Step)
	s.Equal("2 years, 6 months", res.Wizard.Draft.Seeker.Experiences[0].Tenure)

	card, err := s.h.wizards.ICard(ctx, id)
	s.Require().NoError(err)
	s.Equal("Designer", card.Designation)
	s.Equal("35 years", card.Age)
	s.Equal("2.5 years", card.TotalExperience)
	s.Equal(wizard.ICardActionConfirm, card.Action)

	_, err = s.h.wizards.CompleteICard(ctx, id)
	s.ErrorIs(err, errors.ICardNotConfirmed)

	card, err = s.h.wizards.ConfirmICard(ctx, id)
	s.Require().NoError(err)
	s.True(card.Confirmed)
	s.Equal(wizard.ICardActionGoToProfile, card.Action)

	done, err := s.h.wizards.CompleteICard(ctx, id)
	s.Require().NoError(err)
	s.True(done.Completed)
	s.Require().NotNil(done.Auth)
	s.Equal(wizard.DashboardRoute(model.KindSeeker), done.Auth.Route)

	_, err = s.h.wizards.Get(ctx, id)
	s.ErrorIs(err, errors.WizardNotFound)

	acc, err := s.h.repo.FindByEmail(ctx, model.KindSeeker, "asha@example.com")
	s.Require().NoError(err)
	s.Equal("Asha Rao", acc.DisplayName)
}

func (s *OnboardingSuite) TestBusinessHappyPathAndDuplicate() {
	ctx := s.h.ctx
	register := func() (string, error) {
		id := s.toSignup(model.KindBusiness)
		s.submit(id, model.BusinessSignupForm{
			RecruiterName:   "Ravi Kumar",
			Email:           "ravi@example.com",
			Phone:           "9123456780",
			Password:        "secret123",
			ConfirmPassword: "secret123",
		})
		res := s.submit(id, model.OrganizationTypeForm{OrganizationType: model.OrganizationTypeNanoContractor})
		s.Equal(wizard.StepCompanyDetails, res.Wizard.Step)

		_, err := s.h.wizards.Submit(ctx, id, s.body(model.CompanyDetailsForm{
			CompanyName:        "Acme Works",
			CompanyLogo:        blob("logo"),
			ProfilePic:         blob("pic"),
			Location:           "Pune",
			NumberOfEmployees:  "10-50",
			CompanyDescription: "We build small things",
			Address:            "12 MG Road",
			Website:            "https://acme.example.com",
		}))
		return id, err
	}

	id, err := register()
	s.Require().NoError(err)
	_, err = s.h.wizards.Get(ctx, id)
	s.ErrorIs(err, errors.WizardNotFound)

	id, err = register()
	s.ErrorIs(err, errors.EmailAlreadyRegistered)

	// 注册失败时向导停留在最后一步，草稿未改动
	view, err := s.h.wizards.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(wizard.StepCompanyDetails, view.Step)
	s.Empty(view.Draft.Business.CompanyName)
}

func (s *OnboardingSuite) TestSignupRejectionKeepsWizard() {
	id := s.toSignup(model.KindSeeker)

	form := seekerSignupForm()
	form.ConfirmPassword = "different"
	form.Mobile = "12345"
	_, err := s.h.wizards.Submit(s.h.ctx, id, s.body(form))
	fe := s.fieldErrors(err)
	s.Equal("Passwords must match", fe["confirm_password"])
	s.Equal("Mobile number must be 10 digits", fe["mobile"])

	view, err := s.h.wizards.Get(s.h.ctx, id)
	s.Require().NoError(err)
	s.Equal(wizard.StepSignup, view.Step)
	s.Empty(view.Draft.Seeker.Name)
}

func (s *OnboardingSuite) TestSignupOTPRequiredOnlyWhenSent() {
	id := s.toSignup(model.KindSeeker)
	_, err := s.h.wizards.SendCode(s.h.ctx, id, SendCodeRequest{Channel: wizard.ChannelEmail, Destination: "asha@example.com"}, "")
	s.Require().NoError(err)

	_, err = s.h.wizards.Submit(s.h.ctx, id, s.body(seekerSignupForm()))
	fe := s.fieldErrors(err)
	s.Equal("Email OTP must be 6 digits", fe["email_otp"])
	s.NotContains(fe, "mobile_otp")
}

func (s *OnboardingSuite) TestWrongCodeCanBeRetried() {
	id := s.toSignup(model.KindSeeker)
	_, err := s.h.wizards.SendCode(s.h.ctx, id, SendCodeRequest{Channel: wizard.ChannelEmail, Destination: "asha@example.com"}, "")
	s.Require().NoError(err)
	code := s.h.code(s.T(), wizard.ChannelEmail, "asha@example.com")

	form := seekerSignupForm()
	form.EmailOTP = "000000"
	if code == form.EmailOTP {
		form.EmailOTP = "111111"
	}
	_, err = s.h.wizards.Submit(s.h.ctx, id, s.body(form))
	fe := s.fieldErrors(err)
	s.Equal(errors.VerificationCodeInvalid.Message, fe["email_otp"])

	form.EmailOTP = code
	res := s.submit(id, form)
	s.Equal(wizard.StepJobRole, res.Wizard.Step)
}

func (s *OnboardingSuite) TestCodeForDifferentEmailIsRejected() {
	id := s.toSignup(model.KindSeeker)
	_, err := s.h.wizards.SendCode(s.h.ctx, id, SendCodeRequest{Channel: wizard.ChannelEmail, Destination: "asha@example.com"}, "")
	s.Require().NoError(err)

	form := seekerSignupForm()
	form.Email = "someone.else@example.com"
	form.EmailOTP = s.h.code(s.T(), wizard.ChannelEmail, "asha@example.com")
	_, err = s.h.wizards.Submit(s.h.ctx, id, s.body(form))
	s.Contains(s.fieldErrors(err), "email_otp")
}

func (s *OnboardingSuite) TestSendCodeRules() {
	ctx := s.h.ctx

	id := s.create(model.KindBusiness)
	_, err := s.h.wizards.SendCode(ctx, id, SendCodeRequest{Channel: wizard.ChannelEmail, Destination: "ravi@example.com"}, "")
	s.ErrorIs(err, errors.WizardStepInvalid)

	_, err = s.h.wizards.BeginSignup(ctx, id)
	s.Require().NoError(err)

	_, err = s.h.wizards.SendCode(ctx, id, SendCodeRequest{Channel: wizard.ChannelPhone, Destination: "12"}, "")
	s.Equal("Phone number must be 10 digits", s.fieldErrors(err)["phone"])

	_, err = s.h.wizards.SendCode(ctx, id, SendCodeRequest{Channel: wizard.ChannelEmail, Destination: "nope"}, "")
	s.Equal("Invalid email address", s.fieldErrors(err)["email"])

	_, err = s.h.wizards.SendCode(ctx, id, SendCodeRequest{Channel: "pigeon", Destination: "x"}, "")
	s.ErrorIs(err, errors.CodeChannelInvalid)

	s.Empty(s.h.sms.Calls())
	s.Empty(s.h.mailer.Sent())
}

func (s *OnboardingSuite) TestSendCodeFailureLeavesFlag() {
	id := s.toSignup(model.KindSeeker)
	s.h.sms.FailNext()

	_, err := s.h.wizards.SendCode(s.h.ctx, id, SendCodeRequest{Channel: wizard.ChannelPhone, Destination: "9876543210"}, "")
	s.ErrorIs(err, errors.CodeDispatchFailed)

	view, err := s.h.wizards.Get(s.h.ctx, id)
	s.Require().NoError(err)
	s.False(view.Codes[wizard.ChannelPhone].Sent)
}

func (s *OnboardingSuite) TestBackNeverValidates() {
	ctx := s.h.ctx
	id := s.create(model.KindSeeker)

	view, err := s.h.wizards.Back(ctx, id)
	s.Require().NoError(err)
	s.Equal(wizard.StepLogin, view.Step)

	_, err = s.h.wizards.BeginSignup(ctx, id)
	s.Require().NoError(err)
	s.submit(id, seekerSignupForm())

	view, err = s.h.wizards.Back(ctx, id)
	s.Require().NoError(err)
	s.Equal(wizard.StepSignup, view.Step)
	s.Equal("Asha Rao", view.Draft.Seeker.Name)

	_, err = s.h.wizards.BeginSignup(ctx, id)
	s.ErrorIs(err, errors.WizardStepInvalid)
}

func (s *OnboardingSuite) TestLoginStep() {
	ctx := s.h.ctx
	_, err := s.h.accounts.Register(ctx, model.KindSeeker, seekerDraft())
	s.Require().NoError(err)

	id := s.create(model.KindSeeker)

	_, err = s.h.wizards.Submit(ctx, id, s.body(model.LoginForm{Email: "bad", Password: "1"}))
	fe := s.fieldErrors(err)
	s.Contains(fe, "email")
	s.Contains(fe, "password")

	_, err = s.h.wizards.Submit(ctx, id, s.body(model.LoginForm{Email: "asha@example.com", Password: "wrong-one"}))
	s.ErrorIs(err, errors.LoginFailed)

	res := s.submit(id, model.LoginForm{Email: "asha@example.com", Password: "secret123"})
	s.Require().NotNil(res.Auth)
	s.Equal(wizard.DashboardRoute(model.KindSeeker), res.Auth.Route)
	s.Equal(wizard.StepLogin, res.Wizard.Step)
}

func (s *OnboardingSuite) TestMalformedBody() {
	id := s.create(model.KindSeeker)
	_, err := s.h.wizards.Submit(s.h.ctx, id, []byte("{not json"))
	s.ErrorIs(err, errors.InvalidRequest)
}

func (s *OnboardingSuite) toExperience() string {
	id := s.toSignup(model.KindSeeker)
	s.submit(id, seekerSignupForm())
	s.submit(id, model.JobRoleForm{JobRole: "Data Analyst"})
	res := s.submit(id, personalDetailsForm())
	s.Require().Equal(wizard.StepExperience, res.Wizard.Step)
	return id
}

func (s *OnboardingSuite) TestExperienceSheetEdits() {
	ctx := s.h.ctx
	id := s.toExperience()

	view, err := s.h.wizards.AddRecord(ctx, id)
	s.Require().NoError(err)
	s.Len(view.Sheet.Records, 2)

	_, err = s.h.wizards.UpdateRecord(ctx, id, 5, model.EmploymentRecord{})
	s.ErrorIs(err, errors.ExperienceIndexInvalid)
	_, err = s.h.wizards.RemoveRecord(ctx, id, -1)
	s.ErrorIs(err, errors.ExperienceIndexInvalid)

	view, err = s.h.wizards.RemoveRecord(ctx, id, 1)
	s.Require().NoError(err)
	s.Len(view.Sheet.Records, 1)

	// 空记录提交被拒绝
	_, err = s.h.wizards.Submit(ctx, id, nil)
	fe := s.fieldErrors(err)
	s.Equal("Company name is required", fe["experiences[0].company"])

	view, err = s.h.wizards.SetFresher(ctx, id, true)
	s.Require().NoError(err)
	s.Empty(view.Sheet.Records)

	view, err = s.h.wizards.SetFresher(ctx, id, false)
	s.Require().NoError(err)
	s.Len(view.Sheet.Records, 1)

	_, err = s.h.wizards.SetFresher(ctx, id, true)
	s.Require().NoError(err)
	res, err := s.h.wizards.Submit(ctx, id, nil)
	s.Require().NoError(err)
	s.Equal(wizard.StepICard, res.Wizard.Step)
	s.Empty(res.Wizard.Draft.Seeker.Experiences)
}

func (s *OnboardingSuite) TestExperienceSubmitBodyReplacesSheet() {
	id := s.toExperience()

	res := s.submit(id, model.ExperienceForm{Experiences: []model.EmploymentRecord{
		{Company: "Acme", Role: "Analyst", FromDate: "2021-03-15", ToDate: "2022-03-14", LastIncome: 10},
	}})
	s.Equal(wizard.StepICard, res.Wizard.Step)
	s.Equal("11 months", res.Wizard.Draft.Seeker.Experiences[0].Tenure)
}

func (s *OnboardingSuite) TestGoingBackFromICardNeedsNewConfirmation() {
	ctx := s.h.ctx
	id := s.toExperience()
	s.submit(id, model.ExperienceForm{Experiences: []model.EmploymentRecord{
		{Company: "Acme", Role: "Analyst", FromDate: "2021-03-15", ToDate: "2022-03-14", LastIncome: 10},
	}})

	card, err := s.h.wizards.ConfirmICard(ctx, id)
	s.Require().NoError(err)
	s.True(card.Confirmed)

	view, err := s.h.wizards.Back(ctx, id)
	s.Require().NoError(err)
	s.Equal(wizard.StepExperience, view.Step)
	s.False(view.ICardConfirmed)

	res := s.submit(id, model.ExperienceForm{Experiences: []model.EmploymentRecord{
		{Company: "Acme", Role: "Analyst", FromDate: "2020-03-15", ToDate: "2022-03-15", LastIncome: 10},
	}})
	s.Require().Equal(wizard.StepICard, res.Wizard.Step)

	card, err = s.h.wizards.ICard(ctx, id)
	s.Require().NoError(err)
	s.False(card.Confirmed)
	s.Equal(wizard.ICardActionConfirm, card.Action)
	s.Equal("2.0 years", card.TotalExperience)

	_, err = s.h.wizards.CompleteICard(ctx, id)
	s.ErrorIs(err, errors.ICardNotConfirmed)
}

func (s *OnboardingSuite) TestSheetEditsOnlyAtExperienceStep() {
	id := s.toSignup(model.KindSeeker)
	_, err := s.h.wizards.AddRecord(s.h.ctx, id)
	s.ErrorIs(err, errors.WizardStepInvalid)

	_, err = s.h.wizards.ICard(s.h.ctx, id)
	s.ErrorIs(err, errors.WizardStepInvalid)
}

func (s *OnboardingSuite) TestBusyWizard() {
	id := s.create(model.KindSeeker)
	_, ok, err := s.h.store.TryLock(s.h.ctx, "wizard:"+id, time.Minute)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, err = s.h.wizards.Back(s.h.ctx, id)
	s.ErrorIs(err, errors.WizardBusy)
}

func (s *OnboardingSuite) TestBusyWizardHonoursContext() {
	id := s.create(model.KindSeeker)
	_, _, err := s.h.store.TryLock(s.h.ctx, "wizard:"+id, time.Minute)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.h.ctx)
	cancel()
	_, err = s.h.wizards.Back(ctx, id)
	s.ErrorIs(err, context.Canceled)
}

func (s *OnboardingSuite) TestDiscard() {
	id := s.create(model.KindBusiness)
	s.Require().NoError(s.h.wizards.Discard(s.h.ctx, id))
	s.ErrorIs(s.h.wizards.Discard(s.h.ctx, id), errors.WizardNotFound)
}

func (s *OnboardingSuite) TestWizardExpires() {
	id := s.create(model.KindBusiness)
	s.h.now = s.h.now.Add(2 * time.Hour)
	_, err := s.h.wizards.Get(s.h.ctx, id)
	s.ErrorIs(err, errors.WizardNotFound)
}
