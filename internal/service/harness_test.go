package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"Pantiss/config"
	"Pantiss/internal/cache"
	"Pantiss/internal/model"
	"Pantiss/internal/queue"
	"Pantiss/internal/repository"
	"Pantiss/internal/wizard"
	"Pantiss/pkg/mail"
	"Pantiss/pkg/slider"
	"Pantiss/pkg/sms"
	"Pantiss/pkg/token"
	"Pantiss/utils"
)

// harness 全部依赖使用进程内实现
type harness struct {
	ctx      context.Context
	now      time.Time
	store    *cache.Memory
	repo     *repository.MemoryAccountRepository
	sms      *sms.MockClient
	mailer   *mail.MockSender
	verifier *VerificationService
	accounts *AccountService
	wizards  *OnboardingService
}

func newHarness(t *testing.T, policy CodePolicy, sliderClient slider.Client) *harness {
	t.Helper()

	config.Cfg.JWTSecret = "test-secret"
	config.Cfg.JWTExpireMinutes = 30
	config.Cfg.JWTRefreshDays = 7
	require.NoError(t, token.Init())

	h := &harness{
		ctx:    context.Background(),
		now:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		store:  cache.NewMemory(),
		repo:   repository.NewMemoryAccountRepository(),
		sms:    sms.NewMockClient(),
		mailer: &mail.MockSender{},
	}
	clock := func() time.Time { return h.now }
	h.store.SetClock(clock)

	events := queue.NewInline(queue.NewWorker(h.mailer, h.sms, h.store))

	h.verifier = NewVerificationService(h.store, NewDispatchSender(h.sms, events), sliderClient, policy)
	h.verifier.now = clock

	var seq int64 = 1000
	h.accounts = NewAccountService(h.repo, h.store, h.store, events, "")
	h.accounts.idGen = func() (int64, error) {
		seq++
		return seq, nil
	}
	h.accounts.now = clock

	h.wizards = NewOnboardingService(h.store, h.store, h.verifier, h.accounts, h.accounts, time.Hour)
	h.wizards.now = clock
	return h
}

// code 读取最近一次发送的验证码
func (h *harness) code(t *testing.T, ch wizard.Channel, destination string) string {
	t.Helper()
	code, err := h.store.GetCode(h.ctx, string(ch), utils.HashContact(destination))
	require.NoError(t, err)
	return code
}

func blob(id string) *model.BlobHandle {
	return &model.BlobHandle{ID: id, Name: id + ".png", ContentType: "image/png", Size: 1024}
}

func seekerDraft() model.Draft {
	d := model.NewDraft(model.KindSeeker)
	s := d.Seeker
	s.Name = "Asha Rao"
	s.Email = "asha@example.com"
	s.Mobile = "9876543210"
	s.Password = "secret123"
	s.ConfirmPassword = "secret123"
	s.JobRole = "Designer"
	s.DOB = "1990-05-01"
	s.Aadhar = "123412341234"
	s.Bio = "Product designer"
	s.Experiences = []model.EmploymentRecord{
		{Company: "Acme", Role: "Designer", FromDate: "2020-01-01", ToDate: "2022-07-01", Tenure: "2 years, 6 months", LastIncome: 50000},
	}
	return d
}

func businessDraft() model.Draft {
	d := model.NewDraft(model.KindBusiness)
	b := d.Business
	b.RecruiterName = "Ravi Kumar"
	b.Email = "ravi@example.com"
	b.Phone = "9123456780"
	b.Password = "secret123"
	b.ConfirmPassword = "secret123"
	b.OrganizationType = model.OrganizationTypeOrganization
	b.CompanyName = "Acme Works"
	return d
}
