package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/suite"

	"Pantiss/config"
	"Pantiss/internal/cache"
	"Pantiss/internal/handler"
	"Pantiss/internal/middleware"
	"Pantiss/internal/model"
	"Pantiss/internal/queue"
	"Pantiss/internal/repository"
	"Pantiss/internal/router"
	"Pantiss/internal/service"
	"Pantiss/internal/wizard"
	"Pantiss/pkg/mail"
	"Pantiss/pkg/sms"
	"Pantiss/pkg/snowflake"
	"Pantiss/pkg/token"
	"Pantiss/utils"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type APISuite struct {
	suite.Suite
	engine *route.Engine
	store  *cache.Memory
	mailer *mail.MockSender
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupSuite() {
	config.Cfg.JWTSecret = "handler-test-secret"
	config.Cfg.JWTExpireMinutes = 30
	config.Cfg.JWTRefreshDays = 7
	config.Cfg.RateLimitEnabled = false
	config.Cfg.CSRFEnabled = false
	s.Require().NoError(token.Init())
	s.Require().NoError(middleware.Init())
	s.Require().NoError(snowflake.Init(1, 1))
}

func (s *APISuite) SetupTest() {
	s.store = cache.NewMemory()
	s.mailer = &mail.MockSender{}
	smsClient := sms.NewMockClient()
	repo := repository.NewMemoryAccountRepository()
	events := queue.NewInline(queue.NewWorker(s.mailer, smsClient, s.store))

	verifier := service.NewVerificationService(s.store, service.NewDispatchSender(smsClient, events), nil,
		service.CodePolicy{TTL: 10 * time.Minute})
	accounts := service.NewAccountService(repo, s.store, s.store, events, "")
	wizards := service.NewOnboardingService(s.store, s.store, verifier, accounts, accounts, time.Hour)

	h := server.New()
	router.Register(h, handler.New(wizards, accounts))
	s.engine = h.Engine
}

func (s *APISuite) do(method, path string, body interface{}, headers ...ut.Header) (int, envelope) {
	var buf []byte
	switch b := body.(type) {
	case nil:
	case string:
		buf = []byte(b)
	default:
		data, err := json.Marshal(b)
		s.Require().NoError(err)
		buf = data
	}

	headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	w := ut.PerformRequest(s.engine, method, path, &ut.Body{Body: bytes.NewReader(buf), Len: len(buf)}, headers...)
	resp := w.Result()

	var env envelope
	if len(resp.Body()) > 0 {
		s.Require().NoError(json.Unmarshal(resp.Body(), &env), string(resp.Body()))
	}
	return resp.StatusCode(), env
}

func (s *APISuite) decode(raw json.RawMessage, v interface{}) {
	s.Require().NoError(json.Unmarshal(raw, v))
}

func bearer(tok string) ut.Header {
	return ut.Header{Key: "Authorization", Value: "Bearer " + tok}
}

// createAtSignup 新建向导并进入注册步骤
func (s *APISuite) createAtSignup(kind model.AccountKind) string {
	status, env := s.do(http.MethodPost, "/v1/wizards", map[string]string{"kind": string(kind)})
	s.Require().Equal(http.StatusCreated, status)
	var view wizard.View
	s.decode(env.Data, &view)
	s.Equal(wizard.StepLogin, view.Step)

	status, env = s.do(http.MethodPost, "/v1/wizards/"+view.ID+"/signup", nil)
	s.Require().Equal(http.StatusOK, status)
	s.decode(env.Data, &view)
	s.Equal(wizard.StepSignup, view.Step)
	return view.ID
}

func (s *APISuite) TestHealthAndCatalog() {
	status, _ := s.do(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, status)

	status, env := s.do(http.MethodGet, "/v1/catalog", nil)
	s.Require().Equal(http.StatusOK, status)
	var catalog service.Catalog
	s.decode(env.Data, &catalog)
	s.Equal([]string{"organization", "nano-contractor"}, catalog.OrganizationTypes)
	s.NotEmpty(catalog.JobRoles)
}

func (s *APISuite) TestCreateWizardErrors() {
	status, env := s.do(http.MethodPost, "/v1/wizards", map[string]string{"kind": "admin"})
	s.Equal(http.StatusBadRequest, status)
	s.Equal("WIZARD_KIND_INVALID", env.Error.Code)

	status, env = s.do(http.MethodPost, "/v1/wizards", "{")
	s.Equal(http.StatusBadRequest, status)
	s.Equal("INVALID_REQUEST", env.Error.Code)

	status, env = s.do(http.MethodGet, "/v1/wizards/missing", nil)
	s.Equal(http.StatusNotFound, status)
	s.Equal("WIZARD_NOT_FOUND", env.Error.Code)
}

func (s *APISuite) TestValidationErrorEnvelope() {
	id := s.createAtSignup(model.KindBusiness)

	status, env := s.do(http.MethodPost, "/v1/wizards/"+id+"/submit", model.BusinessSignupForm{
		RecruiterName:   "Ravi Kumar",
		Email:           "not-an-email",
		Phone:           "12",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Equal("VALIDATION_FAILED", env.Error.Code)
	s.Equal("Invalid email address", env.Error.Details["email"])
	s.Equal("Phone number must be 10 digits", env.Error.Details["phone"])
}

func (s *APISuite) TestBusinessRegistrationAndProfile() {
	id := s.createAtSignup(model.KindBusiness)

	status, _ := s.do(http.MethodPost, "/v1/wizards/"+id+"/codes", service.SendCodeRequest{
		Channel:     wizard.ChannelEmail,
		Destination: "ravi@example.com",
	})
	s.Require().Equal(http.StatusOK, status)
	code, err := s.store.GetCode(context.Background(), string(wizard.ChannelEmail), utils.HashContact("ravi@example.com"))
	s.Require().NoError(err)
	s.Require().Len(s.mailer.Sent(), 1)

	status, env := s.do(http.MethodPost, "/v1/wizards/"+id+"/submit", model.BusinessSignupForm{
		RecruiterName:   "Ravi Kumar",
		Email:           "ravi@example.com",
		Phone:           "9123456780",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		EmailOTP:        code,
	})
	s.Require().Equal(http.StatusOK, status, env.Error.Details)
	var res service.SubmitResult
	s.decode(env.Data, &res)
	s.Equal(wizard.StepOrganizationType, res.Wizard.Step)
	s.Empty(res.Wizard.Draft.Business.Password)

	status, _ = s.do(http.MethodPost, "/v1/wizards/"+id+"/submit", model.OrganizationTypeForm{OrganizationType: model.OrganizationTypeOrganization})
	s.Require().Equal(http.StatusOK, status)

	status, env = s.do(http.MethodPost, "/v1/wizards/"+id+"/submit", model.CompanyDetailsForm{
		CompanyName:        "Acme Works",
		CompanyLogo:        &model.BlobHandle{ID: "logo", Name: "logo.png", ContentType: "image/png", Size: 1024},
		ProfilePic:         &model.BlobHandle{ID: "pic", Name: "pic.png", ContentType: "image/png", Size: 1024},
		Location:           "Pune",
		NumberOfEmployees:  "10-50",
		CompanyDescription: "We build small things",
		Address:            "12 MG Road",
		Website:            "https://acme.example.com",
	})
	s.Require().Equal(http.StatusOK, status, env.Error.Details)
	res = service.SubmitResult{}
	s.decode(env.Data, &res)
	s.True(res.Completed)
	s.Require().NotNil(res.Auth)
	s.Equal(wizard.DashboardRoute(model.KindBusiness), res.Auth.Route)

	// 注册完成后向导被删除
	status, _ = s.do(http.MethodGet, "/v1/wizards/"+id, nil)
	s.Equal(http.StatusNotFound, status)

	status, env = s.do(http.MethodGet, "/v1/accounts/me", nil, bearer(res.Auth.Tokens.AccessToken))
	s.Require().Equal(http.StatusOK, status)
	var profile service.ProfileView
	s.decode(env.Data, &profile)
	s.Equal(res.Auth.AccountID, profile.AccountID)
	s.Equal("Ravi Kumar", profile.DisplayName)
	s.Require().NotNil(profile.Profile.Business)
	s.Equal("Acme Works", profile.Profile.Business.CompanyName)

	// refresh token 不能访问受保护接口
	status, _ = s.do(http.MethodGet, "/v1/accounts/me", nil, bearer(res.Auth.Tokens.RefreshToken))
	s.Equal(http.StatusUnauthorized, status)

	status, env = s.do(http.MethodPost, "/v1/auth/token/refresh", map[string]string{"refresh_token": res.Auth.Tokens.RefreshToken})
	s.Require().Equal(http.StatusOK, status)
	var pair token.Pair
	s.decode(env.Data, &pair)
	s.NotEmpty(pair.AccessToken)
	s.Equal("Bearer", pair.TokenType)
}

func (s *APISuite) TestRefreshRejectsGarbage() {
	status, env := s.do(http.MethodPost, "/v1/auth/token/refresh", map[string]string{"refresh_token": "nope"})
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("TOKEN_INVALID", env.Error.Code)

	status, env = s.do(http.MethodPost, "/v1/auth/token/refresh", map[string]string{})
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("TOKEN_INVALID", env.Error.Code)
}

func (s *APISuite) TestMeRequiresToken() {
	status, env := s.do(http.MethodGet, "/v1/accounts/me", nil)
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("UNAUTHORIZED", env.Error.Code)
}

func (s *APISuite) TestStepGuards() {
	id := s.createAtSignup(model.KindSeeker)

	status, env := s.do(http.MethodPut, "/v1/wizards/"+id+"/experience/records/abc", model.EmploymentRecord{})
	s.Equal(http.StatusBadRequest, status)
	s.Equal("EXPERIENCE_INDEX_INVALID", env.Error.Code)

	status, env = s.do(http.MethodDelete, "/v1/wizards/"+id+"/experience/records/0", nil)
	s.Equal(http.StatusConflict, status)
	s.Equal("WIZARD_STEP_INVALID", env.Error.Code)

	status, env = s.do(http.MethodGet, "/v1/wizards/"+id+"/icard", nil)
	s.Equal(http.StatusConflict, status)
	s.Equal("WIZARD_STEP_INVALID", env.Error.Code)

	status, env = s.do(http.MethodPost, "/v1/wizards/"+id+"/codes", service.SendCodeRequest{Channel: "fax", Destination: "x"})
	s.Equal(http.StatusBadRequest, status)
	s.Equal("CODE_CHANNEL_INVALID", env.Error.Code)
}

func (s *APISuite) TestBackAndDiscard() {
	id := s.createAtSignup(model.KindSeeker)

	status, env := s.do(http.MethodPost, "/v1/wizards/"+id+"/back", nil)
	s.Require().Equal(http.StatusOK, status)
	var view wizard.View
	s.decode(env.Data, &view)
	s.Equal(wizard.StepLogin, view.Step)

	status, _ = s.do(http.MethodDelete, "/v1/wizards/"+id, nil)
	s.Equal(http.StatusNoContent, status)

	status, _ = s.do(http.MethodGet, "/v1/wizards/"+id, nil)
	s.Equal(http.StatusNotFound, status)
}
