package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"Pantiss/config"
	"Pantiss/internal/cache"
	"Pantiss/internal/model"
	"Pantiss/internal/queue"
	"Pantiss/internal/repository"
	"Pantiss/internal/wizard"
	"Pantiss/pkg/errors"
	"Pantiss/pkg/logger"
	"Pantiss/pkg/metrics"
	"Pantiss/pkg/snowflake"
	"Pantiss/pkg/token"
	"Pantiss/utils"
)

// AuthResult 登录或注册成功后返回给客户端
type AuthResult struct {
	Tokens    token.Pair        `json:"tokens"`
	AccountID string            `json:"account_id"`
	Kind      model.AccountKind `json:"kind"`
	Route     string            `json:"route"`
}

// Authenticator 登录步骤使用
type Authenticator interface {
	Login(ctx context.Context, kind model.AccountKind, email, password string) (*AuthResult, error)
}

// Registrar 向导最后一步使用
type Registrar interface {
	Register(ctx context.Context, kind model.AccountKind, draft model.Draft) (*AuthResult, error)
}

// AccountService 账号注册、登录、刷新令牌和个人主页
type AccountService struct {
	repo   repository.AccountRepository
	tokens cache.TokenStore
	cache  cache.AccountCache // 可为 nil
	events EventPublisher
	encKey []byte
	idGen  func() (int64, error)
	now    func() time.Time
}

func NewAccountService(
	repo repository.AccountRepository,
	tokens cache.TokenStore,
	accountCache cache.AccountCache,
	events EventPublisher,
	encryptionKey string,
) *AccountService {
	var key []byte
	if encryptionKey != "" {
		key = []byte(encryptionKey)
	}
	return &AccountService{
		repo:   repo,
		tokens: tokens,
		cache:  accountCache,
		events: events,
		encKey: key,
		idGen:  snowflake.NextID,
		now:    time.Now,
	}
}

// Login 账号不存在和密码错误返回同一个错误
func (s *AccountService) Login(ctx context.Context, kind model.AccountKind, email, password string) (*AuthResult, error) {
	acc, err := s.repo.FindByEmail(ctx, kind, email)
	if err != nil {
		if stderrors.Is(err, errors.AccountNotFound) {
			metrics.RecordLogin(ctx, string(kind), "failed")
			return nil, errors.LoginFailed
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		metrics.RecordLogin(ctx, string(kind), "failed")
		return nil, errors.LoginFailed
	}

	result, err := s.issue(ctx, acc)
	if err != nil {
		return nil, err
	}

	metrics.RecordLogin(ctx, string(kind), "success")
	logger.Logger.Info("Account logged in",
		zap.String("account_id", result.AccountID),
		zap.String("kind", string(kind)),
	)
	return result, nil
}

// Register 草稿转为账号，发布注册事件并签发令牌
func (s *AccountService) Register(ctx context.Context, kind model.AccountKind, draft model.Draft) (*AuthResult, error) {
	acc, password, aadhar, err := accountFromDraft(kind, draft)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	acc.PasswordHash = string(hash)

	if aadhar != "" && s.encKey != nil {
		cipherText, err := utils.Encrypt(s.encKey, aadhar)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt aadhar: %w", err)
		}
		acc.AadharCipher = cipherText
	}

	acc.PublicID, err = s.idGen()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account ID: %w", err)
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		metrics.RecordRegistration(ctx, string(kind), "failed")
		if stderrors.Is(err, errors.EmailAlreadyRegistered) {
			return nil, errors.EmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	metrics.RecordRegistration(ctx, string(kind), "success")

	accountID := strconv.FormatInt(acc.PublicID, 10)
	logger.Logger.Info("Account registered",
		zap.String("account_id", accountID),
		zap.String("kind", string(kind)),
		zap.String("email", utils.MaskEmail(acc.Email)),
	)

	// 欢迎通知失败不影响注册
	if s.events != nil {
		if err := s.events.PublishRegistrationCompleted(ctx, queue.RegistrationCompleted{
			AccountID:    accountID,
			Kind:         string(kind),
			Email:        acc.Email,
			Name:         acc.DisplayName,
			Phone:        acc.Contact,
			RegisteredAt: s.now(),
		}); err != nil {
			logger.Logger.Warn("Failed to publish registration event",
				zap.String("account_id", accountID),
				zap.Error(err),
			)
		}
	}

	return s.issue(ctx, acc)
}

// accountFromDraft 返回账号、明文密码和 Aadhar 号码，profile 中不含任何密钥
func accountFromDraft(kind model.AccountKind, draft model.Draft) (*model.Account, string, string, error) {
	switch kind {
	case model.KindSeeker:
		d := draft.Seeker
		if d == nil {
			return nil, "", "", errors.WizardKindInvalid
		}
		experiences := make([]model.EmploymentRecord, len(d.Experiences))
		copy(experiences, d.Experiences)
		profile := model.AccountProfile{Seeker: &model.SeekerProfile{
			Name:         d.Name,
			Email:        d.Email,
			Mobile:       d.Mobile,
			JobRole:      d.JobRole,
			DOB:          d.DOB,
			AadharMasked: utils.MaskDigits(d.Aadhar, 4),
			AadharFile:   d.AadharFile,
			ProfilePic:   d.ProfilePic,
			Certificate:  d.Certificate,
			License:      d.License,
			Bio:          d.Bio,
			Experiences:  experiences,
		}}
		return &model.Account{
			Kind:        kind,
			Email:       d.Email,
			DisplayName: d.Name,
			Contact:     d.Mobile,
			Profile:     datatypes.NewJSONType(profile),
		}, d.Password, d.Aadhar, nil

	case model.KindBusiness:
		d := draft.Business
		if d == nil {
			return nil, "", "", errors.WizardKindInvalid
		}
		profile := model.AccountProfile{Business: &model.BusinessProfile{
			RecruiterName:      d.RecruiterName,
			Email:              d.Email,
			Phone:              d.Phone,
			OrganizationType:   d.OrganizationType,
			CompanyName:        d.CompanyName,
			CompanyLogo:        d.CompanyLogo,
			ProfilePic:         d.ProfilePic,
			Location:           d.Location,
			NumberOfEmployees:  d.NumberOfEmployees,
			CompanyDescription: d.CompanyDescription,
			Address:            d.Address,
			Website:            d.Website,
		}}
		return &model.Account{
			Kind:        kind,
			Email:       d.Email,
			DisplayName: d.RecruiterName,
			Contact:     d.Phone,
			Profile:     datatypes.NewJSONType(profile),
		}, d.Password, "", nil

	default:
		return nil, "", "", errors.WizardKindInvalid
	}
}

func (s *AccountService) issue(ctx context.Context, acc *model.Account) (*AuthResult, error) {
	accountID := strconv.FormatInt(acc.PublicID, 10)

	pair, err := token.GenerateTokenPair(accountID, string(acc.Kind))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.tokens.SetRefreshToken(ctx, accountID, pair.RefreshToken, refreshTTL()); err != nil {
		// 令牌已经签发，刷新时会要求重新登录
		logger.Logger.Warn("Failed to store refresh token",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	}

	return &AuthResult{
		Tokens:    pair,
		AccountID: accountID,
		Kind:      acc.Kind,
		Route:     wizard.DashboardRoute(acc.Kind),
	}, nil
}

func refreshTTL() time.Duration {
	return time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour
}

// Refresh 轮换令牌，旧 refresh token 随即失效
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	claims, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.TokenInvalid
	}

	ok, err := s.tokens.ValidateRefreshToken(ctx, claims.AccountID, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to validate refresh token: %w", err)
	}
	if !ok {
		return nil, errors.TokenInvalid
	}

	pair, err := token.GenerateTokenPair(claims.AccountID, claims.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.tokens.SetRefreshToken(ctx, claims.AccountID, pair.RefreshToken, refreshTTL()); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return &pair, nil
}

// ProfileView /accounts/me 返回的个人主页数据
type ProfileView struct {
	AccountID       string               `json:"account_id"`
	Kind            model.AccountKind    `json:"kind"`
	Email           string               `json:"email"`
	DisplayName     string               `json:"display_name"`
	Contact         string               `json:"contact"`
	Profile         model.AccountProfile `json:"profile"`
	Age             string               `json:"age,omitempty"`
	TotalExperience string               `json:"total_experience,omitempty"`
	Route           string               `json:"route"`
	CreatedAt       time.Time            `json:"created_at"`
}

// Me 先读缓存，未命中再查库并回填；不存在的账号也缓存空值
func (s *AccountService) Me(ctx context.Context, accountID string) (*ProfileView, error) {
	publicID, err := strconv.ParseInt(strings.TrimSpace(accountID), 10, 64)
	if err != nil {
		return nil, errors.InvalidUserID
	}

	acc, err := s.load(ctx, publicID)
	if err != nil {
		return nil, err
	}

	profile := acc.Profile.Data()
	view := &ProfileView{
		AccountID:   accountID,
		Kind:        acc.Kind,
		Email:       acc.Email,
		DisplayName: acc.DisplayName,
		Contact:     acc.Contact,
		Profile:     profile,
		Route:       wizard.DashboardRoute(acc.Kind),
		CreatedAt:   acc.CreatedAt,
	}
	if profile.Seeker != nil {
		view.Age = wizard.AgeLabel(profile.Seeker.DOB, s.now())
		view.TotalExperience = wizard.TotalExperienceLabel(profile.Seeker.Experiences)
	}
	return view, nil
}

func (s *AccountService) load(ctx context.Context, publicID int64) (*model.Account, error) {
	if s.cache != nil {
		acc, found, err := s.cache.GetAccount(ctx, publicID)
		if err != nil {
			logger.Logger.Warn("Account cache read failed", zap.Int64("public_id", publicID), zap.Error(err))
		} else if found {
			if acc == nil {
				return nil, errors.AccountNotFound
			}
			return acc, nil
		}
	}

	acc, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil && !stderrors.Is(err, errors.AccountNotFound) {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetAccount(ctx, publicID, acc); cacheErr != nil {
			logger.Logger.Warn("Account cache write failed", zap.Int64("public_id", publicID), zap.Error(cacheErr))
		}
	}

	if err != nil {
		return nil, errors.AccountNotFound
	}
	return acc, nil
}

// Catalog 各步骤可选项
type Catalog struct {
	JobRoles          []string `json:"job_roles"`
	OrganizationTypes []string `json:"organization_types"`
	EmployeeRanges    []string `json:"employee_ranges"`
}

func (s *AccountService) Catalog() Catalog {
	return Catalog{
		JobRoles:          append([]string(nil), model.JobRoles...),
		OrganizationTypes: append([]string(nil), model.OrganizationTypes...),
		EmployeeRanges:    append([]string(nil), model.EmployeeRanges...),
	}
}
