//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"

	"Pantiss/internal/model"
	"Pantiss/internal/repository"
	"Pantiss/pkg/errors"
	"Pantiss/pkg/testutil/containers"
)

type GormAccountSuite struct {
	suite.Suite
	pg   *containers.PostgresContainer
	repo *repository.GormAccountRepository
}

func TestGormAccountSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(GormAccountSuite))
}

func (s *GormAccountSuite) SetupSuite() {
	s.pg = containers.NewPostgres(s.T())
	s.pg.DB.Config.TranslateError = true
	s.Require().NoError(s.pg.DB.AutoMigrate(&model.Account{}))
	s.repo = repository.NewGormAccountRepository(s.pg.DB)
}

func (s *GormAccountSuite) SetupTest() {
	s.Require().NoError(s.pg.DB.Exec("TRUNCATE accounts").Error)
}

func (s *GormAccountSuite) TestCreateAndFind() {
	ctx := context.Background()
	acc := &model.Account{
		PublicID:     11,
		Kind:         model.KindSeeker,
		Email:        "Asha@Example.com",
		PasswordHash: "hash",
		DisplayName:  "Asha",
		Profile: datatypes.NewJSONType(model.AccountProfile{
			Seeker: &model.SeekerProfile{Name: "Asha", JobRole: "Designer"},
		}),
	}
	s.Require().NoError(s.repo.Create(ctx, acc))

	got, err := s.repo.FindByEmail(ctx, model.KindSeeker, "asha@example.com")
	s.Require().NoError(err)
	s.Equal(int64(11), got.PublicID)
	s.Equal("Designer", got.Profile.Data().Seeker.JobRole)

	got, err = s.repo.FindByPublicID(ctx, 11)
	s.Require().NoError(err)
	s.Equal("hash", got.PasswordHash)
}

func (s *GormAccountSuite) TestDuplicateEmailPerKind() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Create(ctx, &model.Account{PublicID: 1, Kind: model.KindBusiness, Email: "hr@acme.io", PasswordHash: "x"}))

	err := s.repo.Create(ctx, &model.Account{PublicID: 2, Kind: model.KindBusiness, Email: "HR@acme.io", PasswordHash: "x"})
	s.ErrorIs(err, errors.EmailAlreadyRegistered)

	s.NoError(s.repo.Create(ctx, &model.Account{PublicID: 3, Kind: model.KindSeeker, Email: "hr@acme.io", PasswordHash: "x"}))
}

func (s *GormAccountSuite) TestNotFound() {
	_, err := s.repo.FindByPublicID(context.Background(), 404)
	s.ErrorIs(err, errors.AccountNotFound)
}
