package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"Pantiss/internal/model"
	"Pantiss/internal/wizard"
)

type MemorySuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	store *Memory
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	s.store = NewMemory()
	s.store.SetClock(func() time.Time { return s.now })
}

func (s *MemorySuite) TestSessionRoundTripIsACopy() {
	sess := wizard.New("w1", model.KindSeeker, s.now)
	sess.Draft.Seeker.Name = "Asha"
	s.Require().NoError(s.store.SaveSession(s.ctx, sess, time.Hour))

	got, err := s.store.GetSession(s.ctx, "w1")
	s.Require().NoError(err)
	s.Equal("Asha", got.Draft.Seeker.Name)

	got.Draft.Seeker.Name = "changed"
	again, err := s.store.GetSession(s.ctx, "w1")
	s.Require().NoError(err)
	s.Equal("Asha", again.Draft.Seeker.Name)
}

func (s *MemorySuite) TestSessionExpires() {
	sess := wizard.New("w1", model.KindBusiness, s.now)
	s.Require().NoError(s.store.SaveSession(s.ctx, sess, time.Minute))

	s.now = s.now.Add(time.Minute)
	_, err := s.store.GetSession(s.ctx, "w1")
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemorySuite) TestDeleteSession() {
	s.Require().NoError(s.store.SaveSession(s.ctx, wizard.New("w1", model.KindSeeker, s.now), 0))
	s.Require().NoError(s.store.DeleteSession(s.ctx, "w1"))

	_, err := s.store.GetSession(s.ctx, "w1")
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemorySuite) TestCodeWithoutTTLNeverExpires() {
	s.Require().NoError(s.store.SetCode(s.ctx, "email", "h1", "123456", 0))

	s.now = s.now.Add(48 * time.Hour)
	code, err := s.store.GetCode(s.ctx, "email", "h1")
	s.Require().NoError(err)
	s.Equal("123456", code)

	s.Require().NoError(s.store.DeleteCode(s.ctx, "email", "h1"))
	_, err = s.store.GetCode(s.ctx, "email", "h1")
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemorySuite) TestCodesAreScopedByChannel() {
	s.Require().NoError(s.store.SetCode(s.ctx, "email", "h1", "111111", 0))

	_, err := s.store.GetCode(s.ctx, "phone", "h1")
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemorySuite) TestDailyCountResetsAtMidnight() {
	n, err := s.store.IncrDailyCount(s.ctx, "phone", "h1", s.now)
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = s.store.IncrDailyCount(s.ctx, "phone", "h1", s.now)
	s.Require().NoError(err)
	s.Equal(2, n)

	s.now = s.now.Add(2 * time.Hour)
	n, err = s.store.IncrDailyCount(s.ctx, "phone", "h1", s.now)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *MemorySuite) TestSliderPass() {
	ok, err := s.store.SliderPassed(s.ctx, "h1")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.MarkSliderPassed(s.ctx, "h1", 10*time.Minute))
	ok, err = s.store.SliderPassed(s.ctx, "h1")
	s.Require().NoError(err)
	s.True(ok)

	s.now = s.now.Add(11 * time.Minute)
	ok, err = s.store.SliderPassed(s.ctx, "h1")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *MemorySuite) TestLockIsExclusiveAndOwned() {
	token, ok, err := s.store.TryLock(s.ctx, "w1", time.Second)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, ok, err = s.store.TryLock(s.ctx, "w1", time.Second)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.Unlock(s.ctx, "w1", "someone-else"))
	_, ok, _ = s.store.TryLock(s.ctx, "w1", time.Second)
	s.False(ok, "foreign token must not release the lock")

	s.Require().NoError(s.store.Unlock(s.ctx, "w1", token))
	_, ok, err = s.store.TryLock(s.ctx, "w1", time.Second)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *MemorySuite) TestLockExpires() {
	_, ok, _ := s.store.TryLock(s.ctx, "w1", time.Second)
	s.Require().True(ok)

	s.now = s.now.Add(time.Second)
	_, ok, _ = s.store.TryLock(s.ctx, "w1", time.Second)
	s.True(ok)
}

func (s *MemorySuite) TestRefreshToken() {
	s.Require().NoError(s.store.SetRefreshToken(s.ctx, "42", "rt-1", time.Hour))

	ok, err := s.store.ValidateRefreshToken(s.ctx, "42", "rt-1")
	s.Require().NoError(err)
	s.True(ok)

	ok, _ = s.store.ValidateRefreshToken(s.ctx, "42", "rt-old")
	s.False(ok)

	s.Require().NoError(s.store.DeleteRefreshToken(s.ctx, "42"))
	ok, _ = s.store.ValidateRefreshToken(s.ctx, "42", "rt-1")
	s.False(ok)
}

func (s *MemorySuite) TestAccountCacheEmptyValue() {
	_, found, err := s.store.GetAccount(s.ctx, 7)
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(s.store.SetAccount(s.ctx, 7, nil))
	acc, found, err := s.store.GetAccount(s.ctx, 7)
	s.Require().NoError(err)
	s.True(found)
	s.Nil(acc)
}

func (s *MemorySuite) TestAccountCacheDropsSecrets() {
	acc := &model.Account{PublicID: 7, Email: "a@b.co", PasswordHash: "hash", AadharCipher: "cipher"}
	s.Require().NoError(s.store.SetAccount(s.ctx, 7, acc))

	got, found, err := s.store.GetAccount(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal("a@b.co", got.Email)
	s.Empty(got.PasswordHash)
	s.Empty(got.AadharCipher)
	s.Equal("hash", acc.PasswordHash, "caller's value is untouched")
}
