//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"Pantiss/internal/cache"
	"Pantiss/internal/model"
	"Pantiss/internal/wizard"
	"Pantiss/pkg/testutil/containers"
)

type RedisSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cache.Redis
}

func TestRedisSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupSuite() {
	s.redis = containers.NewRedis(s.T())
	s.store = cache.NewRedis(s.redis.Client)
}

func (s *RedisSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSuite) TestSessionRoundTrip() {
	ctx := context.Background()
	sess := wizard.New("w1", model.KindSeeker, time.Now())
	sess.Draft.Seeker.Email = "asha@example.com"
	sess.SetCodeState(wizard.ChannelEmail, wizard.ChannelState{Sent: true, Destination: "asha@example.com"})

	s.Require().NoError(s.store.SaveSession(ctx, sess, time.Minute))

	got, err := s.store.GetSession(ctx, "w1")
	s.Require().NoError(err)
	s.Equal("asha@example.com", got.Email())
	s.True(got.CodeState(wizard.ChannelEmail).Sent)

	s.Require().NoError(s.store.DeleteSession(ctx, "w1"))
	_, err = s.store.GetSession(ctx, "w1")
	s.ErrorIs(err, cache.ErrNotFound)
}

func (s *RedisSuite) TestDailyCountExpiresAtMidnight() {
	ctx := context.Background()
	now := time.Now()

	n, err := s.store.IncrDailyCount(ctx, "phone", "h1", now)
	s.Require().NoError(err)
	s.Equal(1, n)
	n, err = s.store.IncrDailyCount(ctx, "phone", "h1", now)
	s.Require().NoError(err)
	s.Equal(2, n)

	keys, err := s.redis.Client.Keys(ctx, "*count*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)
	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.LessOrEqual(ttl, 24*time.Hour)
	s.Positive(ttl)
}

func (s *RedisSuite) TestLockOwnership() {
	ctx := context.Background()

	token, ok, err := s.store.TryLock(ctx, "w1", time.Minute)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, ok, err = s.store.TryLock(ctx, "w1", time.Minute)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.Unlock(ctx, "w1", "other"))
	_, ok, _ = s.store.TryLock(ctx, "w1", time.Minute)
	s.False(ok)

	s.Require().NoError(s.store.Unlock(ctx, "w1", token))
	_, ok, _ = s.store.TryLock(ctx, "w1", time.Minute)
	s.True(ok)
}

func (s *RedisSuite) TestAccountEmptyValue() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetAccount(ctx, 9, nil))
	acc, found, err := s.store.GetAccount(ctx, 9)
	s.Require().NoError(err)
	s.True(found)
	s.Nil(acc)
}
