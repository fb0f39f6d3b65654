package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Pantiss/internal/model"
	"Pantiss/internal/wizard"
	"Pantiss/pkg/logger"
	"Pantiss/storage/redis"
)

const (
	// 空值缓存标识，较短 TTL
	emptyValueFlag = "__EMPTY__"
	emptyValueTTL  = 5 * time.Minute
	accountTTL     = 10 * time.Minute
	// 防雪崩随机延长 TTL
	ttlJitterMax = 60 * time.Second
)

// 只删除自己持有的锁
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis 基于 go-redis 的缓存实现，多实例部署使用
type Redis struct {
	client *goredis.Client
}

func NewRedis(client *goredis.Client) *Redis {
	return &Redis{client: client}
}

// GetSession Key: pantiss:wizard:{id}
func (r *Redis) GetSession(ctx context.Context, id string) (*wizard.Session, error) {
	data, err := r.client.Get(ctx, redis.Key(sessionPrefix, id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s wizard.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *Redis) SaveSession(ctx context.Context, s *wizard.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, redis.Key(sessionPrefix, s.ID), data, ttl).Err()
}

func (r *Redis) DeleteSession(ctx context.Context, id string) error {
	return r.client.Del(ctx, redis.Key(sessionPrefix, id)).Err()
}

// SetCode Key: pantiss:code:{channel}:{destHash}
func (r *Redis) SetCode(ctx context.Context, channel, destHash, code string, ttl time.Duration) error {
	return r.client.Set(ctx, redis.Key(codePrefix, channel, destHash), code, ttl).Err()
}

func (r *Redis) GetCode(ctx context.Context, channel, destHash string) (string, error) {
	code, err := r.client.Get(ctx, redis.Key(codePrefix, channel, destHash)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return code, err
}

func (r *Redis) DeleteCode(ctx context.Context, channel, destHash string) error {
	return r.client.Del(ctx, redis.Key(codePrefix, channel, destHash)).Err()
}

// IncrDailyCount Key: pantiss:code:count:{channel}:{destHash}:{date}
func (r *Redis) IncrDailyCount(ctx context.Context, channel, destHash string, now time.Time) (int, error) {
	key := redis.Key(codePrefix, "count", channel, destHash, now.Format("2006-01-02"))

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, nextMidnight(now))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr daily count: %w", err)
	}

	return int(incr.Val()), nil
}

// MarkSliderPassed Key: pantiss:slider:pass:{destHash}
func (r *Redis) MarkSliderPassed(ctx context.Context, destHash string, ttl time.Duration) error {
	return r.client.Set(ctx, redis.Key(sliderPrefix, "pass", destHash), "1", ttl).Err()
}

func (r *Redis) SliderPassed(ctx context.Context, destHash string) (bool, error) {
	n, err := r.client.Exists(ctx, redis.Key(sliderPrefix, "pass", destHash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TryLock SETNX 实现，value 为随机 token
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, redis.Key(lockPrefix, key), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *Redis) Unlock(ctx context.Context, key, token string) error {
	return unlockScript.Run(ctx, r.client, []string{redis.Key(lockPrefix, key)}, token).Err()
}

// SetRefreshToken Key: pantiss:token:refresh:{account_id}
func (r *Redis) SetRefreshToken(ctx context.Context, accountID, token string, ttl time.Duration) error {
	return r.client.Set(ctx, redis.Key(tokenPrefix, "refresh", accountID), token, ttl).Err()
}

func (r *Redis) ValidateRefreshToken(ctx context.Context, accountID, token string) (bool, error) {
	stored, err := r.client.Get(ctx, redis.Key(tokenPrefix, "refresh", accountID)).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == token, nil
}

func (r *Redis) DeleteRefreshToken(ctx context.Context, accountID string) error {
	return r.client.Del(ctx, redis.Key(tokenPrefix, "refresh", accountID)).Err()
}

// GetAccount Key: pantiss:account:{public_id}
func (r *Redis) GetAccount(ctx context.Context, publicID int64) (*model.Account, bool, error) {
	data, err := r.client.Get(ctx, accountKey(publicID)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if data == emptyValueFlag {
		return nil, true, nil
	}

	var acc model.Account
	if err := json.Unmarshal([]byte(data), &acc); err != nil {
		logger.Logger.Warn("Dropping undecodable account cache entry",
			zap.Int64("public_id", publicID),
			zap.Error(err),
		)
		_ = r.client.Del(ctx, accountKey(publicID)).Err()
		return nil, false, nil
	}
	return &acc, true, nil
}

func (r *Redis) SetAccount(ctx context.Context, publicID int64, acc *model.Account) error {
	if acc == nil {
		return r.client.Set(ctx, accountKey(publicID), emptyValueFlag, emptyValueTTL).Err()
	}

	data, err := json.Marshal(cachedAccount(acc))
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	ttl := accountTTL + time.Duration(rand.Int63n(int64(ttlJitterMax)))
	return r.client.Set(ctx, accountKey(publicID), data, ttl).Err()
}

func (r *Redis) DeleteAccount(ctx context.Context, publicID int64) error {
	return r.client.Del(ctx, accountKey(publicID)).Err()
}

func accountKey(publicID int64) string {
	return redis.Key(accountPrefix, strconv.FormatInt(publicID, 10))
}

// cachedAccount 去掉口令哈希和密文，json 标签已经排除，这里再显式清一次
func cachedAccount(acc *model.Account) *model.Account {
	cp := *acc
	cp.PasswordHash = ""
	cp.AadharCipher = ""
	return &cp
}
