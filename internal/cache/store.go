package cache

import (
	"context"
	"errors"
	"time"

	"Pantiss/internal/model"
	"Pantiss/internal/wizard"
)

// ErrNotFound key 不存在或已过期
var ErrNotFound = errors.New("cache: not found")

// SessionStore 向导会话，整体读写
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*wizard.Session, error)
	SaveSession(ctx context.Context, s *wizard.Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, id string) error
}

// CodeStore 验证码及发送计数，destHash 为 utils.HashContact 的结果
type CodeStore interface {
	// SetCode ttl 为 0 表示不过期
	SetCode(ctx context.Context, channel, destHash, code string, ttl time.Duration) error
	GetCode(ctx context.Context, channel, destHash string) (string, error)
	DeleteCode(ctx context.Context, channel, destHash string) error

	// IncrDailyCount 当天发送次数加一，次日零点清零
	IncrDailyCount(ctx context.Context, channel, destHash string, now time.Time) (int, error)

	// MarkSliderPassed 滑块通过后一段时间内不再要求
	MarkSliderPassed(ctx context.Context, destHash string, ttl time.Duration) error
	SliderPassed(ctx context.Context, destHash string) (bool, error)
}

// Locker 按 key 互斥，Unlock 只释放自己持有的锁
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// TokenStore 当前有效的 refresh token，一个账号一个
type TokenStore interface {
	SetRefreshToken(ctx context.Context, accountID, token string, ttl time.Duration) error
	ValidateRefreshToken(ctx context.Context, accountID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, accountID string) error
}

// AccountCache /accounts/me 的读缓存；Set 传 nil 记录空值，防止穿透
type AccountCache interface {
	GetAccount(ctx context.Context, publicID int64) (acc *model.Account, found bool, err error)
	SetAccount(ctx context.Context, publicID int64, acc *model.Account) error
	DeleteAccount(ctx context.Context, publicID int64) error
}

// Store 进程启动时按 SESSION_STORE 选择 Memory 或 Redis
type Store interface {
	SessionStore
	CodeStore
	Locker
	TokenStore
	AccountCache
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Redis)(nil)
)

// 缓存分区
const (
	sessionPrefix = "wizard"
	codePrefix    = "code"
	sliderPrefix  = "slider"
	lockPrefix    = "lock"
	tokenPrefix   = "token"
	accountPrefix = "account"
)

// nextMidnight 计数 key 的过期时间点
func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
