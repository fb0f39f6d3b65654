package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"Pantiss/internal/model"
	"Pantiss/internal/wizard"
)

type entry struct {
	value     string
	expiresAt time.Time // 零值表示不过期
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory 单进程实现，本地开发和测试使用
// 值一律序列化保存，读出的会话与调用方不共享内存
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetClock 测试用
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Memory) get(key string) (string, bool) {
	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

func (m *Memory) set(key, value string, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
}

func key(parts ...string) string {
	return strings.Join(parts, ":")
}

func (m *Memory) GetSession(ctx context.Context, id string) (*wizard.Session, error) {
	m.mu.Lock()
	data, ok := m.get(key(sessionPrefix, id))
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	var s wizard.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (m *Memory) SaveSession(ctx context.Context, s *wizard.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key(sessionPrefix, s.ID), string(data), ttl)
	return nil
}

func (m *Memory) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key(sessionPrefix, id))
	return nil
}

func (m *Memory) SetCode(ctx context.Context, channel, destHash, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key(codePrefix, channel, destHash), code, ttl)
	return nil
}

func (m *Memory) GetCode(ctx context.Context, channel, destHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.get(key(codePrefix, channel, destHash))
	if !ok {
		return "", ErrNotFound
	}
	return code, nil
}

func (m *Memory) DeleteCode(ctx context.Context, channel, destHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key(codePrefix, channel, destHash))
	return nil
}

func (m *Memory) IncrDailyCount(ctx context.Context, channel, destHash string, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(codePrefix, "count", channel, destHash, now.Format("2006-01-02"))
	count := 0
	if v, ok := m.get(k); ok {
		count, _ = strconv.Atoi(v)
	}
	count++
	m.entries[k] = entry{value: strconv.Itoa(count), expiresAt: nextMidnight(now)}
	return count, nil
}

func (m *Memory) MarkSliderPassed(ctx context.Context, destHash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key(sliderPrefix, "pass", destHash), "1", ttl)
	return nil
}

func (m *Memory) SliderPassed(ctx context.Context, destHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(key(sliderPrefix, "pass", destHash))
	return ok, nil
}

func (m *Memory) TryLock(ctx context.Context, k string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lk := key(lockPrefix, k)
	if _, held := m.get(lk); held {
		return "", false, nil
	}
	token := uuid.NewString()
	m.set(lk, token, ttl)
	return token, true, nil
}

func (m *Memory) Unlock(ctx context.Context, k, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lk := key(lockPrefix, k)
	if v, ok := m.get(lk); ok && v == token {
		delete(m.entries, lk)
	}
	return nil
}

func (m *Memory) SetRefreshToken(ctx context.Context, accountID, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key(tokenPrefix, "refresh", accountID), token, ttl)
	return nil
}

func (m *Memory) ValidateRefreshToken(ctx context.Context, accountID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.get(key(tokenPrefix, "refresh", accountID))
	return ok && stored == token, nil
}

func (m *Memory) DeleteRefreshToken(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key(tokenPrefix, "refresh", accountID))
	return nil
}

func (m *Memory) GetAccount(ctx context.Context, publicID int64) (*model.Account, bool, error) {
	m.mu.Lock()
	data, ok := m.get(key(accountPrefix, strconv.FormatInt(publicID, 10)))
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	if data == emptyValueFlag {
		return nil, true, nil
	}

	var acc model.Account
	if err := json.Unmarshal([]byte(data), &acc); err != nil {
		return nil, false, fmt.Errorf("decode account: %w", err)
	}
	return &acc, true, nil
}

func (m *Memory) SetAccount(ctx context.Context, publicID int64, acc *model.Account) error {
	value, ttl := emptyValueFlag, emptyValueTTL
	if acc != nil {
		data, err := json.Marshal(cachedAccount(acc))
		if err != nil {
			return fmt.Errorf("encode account: %w", err)
		}
		value, ttl = string(data), accountTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key(accountPrefix, strconv.FormatInt(publicID, 10)), value, ttl)
	return nil
}

func (m *Memory) DeleteAccount(ctx context.Context, publicID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key(accountPrefix, strconv.FormatInt(publicID, 10)))
	return nil
}

var (
	_ SessionStore = (*Memory)(nil)
	_ CodeStore    = (*Memory)(nil)
	_ Locker       = (*Memory)(nil)
	_ TokenStore   = (*Memory)(nil)
	_ AccountCache = (*Memory)(nil)

	_ SessionStore = (*Redis)(nil)
	_ CodeStore    = (*Redis)(nil)
	_ Locker       = (*Redis)(nil)
	_ TokenStore   = (*Redis)(nil)
	_ AccountCache = (*Redis)(nil)
)
