package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"Pantiss/internal/model"
	"Pantiss/pkg/errors"
)

// AccountRepository 账号持久化，email 比较时忽略大小写
type AccountRepository interface {
	// Create 同一 kind 下 email 重复时返回 errors.EmailAlreadyRegistered
	Create(ctx context.Context, acc *model.Account) error
	// FindByEmail 不存在时返回 errors.AccountNotFound
	FindByEmail(ctx context.Context, kind model.AccountKind, email string) (*model.Account, error)
	FindByPublicID(ctx context.Context, publicID int64) (*model.Account, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GormAccountRepository PostgreSQL 实现
type GormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) Create(ctx context.Context, acc *model.Account) error {
	acc.Email = normalizeEmail(acc.Email)

	err := r.db.WithContext(ctx).Create(acc).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.EmailAlreadyRegistered
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// FindByEmail 登录紧跟在注册之后时副本可能还没同步，读主库
func (r *GormAccountRepository) FindByEmail(ctx context.Context, kind model.AccountKind, email string) (*model.Account, error) {
	var acc model.Account
	err := r.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("kind = ? AND email = ?", kind, normalizeEmail(email)).
		Take(&acc).Error
	return r.result(&acc, err)
}

func (r *GormAccountRepository) FindByPublicID(ctx context.Context, publicID int64) (*model.Account, error) {
	var acc model.Account
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		Take(&acc).Error
	return r.result(&acc, err)
}

func (r *GormAccountRepository) result(acc *model.Account, err error) (*model.Account, error) {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.AccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}
	return acc, nil
}

// MemoryAccountRepository 进程内实现，本地开发和测试使用
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	nextID   int64
	byPublic map[int64]model.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{byPublic: make(map[int64]model.Account)}
}

func (r *MemoryAccountRepository) Create(ctx context.Context, acc *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc.Email = normalizeEmail(acc.Email)
	for _, existing := range r.byPublic {
		if existing.Kind == acc.Kind && existing.Email == acc.Email {
			return errors.EmailAlreadyRegistered
		}
	}

	r.nextID++
	now := time.Now()
	acc.ID = r.nextID
	acc.CreatedAt = now
	acc.UpdatedAt = now
	r.byPublic[acc.PublicID] = *acc
	return nil
}

func (r *MemoryAccountRepository) FindByEmail(ctx context.Context, kind model.AccountKind, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = normalizeEmail(email)
	for _, acc := range r.byPublic {
		if acc.Kind == kind && acc.Email == email {
			cp := acc
			return &cp, nil
		}
	}
	return nil, errors.AccountNotFound
}

func (r *MemoryAccountRepository) FindByPublicID(ctx context.Context, publicID int64) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byPublic[publicID]
	if !ok {
		return nil, errors.AccountNotFound
	}
	return &acc, nil
}

var (
	_ AccountRepository = (*GormAccountRepository)(nil)
	_ AccountRepository = (*MemoryAccountRepository)(nil)
)
