package mysql

import (
	"context"
	"errors"
	"strings"
	"time"

	poolDomain "stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormUoW wraps db in a unit of work. lockTimeout bounds every
// transaction (and so every row-lock wait); zero disables the bound.
func NewGormUoW(db *gorm.DB, lockTimeout time.Duration) *GormUoW {
	return &GormUoW{db: db, lockTimeout: lockTimeout}
}

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Accounts: &AccountRepository{db: tx},
		Loans:    &LoanRepository{db: tx},
		Pools:    &PoolRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if u.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.lockTimeout)
		defer cancel()
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
	return mapLockErr(err)
}

func (u *GormUoW) WithinPoolTx(ctx context.Context, token string, fn func(r uow.Repos, p *poolDomain.Pool) error) error {
	if u.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.lockTimeout)
		defer cancel()
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the pool row up-front so fund movement serializes per pool
		p, err := r.Pools.GetByTokenForUpdate(ctx, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poolDomain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fn(r, p)
	})
	return mapLockErr(err)
}

// mapLockErr surfaces lock waits as the retryable uow.ErrLockTimeout.
func mapLockErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return uow.ErrLockTimeout
	}
	msg := err.Error()
	if strings.Contains(msg, "Lock wait timeout exceeded") || strings.Contains(msg, "database is locked") {
		return uow.ErrLockTimeout
	}
	return err
}
