package mysql

import (
	"context"

	accountDomain "stablelend-backend/internal/domain/account"

	"gorm.io/gorm"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Create(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) Save(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AccountRepository) GetByAddress(ctx context.Context, address, token string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).
		Where("address = ? AND token = ?", address, token).
		First(&out)
	return &out, res.Error
}

func (r *AccountRepository) GetByAddressForUpdate(ctx context.Context, address, token string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := forUpdate(r.db.WithContext(ctx)).
		Where("address = ? AND token = ?", address, token).
		First(&out)
	return &out, res.Error
}
