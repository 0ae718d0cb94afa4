package mysql

import (
	"context"

	poolDomain "stablelend-backend/internal/domain/pool"

	"gorm.io/gorm"
)

type PoolRepository struct{ db *gorm.DB }

func NewPoolRepository(db *gorm.DB) *PoolRepository { return &PoolRepository{db: db} }

func (r *PoolRepository) Create(ctx context.Context, p *poolDomain.Pool) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PoolRepository) Save(ctx context.Context, p *poolDomain.Pool) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PoolRepository) GetByToken(ctx context.Context, token string) (*poolDomain.Pool, error) {
	var out poolDomain.Pool
	res := r.db.WithContext(ctx).Where("token = ?", token).First(&out)
	return &out, res.Error
}

func (r *PoolRepository) GetByTokenForUpdate(ctx context.Context, token string) (*poolDomain.Pool, error) {
	var out poolDomain.Pool
	res := forUpdate(r.db.WithContext(ctx)).Where("token = ?", token).First(&out)
	return &out, res.Error
}

func (r *PoolRepository) List(ctx context.Context) ([]*poolDomain.Pool, error) {
	var out []*poolDomain.Pool
	res := r.db.WithContext(ctx).Order("token ASC").Find(&out)
	return out, res.Error
}
