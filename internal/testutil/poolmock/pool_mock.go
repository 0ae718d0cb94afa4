package poolmock

import (
	"context"

	domain "stablelend-backend/internal/domain/pool"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn              func(ctx context.Context, p *domain.Pool) error
	SaveFn                func(ctx context.Context, p *domain.Pool) error
	GetByTokenFn          func(ctx context.Context, token string) (*domain.Pool, error)
	GetByTokenForUpdateFn func(ctx context.Context, token string) (*domain.Pool, error)
	ListFn                func(ctx context.Context) ([]*domain.Pool, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Pool) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Pool) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByToken(ctx context.Context, token string) (*domain.Pool, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Pool, error) {
	if m.GetByTokenForUpdateFn != nil {
		return m.GetByTokenForUpdateFn(ctx, token)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]*domain.Pool, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}
