package accountmock

import (
	"context"

	domain "stablelend-backend/internal/domain/account"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn                func(ctx context.Context, a *domain.Account) error
	SaveFn                  func(ctx context.Context, a *domain.Account) error
	GetByAddressFn          func(ctx context.Context, address, token string) (*domain.Account, error)
	GetByAddressForUpdateFn func(ctx context.Context, address, token string) (*domain.Account, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Account) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAddress(ctx context.Context, address, token string) (*domain.Account, error) {
	if m.GetByAddressFn != nil {
		return m.GetByAddressFn(ctx, address, token)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByAddressForUpdate(ctx context.Context, address, token string) (*domain.Account, error) {
	if m.GetByAddressForUpdateFn != nil {
		return m.GetByAddressForUpdateFn(ctx, address, token)
	}
	return nil, context.Canceled
}
