package account

import "context"

type Repository interface {
	Create(ctx context.Context, a *Account) error
	Save(ctx context.Context, a *Account) error
	GetByAddress(ctx context.Context, address, token string) (*Account, error)
	// GetByAddressForUpdate locks the account row for the enclosing tx so
	// concurrent operations on the same wallet serialize.
	GetByAddressForUpdate(ctx context.Context, address, token string) (*Account, error)
}
