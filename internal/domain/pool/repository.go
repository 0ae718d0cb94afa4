package pool

import "context"

type Repository interface {
	Create(ctx context.Context, p *Pool) error
	Save(ctx context.Context, p *Pool) error
	GetByToken(ctx context.Context, token string) (*Pool, error)
	// GetByTokenForUpdate locks the pool row for the enclosing tx; all fund
	// movement for a pool serializes on this lock.
	GetByTokenForUpdate(ctx context.Context, token string) (*Pool, error)
	List(ctx context.Context) ([]*Pool, error)
}
