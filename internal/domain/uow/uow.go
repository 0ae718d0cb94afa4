package uow

import (
	"context"
	"errors"

	"stablelend-backend/internal/domain/account"
	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/domain/pool"
)

// ErrLockTimeout is returned when a row lock could not be acquired within the
// configured window. Retryable from the caller's point of view.
var ErrLockTimeout = errors.New("lock acquisition timed out")

type Repos struct {
	Accounts account.Repository
	Loans    loan.Repository
	Pools    pool.Repository
}

type UnitOfWork interface {
	// WithinTx runs fn in one transaction; all effects commit or none do.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinPoolTx locks the token's pool row first, then runs fn. Every
	// mutation of pool funds goes through here so concurrent borrows and
	// withdrawals against one pool serialize.
	WithinPoolTx(ctx context.Context, token string, fn func(r Repos, p *pool.Pool) error) error
}
