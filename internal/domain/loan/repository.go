package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetActiveByAccountID(ctx context.Context, accountID uint64) (*Loan, error)
	// GetActiveByAccountIDForUpdate locks the active loan row for the
	// enclosing tx.
	GetActiveByAccountIDForUpdate(ctx context.Context, accountID uint64) (*Loan, error)
	// ListActiveMaturedBefore returns active loans whose maturity is before
	// cutoff, oldest first. Used by the default sweeper.
	ListActiveMaturedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Loan, error)

	CreateScheduleItems(ctx context.Context, items []*ScheduleItem) error
	SaveScheduleItem(ctx context.Context, it *ScheduleItem) error
	ListScheduleByLoanID(ctx context.Context, loanID uint64) ([]*ScheduleItem, error)
}
