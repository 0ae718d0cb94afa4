package loanmock

import (
	"context"
	"time"

	domain "stablelend-backend/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn                        func(ctx context.Context, l *domain.Loan) error
	SaveFn                          func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn                   func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetActiveByAccountIDFn          func(ctx context.Context, accountID uint64) (*domain.Loan, error)
	GetActiveByAccountIDForUpdateFn func(ctx context.Context, accountID uint64) (*domain.Loan, error)
	ListActiveMaturedBeforeFn       func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Loan, error)
	CreateScheduleItemsFn           func(ctx context.Context, items []*domain.ScheduleItem) error
	SaveScheduleItemFn              func(ctx context.Context, it *domain.ScheduleItem) error
	ListScheduleByLoanIDFn          func(ctx context.Context, loanID uint64) ([]*domain.ScheduleItem, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetActiveByAccountID(ctx context.Context, accountID uint64) (*domain.Loan, error) {
	if m.GetActiveByAccountIDFn != nil {
		return m.GetActiveByAccountIDFn(ctx, accountID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetActiveByAccountIDForUpdate(ctx context.Context, accountID uint64) (*domain.Loan, error) {
	if m.GetActiveByAccountIDForUpdateFn != nil {
		return m.GetActiveByAccountIDForUpdateFn(ctx, accountID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListActiveMaturedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Loan, error) {
	if m.ListActiveMaturedBeforeFn != nil {
		return m.ListActiveMaturedBeforeFn(ctx, cutoff, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) CreateScheduleItems(ctx context.Context, items []*domain.ScheduleItem) error {
	if m.CreateScheduleItemsFn != nil {
		return m.CreateScheduleItemsFn(ctx, items)
	}
	return nil
}

func (m *Repo) SaveScheduleItem(ctx context.Context, it *domain.ScheduleItem) error {
	if m.SaveScheduleItemFn != nil {
		return m.SaveScheduleItemFn(ctx, it)
	}
	return nil
}

func (m *Repo) ListScheduleByLoanID(ctx context.Context, loanID uint64) ([]*domain.ScheduleItem, error) {
	if m.ListScheduleByLoanIDFn != nil {
		return m.ListScheduleByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}
