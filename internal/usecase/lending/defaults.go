package lending

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
)

// MarkDefault transitions an active loan to defaulted when it is past
// maturity plus grace with a balance outstanding. Returns whether a
// transition happened; calling it on an already-terminal or not-yet-overdue
// loan is a no-op, which makes the sweeper safe to re-run.
func (u *Usecase) MarkDefault(ctx context.Context, loanID string, asOf time.Time) (bool, error) {
	// Peek at the loan outside the pool lock to learn its token; the locked
	// re-read below is authoritative.
	var token string
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loan.ErrNotFound
		}
		if err != nil {
			return err
		}
		token = l.Token
		return nil
	})
	if err != nil {
		return false, err
	}

	marked := false
	err = u.uow.WithinPoolTx(ctx, token, func(r uow.Repos, p *pool.Pool) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loan.ErrNotFound
		}
		if err != nil {
			return err
		}
		if l.Status != loan.StatusActive {
			return nil
		}
		u.accrueLoan(l, asOf)
		if !l.Overdue(asOf) || l.Outstanding().Sign() <= 0 {
			return nil
		}

		if err := p.WriteOff(l.Principal); err != nil {
			return err
		}
		p.TotalLoansDefaulted++

		l.Status = loan.StatusDefaulted
		l.StatusUpdatedAt = asOf

		items, err := r.Loans.ListScheduleByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.Status != loan.SchedulePending {
				continue
			}
			it.Status = loan.ScheduleDefaulted
			if err := r.Loans.SaveScheduleItem(ctx, it); err != nil {
				return err
			}
		}

		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Pools.Save(ctx, p); err != nil {
			return err
		}
		marked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return marked, nil
}

// SweepDefaults finds active loans past maturity plus grace and defaults
// them one by one. Returns the number of loans defaulted. Each loan is its
// own transaction so a single bad row cannot wedge the whole sweep.
func (u *Usecase) SweepDefaults(ctx context.Context, asOf time.Time) (int, error) {
	// Grace is per-loan, so the listing cutoff uses maturity alone and
	// MarkDefault re-checks the full overdue condition under lock.
	var candidates []*loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		candidates, err = r.Loans.ListActiveMaturedBefore(ctx, asOf, 500)
		return err
	})
	if err != nil {
		return 0, err
	}

	defaulted := 0
	for _, l := range candidates {
		marked, err := u.MarkDefault(ctx, l.LoanID, asOf)
		if err != nil {
			log.Printf("default sweep: loan %s: %v", l.LoanID, err)
			continue
		}
		if marked {
			defaulted++
		}
	}
	return defaulted, nil
}
