package lending

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stablelend-backend/internal/credit"
	"stablelend-backend/internal/domain/account"
	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
	"stablelend-backend/internal/interest"
	"stablelend-backend/pkg/id"
)

// Borrow originates a loan against the wallet's collateral. Guards, in
// order: at most one active loan per account, amount within the credit
// limit, pool not paused and liquid enough. Funds are reserved and the
// repayment schedule is written in the same tx, so a failed guard leaves
// nothing behind.
func (u *Usecase) Borrow(ctx context.Context, in BorrowInput) (*TxResult, error) {
	amount, err := u.parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	termDays := in.TermDays
	if termDays == 0 {
		termDays = u.pol.DefaultTermDays
	}
	if termDays < 0 {
		return nil, ErrInvalidInput
	}

	var res *TxResult
	err = u.uow.WithinPoolTx(ctx, in.Token, func(r uow.Repos, p *pool.Pool) error {
		now := u.now()
		acct, err := r.Accounts.GetByAddressForUpdate(ctx, in.Wallet, in.Token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = r.Loans.GetActiveByAccountIDForUpdate(ctx, acct.ID)
		switch {
		case err == nil:
			return loan.ErrLoanAlreadyActive
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		limit, err := credit.Limit(acct.Collateral, u.pol.LTVBps, u.pol.MinorUnit)
		if err != nil {
			return err
		}
		if amount.GreaterThan(limit) {
			return ErrCreditLimitExceeded
		}

		if err := p.Reserve(amount); err != nil {
			return err
		}

		l := &loan.Loan{
			LoanID:          id.NewID32(),
			AccountID:       acct.ID,
			Token:           in.Token,
			Principal:       amount,
			InterestAccrued: decimal.Zero,
			PaidToDate:      decimal.Zero,
			RateBps:         p.RateBps,
			TermDays:        termDays,
			GraceDays:       u.pol.GraceDays,
			OriginatedAt:    now,
			MaturesAt:       now.AddDate(0, 0, termDays),
			AccruedAt:       now,
			Status:          loan.StatusActive,
			StatusUpdatedAt: now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.CreateScheduleItems(ctx, u.buildSchedule(l)); err != nil {
			return err
		}

		p.TotalLoansIssued++
		if err := r.Pools.Save(ctx, p); err != nil {
			return err
		}

		res = &TxResult{
			Transaction: id.NewTxRef(),
			Details:     TxDetails{Token: in.Token, Amount: u.money(amount), Borrower: in.Wallet},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// buildSchedule projects the repayment plan at origination: one balloon
// payment at maturity, or evenly spaced installments with the final item
// absorbing the rounding remainder.
func (u *Usecase) buildSchedule(l *loan.Loan) []*loan.ScheduleItem {
	projected := interest.Quantize(
		interest.Accrue(l.Principal, l.RateBps, l.OriginatedAt, l.MaturesAt, u.pol.Compounding),
		u.pol.MinorUnit,
	)
	total := l.Principal.Add(projected)

	n := 1
	if u.pol.ScheduleShape == ShapeInstallments && u.pol.Installments > 1 {
		n = u.pol.Installments
	}
	if n == 1 {
		return []*loan.ScheduleItem{{
			LoanID:  l.ID,
			Seq:     1,
			DueDate: l.MaturesAt,
			Amount:  total,
			Status:  loan.SchedulePending,
		}}
	}

	per := total.Div(decimal.NewFromInt(int64(n))).RoundFloor(u.pol.MinorUnit)
	items := make([]*loan.ScheduleItem, 0, n)
	allocated := decimal.Zero
	for i := 1; i <= n; i++ {
		amt := per
		due := l.OriginatedAt.AddDate(0, 0, l.TermDays*i/n)
		if i == n {
			amt = total.Sub(allocated)
			due = l.MaturesAt
		}
		allocated = allocated.Add(amt)
		items = append(items, &loan.ScheduleItem{
			LoanID:  l.ID,
			Seq:     i,
			DueDate: due,
			Amount:  amt,
			Status:  loan.SchedulePending,
		})
	}
	return items
}

// GetLoan returns the wallet's most recent loan with its schedule.
func (u *Usecase) GetLoan(ctx context.Context, wallet, token string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		acct, err := r.Accounts.GetByAddress(ctx, wallet, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrNotFound
		}
		if err != nil {
			return err
		}
		l, err := r.Loans.GetActiveByAccountID(ctx, acct.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loan.ErrNotFound
		}
		if err != nil {
			return err
		}
		items, err := r.Loans.ListScheduleByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		dto = u.loanDTO(l, items, u.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) loanDTO(l *loan.Loan, items []*loan.ScheduleItem, now time.Time) *LoanDTO {
	dto := &LoanDTO{
		LoanID:          l.LoanID,
		Token:           l.Token,
		Principal:       u.money(l.Principal),
		InterestAccrued: u.money(u.pendingInterest(l, now)),
		RateBps:         l.RateBps,
		TermDays:        l.TermDays,
		OriginatedAt:    l.OriginatedAt,
		MaturesAt:       l.MaturesAt,
		Status:          string(l.Status),
		Schedule:        make([]ScheduleItemDTO, 0, len(items)),
	}
	for _, it := range items {
		dto.Schedule = append(dto.Schedule, ScheduleItemDTO{
			Seq:           it.Seq,
			DueDate:       it.DueDate,
			Amount:        u.money(it.Amount),
			Status:        string(it.Status),
			SettlementRef: it.SettlementRef,
		})
	}
	return dto
}
