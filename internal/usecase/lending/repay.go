package lending

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stablelend-backend/internal/domain/account"
	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
	"stablelend-backend/pkg/id"
)

// Repay applies a payment to the wallet's active loan: accrued interest
// first, then principal. A payment above the outstanding balance is rejected
// with ErrOverpayment (the exact payoff is available via Payoff). Full payoff
// transitions the loan to repaid, returns the principal portion to the pool's
// available funds and books the interest portion as pool earnings.
func (u *Usecase) Repay(ctx context.Context, wallet, token, rawAmount string) (*TxResult, error) {
	amount, err := u.parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	var res *TxResult
	var settled []*loan.ScheduleItem
	var loanID string
	err = u.uow.WithinPoolTx(ctx, token, func(r uow.Repos, p *pool.Pool) error {
		now := u.now()
		acct, err := r.Accounts.GetByAddressForUpdate(ctx, wallet, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrNotFound
		}
		if err != nil {
			return err
		}
		l, err := r.Loans.GetActiveByAccountIDForUpdate(ctx, acct.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loan.ErrNoActiveLoan
		}
		if err != nil {
			return err
		}

		u.accrueLoan(l, now)
		if amount.GreaterThan(l.Outstanding()) {
			return loan.ErrOverpayment
		}

		interestPaid := decimal.Min(amount, l.InterestAccrued)
		principalPaid := amount.Sub(interestPaid)
		l.InterestAccrued = l.InterestAccrued.Sub(interestPaid)
		l.Principal = l.Principal.Sub(principalPaid)
		l.PaidToDate = l.PaidToDate.Add(amount)

		if err := p.Release(principalPaid); err != nil {
			return err
		}
		p.TotalInterestEarned = p.TotalInterestEarned.Add(interestPaid)

		full := l.Outstanding().IsZero()
		if full {
			l.Status = loan.StatusRepaid
			l.StatusUpdatedAt = now
			p.TotalLoansRepaid++
		}

		settled, err = u.settleScheduleItems(ctx, r, l, full)
		if err != nil {
			return err
		}

		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Pools.Save(ctx, p); err != nil {
			return err
		}
		loanID = l.LoanID
		res = &TxResult{
			Transaction: id.NewTxRef(),
			Details:     TxDetails{Token: token, Amount: u.money(amount), Borrower: wallet},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifySettlements(ctx, loanID, settled)
	return res, nil
}

// settleScheduleItems marks pending items paid, in due order, as far as the
// cumulative payments cover them. On full payoff everything pending is paid
// regardless of rounding drift between the projection and the actual accrual.
func (u *Usecase) settleScheduleItems(ctx context.Context, r uow.Repos, l *loan.Loan, full bool) ([]*loan.ScheduleItem, error) {
	items, err := r.Loans.ListScheduleByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	var newlyPaid []*loan.ScheduleItem
	covered := decimal.Zero
	for _, it := range items {
		covered = covered.Add(it.Amount)
		if it.Status != loan.SchedulePending {
			continue
		}
		if !full && covered.GreaterThan(l.PaidToDate) {
			break
		}
		it.Status = loan.SchedulePaid
		if err := r.Loans.SaveScheduleItem(ctx, it); err != nil {
			return nil, err
		}
		newlyPaid = append(newlyPaid, it)
	}
	return newlyPaid, nil
}

// notifySettlements stamps settlement references from the custody gateway
// onto freshly paid schedule items. Runs after commit and is best-effort: a
// gateway failure never unwinds a repayment.
func (u *Usecase) notifySettlements(ctx context.Context, loanID string, items []*loan.ScheduleItem) {
	if u.custody == nil || len(items) == 0 {
		return
	}
	for _, it := range items {
		ref, err := u.custody.SettlementRef(ctx, loanID, it.Seq, it.Amount)
		if err != nil {
			log.Printf("custody: settlement ref for loan %s seq %d: %v", loanID, it.Seq, err)
			continue
		}
		it.SettlementRef = ref
		err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
			return r.Loans.SaveScheduleItem(ctx, it)
		})
		if err != nil {
			log.Printf("custody: persist settlement ref for loan %s seq %d: %v", loanID, it.Seq, err)
		}
	}
}

// Payoff reports the exact amount that fully repays the active loan as of
// now. Lock-free snapshot read.
func (u *Usecase) Payoff(ctx context.Context, wallet, token string) (*PayoffDTO, error) {
	var dto *PayoffDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		now := u.now()
		acct, err := r.Accounts.GetByAddress(ctx, wallet, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrNotFound
		}
		if err != nil {
			return err
		}
		l, err := r.Loans.GetActiveByAccountID(ctx, acct.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loan.ErrNoActiveLoan
		}
		if err != nil {
			return err
		}
		owed := u.pendingInterest(l, now)
		dto = &PayoffDTO{
			Payoff:    u.money(l.Principal.Add(owed)),
			Principal: u.money(l.Principal),
			Interest:  u.money(owed),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
