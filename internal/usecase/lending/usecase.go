package lending

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stablelend-backend/internal/domain/account"
	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
	"stablelend-backend/internal/interest"
)

// SettlementNotifier reports a paid schedule item to the custody gateway and
// returns the settlement reference. Remote and fallible; callers treat it as
// best-effort after commit.
type SettlementNotifier interface {
	SettlementRef(ctx context.Context, loanID string, seq int, amount decimal.Decimal) (string, error)
}

type Usecase struct {
	uow     uow.UnitOfWork
	pol     Policy
	custody SettlementNotifier
	now     func() time.Time
}

type Option func(*Usecase)

// WithClock overrides the time source. Tests pin accrual windows with it.
func WithClock(now func() time.Time) Option {
	return func(u *Usecase) { u.now = now }
}

func WithSettlementNotifier(n SettlementNotifier) Option {
	return func(u *Usecase) { u.custody = n }
}

func NewUsecase(tx uow.UnitOfWork, pol Policy, opts ...Option) *Usecase {
	u := &Usecase{
		uow: tx,
		pol: pol,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// checkAmount rejects non-positive amounts and amounts finer than the
// token's minor unit.
func (u *Usecase) checkAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 || !amount.Equal(amount.Round(u.pol.MinorUnit)) {
		return ErrInvalidInput
	}
	return nil
}

func (u *Usecase) parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidInput
	}
	if err := u.checkAmount(amount); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}

func (u *Usecase) money(d decimal.Decimal) string {
	return d.StringFixed(u.pol.MinorUnit)
}

// settleYield folds deposit-side yield accrued since the checkpoint into the
// account. Called whenever collateral is about to change so yield never
// accrues on the wrong base.
func (u *Usecase) settleYield(a *account.Account, p *pool.Pool, now time.Time) {
	delta := interest.Accrue(a.Collateral, p.DepositRateBps, a.YieldCheckpoint, now, u.pol.Compounding)
	a.YieldAccrued = a.YieldAccrued.Add(interest.Quantize(delta, u.pol.MinorUnit))
	a.YieldCheckpoint = now
}

// accrueLoan settles borrow-side interest up to now. The settled delta is
// quantized to the minor unit so outstanding balances stay payable exactly.
func (u *Usecase) accrueLoan(l *loan.Loan, now time.Time) {
	if l.Status != loan.StatusActive {
		return
	}
	delta := interest.Accrue(l.Principal, l.RateBps, l.AccruedAt, now, u.pol.Compounding)
	l.InterestAccrued = l.InterestAccrued.Add(interest.Quantize(delta, u.pol.MinorUnit))
	if now.After(l.AccruedAt) {
		l.AccruedAt = now
	}
}

// pendingInterest is the read-path equivalent of accrueLoan: settled interest
// plus the lazily computed remainder, without mutating anything.
func (u *Usecase) pendingInterest(l *loan.Loan, now time.Time) decimal.Decimal {
	if l.Status != loan.StatusActive {
		return l.InterestAccrued
	}
	delta := interest.Accrue(l.Principal, l.RateBps, l.AccruedAt, now, u.pol.Compounding)
	return l.InterestAccrued.Add(interest.Quantize(delta, u.pol.MinorUnit))
}
