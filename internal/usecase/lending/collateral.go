package lending

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stablelend-backend/internal/credit"
	"stablelend-backend/internal/domain/account"
	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
	"stablelend-backend/internal/interest"
	"stablelend-backend/pkg/id"
)

// Deposit adds collateral to the wallet's account and the same amount to the
// token pool's funds. First deposit creates the account.
func (u *Usecase) Deposit(ctx context.Context, wallet, token, rawAmount string) (*TxResult, error) {
	amount, err := u.parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	var res *TxResult
	err = u.uow.WithinPoolTx(ctx, token, func(r uow.Repos, p *pool.Pool) error {
		now := u.now()
		acct, err := r.Accounts.GetByAddressForUpdate(ctx, wallet, token)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			acct = &account.Account{
				AccountID:       id.NewID32(),
				Address:         wallet,
				Token:           token,
				Collateral:      decimal.Zero,
				YieldAccrued:    decimal.Zero,
				YieldCheckpoint: now,
			}
			if err := r.Accounts.Create(ctx, acct); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		u.settleYield(acct, p, now)
		acct.Collateral = acct.Collateral.Add(amount)
		if err := p.AddFunds(amount); err != nil {
			return err
		}

		if err := r.Accounts.Save(ctx, acct); err != nil {
			return err
		}
		if err := r.Pools.Save(ctx, p); err != nil {
			return err
		}
		res = &TxResult{
			Transaction: id.NewTxRef(),
			Details:     TxDetails{Token: token, Amount: u.money(amount), Depositor: wallet},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Withdraw pays out the wallet's full withdrawable collateral: everything not
// locked as security for an active loan.
func (u *Usecase) Withdraw(ctx context.Context, wallet, token string) (*TxResult, error) {
	var res *TxResult
	err := u.uow.WithinPoolTx(ctx, token, func(r uow.Repos, p *pool.Pool) error {
		now := u.now()
		acct, err := r.Accounts.GetByAddressForUpdate(ctx, wallet, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrNotFound
		}
		if err != nil {
			return err
		}
		u.settleYield(acct, p, now)

		withdrawable, _, err := u.splitCollateral(ctx, r, acct)
		if err != nil {
			return err
		}
		if withdrawable.Sign() <= 0 {
			return ErrNothingWithdrawable
		}

		if err := p.DrawFunds(withdrawable); err != nil {
			return err
		}
		acct.Collateral = acct.Collateral.Sub(withdrawable)

		if err := r.Accounts.Save(ctx, acct); err != nil {
			return err
		}
		if err := r.Pools.Save(ctx, p); err != nil {
			return err
		}
		res = &TxResult{
			Transaction: id.NewTxRef(),
			Details:     TxDetails{Token: token, Amount: u.money(withdrawable), Withdrawer: wallet},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Withdrawable reports how much collateral the wallet could withdraw right
// now, and how much an active loan keeps locked. Lock-free snapshot read.
func (u *Usecase) Withdrawable(ctx context.Context, wallet, token string) (*WithdrawableDTO, error) {
	var dto *WithdrawableDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		acct, err := r.Accounts.GetByAddress(ctx, wallet, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrNotFound
		}
		if err != nil {
			return err
		}
		withdrawable, locked, err := u.splitCollateral(ctx, r, acct)
		if err != nil {
			return err
		}
		dto = &WithdrawableDTO{
			Withdrawable: u.money(withdrawable),
			UsedForLoan:  u.money(locked),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Yields reports deposit-side yield: gross accrued, the portion earmarked to
// offset outstanding loan interest, and the net remainder.
func (u *Usecase) Yields(ctx context.Context, wallet, token string) (*YieldsDTO, error) {
	var dto *YieldsDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		now := u.now()
		p, err := r.Pools.GetByToken(ctx, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pool.ErrNotFound
		}
		if err != nil {
			return err
		}
		acct, err := r.Accounts.GetByAddress(ctx, wallet, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrNotFound
		}
		if err != nil {
			return err
		}

		pending := interest.Accrue(acct.Collateral, p.DepositRateBps, acct.YieldCheckpoint, now, u.pol.Compounding)
		gross := acct.YieldAccrued.Add(interest.Quantize(pending, u.pol.MinorUnit))

		owed := decimal.Zero
		l, err := r.Loans.GetActiveByAccountID(ctx, acct.ID)
		switch {
		case err == nil:
			owed = u.pendingInterest(l, now)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		used := decimal.Min(gross, owed)
		dto = &YieldsDTO{
			GrossYield:           u.money(gross),
			NetYield:             u.money(gross.Sub(used)),
			UsedForLoanRepayment: u.money(used),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// splitCollateral divides the account's collateral into the withdrawable part
// and the part locked as security for an active loan.
func (u *Usecase) splitCollateral(ctx context.Context, r uow.Repos, acct *account.Account) (withdrawable, locked decimal.Decimal, err error) {
	locked = decimal.Zero
	l, err := r.Loans.GetActiveByAccountID(ctx, acct.ID)
	switch {
	case err == nil:
		locked, err = credit.RequiredCollateral(l.Principal, u.pol.LTVBps, u.pol.MinorUnit)
		if err != nil {
			return decimal.Decimal{}, decimal.Decimal{}, err
		}
		if locked.GreaterThan(acct.Collateral) {
			locked = acct.Collateral
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no loan, everything is free
	default:
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return acct.Collateral.Sub(locked), locked, nil
}
