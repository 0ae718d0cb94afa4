package lending

import (
	"context"

	"github.com/shopspring/decimal"

	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
)

// PoolStatus aggregates all pools into the dashboard shape the wallet UI
// polls. Lock-free snapshot read.
func (u *Usecase) PoolStatus(ctx context.Context) (*PoolStatusDTO, error) {
	var dto *PoolStatusDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		pools, err := r.Pools.List(ctx)
		if err != nil {
			return err
		}
		out := &PoolStatusDTO{TotalPools: len(pools)}
		total, available, earned := decimal.Zero, decimal.Zero, decimal.Zero
		for _, p := range pools {
			if p.Status == pool.StatusActive && !p.Halted {
				out.ActivePools++
			}
			total = total.Add(p.TotalFunds)
			available = available.Add(p.AvailableFunds)
			earned = earned.Add(p.TotalInterestEarned)
			out.TotalLoansIssued += p.TotalLoansIssued
			out.TotalLoansRepaid += p.TotalLoansRepaid
			out.TotalLoansDefaulted += p.TotalLoansDefaulted
		}
		out.TotalFunds = u.money(total)
		out.AvailableFunds = u.money(available)
		out.TotalInterestEarned = u.money(earned)
		dto = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// PausePool blocks new borrows against the token's pool. Deposits,
// withdrawals and repayments keep working.
func (u *Usecase) PausePool(ctx context.Context, token string) error {
	return u.uow.WithinPoolTx(ctx, token, func(r uow.Repos, p *pool.Pool) error {
		if err := p.Pause(); err != nil {
			return err
		}
		return r.Pools.Save(ctx, p)
	})
}

// ResumePool lifts an administrative pause. Halted pools stay halted.
func (u *Usecase) ResumePool(ctx context.Context, token string) error {
	return u.uow.WithinPoolTx(ctx, token, func(r uow.Repos, p *pool.Pool) error {
		if err := p.Resume(); err != nil {
			return err
		}
		return r.Pools.Save(ctx, p)
	})
}
