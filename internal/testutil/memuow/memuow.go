// Package memuow is an in-memory uow.UnitOfWork for usecase tests. A single
// mutex stands in for row locks, so transactions serialize the way they do
// against MySQL, and every mutation is staged until the tx body returns nil.
package memuow

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"stablelend-backend/internal/domain/account"
	"stablelend-backend/internal/domain/loan"
	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
)

var _ uow.UnitOfWork = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	accounts map[uint64]account.Account
	loans    map[uint64]loan.Loan
	items    map[uint64]loan.ScheduleItem
	pools    map[string]pool.Pool
	nextID   uint64
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[uint64]account.Account),
		loans:    make(map[uint64]loan.Loan),
		items:    make(map[uint64]loan.ScheduleItem),
		pools:    make(map[string]pool.Pool),
	}
}

func (s *Store) nextSeq() uint64 {
	s.nextID++
	return s.nextID
}

// SeedPool installs a pool row outside any transaction.
func (s *Store) SeedPool(p *pool.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[p.Token] = *p
}

// SeedAccount installs an account row, assigning its numeric ID.
func (s *Store) SeedAccount(a *account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextSeq()
	s.accounts[a.ID] = *a
}

// SeedLoan installs a loan row with its schedule, assigning numeric IDs.
func (s *Store) SeedLoan(l *loan.Loan, items ...*loan.ScheduleItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.nextSeq()
	s.loans[l.ID] = *l
	for _, it := range items {
		it.ID = s.nextSeq()
		it.LoanID = l.ID
		s.items[it.ID] = *it
	}
}

// Pool returns a copy of the pool row for assertions.
func (s *Store) Pool(token string) (pool.Pool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[token]
	return p, ok
}

// Account returns a copy of the account row for assertions.
func (s *Store) Account(address, token string) (account.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Address == address && a.Token == token {
			return a, true
		}
	}
	return account.Account{}, false
}

// LoanIDs lists every loan's public ID, sorted.
func (s *Store) LoanIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.loans))
	for _, l := range s.loans {
		out = append(out, l.LoanID)
	}
	sort.Strings(out)
	return out
}

// Schedule returns copies of a loan's schedule items ordered by Seq.
func (s *Store) Schedule(loanID uint64) []loan.ScheduleItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []loan.ScheduleItem
	for _, it := range s.items {
		if it.LoanID == loanID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Loan returns a copy of the loan row for assertions.
func (s *Store) Loan(loanID string) (loan.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.loans {
		if l.LoanID == loanID {
			return l, true
		}
	}
	return loan.Loan{}, false
}

func (s *Store) snapshot() (map[uint64]account.Account, map[uint64]loan.Loan, map[uint64]loan.ScheduleItem, map[string]pool.Pool, uint64) {
	acc := make(map[uint64]account.Account, len(s.accounts))
	for k, v := range s.accounts {
		acc[k] = v
	}
	lns := make(map[uint64]loan.Loan, len(s.loans))
	for k, v := range s.loans {
		lns[k] = v
	}
	its := make(map[uint64]loan.ScheduleItem, len(s.items))
	for k, v := range s.items {
		its[k] = v
	}
	pls := make(map[string]pool.Pool, len(s.pools))
	for k, v := range s.pools {
		pls[k] = v
	}
	return acc, lns, its, pls, s.nextID
}

func (s *Store) repos() uow.Repos {
	return uow.Repos{
		Accounts: &accountRepo{s: s},
		Loans:    &loanRepo{s: s},
		Pools:    &poolRepo{s: s},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, lns, its, pls, seq := s.snapshot()
	if err := fn(s.repos()); err != nil {
		s.accounts, s.loans, s.items, s.pools, s.nextID = acc, lns, its, pls, seq
		return err
	}
	return nil
}

func (s *Store) WithinPoolTx(ctx context.Context, token string, fn func(r uow.Repos, p *pool.Pool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.pools[token]
	if !ok {
		return pool.ErrNotFound
	}
	acc, lns, its, pls, seq := s.snapshot()
	p := row
	if err := fn(s.repos(), &p); err != nil {
		s.accounts, s.loans, s.items, s.pools, s.nextID = acc, lns, its, pls, seq
		return err
	}
	return nil
}

// ---- repositories (caller already holds s.mu via WithinTx/WithinPoolTx) ----

type accountRepo struct{ s *Store }

func (r *accountRepo) Create(ctx context.Context, a *account.Account) error {
	a.ID = r.s.nextSeq()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *accountRepo) Save(ctx context.Context, a *account.Account) error {
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *accountRepo) GetByAddress(ctx context.Context, address, token string) (*account.Account, error) {
	for _, a := range r.s.accounts {
		if a.Address == address && a.Token == token {
			cp := a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *accountRepo) GetByAddressForUpdate(ctx context.Context, address, token string) (*account.Account, error) {
	return r.GetByAddress(ctx, address, token)
}

type loanRepo struct{ s *Store }

func (r *loanRepo) Create(ctx context.Context, l *loan.Loan) error {
	l.ID = r.s.nextSeq()
	r.s.loans[l.ID] = *l
	return nil
}

func (r *loanRepo) Save(ctx context.Context, l *loan.Loan) error {
	r.s.loans[l.ID] = *l
	return nil
}

func (r *loanRepo) GetByLoanID(ctx context.Context, loanID string) (*loan.Loan, error) {
	for _, l := range r.s.loans {
		if l.LoanID == loanID {
			cp := l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *loanRepo) GetActiveByAccountID(ctx context.Context, accountID uint64) (*loan.Loan, error) {
	for _, l := range r.s.loans {
		if l.AccountID == accountID && l.Status == loan.StatusActive {
			cp := l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *loanRepo) GetActiveByAccountIDForUpdate(ctx context.Context, accountID uint64) (*loan.Loan, error) {
	return r.GetActiveByAccountID(ctx, accountID)
}

func (r *loanRepo) ListActiveMaturedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*loan.Loan, error) {
	var out []*loan.Loan
	for _, l := range r.s.loans {
		if l.Status == loan.StatusActive && l.MaturesAt.Before(cutoff) {
			cp := l
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *loanRepo) CreateScheduleItems(ctx context.Context, items []*loan.ScheduleItem) error {
	for _, it := range items {
		it.ID = r.s.nextSeq()
		r.s.items[it.ID] = *it
	}
	return nil
}

func (r *loanRepo) SaveScheduleItem(ctx context.Context, it *loan.ScheduleItem) error {
	r.s.items[it.ID] = *it
	return nil
}

func (r *loanRepo) ListScheduleByLoanID(ctx context.Context, loanID uint64) ([]*loan.ScheduleItem, error) {
	var out []*loan.ScheduleItem
	for _, it := range r.s.items {
		if it.LoanID == loanID {
			cp := it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

type poolRepo struct{ s *Store }

func (r *poolRepo) Create(ctx context.Context, p *pool.Pool) error {
	r.s.pools[p.Token] = *p
	return nil
}

func (r *poolRepo) Save(ctx context.Context, p *pool.Pool) error {
	r.s.pools[p.Token] = *p
	return nil
}

func (r *poolRepo) GetByToken(ctx context.Context, token string) (*pool.Pool, error) {
	p, ok := r.s.pools[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := p
	return &cp, nil
}

func (r *poolRepo) GetByTokenForUpdate(ctx context.Context, token string) (*pool.Pool, error) {
	return r.GetByToken(ctx, token)
}

func (r *poolRepo) List(ctx context.Context) ([]*pool.Pool, error) {
	out := make([]*pool.Pool, 0, len(r.s.pools))
	for _, p := range r.s.pools {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}
