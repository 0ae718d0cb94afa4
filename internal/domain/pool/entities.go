package pool

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("pool not found")
	ErrPaused            = errors.New("pool is paused")
	ErrHalted            = errors.New("pool is halted")
	ErrInsufficientFunds = errors.New("pool has insufficient available funds")
	// ErrLedgerCorruption is fatal for the affected pool: the pool is halted
	// and refuses all further mutation until operators intervene.
	ErrLedgerCorruption = errors.New("ledger corruption: release exceeds total funds")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusDepleted Status = "depleted"
)

// Pool is the shared fund for one token. AvailableFunds moves only through
// the methods below, which are called on a row locked by the enclosing tx;
// 0 ≤ AvailableFunds ≤ TotalFunds holds at every commit.
type Pool struct {
	ID                      uint64          `gorm:"primaryKey;column:id" json:"-"`
	PoolID                  string          `gorm:"size:32;uniqueIndex:ux_pools_pool_id" json:"pool_id"`
	Token                   string          `gorm:"size:16;uniqueIndex:ux_pools_token" json:"token"`
	TotalFunds              decimal.Decimal `gorm:"type:decimal(38,18)" json:"total_funds"`
	AvailableFunds          decimal.Decimal `gorm:"type:decimal(38,18)" json:"available_funds"`
	RateBps                 int64           `json:"rate_bps"`
	DepositRateBps          int64           `json:"deposit_rate_bps"`
	Status                  Status          `gorm:"size:16" json:"status"`
	Halted                  bool            `json:"halted"`
	TotalLoansIssued        uint64          `json:"total_loans_issued"`
	TotalLoansRepaid        uint64          `json:"total_loans_repaid"`
	TotalLoansDefaulted     uint64          `json:"total_loans_defaulted"`
	TotalInterestEarned     decimal.Decimal `gorm:"type:decimal(38,18)" json:"total_interest_earned"`
	TotalDefaultedPrincipal decimal.Decimal `gorm:"type:decimal(38,18)" json:"total_defaulted_principal"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"-"`
	DeletedAt               gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Pool) TableName() string { return "pools" }

// refreshStatus flips depleted/active from the fund level. Paused is an
// administrative override and is never cleared here.
func (p *Pool) refreshStatus() {
	if p.Status == StatusPaused {
		return
	}
	if p.AvailableFunds.IsZero() {
		p.Status = StatusDepleted
	} else {
		p.Status = StatusActive
	}
}

// Reserve earmarks amount of available funds for a new loan.
func (p *Pool) Reserve(amount decimal.Decimal) error {
	if p.Halted {
		return ErrHalted
	}
	if p.Status == StatusPaused {
		return ErrPaused
	}
	if amount.GreaterThan(p.AvailableFunds) {
		return ErrInsufficientFunds
	}
	p.AvailableFunds = p.AvailableFunds.Sub(amount)
	p.refreshStatus()
	return nil
}

// Release returns repaid principal to the available funds. Releasing past
// TotalFunds means the ledger double-counted somewhere; the pool halts.
func (p *Pool) Release(amount decimal.Decimal) error {
	if p.Halted {
		return ErrHalted
	}
	if p.AvailableFunds.Add(amount).GreaterThan(p.TotalFunds) {
		p.Halted = true
		return ErrLedgerCorruption
	}
	p.AvailableFunds = p.AvailableFunds.Add(amount)
	p.refreshStatus()
	return nil
}

// AddFunds grows the pool on a deposit: both totals rise together.
func (p *Pool) AddFunds(amount decimal.Decimal) error {
	if p.Halted {
		return ErrHalted
	}
	p.TotalFunds = p.TotalFunds.Add(amount)
	p.AvailableFunds = p.AvailableFunds.Add(amount)
	p.refreshStatus()
	return nil
}

// DrawFunds shrinks the pool on a collateral withdrawal. Funds locked by
// outstanding loans are not available and cannot be drawn.
func (p *Pool) DrawFunds(amount decimal.Decimal) error {
	if p.Halted {
		return ErrHalted
	}
	if amount.GreaterThan(p.AvailableFunds) {
		return ErrInsufficientFunds
	}
	p.AvailableFunds = p.AvailableFunds.Sub(amount)
	p.TotalFunds = p.TotalFunds.Sub(amount)
	p.refreshStatus()
	return nil
}

// WriteOff realizes a defaulted principal as a loss: it leaves AvailableFunds
// untouched and removes the lost principal from the outstanding total.
func (p *Pool) WriteOff(principal decimal.Decimal) error {
	if p.Halted {
		return ErrHalted
	}
	if p.TotalFunds.Sub(principal).LessThan(p.AvailableFunds) {
		p.Halted = true
		return ErrLedgerCorruption
	}
	p.TotalFunds = p.TotalFunds.Sub(principal)
	p.TotalDefaultedPrincipal = p.TotalDefaultedPrincipal.Add(principal)
	return nil
}

// Pause blocks new reserves regardless of available funds.
func (p *Pool) Pause() error {
	if p.Halted {
		return ErrHalted
	}
	p.Status = StatusPaused
	return nil
}

// Resume lifts an administrative pause.
func (p *Pool) Resume() error {
	if p.Halted {
		return ErrHalted
	}
	p.Status = StatusActive
	p.refreshStatus()
	return nil
}
