package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrLoanAlreadyActive = errors.New("account already has an active loan")
	ErrNoActiveLoan      = errors.New("no active loan for account")
	ErrOverpayment       = errors.New("payment exceeds outstanding balance")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "pending"
	SchedulePaid      ScheduleStatus = "paid"
	ScheduleDefaulted ScheduleStatus = "defaulted"
)

// Loan is an account's borrow position. Absence of an active row means the
// account has no loan. RateBps and GraceDays are snapshots of pool/policy
// values at origination so later parameter changes never reprice a live loan.
// InterestAccrued is settled up to AccruedAt; accrual past the checkpoint is
// a pure computation applied lazily.
type Loan struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	AccountID       uint64          `gorm:"index:idx_loans_account_status,priority:1" json:"-"`
	Token           string          `gorm:"size:16" json:"token"`
	Principal       decimal.Decimal `gorm:"type:decimal(38,18)" json:"principal"`
	InterestAccrued decimal.Decimal `gorm:"type:decimal(38,18)" json:"interest_accrued"`
	PaidToDate      decimal.Decimal `gorm:"type:decimal(38,18)" json:"paid_to_date"`
	RateBps         int64           `json:"rate_bps"`
	TermDays        int             `json:"term_days"`
	GraceDays       int             `json:"grace_days"`
	OriginatedAt    time.Time       `json:"originated_at"`
	MaturesAt       time.Time       `gorm:"index" json:"matures_at"`
	AccruedAt       time.Time       `json:"-"`
	Status          Status          `gorm:"size:16;index:idx_loans_account_status,priority:2" json:"status"`
	StatusUpdatedAt time.Time       `json:"status_updated_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"-"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Outstanding is principal plus settled interest.
func (l *Loan) Outstanding() decimal.Decimal {
	return l.Principal.Add(l.InterestAccrued)
}

// Overdue reports whether the loan is past maturity plus grace at asOf.
func (l *Loan) Overdue(asOf time.Time) bool {
	return asOf.After(l.MaturesAt.AddDate(0, 0, l.GraceDays))
}

// ScheduleItem is one due installment of a loan. Paid and defaulted items are
// terminal. SettlementRef is stamped best-effort by the custody gateway.
type ScheduleItem struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID        uint64          `gorm:"uniqueIndex:ux_schedule_loan_seq,priority:1" json:"-"`
	Seq           int             `gorm:"uniqueIndex:ux_schedule_loan_seq,priority:2" json:"seq"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `gorm:"type:decimal(38,18)" json:"amount"`
	Status        ScheduleStatus  `gorm:"size:16" json:"status"`
	SettlementRef string          `gorm:"size:66" json:"settlement_ref,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (ScheduleItem) TableName() string { return "repayment_schedule_items" }
