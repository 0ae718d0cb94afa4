package lending

import (
	"errors"
	"time"

	"stablelend-backend/internal/interest"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrCreditLimitExceeded = errors.New("amount exceeds credit limit")
	ErrNothingWithdrawable = errors.New("no withdrawable balance")
)

type ScheduleShape string

const (
	ShapeBalloon      ScheduleShape = "balloon"
	ShapeInstallments ScheduleShape = "installments"
)

// Policy carries the risk and product knobs. Values are snapshotted onto
// loans at origination.
type Policy struct {
	LTVBps          int64
	GraceDays       int
	DefaultTermDays int
	ScheduleShape   ScheduleShape
	Installments    int
	Compounding     interest.Compounding
	MinorUnit       int32
}

func DefaultPolicy() Policy {
	return Policy{
		LTVBps:          5000,
		GraceDays:       7,
		DefaultTermDays: 30,
		ScheduleShape:   ShapeBalloon,
		Installments:    1,
		Compounding:     interest.Simple,
		MinorUnit:       2,
	}
}

// ---- inputs ----

type BorrowInput struct {
	Wallet   string
	Token    string
	Amount   string
	TermDays int // 0 means the policy default
}

// ---- DTOs; all monetary fields are decimal strings ----

type TxDetails struct {
	Token      string `json:"token"`
	Amount     string `json:"amount"`
	Depositor  string `json:"depositor,omitempty"`
	Withdrawer string `json:"withdrawer,omitempty"`
	Borrower   string `json:"borrower,omitempty"`
}

type TxResult struct {
	Transaction string    `json:"transaction"`
	Details     TxDetails `json:"details"`
}

type YieldsDTO struct {
	GrossYield           string `json:"grossYield"`
	NetYield             string `json:"netYield"`
	UsedForLoanRepayment string `json:"usedForLoanRepayment"`
}

type WithdrawableDTO struct {
	Withdrawable string `json:"withdrawable"`
	UsedForLoan  string `json:"usedForLoan"`
}

type PayoffDTO struct {
	Payoff    string `json:"payoff"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
}

type ScheduleItemDTO struct {
	Seq           int       `json:"seq"`
	DueDate       time.Time `json:"due_date"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	SettlementRef string    `json:"settlement_ref,omitempty"`
}

type LoanDTO struct {
	LoanID          string            `json:"loan_id"`
	Token           string            `json:"token"`
	Principal       string            `json:"principal"`
	InterestAccrued string            `json:"interest_accrued"`
	RateBps         int64             `json:"rate_bps"`
	TermDays        int               `json:"term_days"`
	OriginatedAt    time.Time         `json:"originated_at"`
	MaturesAt       time.Time         `json:"matures_at"`
	Status          string            `json:"status"`
	Schedule        []ScheduleItemDTO `json:"schedule"`
}

type PoolStatusDTO struct {
	TotalPools          int    `json:"totalPools"`
	ActivePools         int    `json:"activePools"`
	TotalFunds          string `json:"totalFunds"`
	AvailableFunds      string `json:"availableFunds"`
	TotalLoansIssued    uint64 `json:"totalLoansIssued"`
	TotalLoansRepaid    uint64 `json:"totalLoansRepaid"`
	TotalLoansDefaulted uint64 `json:"totalLoansDefaulted"`
	TotalInterestEarned string `json:"totalInterestEarned"`
}
