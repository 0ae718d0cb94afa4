package mysql

import (
	"context"
	"time"

	loanDomain "stablelend-backend/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetActiveByAccountID(ctx context.Context, accountID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, loanDomain.StatusActive).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetActiveByAccountIDForUpdate(ctx context.Context, accountID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := forUpdate(r.db.WithContext(ctx)).
		Where("account_id = ? AND status = ?", accountID, loanDomain.StatusActive).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListActiveMaturedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*loanDomain.Loan, error) {
	var out []*loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("status = ? AND matures_at < ?", loanDomain.StatusActive, cutoff).
		Order("matures_at ASC").
		Limit(limit).
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) CreateScheduleItems(ctx context.Context, items []*loanDomain.ScheduleItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(items).Error
}

func (r *LoanRepository) SaveScheduleItem(ctx context.Context, it *loanDomain.ScheduleItem) error {
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *LoanRepository) ListScheduleByLoanID(ctx context.Context, loanID uint64) ([]*loanDomain.ScheduleItem, error) {
	var out []*loanDomain.ScheduleItem
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("seq ASC").
		Find(&out)
	return out, res.Error
}
