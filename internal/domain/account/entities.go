package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("account not found")

// Account holds one wallet's collateral position in a single token pool.
// Collateral doubles as the pool deposit that earns the deposit-side yield;
// YieldAccrued is settled up to YieldCheckpoint, anything after is computed
// lazily at read time.
type Account struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	AccountID       string          `gorm:"size:32;uniqueIndex:ux_accounts_account_id" json:"account_id"`
	Address         string          `gorm:"size:42;uniqueIndex:ux_accounts_address_token,priority:1" json:"address"`
	Token           string          `gorm:"size:16;uniqueIndex:ux_accounts_address_token,priority:2" json:"token"`
	Collateral      decimal.Decimal `gorm:"type:decimal(38,18)" json:"collateral"`
	YieldAccrued    decimal.Decimal `gorm:"type:decimal(38,18)" json:"yield_accrued"`
	YieldCheckpoint time.Time       `json:"yield_checkpoint"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"-"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Account) TableName() string { return "accounts" }
