package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinAccount is a user's crypto balance account.
type CoinAccount struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	UserID    int64           `gorm:"index" json:"user_id"`
	Currency  string          `gorm:"size:20" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:decimal(36,18)" json:"balance"`
	Frozen    decimal.Decimal `gorm:"type:decimal(36,18)" json:"frozen"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FiatAccount is a user's fiat balance account.
type FiatAccount struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	UserID    int64           `gorm:"index" json:"user_id"`
	Currency  string          `gorm:"size:20" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:decimal(36,18)" json:"balance"`
	Frozen    decimal.Decimal `gorm:"type:decimal(36,18)" json:"frozen"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Fiat operation statuses.
const (
	FiatOperationStatusPending = "pending"
)

// FiatDeposit is the fiat leg created when a trade requires the buyer to pay
// the seller through the platform.
type FiatDeposit struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	UserID    int64           `gorm:"index" json:"user_id"`
	TradeID   int64           `gorm:"index" json:"trade_id"`
	Currency  string          `gorm:"size:20" json:"currency"`
	Amount    decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount"`
	Status    string          `gorm:"size:20;default:pending" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FiatWithdrawal is the mirrored outbound fiat leg of a trade.
type FiatWithdrawal struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	UserID    int64           `gorm:"index" json:"user_id"`
	TradeID   int64           `gorm:"index" json:"trade_id"`
	Currency  string          `gorm:"size:20" json:"currency"`
	Amount    decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount"`
	Status    string          `gorm:"size:20;default:pending" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
