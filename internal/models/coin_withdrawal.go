package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinWithdrawal statuses. The engine is the sole authority for this
// lifecycle: incoming statuses are stored lower-cased as-is, last write wins.
const (
	CoinWithdrawalStatusPending    = "pending"
	CoinWithdrawalStatusProcessing = "processing"
	CoinWithdrawalStatusCompleted  = "completed"
	CoinWithdrawalStatusFailed     = "failed"
	CoinWithdrawalStatusCancelled  = "cancelled"
)

// CoinWithdrawal is an on-chain withdrawal whose execution is delegated to
// the engine.
type CoinWithdrawal struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	UserID       int64           `gorm:"index" json:"user_id"`
	CoinCurrency string          `gorm:"size:20" json:"coin_currency"`
	CoinAmount   decimal.Decimal `gorm:"type:decimal(36,18)" json:"coin_amount"`
	CoinFee      decimal.Decimal `gorm:"type:decimal(36,18)" json:"coin_fee"`
	CoinAddress  string          `gorm:"size:255" json:"coin_address"`
	TxHash       string          `gorm:"size:255" json:"tx_hash"`
	Status       string          `gorm:"size:30;default:pending" json:"status"`
	Explanation  string          `gorm:"size:1000" json:"explanation"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Fail marks the withdrawal failed with the engine's explanation.
func (w *CoinWithdrawal) Fail(reason string) bool {
	w.Status = CoinWithdrawalStatusFailed
	w.Explanation = reason
	return true
}

// TransactionFail implements Failable.
func (w *CoinWithdrawal) TransactionFail(reason string) bool { return w.Fail(reason) }
