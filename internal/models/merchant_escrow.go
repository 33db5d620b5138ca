package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MerchantEscrow statuses.
const (
	MerchantEscrowStatusPending   = "pending"
	MerchantEscrowStatusActive    = "active"
	MerchantEscrowStatusCancelled = "cancelled"
	MerchantEscrowStatusCompleted = "completed"
)

// MerchantEscrowOperation types and statuses.
const (
	EscrowOperationMint = "mint"
	EscrowOperationBurn = "burn"

	EscrowOperationStatusCompleted = "completed"
)

// MerchantEscrow is a merchant's USDT/fiat escrow. Its macro status is
// inferred from the mint/burn operations the engine confirms, not reported
// directly by any event.
type MerchantEscrow struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"index" json:"user_id"`
	USDTAccountID int64     `json:"usdt_account_id"`
	FiatAccountID int64     `json:"fiat_account_id"`
	FiatCurrency  string    `gorm:"size:20" json:"fiat_currency"`
	Status        string    `gorm:"size:20;default:pending" json:"status"`
	ErrorMessage  string    `gorm:"size:1000" json:"error_message"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Activate opens a pending escrow.
func (e *MerchantEscrow) Activate() bool {
	if e.Status != MerchantEscrowStatusPending {
		return false
	}
	e.Status = MerchantEscrowStatusActive
	return true
}

// Cancel closes the escrow unless it is already cancelled.
func (e *MerchantEscrow) Cancel() bool {
	if e.Status == MerchantEscrowStatusCancelled {
		return false
	}
	e.Status = MerchantEscrowStatusCancelled
	return true
}

// TransactionFail implements Failable.
func (e *MerchantEscrow) TransactionFail(reason string) bool {
	e.ErrorMessage = reason
	return e.Cancel()
}

// MerchantEscrowOperation is one confirmed mint or burn against an escrow.
type MerchantEscrowOperation struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	MerchantEscrowID int64           `gorm:"index" json:"merchant_escrow_id"`
	OperationType    string          `gorm:"size:10" json:"operation_type"`
	USDTAccountID    int64           `json:"usdt_account_id"`
	FiatAccountID    int64           `json:"fiat_account_id"`
	USDTAmount       decimal.Decimal `gorm:"type:decimal(36,18)" json:"usdt_amount"`
	FiatAmount       decimal.Decimal `gorm:"type:decimal(36,18)" json:"fiat_amount"`
	FiatCurrency     string          `gorm:"size:20" json:"fiat_currency"`
	Status           string          `gorm:"size:20" json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
