package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer types.
const (
	OfferTypeBuy  = "buy"
	OfferTypeSell = "sell"
)

// Offer is a P2P buy/sell advertisement. Offers carry no state machine —
// lifecycle events from the engine translate to plain field writes, and ids
// are engine-assigned on OFFER_CREATE.
type Offer struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	UserID          int64           `gorm:"index" json:"user_id"`
	OfferType       string          `gorm:"size:10" json:"offer_type"`
	CoinCurrency    string          `gorm:"size:20" json:"coin_currency"`
	Currency        string          `gorm:"size:20" json:"currency"`
	Price           decimal.Decimal `gorm:"type:decimal(36,18)" json:"price"`
	Margin          decimal.Decimal `gorm:"type:decimal(36,18)" json:"margin"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(36,18)" json:"total_amount"`
	AvailableAmount decimal.Decimal `gorm:"type:decimal(36,18)" json:"available_amount"`
	MinAmount       decimal.Decimal `gorm:"type:decimal(36,18)" json:"min_amount"`
	MaxAmount       decimal.Decimal `gorm:"type:decimal(36,18)" json:"max_amount"`
	PaymentMethodID int64           `json:"payment_method_id"`
	PaymentTime     int64           `json:"payment_time"`
	CountryCode     string          `gorm:"size:10" json:"country_code"`
	Disabled        bool            `json:"disabled"`
	Deleted         bool            `json:"deleted"`
	Automatic       bool            `json:"automatic"`
	Online          bool            `json:"online"`
	ErrorMessage    string          `gorm:"size:1000" json:"error_message"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Active reports whether the offer can take new trades.
func (o *Offer) Active() bool {
	return !o.Disabled && !o.Deleted
}

// TransactionFail implements Failable via the trivial error-field adapter:
// offers have no failure transition to invoke.
func (o *Offer) TransactionFail(reason string) bool {
	o.ErrorMessage = reason
	return true
}
