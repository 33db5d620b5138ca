package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade statuses. The engine's "completed" vocabulary maps to the local
// terminal status "released".
const (
	TradeStatusAwaiting  = "awaiting"
	TradeStatusPaid      = "paid"
	TradeStatusReleased  = "released"
	TradeStatusCancelled = "cancelled"
)

// Taker sides.
const (
	TakerSideBuy  = "buy"
	TakerSideSell = "sell"
)

// Trade is one P2P trade taken against an offer.
type Trade struct {
	ID             int64           `gorm:"primaryKey" json:"id"`
	OfferID        int64           `gorm:"index" json:"offer_id"`
	BuyerID        int64           `gorm:"index" json:"buyer_id"`
	SellerID       int64           `gorm:"index" json:"seller_id"`
	Symbol         string          `gorm:"size:40" json:"symbol"`
	CoinCurrency   string          `gorm:"size:20" json:"coin_currency"`
	Currency       string          `gorm:"size:20" json:"currency"`
	CoinAmount     decimal.Decimal `gorm:"type:decimal(36,18)" json:"coin_amount"`
	FiatAmount     decimal.Decimal `gorm:"type:decimal(36,18)" json:"fiat_amount"`
	Price          decimal.Decimal `gorm:"type:decimal(36,18)" json:"price"`
	FixedFee       decimal.Decimal `gorm:"type:decimal(36,18)" json:"fixed_fee"`
	CoinTradingFee decimal.Decimal `gorm:"type:decimal(36,18)" json:"coin_trading_fee"`
	TotalFee       decimal.Decimal `gorm:"type:decimal(36,18)" json:"total_fee"`
	AmountAfterFee decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount_after_fee"`
	TakerSide      string          `gorm:"size:10" json:"taker_side"`
	Status         string          `gorm:"size:20;default:awaiting" json:"status"`
	PaidAt         *time.Time      `json:"paid_at"`
	ReleasedAt     *time.Time      `json:"released_at"`
	CancelledAt    *time.Time      `json:"cancelled_at"`
	ErrorMessage   string          `gorm:"size:1000" json:"error_message"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Cancel stamps the trade cancelled. Repeat cancels keep the first stamp.
func (t *Trade) Cancel(at time.Time) {
	t.Status = TradeStatusCancelled
	if t.CancelledAt == nil {
		t.CancelledAt = &at
	}
}

// Release stamps the trade released. Repeat releases keep the first stamp.
func (t *Trade) Release(at time.Time) {
	t.Status = TradeStatusReleased
	if t.ReleasedAt == nil {
		t.ReleasedAt = &at
	}
}

// TransactionFail implements Failable. Trades advance only through explicit
// engine operations, so a generic failure just records the reason.
func (t *Trade) TransactionFail(reason string) bool {
	t.ErrorMessage = reason
	return true
}
