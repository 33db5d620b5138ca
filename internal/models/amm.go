// Package models holds the ledger entities the reconciler mutates. The
// entities are owned by the persistence layer; this package defines their
// shape, status machines and the capability surface the event handlers use.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmmOrder statuses.
const (
	AmmOrderStatusPending    = "pending"
	AmmOrderStatusProcessing = "processing"
	AmmOrderStatusSuccess    = "success"
	AmmOrderStatusError      = "error"
)

// AmmOrder is a swap order routed through the AMM engine. UpdatedAt is
// engine-driven and monotonic under reconciliation, so GORM must not touch it.
type AmmOrder struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	Identifier      string          `gorm:"uniqueIndex;size:255" json:"identifier"`
	UserID          int64           `gorm:"index" json:"user_id"`
	Pair            string          `gorm:"index;size:40" json:"pair"`
	Status          string          `gorm:"size:20;default:pending" json:"status"`
	ZeroForOne      bool            `json:"zero_for_one"`
	AmountSpecified decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount_specified"`
	AmountActual    decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount_actual"`
	AmountEstimated decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount_estimated"`
	AmountReceived  decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount_received"`
	BeforeTickIndex int64           `json:"before_tick_index"`
	AfterTickIndex  int64           `json:"after_tick_index"`
	Fees            JSONMap         `gorm:"type:text" json:"fees"`
	ErrorMessage    string          `gorm:"size:1000" json:"error_message"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// Fail moves the order to error. A second failure for an order already in
// error is a no-op.
func (o *AmmOrder) Fail(reason string) bool {
	if o.Status == AmmOrderStatusError {
		return false
	}
	o.Status = AmmOrderStatusError
	o.ErrorMessage = reason
	return true
}

// Succeed completes a processing order. Any other source state is rejected.
func (o *AmmOrder) Succeed() bool {
	if o.Status != AmmOrderStatusProcessing {
		return false
	}
	o.Status = AmmOrderStatusSuccess
	return true
}

// TransactionFail implements Failable.
func (o *AmmOrder) TransactionFail(reason string) bool { return o.Fail(reason) }

// AmmPool statuses.
const (
	AmmPoolStatusPending  = "pending"
	AmmPoolStatusActive   = "active"
	AmmPoolStatusInactive = "inactive"
)

// AmmPool is a liquidity pool keyed by its trading pair. Pools carry no
// generic failed status; the engine reports activity separately via isActive.
type AmmPool struct {
	ID                     int64           `gorm:"primaryKey" json:"id"`
	Pair                   string          `gorm:"uniqueIndex;size:40" json:"pair"`
	Status                 string          `gorm:"size:20;default:pending" json:"status"`
	StatusExplanation      string          `gorm:"size:1000" json:"status_explanation"`
	CurrentTick            int64           `json:"current_tick"`
	Price                  decimal.Decimal `gorm:"type:decimal(36,18)" json:"price"`
	SqrtPrice              decimal.Decimal `gorm:"type:decimal(36,18)" json:"sqrt_price"`
	InitPrice              decimal.Decimal `gorm:"type:decimal(36,18)" json:"init_price"`
	Liquidity              decimal.Decimal `gorm:"type:decimal(36,18)" json:"liquidity"`
	FeeGrowthGlobal0       decimal.Decimal `gorm:"type:decimal(36,18)" json:"fee_growth_global0"`
	FeeGrowthGlobal1       decimal.Decimal `gorm:"type:decimal(36,18)" json:"fee_growth_global1"`
	VolumeToken0           decimal.Decimal `gorm:"type:decimal(36,18)" json:"volume_token0"`
	VolumeToken1           decimal.Decimal `gorm:"type:decimal(36,18)" json:"volume_token1"`
	VolumeUSD              decimal.Decimal `gorm:"type:decimal(36,18)" json:"volume_usd"`
	TxCount                int64           `json:"tx_count"`
	TotalValueLockedToken0 decimal.Decimal `gorm:"type:decimal(36,18)" json:"total_value_locked_token0"`
	TotalValueLockedToken1 decimal.Decimal `gorm:"type:decimal(36,18)" json:"total_value_locked_token1"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TransactionFail implements Failable. Pools only record the explanation.
func (p *AmmPool) TransactionFail(reason string) bool {
	p.StatusExplanation = reason
	return true
}

// AmmPosition statuses.
const (
	AmmPositionStatusPending = "pending"
	AmmPositionStatusOpen    = "open"
	AmmPositionStatusClosed  = "closed"
	AmmPositionStatusError   = "error"
)

// AmmPosition is a concentrated-liquidity position.
type AmmPosition struct {
	ID                   int64           `gorm:"primaryKey" json:"id"`
	Identifier           string          `gorm:"uniqueIndex;size:255" json:"identifier"`
	UserID               int64           `gorm:"index" json:"user_id"`
	Pair                 string          `gorm:"index;size:40" json:"pair"`
	Status               string          `gorm:"size:20;default:pending" json:"status"`
	TickLowerIndex       int64           `json:"tick_lower_index"`
	TickUpperIndex       int64           `json:"tick_upper_index"`
	Liquidity            decimal.Decimal `gorm:"type:decimal(36,18)" json:"liquidity"`
	Amount0              decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount0"`
	Amount1              decimal.Decimal `gorm:"type:decimal(36,18)" json:"amount1"`
	FeeGrowthInside0Last decimal.Decimal `gorm:"type:decimal(36,18)" json:"fee_growth_inside0_last"`
	FeeGrowthInside1Last decimal.Decimal `gorm:"type:decimal(36,18)" json:"fee_growth_inside1_last"`
	TokensOwed0          decimal.Decimal `gorm:"type:decimal(36,18)" json:"tokens_owed0"`
	TokensOwed1          decimal.Decimal `gorm:"type:decimal(36,18)" json:"tokens_owed1"`
	FeeCollected0        decimal.Decimal `gorm:"type:decimal(36,18)" json:"fee_collected0"`
	FeeCollected1        decimal.Decimal `gorm:"type:decimal(36,18)" json:"fee_collected1"`
	ErrorMessage         string          `gorm:"size:1000" json:"error_message"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// Fail mirrors AmmOrder.Fail: error is terminal and fail-once.
func (p *AmmPosition) Fail(reason string) bool {
	if p.Status == AmmPositionStatusError {
		return false
	}
	p.Status = AmmPositionStatusError
	p.ErrorMessage = reason
	return true
}

// TransactionFail implements Failable.
func (p *AmmPosition) TransactionFail(reason string) bool { return p.Fail(reason) }

// Tick is one initialized tick of an AMM pool, keyed by "{pool_pair}-{index}".
type Tick struct {
	ID                int64           `gorm:"primaryKey" json:"id"`
	TickKey           string          `gorm:"uniqueIndex;size:60" json:"tick_key"`
	PoolPair          string          `gorm:"index;size:40" json:"pool_pair"`
	TickIndex         int64           `json:"tick_index"`
	LiquidityGross    decimal.Decimal `gorm:"type:decimal(36,18)" json:"liquidity_gross"`
	LiquidityNet      decimal.Decimal `gorm:"type:decimal(36,18)" json:"liquidity_net"`
	FeeGrowthOutside0 decimal.Decimal `gorm:"type:decimal(36,18)" json:"fee_growth_outside0"`
	FeeGrowthOutside1 decimal.Decimal `gorm:"type:decimal(36,18)" json:"fee_growth_outside1"`
	Initialized       bool            `json:"initialized"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
}
