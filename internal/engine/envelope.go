package engine

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexID is an identifier that the engine serializes either as a JSON string
// or as a bare number. It always decodes; unusable input yields the empty id.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*f = FlexID(strings.TrimSpace(s))
	return nil
}

func (f FlexID) String() string { return string(f) }

// Int64 parses the id as a base-10 integer.
func (f FlexID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Envelope is the common shape wrapped around most engine events. Only the
// routing discriminators live here; handlers decode the full topic-specific
// payload themselves.
type Envelope struct {
	Object        json.RawMessage `json:"object"`
	IsSuccess     bool            `json:"isSuccess"`
	ErrorMessage  *string         `json:"errorMessage"`
	OperationType string          `json:"operationType"`
	ActionID      FlexID          `json:"actionId"`
	ActionType    string          `json:"actionType"`
	RecordID      FlexID          `json:"recordId"`
	InputEventID  string          `json:"inputEventId"`
	EventID       string          `json:"eventId"`
	MessageID     string          `json:"messageId"`
}

// Op returns the envelope's operation type as the closed enum.
func (e *Envelope) Op() OperationType { return ParseOperationType(e.OperationType) }

// Error returns the envelope's error message, defaulting when the engine
// reports failure without saying why.
func (e *Envelope) Error() string {
	if e.ErrorMessage != nil && *e.ErrorMessage != "" {
		return *e.ErrorMessage
	}
	return "Unknown error"
}

// CorrelationEventID returns the first present audit-correlation id.
func (e *Envelope) CorrelationEventID() string {
	for _, id := range []string{e.InputEventID, e.EventID, e.MessageID} {
		if id != "" {
			return id
		}
	}
	return ""
}

// MillisToTime converts an engine epoch-milliseconds stamp to a time.Time.
// Zero means the engine did not report a timestamp.
func MillisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// AmmOrderObject is the object payload of TopicAmmOrderUpdated.
type AmmOrderObject struct {
	Identifier      string         `json:"identifier"`
	Status          *string        `json:"status"`
	AmountActual    Dec            `json:"amountActual"`
	AmountEstimated Dec            `json:"amountEstimated"`
	AmountReceived  Dec            `json:"amountReceived"`
	BeforeTickIndex *int64         `json:"beforeTickIndex"`
	AfterTickIndex  *int64         `json:"afterTickIndex"`
	Fees            map[string]Dec `json:"fees"`
	ErrorMessage    *string        `json:"errorMessage"`
	UpdatedAt       int64          `json:"updatedAt"`
}

// AmmPoolObject is the object payload of TopicAmmPoolUpdated.
type AmmPoolObject struct {
	Pair                   string  `json:"pair"`
	IsActive               *bool   `json:"isActive"`
	CurrentTick            *int64  `json:"currentTick"`
	Price                  Dec     `json:"price"`
	SqrtPrice              Dec     `json:"sqrtPrice"`
	InitPrice              Dec     `json:"initPrice"`
	Liquidity              Dec     `json:"liquidity"`
	FeeGrowthGlobal0       Dec     `json:"feeGrowthGlobal0"`
	FeeGrowthGlobal1       Dec     `json:"feeGrowthGlobal1"`
	VolumeToken0           Dec     `json:"volumeToken0"`
	VolumeToken1           Dec     `json:"volumeToken1"`
	VolumeUSD              Dec     `json:"volumeUsd"`
	TxCount                *int64  `json:"txCount"`
	TotalValueLockedToken0 Dec     `json:"totalValueLockedToken0"`
	TotalValueLockedToken1 Dec     `json:"totalValueLockedToken1"`
	StatusExplanation      *string `json:"statusExplanation"`
	UpdatedAt              int64   `json:"updatedAt"`
}

// AmmPositionObject is the object payload of TopicAmmPositionUpdated. Status
// is required on the success path; the engine owns that contract.
type AmmPositionObject struct {
	Identifier           string  `json:"identifier"`
	Status               string  `json:"status"`
	Liquidity            Dec     `json:"liquidity"`
	Amount0              Dec     `json:"amount0"`
	Amount1              Dec     `json:"amount1"`
	FeeGrowthInside0Last Dec     `json:"feeGrowthInside0Last"`
	FeeGrowthInside1Last Dec     `json:"feeGrowthInside1Last"`
	TokensOwed0          Dec     `json:"tokensOwed0"`
	TokensOwed1          Dec     `json:"tokensOwed1"`
	FeeCollected0        Dec     `json:"feeCollected0"`
	FeeCollected1        Dec     `json:"feeCollected1"`
	ErrorMessage         *string `json:"errorMessage"`
	UpdatedAt            int64   `json:"updatedAt"`
}

// BalanceLockObject is the object payload of TopicBalanceLock. LockedBalances
// is keyed by "{userId}-{accountType}-{accountId}" compound keys.
type BalanceLockObject struct {
	ActionType     string            `json:"actionType"`
	Identifier     FlexID            `json:"identifier"`
	Status         string            `json:"status"`
	LockedBalances map[string]string `json:"lockedBalances"`
	LockID         string            `json:"lockId"`
}

// CoinWithdrawalObject is the object payload of TopicCoinWithdrawal.
type CoinWithdrawalObject struct {
	Identifier        FlexID  `json:"identifier"`
	Status            string  `json:"status"`
	StatusExplanation *string `json:"statusExplanation"`
}

// MerchantEscrowObject is the object payload of TopicMerchantEscrow.
type MerchantEscrowObject struct {
	Identifier     string `json:"identifier"`
	USDTAccountKey string `json:"usdtAccountKey"`
	FiatAccountKey string `json:"fiatAccountKey"`
	USDTAmount     Dec    `json:"usdtAmount"`
	FiatAmount     Dec    `json:"fiatAmount"`
	FiatCurrency   string `json:"fiatCurrency"`
}

// OfferObject is the object payload of TopicOffer.
type OfferObject struct {
	Symbol          string  `json:"symbol"`
	UserID          FlexID  `json:"userId"`
	Type            *string `json:"type"`
	Price           Dec     `json:"price"`
	TotalAmount     Dec     `json:"totalAmount"`
	AvailableAmount Dec     `json:"availableAmount"`
	MinAmount       Dec     `json:"minAmount"`
	MaxAmount       Dec     `json:"maxAmount"`
	PaymentMethodID *int64  `json:"paymentMethodId"`
	PaymentTime     *int64  `json:"paymentTime"`
	CountryCode     *string `json:"countryCode"`
	Disabled        *bool   `json:"disabled"`
	Deleted         *bool   `json:"deleted"`
	Automatic       *bool   `json:"automatic"`
	Online          *bool   `json:"online"`
	Margin          Dec     `json:"margin"`
}

// SymbolCurrencies splits the engine's colon-delimited symbol into its coin
// and fiat legs. Fails closed on anything that is not "{coin}:{fiat}".
func (o *OfferObject) SymbolCurrencies() (coin, fiat string, ok bool) {
	parts := strings.SplitN(o.Symbol, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return strings.ToLower(parts[0]), strings.ToLower(parts[1]), true
}

// TickPayload is the full message body of TopicTickUpdated. The tick topic
// carries no envelope and no success flag.
type TickPayload struct {
	PoolPair          string `json:"poolPair"`
	TickIndex         int64  `json:"tickIndex"`
	LiquidityGross    Dec    `json:"liquidityGross"`
	LiquidityNet      Dec    `json:"liquidityNet"`
	FeeGrowthOutside0 Dec    `json:"feeGrowthOutside0"`
	FeeGrowthOutside1 Dec    `json:"feeGrowthOutside1"`
	Initialized       *bool  `json:"initialized"`
	UpdatedAt         int64  `json:"updatedAt"`
}

// TickKey is the composite natural key of a tick row.
func (p *TickPayload) TickKey() string {
	return p.PoolPair + "-" + strconv.FormatInt(p.TickIndex, 10)
}

// TradeObject is the object payload of TopicTrade.
type TradeObject struct {
	OfferKey         string  `json:"offerKey"`
	BuyerAccountKey  string  `json:"buyerAccountKey"`
	SellerAccountKey string  `json:"sellerAccountKey"`
	CoinAmount       Dec     `json:"coinAmount"`
	Symbol           string  `json:"symbol"`
	Price            Dec     `json:"price"`
	TakerSide        *string `json:"takerSide"`
	Status           *string `json:"status"`
	CreatedAt        int64   `json:"createdAt"`
	PaidAt           int64   `json:"paidAt"`
	CompletedAt      int64   `json:"completedAt"`
	CancelledAt      int64   `json:"cancelledAt"`
}
