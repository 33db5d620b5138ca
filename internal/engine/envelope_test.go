package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDUnmarshal(t *testing.T) {
	var payload struct {
		A FlexID `json:"a"`
		B FlexID `json:"b"`
		C FlexID `json:"c"`
		D FlexID `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"50","b":50,"c":null,"d":" x-1 "}`), &payload))
	assert.Equal(t, "50", payload.A.String())
	assert.Equal(t, "50", payload.B.String())
	assert.Equal(t, "", payload.C.String())
	assert.Equal(t, "x-1", payload.D.String())

	n, ok := payload.A.Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(50), n)
	_, ok = payload.D.Int64()
	assert.False(t, ok)
}

func TestEnvelopeError(t *testing.T) {
	var env Envelope
	assert.Equal(t, "Unknown error", env.Error())

	msg := ""
	env.ErrorMessage = &msg
	assert.Equal(t, "Unknown error", env.Error())

	msg = "engine rejected"
	assert.Equal(t, "engine rejected", env.Error())
}

func TestEnvelopeCorrelationEventID(t *testing.T) {
	env := Envelope{EventID: "e", MessageID: "m"}
	assert.Equal(t, "e", env.CorrelationEventID())

	env.InputEventID = "i"
	assert.Equal(t, "i", env.CorrelationEventID())

	assert.Equal(t, "", (&Envelope{}).CorrelationEventID())
}

func TestOfferSymbolCurrencies(t *testing.T) {
	o := OfferObject{Symbol: "BTC:VND"}
	coin, fiat, ok := o.SymbolCurrencies()
	require.True(t, ok)
	assert.Equal(t, "btc", coin)
	assert.Equal(t, "vnd", fiat)

	for _, sym := range []string{"", "BTC", "BTC:", ":VND"} {
		o := OfferObject{Symbol: sym}
		_, _, ok := o.SymbolCurrencies()
		assert.False(t, ok, sym)
	}
}

func TestTickKey(t *testing.T) {
	p := TickPayload{PoolPair: "BTC_VND", TickIndex: 10}
	assert.Equal(t, "BTC_VND-10", p.TickKey())

	p = TickPayload{PoolPair: "ETH_USD", TickIndex: -5}
	assert.Equal(t, "ETH_USD--5", p.TickKey())
}

func TestMillisToTime(t *testing.T) {
	assert.True(t, MillisToTime(0).IsZero())
	assert.Equal(t, int64(1700000000000), MillisToTime(1700000000000).UnixMilli())
}

func TestParseOperationTypeClosedEnum(t *testing.T) {
	assert.Equal(t, OpTradeCreate, ParseOperationType("TRADE_CREATE"))
	assert.Equal(t, OpOfferDelete, ParseOperationType("OFFER_DELETE"))
	assert.Equal(t, OpMerchantEscrowBurn, ParseOperationType("MERCHANT_ESCROW_BURN"))
	assert.Equal(t, OpUnknown, ParseOperationType("TRADE_SOMETHING_NEW"))
	assert.Equal(t, OpUnknown, ParseOperationType(""))
}
