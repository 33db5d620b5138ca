// Package engine defines the vocabulary shared with the external exchange
// engine: Kafka topics, operation types, event envelopes and the identifier
// scheme used to correlate outbound requests with inbound confirmations.
package engine

// Topic identifies a Kafka topic carrying engine events.
type Topic string

const (
	TopicAmmOrderUpdated     Topic = "engine.amm-order.updated"
	TopicAmmPoolUpdated      Topic = "engine.amm-pool.updated"
	TopicAmmPositionUpdated  Topic = "engine.amm-position.updated"
	TopicBalanceLock         Topic = "engine.balances.lock"
	TopicCoinWithdrawal      Topic = "engine.coin-withdrawal.updated"
	TopicMerchantEscrow      Topic = "engine.merchant-escrow.action"
	TopicOffer               Topic = "engine.offer.event"
	TopicTickUpdated         Topic = "engine.tick.updated"
	TopicTrade               Topic = "engine.trade.event"
	TopicTransactionResponse Topic = "engine.transaction.result"
)

// AllTopics lists every topic the reconciler subscribes to.
func AllTopics() []Topic {
	return []Topic{
		TopicAmmOrderUpdated,
		TopicAmmPoolUpdated,
		TopicAmmPositionUpdated,
		TopicBalanceLock,
		TopicCoinWithdrawal,
		TopicMerchantEscrow,
		TopicOffer,
		TopicTickUpdated,
		TopicTrade,
		TopicTransactionResponse,
	}
}

// OperationType discriminates event kinds within a topic. Wire values the
// consumer does not recognize decode to OpUnknown, which every router path
// treats as a no-op so the engine can add event kinds without breaking us.
type OperationType string

const (
	OpUnknown OperationType = ""

	OpMerchantEscrowMint OperationType = "MERCHANT_ESCROW_MINT"
	OpMerchantEscrowBurn OperationType = "MERCHANT_ESCROW_BURN"

	OpOfferCreate  OperationType = "OFFER_CREATE"
	OpOfferUpdate  OperationType = "OFFER_UPDATE"
	OpOfferDisable OperationType = "OFFER_DISABLE"
	OpOfferEnable  OperationType = "OFFER_ENABLE"
	OpOfferDelete  OperationType = "OFFER_DELETE"

	OpTradeCreate   OperationType = "TRADE_CREATE"
	OpTradeUpdate   OperationType = "TRADE_UPDATE"
	OpTradeCancel   OperationType = "TRADE_CANCEL"
	OpTradeComplete OperationType = "TRADE_COMPLETE"
)

// ParseOperationType maps a wire string onto the closed enum. Anything not
// listed comes back as OpUnknown.
func ParseOperationType(s string) OperationType {
	switch OperationType(s) {
	case OpMerchantEscrowMint, OpMerchantEscrowBurn,
		OpOfferCreate, OpOfferUpdate, OpOfferDisable, OpOfferEnable, OpOfferDelete,
		OpTradeCreate, OpTradeUpdate, OpTradeCancel, OpTradeComplete:
		return OperationType(s)
	}
	return OpUnknown
}

// Balance-lock action filter: only coin transaction locks are reconciled here.
const ActionTypeCoinTransaction = "COIN_TRANSACTION"

// Engine-side status strings for balance locks.
const (
	LockStatusLocked   = "LOCKED"
	LockStatusReleased = "RELEASED"
)
