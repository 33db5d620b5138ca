package models

// Failable is the capability shared by every entity the generic
// transaction-failure topic can target. Implementations report whether the
// failure actually transitioned the entity (false means it was already in a
// terminal failure state and the event is a no-op).
type Failable interface {
	TransactionFail(reason string) bool
}

// All returns every model the reconciler persists, in migration order.
func All() []interface{} {
	return []interface{}{
		&AmmOrder{},
		&AmmPool{},
		&AmmPosition{},
		&Tick{},
		&BalanceLock{},
		&CoinWithdrawal{},
		&MerchantEscrow{},
		&MerchantEscrowOperation{},
		&Offer{},
		&Trade{},
		&CoinAccount{},
		&FiatAccount{},
		&FiatDeposit{},
		&FiatWithdrawal{},
		&KafkaEvent{},
	}
}
