package engine

import (
	"strconv"
	"strings"
)

// Canonical identifiers sent with outbound engine requests. Inbound events
// echo them back, so both sides of the correlation use these builders.

func DepositIdentifier(id int64) string        { return "deposit-" + strconv.FormatInt(id, 10) }
func WithdrawalIdentifier(id int64) string     { return "withdrawal-" + strconv.FormatInt(id, 10) }
func BalanceLockIdentifier(id int64) string    { return "balance-lock-" + strconv.FormatInt(id, 10) }
func MerchantEscrowIdentifier(id int64) string { return "merchant-escrow-" + strconv.FormatInt(id, 10) }
func TradeIdentifier(id int64) string          { return "trade-" + strconv.FormatInt(id, 10) }
func OfferIdentifier(id int64) string          { return "offer-" + strconv.FormatInt(id, 10) }

func AmmOrderIdentifier(userID int64, pair string, nonce int64) string {
	return "amm_order_" + strconv.FormatInt(userID, 10) + "_" + strings.ToLower(pair) + "_" + strconv.FormatInt(nonce, 10)
}

func AmmPositionIdentifier(userID int64, pair string, nonce int64) string {
	return "amm_position_" + strconv.FormatInt(userID, 10) + "_" + strings.ToLower(pair) + "_" + strconv.FormatInt(nonce, 10)
}

// TrailingID extracts the numeric tail of a delimited identifier such as
// "merchant-escrow-17" or "1-fiat-9". Fails closed: anything without a
// parseable trailing integer reports ok=false.
func TrailingID(identifier string) (int64, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return 0, false
	}
	idx := strings.LastIndexAny(identifier, "-_")
	tail := identifier
	if idx >= 0 {
		tail = identifier[idx+1:]
	}
	n, err := strconv.ParseInt(tail, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
