package engine

import (
	"strconv"
	"strings"
)

// AccountKind discriminates the account leg referenced by a compound key.
type AccountKind string

const (
	AccountKindCoin    AccountKind = "coin"
	AccountKindFiat    AccountKind = "fiat"
	AccountKindUnknown AccountKind = ""
)

// AccountRef is the parsed form of the engine's "{userId}-{kind}-{accountId}"
// compound account keys.
type AccountRef struct {
	UserID    int64
	Kind      AccountKind
	AccountID int64
}

// ParseAccountRef parses a compound account key. It fails closed: any shape
// other than three dash-separated segments with numeric ends reports
// ok=false, and callers fall back to the raw key.
func ParseAccountRef(key string) (AccountRef, bool) {
	parts := strings.Split(strings.TrimSpace(key), "-")
	if len(parts) != 3 {
		return AccountRef{}, false
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return AccountRef{}, false
	}
	accountID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return AccountRef{}, false
	}
	kind := AccountKindUnknown
	switch strings.ToLower(parts[1]) {
	case "coin":
		kind = AccountKindCoin
	case "fiat":
		kind = AccountKindFiat
	default:
		return AccountRef{}, false
	}
	return AccountRef{UserID: userID, Kind: kind, AccountID: accountID}, true
}
