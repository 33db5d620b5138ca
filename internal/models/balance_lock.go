package models

import "time"

// BalanceLock statuses. The engine owns this lifecycle; there is no
// timestamp-based ordering for locks, only status-driven guards.
const (
	BalanceLockStatusPending   = "pending"
	BalanceLockStatusLocked    = "locked"
	BalanceLockStatusReleasing = "releasing"
	BalanceLockStatusReleased  = "released"
	BalanceLockStatusError     = "error"
)

// BalanceLock holds user balances frozen while an engine transaction is in
// flight. LockedBalances is keyed by currency code once resolved.
type BalanceLock struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UserID         int64     `gorm:"index" json:"user_id"`
	Status         string    `gorm:"size:20;default:pending" json:"status"`
	LockedBalances JSONMap   `gorm:"type:text" json:"locked_balances"`
	EngineLockID   string    `gorm:"size:255" json:"engine_lock_id"`
	Reason         string    `gorm:"size:255" json:"reason"`
	ErrorMessage   string    `gorm:"size:1000" json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Lock confirms the pending lock. Repeat LOCKED events for an already-locked
// row are silent no-ops beyond re-storing the balances.
func (b *BalanceLock) Lock() bool {
	if b.Status != BalanceLockStatusPending {
		return false
	}
	b.Status = BalanceLockStatusLocked
	return true
}

// Release is idempotent: whatever the current status, the lock ends released.
func (b *BalanceLock) Release() bool {
	b.Status = BalanceLockStatusReleased
	return true
}

// Fail records an engine-reported failure unconditionally.
func (b *BalanceLock) Fail(reason string) bool {
	b.Status = BalanceLockStatusError
	b.ErrorMessage = reason
	return true
}

// TransactionFail implements Failable.
func (b *BalanceLock) TransactionFail(reason string) bool { return b.Fail(reason) }
