// Package reconcile applies engine events as idempotent, ordered state
// transitions onto the local ledger entities. One handler per topic; the
// dispatcher routes and fences them.
package reconcile

import (
	"errors"
	"time"
)

// ErrStaleEvent marks an event older than the entity's last recorded update.
// It is an expected, recoverable condition: handlers surface it out of the
// unit of work so nothing commits, then swallow it with a warning. It never
// reaches the router.
var ErrStaleEvent = errors.New("message is older than the last update")

// isStale reports whether an event stamped at eventMillis predates the
// entity's persisted update time. Entities that have never been touched by
// the engine (zero UpdatedAt) accept anything; an event with no timestamp is
// never treated as stale, matching the engine's habit of omitting the field
// on some payloads.
func isStale(entityUpdatedAt time.Time, eventMillis int64) bool {
	if eventMillis == 0 || entityUpdatedAt.IsZero() {
		return false
	}
	return eventMillis < entityUpdatedAt.UnixMilli()
}
