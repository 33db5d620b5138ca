package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// BalanceLockHandler reconciles balance lock/release confirmations. Locks
// carry no engine timestamp; idempotency is purely status-driven, with the
// engine trusted as the sole authority for the lifecycle.
type BalanceLockHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func (h *BalanceLockHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	var obj engine.BalanceLockObject
	if err := decodeObject(env, &obj); err != nil {
		return err
	}
	if obj.ActionType != engine.ActionTypeCoinTransaction {
		return nil
	}
	lockID, ok := numericID(obj.Identifier)
	if !ok {
		return nil
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lock models.BalanceLock
		if err := tx.First(&lock, lockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if !env.IsSuccess {
			lock.Fail(env.Error())
			return tx.Save(&lock).Error
		}

		switch obj.Status {
		case engine.LockStatusLocked:
			lock.LockedBalances = h.resolveBalances(tx, obj.LockedBalances)
			lock.EngineLockID = obj.LockID
			lock.Lock()
			return tx.Save(&lock).Error
		case engine.LockStatusReleased:
			lock.Release()
			return tx.Save(&lock).Error
		default:
			return nil
		}
	})
}

// resolveBalances maps compound "{userId}-{kind}-{accountId}" keys to human
// currency codes. Unparseable keys and missing accounts keep the raw key, so
// a partially resolvable event still stores every amount.
func (h *BalanceLockHandler) resolveBalances(tx *gorm.DB, balances map[string]string) models.JSONMap {
	out := models.JSONMap{}
	for key, amount := range balances {
		ref, ok := engine.ParseAccountRef(key)
		if !ok {
			out[key] = amount
			continue
		}
		currency, found := h.accountCurrency(tx, ref)
		if !found {
			out[key] = amount
			continue
		}
		out[currency] = amount
	}
	return out
}

func (h *BalanceLockHandler) accountCurrency(tx *gorm.DB, ref engine.AccountRef) (string, bool) {
	switch ref.Kind {
	case engine.AccountKindCoin:
		var acct models.CoinAccount
		if err := tx.First(&acct, ref.AccountID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				h.log.Warn("coin account lookup failed", zap.Int64("account_id", ref.AccountID), zap.Error(err))
			}
			return "", false
		}
		return acct.Currency, true
	case engine.AccountKindFiat:
		var acct models.FiatAccount
		if err := tx.First(&acct, ref.AccountID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				h.log.Warn("fiat account lookup failed", zap.Int64("account_id", ref.AccountID), zap.Error(err))
			}
			return "", false
		}
		return acct.Currency, true
	}
	return "", false
}
