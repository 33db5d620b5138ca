package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/audit"
	"github.com/vndex/engine-reconciler/internal/models"
)

// Action types carried by the generic transaction-failure topic.
const (
	actionAmmOrder       = "AMM_ORDER"
	actionAmmPool        = "AMM_POOL"
	actionAmmPosition    = "AMM_POSITION"
	actionBalanceLock    = "BALANCE_LOCK"
	actionCoinWithdrawal = "COIN_WITHDRAWAL"
	actionMerchantEscrow = "MERCHANT_ESCROW"
	actionOffer          = "OFFER"
	actionTrade          = "TRADE"
)

// TransactionFailureHandler applies generic engine failures across entity
// types. The audit event is emitted for every failure whether or not the
// record is found; unknown action types are a no-op beyond that emission.
type TransactionFailureHandler struct {
	db   *gorm.DB
	log  *zap.Logger
	sink audit.Sink
}

func (h *TransactionFailureHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	// This topic only ever carries failures.
	if env.IsSuccess {
		return nil
	}

	message := env.Error()
	h.sink.TransactionFailure(ctx, env.ActionType, env.RecordID.String(), message)

	recordID, ok := numericID(env.RecordID)
	if !ok {
		return nil
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := h.find(tx, env.ActionType, recordID)
		if err != nil {
			return err
		}
		if record == nil {
			return nil
		}
		if !record.TransactionFail(message) {
			return nil
		}
		return tx.Save(record).Error
	})
}

// find loads the failure target. A nil record with nil error means either an
// unknown action type or a missing row — both benign.
func (h *TransactionFailureHandler) find(tx *gorm.DB, actionType string, id int64) (models.Failable, error) {
	var record models.Failable
	var err error
	switch actionType {
	case actionAmmOrder:
		record, err = firstOrNil[models.AmmOrder](tx, id)
	case actionAmmPool:
		record, err = firstOrNil[models.AmmPool](tx, id)
	case actionAmmPosition:
		record, err = firstOrNil[models.AmmPosition](tx, id)
	case actionBalanceLock:
		record, err = firstOrNil[models.BalanceLock](tx, id)
	case actionCoinWithdrawal:
		record, err = firstOrNil[models.CoinWithdrawal](tx, id)
	case actionMerchantEscrow:
		record, err = firstOrNil[models.MerchantEscrow](tx, id)
	case actionOffer:
		record, err = firstOrNil[models.Offer](tx, id)
	case actionTrade:
		record, err = firstOrNil[models.Trade](tx, id)
	default:
		return nil, nil
	}
	return record, err
}

// firstOrNil loads T by primary key, mapping not-found to a nil capability
// instead of an error.
func firstOrNil[T any, PT interface {
	*T
	models.Failable
}](tx *gorm.DB, id int64) (models.Failable, error) {
	var entity T
	if err := tx.First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return PT(&entity), nil
}
