package reconcile

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// MerchantEscrowHandler reconciles escrow mint/burn confirmations. The engine
// only reports operations; the escrow's own status is host logic inferred
// from them (first mint activates, any burn cancels).
type MerchantEscrowHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func (h *MerchantEscrowHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	var obj engine.MerchantEscrowObject
	if err := decodeObject(env, &obj); err != nil {
		return err
	}
	escrowID, ok := numericID(env.ActionID)
	if !ok {
		return nil
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var escrow models.MerchantEscrow
		if err := tx.First(&escrow, escrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if !env.IsSuccess {
			escrow.ErrorMessage = env.Error()
			return tx.Save(&escrow).Error
		}

		opType := models.EscrowOperationMint
		if env.Op() == engine.OpMerchantEscrowBurn {
			opType = models.EscrowOperationBurn
		}

		usdtAccountID, _ := engine.TrailingID(obj.USDTAccountKey)
		fiatAccountID, _ := engine.TrailingID(obj.FiatAccountKey)

		op := models.MerchantEscrowOperation{
			MerchantEscrowID: escrow.ID,
			OperationType:    opType,
			USDTAccountID:    usdtAccountID,
			FiatAccountID:    fiatAccountID,
			USDTAmount:       obj.USDTAmount.Or(decimal.Zero),
			FiatAmount:       obj.FiatAmount.Or(decimal.Zero),
			FiatCurrency:     obj.FiatCurrency,
			Status:           models.EscrowOperationStatusCompleted,
		}
		if err := tx.Create(&op).Error; err != nil {
			return err
		}

		changed := false
		if opType == models.EscrowOperationMint {
			changed = escrow.Activate()
		} else {
			changed = escrow.Cancel()
		}
		if !changed {
			return nil
		}
		return tx.Save(&escrow).Error
	})
}
