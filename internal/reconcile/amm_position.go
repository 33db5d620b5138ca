package reconcile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// AmmPositionHandler reconciles liquidity-position confirmations. Status is
// contractually present on the success path; the engine owns that guarantee.
type AmmPositionHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func (h *AmmPositionHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	var obj engine.AmmPositionObject
	if err := decodeObject(env, &obj); err != nil {
		return err
	}
	if obj.Identifier == "" {
		droppedTotal.WithLabelValues(string(engine.TopicAmmPositionUpdated), dropMissingKey).Inc()
		return nil
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pos models.AmmPosition
		if err := tx.Where("identifier = ?", obj.Identifier).First(&pos).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if !env.IsSuccess {
			if !pos.Fail(engineErrorPrefix + env.Error()) {
				return nil
			}
			return tx.Save(&pos).Error
		}

		if isStale(pos.UpdatedAt, obj.UpdatedAt) {
			return ErrStaleEvent
		}

		pos.Status = strings.ToLower(obj.Status)
		if v := obj.Liquidity.Ptr(); v != nil {
			pos.Liquidity = *v
		}
		if v := obj.Amount0.Ptr(); v != nil {
			pos.Amount0 = *v
		}
		if v := obj.Amount1.Ptr(); v != nil {
			pos.Amount1 = *v
		}
		if v := obj.FeeGrowthInside0Last.Ptr(); v != nil {
			pos.FeeGrowthInside0Last = *v
		}
		if v := obj.FeeGrowthInside1Last.Ptr(); v != nil {
			pos.FeeGrowthInside1Last = *v
		}
		if v := obj.TokensOwed0.Ptr(); v != nil {
			pos.TokensOwed0 = *v
		}
		if v := obj.TokensOwed1.Ptr(); v != nil {
			pos.TokensOwed1 = *v
		}
		if v := obj.FeeCollected0.Ptr(); v != nil {
			pos.FeeCollected0 = *v
		}
		if v := obj.FeeCollected1.Ptr(); v != nil {
			pos.FeeCollected1 = *v
		}
		if obj.ErrorMessage != nil && *obj.ErrorMessage != "" {
			pos.ErrorMessage = *obj.ErrorMessage
		}
		if obj.UpdatedAt > 0 {
			pos.UpdatedAt = engine.MillisToTime(obj.UpdatedAt)
		}
		return tx.Save(&pos).Error
	})

	if errors.Is(err, ErrStaleEvent) {
		droppedTotal.WithLabelValues(string(engine.TopicAmmPositionUpdated), dropStale).Inc()
		h.log.Warn("amm position message is older than the last update",
			zap.String("identifier", obj.Identifier),
			zap.Int64("event_updated_at", obj.UpdatedAt))
		return nil
	}
	return err
}
