package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// AmmOrderHandler reconciles AMM swap-order confirmations.
type AmmOrderHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func (h *AmmOrderHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	var obj engine.AmmOrderObject
	if err := decodeObject(env, &obj); err != nil {
		return err
	}
	if obj.Identifier == "" {
		droppedTotal.WithLabelValues(string(engine.TopicAmmOrderUpdated), dropMissingKey).Inc()
		return nil
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.AmmOrder
		if err := tx.Where("identifier = ?", obj.Identifier).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if !env.IsSuccess {
			if !order.Fail(engineErrorPrefix + env.Error()) {
				return nil
			}
			return tx.Save(&order).Error
		}

		if isStale(order.UpdatedAt, obj.UpdatedAt) {
			return ErrStaleEvent
		}

		status := lower(obj.Status)
		if status == models.AmmOrderStatusSuccess && order.Status == models.AmmOrderStatusProcessing {
			order.Succeed()
		} else if status != "" {
			order.Status = status
		}

		if v := obj.AmountActual.Ptr(); v != nil {
			order.AmountActual = *v
		}
		if v := obj.AmountEstimated.Ptr(); v != nil {
			order.AmountEstimated = *v
		}
		if v := obj.AmountReceived.Ptr(); v != nil {
			order.AmountReceived = *v
		}
		if obj.BeforeTickIndex != nil {
			order.BeforeTickIndex = *obj.BeforeTickIndex
		}
		if obj.AfterTickIndex != nil {
			order.AfterTickIndex = *obj.AfterTickIndex
		}
		order.Fees = feesToMap(obj.Fees)
		if obj.ErrorMessage != nil && *obj.ErrorMessage != "" {
			order.ErrorMessage = *obj.ErrorMessage
		}
		if obj.UpdatedAt > 0 {
			order.UpdatedAt = engine.MillisToTime(obj.UpdatedAt)
		}
		return tx.Save(&order).Error
	})

	if errors.Is(err, ErrStaleEvent) {
		droppedTotal.WithLabelValues(string(engine.TopicAmmOrderUpdated), dropStale).Inc()
		h.log.Warn("amm order message is older than the last update",
			zap.String("identifier", obj.Identifier),
			zap.Int64("event_updated_at", obj.UpdatedAt))
		return nil
	}
	return err
}

// feesToMap flattens a decoded fee map onto the stored string map. The engine
// treats an absent fee map as "no fees", so nil becomes empty instead of
// preserving prior values.
func feesToMap(fees map[string]engine.Dec) models.JSONMap {
	out := models.JSONMap{}
	for k, v := range fees {
		if v.Valid {
			out[k] = v.Val.String()
		}
	}
	return out
}
