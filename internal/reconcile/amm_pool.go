package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// AmmPoolHandler reconciles pool state snapshots. Pools have no failure
// transition: a failed event only records the explanation, and liveness is
// reported separately through isActive.
type AmmPoolHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func (h *AmmPoolHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	var obj engine.AmmPoolObject
	if err := decodeObject(env, &obj); err != nil {
		return err
	}
	if obj.Pair == "" {
		droppedTotal.WithLabelValues(string(engine.TopicAmmPoolUpdated), dropMissingKey).Inc()
		return nil
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool models.AmmPool
		if err := tx.Where("pair = ?", obj.Pair).First(&pool).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if !env.IsSuccess {
			pool.StatusExplanation = env.Error()
			return tx.Save(&pool).Error
		}

		if isStale(pool.UpdatedAt, obj.UpdatedAt) {
			return ErrStaleEvent
		}

		if obj.IsActive != nil {
			if *obj.IsActive {
				pool.Status = models.AmmPoolStatusActive
			} else {
				pool.Status = models.AmmPoolStatusInactive
			}
		}
		if obj.CurrentTick != nil {
			pool.CurrentTick = *obj.CurrentTick
		}
		if obj.TxCount != nil {
			pool.TxCount = *obj.TxCount
		}
		if v := obj.Price.Ptr(); v != nil {
			pool.Price = *v
		}
		if v := obj.SqrtPrice.Ptr(); v != nil {
			pool.SqrtPrice = *v
		}
		if v := obj.InitPrice.Ptr(); v != nil {
			pool.InitPrice = *v
		}
		if v := obj.Liquidity.Ptr(); v != nil {
			pool.Liquidity = *v
		}
		if v := obj.FeeGrowthGlobal0.Ptr(); v != nil {
			pool.FeeGrowthGlobal0 = *v
		}
		if v := obj.FeeGrowthGlobal1.Ptr(); v != nil {
			pool.FeeGrowthGlobal1 = *v
		}
		if v := obj.VolumeToken0.Ptr(); v != nil {
			pool.VolumeToken0 = *v
		}
		if v := obj.VolumeToken1.Ptr(); v != nil {
			pool.VolumeToken1 = *v
		}
		if v := obj.VolumeUSD.Ptr(); v != nil {
			pool.VolumeUSD = *v
		}
		if v := obj.TotalValueLockedToken0.Ptr(); v != nil {
			pool.TotalValueLockedToken0 = *v
		}
		if v := obj.TotalValueLockedToken1.Ptr(); v != nil {
			pool.TotalValueLockedToken1 = *v
		}
		if obj.StatusExplanation != nil {
			pool.StatusExplanation = *obj.StatusExplanation
		}
		if obj.UpdatedAt > 0 {
			pool.UpdatedAt = engine.MillisToTime(obj.UpdatedAt)
		}
		return tx.Save(&pool).Error
	})

	if errors.Is(err, ErrStaleEvent) {
		droppedTotal.WithLabelValues(string(engine.TopicAmmPoolUpdated), dropStale).Inc()
		h.log.Warn("amm pool message is older than the last update",
			zap.String("pair", obj.Pair),
			zap.Int64("event_updated_at", obj.UpdatedAt))
		return nil
	}
	return err
}
