package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// TickHandler reconciles tick snapshots. The tick topic carries no envelope
// and no success flag: a single unconditional update path, with first-sight
// creation. A tick whose pool is unknown is dropped — no tick may exist
// without its pool.
type TickHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func (h *TickHandler) Handle(ctx context.Context, raw []byte) error {
	var payload engine.TickPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode tick payload: %w", err)
	}
	if payload.PoolPair == "" {
		droppedTotal.WithLabelValues(string(engine.TopicTickUpdated), dropMissingKey).Inc()
		return nil
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool models.AmmPool
		if err := tx.Where("pair = ?", payload.PoolPair).First(&pool).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				droppedTotal.WithLabelValues(string(engine.TopicTickUpdated), dropNotFound).Inc()
				h.log.Debug("tick for unknown pool dropped", zap.String("pool_pair", payload.PoolPair))
				return nil
			}
			return err
		}

		key := payload.TickKey()
		var tick models.Tick
		err := tx.Where("tick_key = ?", key).First(&tick).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tick = models.Tick{
				TickKey:   key,
				PoolPair:  payload.PoolPair,
				TickIndex: payload.TickIndex,
			}
			applyTickFields(&tick, &payload)
			return tx.Create(&tick).Error
		}
		if err != nil {
			return err
		}

		if isStale(tick.UpdatedAt, payload.UpdatedAt) {
			return ErrStaleEvent
		}
		applyTickFields(&tick, &payload)
		return tx.Save(&tick).Error
	})

	if errors.Is(err, ErrStaleEvent) {
		droppedTotal.WithLabelValues(string(engine.TopicTickUpdated), dropStale).Inc()
		h.log.Warn("tick message is older than the last update",
			zap.String("pool_pair", payload.PoolPair),
			zap.Int64("tick_index", payload.TickIndex),
			zap.Int64("event_updated_at", payload.UpdatedAt))
		return nil
	}
	return err
}

func applyTickFields(tick *models.Tick, payload *engine.TickPayload) {
	if v := payload.LiquidityGross.Ptr(); v != nil {
		tick.LiquidityGross = *v
	}
	if v := payload.LiquidityNet.Ptr(); v != nil {
		tick.LiquidityNet = *v
	}
	if v := payload.FeeGrowthOutside0.Ptr(); v != nil {
		tick.FeeGrowthOutside0 = *v
	}
	if v := payload.FeeGrowthOutside1.Ptr(); v != nil {
		tick.FeeGrowthOutside1 = *v
	}
	if payload.Initialized != nil {
		tick.Initialized = *payload.Initialized
	}
	if payload.UpdatedAt > 0 {
		tick.UpdatedAt = engine.MillisToTime(payload.UpdatedAt)
	}
}
