package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/audit"
	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// CoinWithdrawalHandler reconciles withdrawal status updates. No staleness
// guard applies: the engine is the sole authority for this lifecycle and the
// last reported status wins. Every processing step is narrated onto the
// correlated KafkaEvent row.
type CoinWithdrawalHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func (h *CoinWithdrawalHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	var obj engine.CoinWithdrawalObject
	if err := decodeObject(env, &obj); err != nil {
		return err
	}
	id, ok := numericID(obj.Identifier)
	if !ok {
		return nil
	}

	var note string
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wd models.CoinWithdrawal
		if err := tx.First(&wd, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if !env.IsSuccess {
			wd.Fail(env.Error())
			note = "withdrawal marked failed: " + env.Error()
			return tx.Save(&wd).Error
		}

		if obj.Status != "" {
			wd.Status = strings.ToLower(obj.Status)
		}
		// Only a FAILED status may carry an explanation; anything else must
		// not clobber a previously stored one.
		if strings.EqualFold(obj.Status, "FAILED") &&
			obj.StatusExplanation != nil && *obj.StatusExplanation != "" {
			wd.Explanation = *obj.StatusExplanation
		}
		note = "withdrawal status updated to " + wd.Status
		return tx.Save(&wd).Error
	})
	if err != nil {
		return err
	}

	if note != "" {
		h.appendNote(env, note)
	}
	return nil
}

// appendNote narrates one step onto the audit row. Narration failures are
// logged and swallowed: they must never fail the handler.
func (h *CoinWithdrawalHandler) appendNote(env *engine.Envelope, note string) {
	eventID := env.CorrelationEventID()
	if eventID == "" {
		return
	}
	if err := audit.AppendNote(h.db, eventID, engine.TopicCoinWithdrawal, note, time.Now()); err != nil {
		h.log.Warn("failed to append withdrawal audit note",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}
