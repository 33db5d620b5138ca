package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// RecordInbound upserts the audit row for a consumed message. Redelivered
// messages reuse their existing row, so replay leaves a single trail.
func RecordInbound(db *gorm.DB, eventID string, topic engine.Topic, payload []byte) error {
	if eventID == "" {
		return nil
	}
	var row models.KafkaEvent
	err := db.Where("event_id = ? AND topic = ?", eventID, string(topic)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.KafkaEvent{
			ID:      uuid.New(),
			EventID: eventID,
			Topic:   string(topic),
			Payload: string(payload),
			Status:  models.KafkaEventStatusReceived,
		}
		return db.Create(&row).Error
	}
	return err
}

// AppendNote appends one timestamped narration line to the KafkaEvent row
// identified by (eventID, topic). A missing row is benign.
func AppendNote(db *gorm.DB, eventID string, topic engine.Topic, note string, at time.Time) error {
	if eventID == "" {
		return nil
	}
	var row models.KafkaEvent
	err := db.Where("event_id = ? AND topic = ?", eventID, string(topic)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load kafka event %s: %w", eventID, err)
	}
	row.AppendProcessMessage(note, at)
	return db.Save(&row).Error
}

// MarkStatus stamps the audit row's terminal processing status.
func MarkStatus(db *gorm.DB, eventID string, topic engine.Topic, status string) error {
	if eventID == "" {
		return nil
	}
	return db.Model(&models.KafkaEvent{}).
		Where("event_id = ? AND topic = ?", eventID, string(topic)).
		Update("status", status).Error
}
