package models

import (
	"time"

	"github.com/google/uuid"
)

// KafkaEvent statuses.
const (
	KafkaEventStatusReceived  = "received"
	KafkaEventStatusProcessed = "processed"
	KafkaEventStatusFailed    = "failed"
)

// KafkaEvent is the append-only audit row recorded for every inbound engine
// message. ProcessMessage accumulates timestamped processing notes.
type KafkaEvent struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	EventID        string    `gorm:"index:idx_kafka_events_event_topic,unique;size:255" json:"event_id"`
	Topic          string    `gorm:"index:idx_kafka_events_event_topic,unique;size:100" json:"topic"`
	Payload        string    `gorm:"type:text" json:"payload"`
	Status         string    `gorm:"size:20;default:received" json:"status"`
	ProcessMessage string    `gorm:"type:text" json:"process_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AppendProcessMessage adds one timestamped narration line.
func (e *KafkaEvent) AppendProcessMessage(note string, at time.Time) {
	line := at.UTC().Format(time.RFC3339) + " " + note
	if e.ProcessMessage == "" {
		e.ProcessMessage = line
		return
	}
	e.ProcessMessage += "\n" + line
}
