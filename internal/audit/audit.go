// Package audit is the reconciler's trace sink: structured emission of
// engine-reported failures and the per-event narration kept on KafkaEvent
// rows.
package audit

import (
	"context"

	"go.uber.org/zap"
)

// Sink receives observability events from the reconciliation core. The core
// only emits; delivery (log aggregation, error tracking) is the host's
// concern.
type Sink interface {
	TransactionFailure(ctx context.Context, actionType, recordID, message string)
}

// ZapSink emits audit events as structured log records.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink wraps a zap logger as a Sink.
func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{log: log}
}

// TransactionFailure implements Sink.
func (s *ZapSink) TransactionFailure(_ context.Context, actionType, recordID, message string) {
	s.log.Error("engine transaction failed",
		zap.String("action_type", actionType),
		zap.String("record_id", recordID),
		zap.String("error_message", message))
}
