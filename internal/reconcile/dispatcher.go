package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/audit"
	"github.com/vndex/engine-reconciler/internal/config"
	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/fiat"
)

// Handler processes one raw event for one topic. A nil return covers both
// applied events and benign no-ops; an error is a handler-local failure whose
// unit of work has already rolled back.
type Handler interface {
	Handle(ctx context.Context, raw []byte) error
}

type routeKey struct {
	topic engine.Topic
	op    engine.OperationType
}

// Dispatcher routes inbound messages to the per-entity handlers and fences
// them: a failing or panicking handler never stops the consumer loop.
type Dispatcher struct {
	log           *zap.Logger
	tracer        trace.Tracer
	routes        map[routeKey]Handler
	discriminated map[engine.Topic]bool
}

// New wires the full handler set against one database handle.
func New(db *gorm.DB, log *zap.Logger, sink audit.Sink, transactor fiat.Transactor, fees *config.FeesConfig) *Dispatcher {
	d := &Dispatcher{
		log:    log,
		tracer: otel.Tracer("reconciler"),
		routes: make(map[routeKey]Handler),
		discriminated: map[engine.Topic]bool{
			engine.TopicMerchantEscrow: true,
			engine.TopicOffer:          true,
			engine.TopicTrade:          true,
		},
	}

	d.route(engine.TopicAmmOrderUpdated, engine.OpUnknown, &AmmOrderHandler{db: db, log: log})
	d.route(engine.TopicAmmPoolUpdated, engine.OpUnknown, &AmmPoolHandler{db: db, log: log})
	d.route(engine.TopicAmmPositionUpdated, engine.OpUnknown, &AmmPositionHandler{db: db, log: log})
	d.route(engine.TopicBalanceLock, engine.OpUnknown, &BalanceLockHandler{db: db, log: log})
	d.route(engine.TopicCoinWithdrawal, engine.OpUnknown, &CoinWithdrawalHandler{db: db, log: log})
	d.route(engine.TopicTickUpdated, engine.OpUnknown, &TickHandler{db: db, log: log})
	d.route(engine.TopicTransactionResponse, engine.OpUnknown, &TransactionFailureHandler{db: db, log: log, sink: sink})

	escrow := &MerchantEscrowHandler{db: db, log: log}
	d.route(engine.TopicMerchantEscrow, engine.OpMerchantEscrowMint, escrow)
	d.route(engine.TopicMerchantEscrow, engine.OpMerchantEscrowBurn, escrow)

	offer := &OfferHandler{db: db, log: log}
	for _, op := range []engine.OperationType{
		engine.OpOfferCreate, engine.OpOfferUpdate, engine.OpOfferDisable,
		engine.OpOfferEnable, engine.OpOfferDelete,
	} {
		d.route(engine.TopicOffer, op, offer)
	}

	trade := &TradeHandler{db: db, log: log, fiat: transactor, fees: fees}
	for _, op := range []engine.OperationType{
		engine.OpTradeCreate, engine.OpTradeUpdate, engine.OpTradeCancel, engine.OpTradeComplete,
	} {
		d.route(engine.TopicTrade, op, trade)
	}

	return d
}

func (d *Dispatcher) route(topic engine.Topic, op engine.OperationType, h Handler) {
	d.routes[routeKey{topic: topic, op: op}] = h
}

// Dispatch delivers one message and reports the outcome so the caller can
// stamp the audit trail. It never panics and never stops the consumer loop:
// unknown routes are silent no-ops for forward compatibility, handler errors
// and panics are logged here and returned as the event's failure.
func (d *Dispatcher) Dispatch(ctx context.Context, topic string, raw []byte) (err error) {
	t := engine.Topic(topic)
	eventsTotal.WithLabelValues(topic).Inc()
	timer := observeProcessing(topic)
	defer timer()

	ctx, span := d.tracer.Start(ctx, "reconcile.dispatch",
		trace.WithAttributes(attribute.String("messaging.kafka.topic", topic)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			failedTotal.WithLabelValues(topic).Inc()
			d.log.Error("handler panicked",
				zap.String("topic", topic),
				zap.Any("panic", r),
				zap.Stack("stack"))
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	op := engine.OpUnknown
	if d.discriminated[t] {
		var head struct {
			OperationType string `json:"operationType"`
		}
		_ = json.Unmarshal(raw, &head)
		op = engine.ParseOperationType(head.OperationType)
		if op == engine.OpUnknown {
			droppedTotal.WithLabelValues(topic, dropUnknownRoute).Inc()
			d.log.Debug("unknown operation type ignored",
				zap.String("topic", topic),
				zap.String("operation_type", head.OperationType))
			return nil
		}
	}

	h, ok := d.routes[routeKey{topic: t, op: op}]
	if !ok {
		droppedTotal.WithLabelValues(topic, dropUnknownRoute).Inc()
		d.log.Debug("unroutable topic ignored", zap.String("topic", topic))
		return nil
	}

	span.SetAttributes(attribute.String("reconcile.operation", string(op)))
	if err := h.Handle(ctx, raw); err != nil {
		failedTotal.WithLabelValues(topic).Inc()
		span.RecordError(err)
		d.log.Error("event processing failed",
			zap.String("topic", topic),
			zap.String("operation", string(op)),
			zap.Error(err))
		return err
	}
	return nil
}
