package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vndex/engine-reconciler/internal/models"
)

type captureSink struct {
	actionType string
	recordID   string
	message    string
	calls      int
}

func (s *captureSink) TransactionFailure(_ context.Context, actionType, recordID, message string) {
	s.actionType = actionType
	s.recordID = recordID
	s.message = message
	s.calls++
}

func failurePayload(t *testing.T, actionType, recordID, message string) []byte {
	t.Helper()
	payload := m{
		"actionType": actionType,
		"recordId":   recordID,
		"isSuccess":  false,
	}
	if message != "" {
		payload["errorMessage"] = message
	}
	return mustJSON(t, payload)
}

func TestTransactionFailureFailsAmmOrder(t *testing.T) {
	db := newTestDB(t)
	sink := &captureSink{}
	h := &TransactionFailureHandler{db: db, log: zap.NewNop(), sink: sink}
	require.NoError(t, db.Create(&models.AmmOrder{
		ID: 5, Identifier: "amm-order-5", Status: models.AmmOrderStatusProcessing,
		UpdatedAt: time.UnixMilli(1000),
	}).Error)

	raw := failurePayload(t, "AMM_ORDER", "5", "engine rejected swap")
	require.NoError(t, h.Handle(context.Background(), raw))

	var order models.AmmOrder
	require.NoError(t, db.First(&order, 5).Error)
	assert.Equal(t, models.AmmOrderStatusError, order.Status)
	assert.Equal(t, "engine rejected swap", order.ErrorMessage)

	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, "AMM_ORDER", sink.actionType)
	assert.Equal(t, "5", sink.recordID)
	assert.Equal(t, "engine rejected swap", sink.message)
}

func TestTransactionFailureOfferRecordsMessageOnly(t *testing.T) {
	db := newTestDB(t)
	h := &TransactionFailureHandler{db: db, log: zap.NewNop(), sink: &captureSink{}}
	require.NoError(t, db.Create(&models.Offer{ID: 50, UserID: 3}).Error)

	raw := failurePayload(t, "OFFER", "50", "offer sync failed")
	require.NoError(t, h.Handle(context.Background(), raw))

	var offer models.Offer
	require.NoError(t, db.First(&offer, 50).Error)
	assert.Equal(t, "offer sync failed", offer.ErrorMessage)
	assert.True(t, offer.Active())
}

func TestTransactionFailureDefaultsMessage(t *testing.T) {
	db := newTestDB(t)
	sink := &captureSink{}
	h := &TransactionFailureHandler{db: db, log: zap.NewNop(), sink: sink}
	require.NoError(t, db.Create(&models.BalanceLock{ID: 12, Status: models.BalanceLockStatusPending}).Error)

	raw := failurePayload(t, "BALANCE_LOCK", "12", "")
	require.NoError(t, h.Handle(context.Background(), raw))

	var lock models.BalanceLock
	require.NoError(t, db.First(&lock, 12).Error)
	assert.Equal(t, models.BalanceLockStatusError, lock.Status)
	assert.Equal(t, "Unknown error", lock.ErrorMessage)
	assert.Equal(t, "Unknown error", sink.message)
}

func TestTransactionFailureRepeatIsNoop(t *testing.T) {
	db := newTestDB(t)
	h := &TransactionFailureHandler{db: db, log: zap.NewNop(), sink: &captureSink{}}
	require.NoError(t, db.Create(&models.AmmOrder{
		ID: 5, Identifier: "amm-order-5", Status: models.AmmOrderStatusError,
		ErrorMessage: "first failure",
	}).Error)

	raw := failurePayload(t, "AMM_ORDER", "5", "second failure")
	require.NoError(t, h.Handle(context.Background(), raw))

	var order models.AmmOrder
	require.NoError(t, db.First(&order, 5).Error)
	assert.Equal(t, "first failure", order.ErrorMessage)
}

func TestTransactionFailureUnknownActionTypeEmitsOnly(t *testing.T) {
	db := newTestDB(t)
	sink := &captureSink{}
	h := &TransactionFailureHandler{db: db, log: zap.NewNop(), sink: sink}

	raw := failurePayload(t, "SOMETHING_NEW", "99", "boom")
	require.NoError(t, h.Handle(context.Background(), raw))
	assert.Equal(t, 1, sink.calls)
}

func TestTransactionFailureMissingRecordEmitsOnly(t *testing.T) {
	db := newTestDB(t)
	sink := &captureSink{}
	h := &TransactionFailureHandler{db: db, log: zap.NewNop(), sink: sink}

	raw := failurePayload(t, "TRADE", "404", "boom")
	require.NoError(t, h.Handle(context.Background(), raw))
	assert.Equal(t, 1, sink.calls)
}

func TestTransactionFailureSuccessIsNoop(t *testing.T) {
	db := newTestDB(t)
	sink := &captureSink{}
	h := &TransactionFailureHandler{db: db, log: zap.NewNop(), sink: sink}

	raw := mustJSON(t, m{"actionType": "TRADE", "recordId": "60", "isSuccess": true})
	require.NoError(t, h.Handle(context.Background(), raw))
	assert.Zero(t, sink.calls)
}
