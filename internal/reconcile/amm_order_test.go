package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/models"
)

func seedAmmOrder(t *testing.T, db *gorm.DB, status string, updatedAtMillis int64) *models.AmmOrder {
	t.Helper()
	order := &models.AmmOrder{
		Identifier: "amm_order_1_btc_usdt_1",
		UserID:     1,
		Pair:       "BTC_USDT",
		Status:     status,
		UpdatedAt:  time.UnixMilli(updatedAtMillis).UTC(),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func ammOrderPayload(t *testing.T, object m, success bool, errMsg string) []byte {
	t.Helper()
	payload := m{"object": object, "isSuccess": success}
	if errMsg != "" {
		payload["errorMessage"] = errMsg
	}
	return mustJSON(t, payload)
}

func TestAmmOrderSuccessAppliesFieldsAndSucceeds(t *testing.T) {
	db := newTestDB(t)
	h := &AmmOrderHandler{db: db, log: zap.NewNop()}
	seedAmmOrder(t, db, models.AmmOrderStatusProcessing, 1000)

	raw := ammOrderPayload(t, m{
		"identifier":      "amm_order_1_btc_usdt_1",
		"status":          "SUCCESS",
		"amountActual":    "1.5",
		"amountReceived":  "1.48",
		"afterTickIndex":  int64(42),
		"fees":            m{"btc": "0.002"},
		"updatedAt":       int64(2000),
	}, true, "")
	require.NoError(t, h.Handle(context.Background(), raw))

	var got models.AmmOrder
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, models.AmmOrderStatusSuccess, got.Status)
	assert.True(t, got.AmountActual.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, got.AmountReceived.Equal(decimal.RequireFromString("1.48")))
	assert.Equal(t, int64(42), got.AfterTickIndex)
	assert.Equal(t, "0.002", got.Fees["btc"])
	assert.Equal(t, int64(2000), got.UpdatedAt.UnixMilli())
}

func TestAmmOrderStaleEventRejected(t *testing.T) {
	db := newTestDB(t)
	h := &AmmOrderHandler{db: db, log: zap.NewNop()}
	seedAmmOrder(t, db, models.AmmOrderStatusProcessing, 3000)

	raw := ammOrderPayload(t, m{
		"identifier":   "amm_order_1_btc_usdt_1",
		"status":       "success",
		"amountActual": "9.9",
		"updatedAt":    int64(2000),
	}, true, "")
	require.NoError(t, h.Handle(context.Background(), raw))

	var got models.AmmOrder
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, models.AmmOrderStatusProcessing, got.Status)
	assert.True(t, got.AmountActual.IsZero())
	assert.Equal(t, int64(3000), got.UpdatedAt.UnixMilli())
}

func TestAmmOrderReplayIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	h := &AmmOrderHandler{db: db, log: zap.NewNop()}
	seedAmmOrder(t, db, models.AmmOrderStatusProcessing, 1000)

	raw := ammOrderPayload(t, m{
		"identifier":   "amm_order_1_btc_usdt_1",
		"status":       "success",
		"amountActual": "1.5",
		"updatedAt":    int64(2000),
	}, true, "")
	require.NoError(t, h.Handle(context.Background(), raw))

	var first models.AmmOrder
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&first).Error)

	require.NoError(t, h.Handle(context.Background(), raw))
	var second models.AmmOrder
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&second).Error)

	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.AmountActual.Equal(second.AmountActual))
	assert.Equal(t, first.UpdatedAt.UnixMilli(), second.UpdatedAt.UnixMilli())
}

func TestAmmOrderOutOfOrderEventsConverge(t *testing.T) {
	db := newTestDB(t)
	h := &AmmOrderHandler{db: db, log: zap.NewNop()}
	seedAmmOrder(t, db, models.AmmOrderStatusProcessing, 0)

	older := ammOrderPayload(t, m{
		"identifier":   "amm_order_1_btc_usdt_1",
		"amountActual": "1.0",
		"updatedAt":    int64(1000),
	}, true, "")
	newer := ammOrderPayload(t, m{
		"identifier":   "amm_order_1_btc_usdt_1",
		"amountActual": "2.0",
		"updatedAt":    int64(2000),
	}, true, "")

	// Late-arriving older event must be rejected.
	require.NoError(t, h.Handle(context.Background(), newer))
	require.NoError(t, h.Handle(context.Background(), older))

	var got models.AmmOrder
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&got).Error)
	assert.True(t, got.AmountActual.Equal(decimal.RequireFromString("2.0")))
	assert.Equal(t, int64(2000), got.UpdatedAt.UnixMilli())
}

func TestAmmOrderNullPruning(t *testing.T) {
	db := newTestDB(t)
	h := &AmmOrderHandler{db: db, log: zap.NewNop()}
	seedAmmOrder(t, db, models.AmmOrderStatusProcessing, 0)

	full := ammOrderPayload(t, m{
		"identifier":      "amm_order_1_btc_usdt_1",
		"amountActual":    "1.5",
		"amountEstimated": "1.6",
		"updatedAt":       int64(1000),
	}, true, "")
	require.NoError(t, h.Handle(context.Background(), full))

	partial := ammOrderPayload(t, m{
		"identifier":   "amm_order_1_btc_usdt_1",
		"amountActual": "1.7",
		"updatedAt":    int64(2000),
	}, true, "")
	require.NoError(t, h.Handle(context.Background(), partial))

	var got models.AmmOrder
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&got).Error)
	assert.True(t, got.AmountActual.Equal(decimal.RequireFromString("1.7")))
	assert.True(t, got.AmountEstimated.Equal(decimal.RequireFromString("1.6")), "absent field must not be overwritten")
}

func TestAmmOrderFailureOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	h := &AmmOrderHandler{db: db, log: zap.NewNop()}
	seedAmmOrder(t, db, models.AmmOrderStatusProcessing, 0)

	fail := ammOrderPayload(t, m{"identifier": "amm_order_1_btc_usdt_1"}, false, "insufficient liquidity")
	require.NoError(t, h.Handle(context.Background(), fail))

	var got models.AmmOrder
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, models.AmmOrderStatusError, got.Status)
	assert.Equal(t, "Exchange Engine: insufficient liquidity", got.ErrorMessage)

	// A second failure must not overwrite the first message.
	fail2 := ammOrderPayload(t, m{"identifier": "amm_order_1_btc_usdt_1"}, false, "different reason")
	require.NoError(t, h.Handle(context.Background(), fail2))
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, "Exchange Engine: insufficient liquidity", got.ErrorMessage)
}

func TestAmmOrderFailureWithoutMessageUsesDefault(t *testing.T) {
	db := newTestDB(t)
	h := &AmmOrderHandler{db: db, log: zap.NewNop()}
	seedAmmOrder(t, db, models.AmmOrderStatusProcessing, 0)

	fail := ammOrderPayload(t, m{"identifier": "amm_order_1_btc_usdt_1"}, false, "")
	require.NoError(t, h.Handle(context.Background(), fail))

	var got models.AmmOrder
	require.NoError(t, db.Where("identifier = ?", "amm_order_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, "Exchange Engine: Unknown error", got.ErrorMessage)
}

func TestAmmOrderUnknownIdentifierIsNoop(t *testing.T) {
	db := newTestDB(t)
	h := &AmmOrderHandler{db: db, log: zap.NewNop()}

	raw := ammOrderPayload(t, m{"identifier": "amm_order_9_eth_usdt_9", "updatedAt": int64(1)}, true, "")
	require.NoError(t, h.Handle(context.Background(), raw))

	var count int64
	require.NoError(t, db.Model(&models.AmmOrder{}).Count(&count).Error)
	assert.Zero(t, count)
}
