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

func seedAmmPosition(t *testing.T, db *gorm.DB, updatedAtMillis int64) *models.AmmPosition {
	t.Helper()
	pos := &models.AmmPosition{
		Identifier: "amm_position_1_btc_usdt_1",
		UserID:     1,
		Pair:       "BTC_USDT",
		Status:     models.AmmPositionStatusPending,
		UpdatedAt:  time.UnixMilli(updatedAtMillis).UTC(),
	}
	require.NoError(t, db.Create(pos).Error)
	return pos
}

func TestAmmPositionSuccessUpdate(t *testing.T) {
	db := newTestDB(t)
	h := &AmmPositionHandler{db: db, log: zap.NewNop()}
	seedAmmPosition(t, db, 1000)

	raw := mustJSON(t, m{
		"object": m{
			"identifier":  "amm_position_1_btc_usdt_1",
			"status":      "OPEN",
			"liquidity":   "123.45",
			"tokensOwed0": "0.5",
			"updatedAt":   int64(2000),
		},
		"isSuccess": true,
	})
	require.NoError(t, h.Handle(context.Background(), raw))

	var got models.AmmPosition
	require.NoError(t, db.Where("identifier = ?", "amm_position_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, models.AmmPositionStatusOpen, got.Status)
	assert.True(t, got.Liquidity.Equal(decimal.RequireFromString("123.45")))
	assert.True(t, got.TokensOwed0.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, int64(2000), got.UpdatedAt.UnixMilli())
}

func TestAmmPositionStaleRejected(t *testing.T) {
	db := newTestDB(t)
	h := &AmmPositionHandler{db: db, log: zap.NewNop()}
	seedAmmPosition(t, db, 3000)

	raw := mustJSON(t, m{
		"object": m{
			"identifier": "amm_position_1_btc_usdt_1",
			"status":     "open",
			"liquidity":  "9",
			"updatedAt":  int64(1000),
		},
		"isSuccess": true,
	})
	require.NoError(t, h.Handle(context.Background(), raw))

	var got models.AmmPosition
	require.NoError(t, db.Where("identifier = ?", "amm_position_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, models.AmmPositionStatusPending, got.Status)
	assert.True(t, got.Liquidity.IsZero())
}

func TestAmmPositionFailOnce(t *testing.T) {
	db := newTestDB(t)
	h := &AmmPositionHandler{db: db, log: zap.NewNop()}
	seedAmmPosition(t, db, 0)

	fail := mustJSON(t, m{
		"object":       m{"identifier": "amm_position_1_btc_usdt_1"},
		"isSuccess":    false,
		"errorMessage": "tick out of range",
	})
	require.NoError(t, h.Handle(context.Background(), fail))

	var got models.AmmPosition
	require.NoError(t, db.Where("identifier = ?", "amm_position_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, models.AmmPositionStatusError, got.Status)
	assert.Equal(t, "Exchange Engine: tick out of range", got.ErrorMessage)

	fail2 := mustJSON(t, m{
		"object":       m{"identifier": "amm_position_1_btc_usdt_1"},
		"isSuccess":    false,
		"errorMessage": "second reason",
	})
	require.NoError(t, h.Handle(context.Background(), fail2))
	require.NoError(t, db.Where("identifier = ?", "amm_position_1_btc_usdt_1").First(&got).Error)
	assert.Equal(t, "Exchange Engine: tick out of range", got.ErrorMessage)
}
