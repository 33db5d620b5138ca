package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vndex/engine-reconciler/internal/audit"
	"github.com/vndex/engine-reconciler/internal/config"
	"github.com/vndex/engine-reconciler/internal/fiat"
	"github.com/vndex/engine-reconciler/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func testFees() *config.FeesConfig {
	return &config.FeesConfig{
		DefaultTradingRatio: decimal.RequireFromString("0.01"),
		TradingRatios:       map[string]decimal.Decimal{},
		FixedFees:           map[string]decimal.Decimal{},
	}
}

func newTestDispatcher(t *testing.T, db *gorm.DB) *Dispatcher {
	t.Helper()
	log := zap.NewNop()
	return New(db, log, audit.NewZapSink(log), fiat.NewService(log), testFees())
}

// mustJSON marshals a test payload.
func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

type m = map[string]interface{}
