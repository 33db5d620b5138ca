package reconcile

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/models"
)

func seedOffer(t *testing.T, db *gorm.DB) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		ID:              50,
		UserID:          3,
		OfferType:       models.OfferTypeSell,
		CoinCurrency:    "btc",
		Currency:        "vnd",
		Price:           decimal.RequireFromString("500"),
		AvailableAmount: decimal.RequireFromString("10"),
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

func offerPayload(t *testing.T, op string, object m) []byte {
	t.Helper()
	return mustJSON(t, m{
		"operationType": op,
		"actionId":      "50",
		"isSuccess":     true,
		"object":        object,
	})
}

func TestOfferCreateUsesEngineAssignedID(t *testing.T) {
	db := newTestDB(t)
	h := &OfferHandler{db: db, log: zap.NewNop()}

	raw := offerPayload(t, "OFFER_CREATE", m{
		"symbol":          "BTC:VND",
		"userId":          3,
		"type":            "SELL",
		"price":           "510.25",
		"totalAmount":     "20",
		"availableAmount": "20",
		"minAmount":       "0.5",
		"maxAmount":       "5",
		"paymentMethodId": 9,
		"paymentTime":     30,
		"countryCode":     "VN",
		"automatic":       true,
		"online":          true,
	})
	require.NoError(t, h.Handle(context.Background(), raw))

	var offer models.Offer
	require.NoError(t, db.First(&offer, 50).Error)
	assert.Equal(t, "btc", offer.CoinCurrency)
	assert.Equal(t, "vnd", offer.Currency)
	assert.Equal(t, int64(3), offer.UserID)
	assert.Equal(t, models.OfferTypeSell, offer.OfferType)
	assert.Equal(t, "510.25", offer.Price.String())
	assert.Equal(t, int64(9), offer.PaymentMethodID)
	assert.Equal(t, "VN", offer.CountryCode)
	assert.True(t, offer.Automatic)
	assert.True(t, offer.Online)
	assert.True(t, offer.Active())
}

func TestOfferCreateRedeliveryIsNoop(t *testing.T) {
	db := newTestDB(t)
	h := &OfferHandler{db: db, log: zap.NewNop()}
	seedOffer(t, db)

	raw := offerPayload(t, "OFFER_CREATE", m{
		"symbol": "ETH:USD",
		"price":  "999",
	})
	require.NoError(t, h.Handle(context.Background(), raw))

	var offer models.Offer
	require.NoError(t, db.First(&offer, 50).Error)
	// The original row survives untouched.
	assert.Equal(t, "btc", offer.CoinCurrency)
	assert.Equal(t, "500", offer.Price.String())
}

func TestOfferUpdatePrunesAbsentFields(t *testing.T) {
	db := newTestDB(t)
	h := &OfferHandler{db: db, log: zap.NewNop()}
	seedOffer(t, db)

	raw := offerPayload(t, "OFFER_UPDATE", m{
		"availableAmount": "7.5",
	})
	require.NoError(t, h.Handle(context.Background(), raw))

	var offer models.Offer
	require.NoError(t, db.First(&offer, 50).Error)
	assert.Equal(t, "7.5", offer.AvailableAmount.String())
	assert.Equal(t, "500", offer.Price.String())
	assert.Equal(t, "btc", offer.CoinCurrency)
	assert.Equal(t, int64(3), offer.UserID)
}

func TestOfferDisableEnableIdempotent(t *testing.T) {
	db := newTestDB(t)
	h := &OfferHandler{db: db, log: zap.NewNop()}
	seedOffer(t, db)

	disable := offerPayload(t, "OFFER_DISABLE", m{})
	require.NoError(t, h.Handle(context.Background(), disable))
	require.NoError(t, h.Handle(context.Background(), disable))

	var offer models.Offer
	require.NoError(t, db.First(&offer, 50).Error)
	assert.True(t, offer.Disabled)
	assert.False(t, offer.Active())

	enable := offerPayload(t, "OFFER_ENABLE", m{})
	require.NoError(t, h.Handle(context.Background(), enable))

	require.NoError(t, db.First(&offer, 50).Error)
	assert.False(t, offer.Disabled)
	assert.True(t, offer.Active())
}

func TestOfferDeleteKeepsRow(t *testing.T) {
	db := newTestDB(t)
	h := &OfferHandler{db: db, log: zap.NewNop()}
	seedOffer(t, db)

	raw := offerPayload(t, "OFFER_DELETE", m{})
	require.NoError(t, h.Handle(context.Background(), raw))

	var offer models.Offer
	require.NoError(t, db.First(&offer, 50).Error)
	assert.True(t, offer.Deleted)
	assert.False(t, offer.Active())
	assert.Equal(t, "btc", offer.CoinCurrency)
}

func TestOfferUpdateUnknownIDNoop(t *testing.T) {
	db := newTestDB(t)
	h := &OfferHandler{db: db, log: zap.NewNop()}

	raw := offerPayload(t, "OFFER_UPDATE", m{"price": "1"})
	require.NoError(t, h.Handle(context.Background(), raw))

	var count int64
	require.NoError(t, db.Model(&models.Offer{}).Count(&count).Error)
	assert.Zero(t, count)
}
