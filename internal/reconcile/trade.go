package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/config"
	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/fiat"
	"github.com/vndex/engine-reconciler/internal/models"
)

// Trading fees are quoted to 8 fractional digits.
const feeScale = 8

// TradeHandler reconciles trade lifecycle events. TRADE_CREATE is the one
// handler where a collaborator failure (the fiat leg) vetoes the parent
// write: the whole unit of work rolls back and no trade persists.
type TradeHandler struct {
	db   *gorm.DB
	log  *zap.Logger
	fiat fiat.Transactor
	fees *config.FeesConfig
}

func (h *TradeHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	var obj engine.TradeObject
	if err := decodeObject(env, &obj); err != nil {
		return err
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch env.Op() {
		case engine.OpTradeCreate:
			return h.create(tx, env, &obj)
		case engine.OpTradeUpdate:
			return h.update(tx, env, &obj)
		case engine.OpTradeCancel:
			return h.cancel(tx, env)
		case engine.OpTradeComplete:
			return h.complete(tx, env)
		}
		return nil
	})
}

func (h *TradeHandler) create(tx *gorm.DB, env *engine.Envelope, obj *engine.TradeObject) error {
	offerID, ok := engine.TrailingID(obj.OfferKey)
	if !ok {
		return nil
	}
	buyerRef, buyerOK := engine.ParseAccountRef(obj.BuyerAccountKey)
	sellerRef, sellerOK := engine.ParseAccountRef(obj.SellerAccountKey)
	if !buyerOK || !sellerOK {
		return nil
	}
	coinAmount := obj.CoinAmount.Or(decimal.Zero)
	if coinAmount.Sign() <= 0 {
		return nil
	}

	var offer models.Offer
	if err := tx.First(&offer, offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !offer.Active() || offer.AvailableAmount.LessThan(coinAmount) {
		droppedTotal.WithLabelValues(string(engine.TopicTrade), dropNoop).Inc()
		h.log.Debug("trade create rejected: offer unavailable",
			zap.Int64("offer_id", offer.ID),
			zap.String("coin_amount", coinAmount.String()))
		return nil
	}

	// Redelivered CREATE: the trade already exists, nothing to do.
	if tradeID, ok := numericID(env.ActionID); ok {
		var existing models.Trade
		err := tx.First(&existing, tradeID).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	price := obj.Price.Or(offer.Price)
	fiatAmount := coinAmount.Mul(price)
	tradingFee := coinAmount.Mul(h.fees.TradingRatio(offer.CoinCurrency)).Round(feeScale)
	fixedFee := h.fees.FixedFee(offer.CoinCurrency)
	totalFee := tradingFee.Add(fixedFee)
	amountAfterFee := coinAmount.Sub(totalFee)
	if amountAfterFee.Sign() < 0 {
		amountAfterFee = decimal.Zero
	}

	trade := models.Trade{
		OfferID:        offer.ID,
		BuyerID:        buyerRef.UserID,
		SellerID:       sellerRef.UserID,
		Symbol:         obj.Symbol,
		CoinCurrency:   offer.CoinCurrency,
		Currency:       offer.Currency,
		CoinAmount:     coinAmount,
		FiatAmount:     fiatAmount,
		Price:          price,
		FixedFee:       fixedFee,
		CoinTradingFee: tradingFee,
		TotalFee:       totalFee,
		AmountAfterFee: amountAfterFee,
		TakerSide:      lower(obj.TakerSide),
		Status:         models.TradeStatusAwaiting,
	}
	if tradeID, ok := numericID(env.ActionID); ok {
		trade.ID = tradeID
	}
	if obj.CreatedAt > 0 {
		trade.CreatedAt = engine.MillisToTime(obj.CreatedAt)
	}
	if err := tx.Create(&trade).Error; err != nil {
		return err
	}

	// The taker buying coin owes fiat into the platform; the taker selling
	// coin is owed fiat out of it. A failed fiat leg aborts the trade.
	if trade.TakerSide == models.TakerSideBuy {
		return h.fiat.CreateDeposit(tx, &trade)
	}
	return h.fiat.CreateWithdrawal(tx, &trade)
}

func (h *TradeHandler) update(tx *gorm.DB, env *engine.Envelope, obj *engine.TradeObject) error {
	trade, err := h.load(tx, env)
	if trade == nil || err != nil {
		return err
	}

	now := time.Now().UTC()
	switch status := lower(obj.Status); status {
	case "":
		return nil
	case "paid":
		trade.Status = models.TradeStatusPaid
		if trade.PaidAt == nil {
			at := now
			if obj.PaidAt > 0 {
				at = engine.MillisToTime(obj.PaidAt)
			}
			trade.PaidAt = &at
		}
	case "completed", models.TradeStatusReleased:
		at := now
		if obj.CompletedAt > 0 {
			at = engine.MillisToTime(obj.CompletedAt)
		}
		trade.Release(at)
	default:
		trade.Status = status
	}
	return tx.Save(trade).Error
}

func (h *TradeHandler) cancel(tx *gorm.DB, env *engine.Envelope) error {
	trade, err := h.load(tx, env)
	if trade == nil || err != nil {
		return err
	}
	trade.Cancel(time.Now().UTC())
	return tx.Save(trade).Error
}

// complete maps the engine's terminal "complete" onto the local terminal
// status "released".
func (h *TradeHandler) complete(tx *gorm.DB, env *engine.Envelope) error {
	trade, err := h.load(tx, env)
	if trade == nil || err != nil {
		return err
	}
	trade.Release(time.Now().UTC())
	return tx.Save(trade).Error
}

func (h *TradeHandler) load(tx *gorm.DB, env *engine.Envelope) (*models.Trade, error) {
	id, ok := numericID(env.ActionID)
	if !ok {
		return nil, nil
	}
	var trade models.Trade
	if err := tx.First(&trade, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trade, nil
}
