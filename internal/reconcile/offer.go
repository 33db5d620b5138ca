package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// OfferHandler reconciles offer lifecycle events. These are idempotent
// descriptive events, not outcome confirmations: there is no success/failure
// branch, and offer ids on CREATE are engine-assigned.
type OfferHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func (h *OfferHandler) Handle(ctx context.Context, raw []byte) error {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	var obj engine.OfferObject
	if err := decodeObject(env, &obj); err != nil {
		return err
	}
	offerID, ok := numericID(env.ActionID)
	if !ok {
		return nil
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch env.Op() {
		case engine.OpOfferCreate:
			return h.create(tx, offerID, &obj)
		case engine.OpOfferUpdate:
			return h.update(tx, offerID, &obj)
		case engine.OpOfferDisable:
			return h.setDisabled(tx, offerID, true)
		case engine.OpOfferEnable:
			return h.setDisabled(tx, offerID, false)
		case engine.OpOfferDelete:
			return h.delete(tx, offerID)
		}
		return nil
	})
}

func (h *OfferHandler) create(tx *gorm.DB, offerID int64, obj *engine.OfferObject) error {
	var existing models.Offer
	err := tx.First(&existing, offerID).Error
	if err == nil {
		// Redelivered CREATE for an offer that already exists.
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	offer := models.Offer{ID: offerID}
	applyOfferFields(&offer, obj)
	return tx.Create(&offer).Error
}

func (h *OfferHandler) update(tx *gorm.DB, offerID int64, obj *engine.OfferObject) error {
	var offer models.Offer
	if err := tx.First(&offer, offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	applyOfferFields(&offer, obj)
	return tx.Save(&offer).Error
}

func (h *OfferHandler) setDisabled(tx *gorm.DB, offerID int64, disabled bool) error {
	var offer models.Offer
	if err := tx.First(&offer, offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if offer.Disabled == disabled {
		return nil
	}
	offer.Disabled = disabled
	return tx.Save(&offer).Error
}

// delete flags the offer deleted; the row is kept.
func (h *OfferHandler) delete(tx *gorm.DB, offerID int64) error {
	var offer models.Offer
	if err := tx.First(&offer, offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if offer.Deleted {
		return nil
	}
	offer.Deleted = true
	return tx.Save(&offer).Error
}

// applyOfferFields maps present payload fields onto the offer, pruning
// absent ones.
func applyOfferFields(offer *models.Offer, obj *engine.OfferObject) {
	if coin, fiat, ok := obj.SymbolCurrencies(); ok {
		offer.CoinCurrency = coin
		offer.Currency = fiat
	}
	if uid, ok := obj.UserID.Int64(); ok {
		offer.UserID = uid
	}
	if t := lower(obj.Type); t != "" {
		offer.OfferType = t
	}
	if v := obj.Price.Ptr(); v != nil {
		offer.Price = *v
	}
	if v := obj.Margin.Ptr(); v != nil {
		offer.Margin = *v
	}
	if v := obj.TotalAmount.Ptr(); v != nil {
		offer.TotalAmount = *v
	}
	if v := obj.AvailableAmount.Ptr(); v != nil {
		offer.AvailableAmount = *v
	}
	if v := obj.MinAmount.Ptr(); v != nil {
		offer.MinAmount = *v
	}
	if v := obj.MaxAmount.Ptr(); v != nil {
		offer.MaxAmount = *v
	}
	if obj.PaymentMethodID != nil {
		offer.PaymentMethodID = *obj.PaymentMethodID
	}
	if obj.PaymentTime != nil {
		offer.PaymentTime = *obj.PaymentTime
	}
	if obj.CountryCode != nil {
		offer.CountryCode = *obj.CountryCode
	}
	if obj.Disabled != nil {
		offer.Disabled = *obj.Disabled
	}
	if obj.Deleted != nil {
		offer.Deleted = *obj.Deleted
	}
	if obj.Automatic != nil {
		offer.Automatic = *obj.Automatic
	}
	if obj.Online != nil {
		offer.Online = *obj.Online
	}
}
