// Package fiat creates the fiat legs a trade requires. Trade creation is the
// one place where a collaborator failure vetoes the parent write, so both
// operations run inside the caller's transaction.
package fiat

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/models"
)

// Transactor creates the fiat deposit or withdrawal correlated with a new
// trade. An error from either call must abort the whole trade-creation unit
// of work.
type Transactor interface {
	CreateDeposit(tx *gorm.DB, trade *models.Trade) error
	CreateWithdrawal(tx *gorm.DB, trade *models.Trade) error
}

// Service is the database-backed Transactor.
type Service struct {
	log *zap.Logger
}

// NewService builds the default Transactor.
func NewService(log *zap.Logger) *Service {
	return &Service{log: log}
}

// CreateDeposit records the pending fiat deposit owed by the trade's buyer.
func (s *Service) CreateDeposit(tx *gorm.DB, trade *models.Trade) error {
	if trade.FiatAmount.Sign() <= 0 {
		return fmt.Errorf("fiat deposit for trade %d: non-positive amount %s", trade.ID, trade.FiatAmount)
	}
	dep := models.FiatDeposit{
		UserID:   trade.BuyerID,
		TradeID:  trade.ID,
		Currency: trade.Currency,
		Amount:   trade.FiatAmount,
		Status:   models.FiatOperationStatusPending,
	}
	if err := tx.Create(&dep).Error; err != nil {
		return fmt.Errorf("create fiat deposit: %w", err)
	}
	s.log.Debug("fiat deposit created",
		zap.Int64("trade_id", trade.ID),
		zap.Int64("user_id", trade.BuyerID),
		zap.String("amount", trade.FiatAmount.String()))
	return nil
}

// CreateWithdrawal records the pending fiat withdrawal owed to the trade's
// seller.
func (s *Service) CreateWithdrawal(tx *gorm.DB, trade *models.Trade) error {
	if trade.FiatAmount.Sign() <= 0 {
		return fmt.Errorf("fiat withdrawal for trade %d: non-positive amount %s", trade.ID, trade.FiatAmount)
	}
	wd := models.FiatWithdrawal{
		UserID:   trade.SellerID,
		TradeID:  trade.ID,
		Currency: trade.Currency,
		Amount:   trade.FiatAmount,
		Status:   models.FiatOperationStatusPending,
	}
	if err := tx.Create(&wd).Error; err != nil {
		return fmt.Errorf("create fiat withdrawal: %w", err)
	}
	s.log.Debug("fiat withdrawal created",
		zap.Int64("trade_id", trade.ID),
		zap.Int64("user_id", trade.SellerID),
		zap.String("amount", trade.FiatAmount.String()))
	return nil
}
