package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory is the stock ledger row for one catalog component.
// Quantity is the single source of truth for stock and never goes
// negative; all mutation goes through the guarded repository
// adjustment.
type Inventory struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	ComponentID string          `json:"component_id" gorm:"uniqueIndex;not null"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// StockAdjustmentRequest is the admin payload for changing stock.
// Delta may be negative; the adjustment fails if it would take the
// quantity below zero.
type StockAdjustmentRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// PriceUpdateRequest is the admin payload for repricing a component.
type PriceUpdateRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}
