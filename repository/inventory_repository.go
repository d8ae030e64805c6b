package repositories

import (
	"context"
	"errors"

	"pcstore/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a decrement would take the
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryRepository defines the interface for stock data access
type InventoryRepository interface {
	FindByComponentID(ctx context.Context, componentID string) (*models.Inventory, error)
	FindByComponentIDs(ctx context.Context, componentIDs []string) ([]models.Inventory, error)
	Create(ctx context.Context, inventory *models.Inventory) error
	UpdatePrice(ctx context.Context, componentID string, price decimal.Decimal) error
	// AdjustQuantity atomically applies delta and returns the new
	// quantity. The update is conditional so the quantity can never go
	// negative, no matter how many adjustments race.
	AdjustQuantity(ctx context.Context, componentID string, delta int) (int, error)
	DeleteByComponentID(ctx context.Context, componentID string) error
}

// GormInventoryRepository implements InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new instance of GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) InventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) FindByComponentID(ctx context.Context, componentID string) (*models.Inventory, error) {
	var inventory models.Inventory
	if err := r.db.WithContext(ctx).Where("component_id = ?", componentID).First(&inventory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inventory, nil
}

func (r *GormInventoryRepository) FindByComponentIDs(ctx context.Context, componentIDs []string) ([]models.Inventory, error) {
	var inventories []models.Inventory
	if len(componentIDs) == 0 {
		return inventories, nil
	}
	if err := r.db.WithContext(ctx).Where("component_id IN ?", componentIDs).Find(&inventories).Error; err != nil {
		return nil, err
	}
	return inventories, nil
}

func (r *GormInventoryRepository) Create(ctx context.Context, inventory *models.Inventory) error {
	return r.db.WithContext(ctx).Create(inventory).Error
}

func (r *GormInventoryRepository) UpdatePrice(ctx context.Context, componentID string, price decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("component_id = ?", componentID).
		Update("price", price)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormInventoryRepository) AdjustQuantity(ctx context.Context, componentID string, delta int) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("component_id = ? AND quantity + ? >= 0", componentID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing row from a guarded decrement.
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.Inventory{}).
			Where("component_id = ?", componentID).
			Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrInsufficientStock
	}

	var inventory models.Inventory
	if err := r.db.WithContext(ctx).Where("component_id = ?", componentID).First(&inventory).Error; err != nil {
		return 0, err
	}
	return inventory.Quantity, nil
}

func (r *GormInventoryRepository) DeleteByComponentID(ctx context.Context, componentID string) error {
	return r.db.WithContext(ctx).Where("component_id = ?", componentID).Delete(&models.Inventory{}).Error
}
