package repositories

import (
	"context"
	"errors"

	"pcstore/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusCount pairs an order status with how many orders hold it.
type StatusCount struct {
	OrderStatus models.OrderStatus `json:"order_status"`
	Count       int64              `json:"count"`
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByIDAndUserID(ctx context.Context, id, userID string) (*models.Order, error)
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, status models.OrderStatus, page, limit int) ([]models.Order, int64, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	FindRecent(ctx context.Context, limit int) ([]models.Order, error)
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new instance of GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDAndUserID retrieves a specific order for a user
func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, id, userID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByUserID retrieves orders for a specific user with pagination
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// FindAll retrieves all orders with pagination, optionally filtered by
// order status
func (r *GormOrderRepository) FindAll(ctx context.Context, status models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("order_status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// Create creates a new order
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update updates an existing order
func (r *GormOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *GormOrderRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("order_status, COUNT(*) as count").
		Group("order_status").
		Scan(&counts).Error
	return counts, err
}

// TotalRevenue sums the order totals of every order whose payment has
// completed, refunds included since the money did move.
func (r *GormOrderRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status IN ?", []models.PaymentStatus{models.PaymentCompleted, models.PaymentRefunded}).
		Scan(&revenue).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !revenue.Valid {
		return decimal.Zero, nil
	}
	return revenue.Decimal, nil
}

func (r *GormOrderRepository) FindRecent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
