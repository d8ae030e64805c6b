package repositories

import (
	"context"
	"errors"

	"pcstore/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ComponentFilter narrows catalog listings.
type ComponentFilter struct {
	Kind       models.ComponentKind
	ActiveOnly bool
	Search     string
}

// ComponentRepository defines the interface for catalog data access
type ComponentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Component, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Component, error)
	FindAll(ctx context.Context, filter ComponentFilter, page, limit int) ([]models.Component, int64, error)
	Create(ctx context.Context, component *models.Component) error
	Update(ctx context.Context, component *models.Component) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	CountReferencingLookup(ctx context.Context, lookupID string) (int64, error)
}

// GormComponentRepository implements ComponentRepository using GORM
type GormComponentRepository struct {
	db *gorm.DB
}

// NewGormComponentRepository creates a new instance of GormComponentRepository
func NewGormComponentRepository(db *gorm.DB) ComponentRepository {
	return &GormComponentRepository{db: db}
}

func (r *GormComponentRepository) FindByID(ctx context.Context, id string) (*models.Component, error) {
	var component models.Component
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&component).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &component, nil
}

func (r *GormComponentRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Component, error) {
	var components []models.Component
	if len(ids) == 0 {
		return components, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

// FindAll retrieves catalog components with pagination
func (r *GormComponentRepository) FindAll(ctx context.Context, filter ComponentFilter, page, limit int) ([]models.Component, int64, error) {
	var components []models.Component
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Component{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR mpn ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&components).Error; err != nil {
		return nil, 0, err
	}

	return components, total, nil
}

func (r *GormComponentRepository) Create(ctx context.Context, component *models.Component) error {
	return r.db.WithContext(ctx).Create(component).Error
}

func (r *GormComponentRepository) Update(ctx context.Context, component *models.Component) error {
	return r.db.WithContext(ctx).Save(component).Error
}

func (r *GormComponentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Component{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormComponentRepository) SetActive(ctx context.Context, id string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountReferencingLookup counts components whose denormalized attrs
// embed the given lookup id. Lookup ids are uuids, so a raw text match
// on the jsonb column cannot false-positive on other fields.
func (r *GormComponentRepository) CountReferencingLookup(ctx context.Context, lookupID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("attrs::text LIKE ?", "%"+lookupID+"%").
		Count(&count).Error
	return count, err
}
