package repositories

import (
	"context"
	"errors"

	"pcstore/models"

	"gorm.io/gorm"
)

// BuildRepository defines the interface for saved-build data access
type BuildRepository interface {
	FindByID(ctx context.Context, id string) (*models.ComputerBuild, error)
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.ComputerBuild, int64, error)
	Create(ctx context.Context, build *models.ComputerBuild) error
	Update(ctx context.Context, build *models.ComputerBuild) error
	Delete(ctx context.Context, id string) error
	CountReferencingComponent(ctx context.Context, componentID string) (int64, error)
}

// GormBuildRepository implements BuildRepository using GORM
type GormBuildRepository struct {
	db *gorm.DB
}

// NewGormBuildRepository creates a new instance of GormBuildRepository
func NewGormBuildRepository(db *gorm.DB) BuildRepository {
	return &GormBuildRepository{db: db}
}

func (r *GormBuildRepository) FindByID(ctx context.Context, id string) (*models.ComputerBuild, error) {
	var build models.ComputerBuild
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&build).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &build, nil
}

// FindByUserID retrieves builds for a specific user with pagination
func (r *GormBuildRepository) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.ComputerBuild, int64, error) {
	var builds []models.ComputerBuild
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.ComputerBuild{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("updated_at DESC").
		Find(&builds).Error; err != nil {
		return nil, 0, err
	}

	return builds, total, nil
}

func (r *GormBuildRepository) Create(ctx context.Context, build *models.ComputerBuild) error {
	return r.db.WithContext(ctx).Create(build).Error
}

func (r *GormBuildRepository) Update(ctx context.Context, build *models.ComputerBuild) error {
	return r.db.WithContext(ctx).Save(build).Error
}

func (r *GormBuildRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ComputerBuild{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountReferencingComponent counts builds that use the component in
// any slot. Component ids are uuids, so the jsonb text match on the
// quantity lists cannot collide with other values.
func (r *GormBuildRepository) CountReferencingComponent(ctx context.Context, componentID string) (int64, error) {
	var count int64
	like := "%" + componentID + "%"
	err := r.db.WithContext(ctx).
		Model(&models.ComputerBuild{}).
		Where(
			"cpu_id = ? OR motherboard_id = ? OR psu_id = ? OR case_id = ? OR cooler_id = ?"+
				" OR ram_kits::text LIKE ? OR gpus::text LIKE ? OR storage_drives::text LIKE ?",
			componentID, componentID, componentID, componentID, componentID,
			like, like, like,
		).
		Count(&count).Error
	return count, err
}
