package repositories

import (
	"context"
	"errors"

	"pcstore/models"

	"gorm.io/gorm"
)

// LookupRepository defines the interface for the shared compatibility
// vocabularies (sockets, RAM types, form factors, storage interfaces).
type LookupRepository interface {
	FindSockets(ctx context.Context) ([]models.Socket, error)
	FindSocketByID(ctx context.Context, id string) (*models.Socket, error)
	CreateSocket(ctx context.Context, socket *models.Socket) error
	DeleteSocket(ctx context.Context, id string) error

	FindRamTypes(ctx context.Context) ([]models.RamType, error)
	FindRamTypeByID(ctx context.Context, id string) (*models.RamType, error)
	CreateRamType(ctx context.Context, ramType *models.RamType) error
	DeleteRamType(ctx context.Context, id string) error

	FindFormFactors(ctx context.Context, kind models.FormFactorKind) ([]models.FormFactor, error)
	FindFormFactorByID(ctx context.Context, id string) (*models.FormFactor, error)
	CreateFormFactor(ctx context.Context, formFactor *models.FormFactor) error
	DeleteFormFactor(ctx context.Context, id string) error

	FindStorageInterfaces(ctx context.Context) ([]models.StorageInterface, error)
	FindStorageInterfaceByID(ctx context.Context, id string) (*models.StorageInterface, error)
	CreateStorageInterface(ctx context.Context, iface *models.StorageInterface) error
	DeleteStorageInterface(ctx context.Context, id string) error
}

// GormLookupRepository implements LookupRepository using GORM
type GormLookupRepository struct {
	db *gorm.DB
}

// NewGormLookupRepository creates a new instance of GormLookupRepository
func NewGormLookupRepository(db *gorm.DB) LookupRepository {
	return &GormLookupRepository{db: db}
}

func (r *GormLookupRepository) FindSockets(ctx context.Context) ([]models.Socket, error) {
	var sockets []models.Socket
	if err := r.db.WithContext(ctx).Order("name").Find(&sockets).Error; err != nil {
		return nil, err
	}
	return sockets, nil
}

func (r *GormLookupRepository) FindSocketByID(ctx context.Context, id string) (*models.Socket, error) {
	var socket models.Socket
	if err := r.first(ctx, &socket, id); err != nil {
		return nil, err
	}
	return &socket, nil
}

func (r *GormLookupRepository) CreateSocket(ctx context.Context, socket *models.Socket) error {
	return r.db.WithContext(ctx).Create(socket).Error
}

func (r *GormLookupRepository) DeleteSocket(ctx context.Context, id string) error {
	return r.delete(ctx, &models.Socket{}, id)
}

func (r *GormLookupRepository) FindRamTypes(ctx context.Context) ([]models.RamType, error) {
	var ramTypes []models.RamType
	if err := r.db.WithContext(ctx).Order("name").Find(&ramTypes).Error; err != nil {
		return nil, err
	}
	return ramTypes, nil
}

func (r *GormLookupRepository) FindRamTypeByID(ctx context.Context, id string) (*models.RamType, error) {
	var ramType models.RamType
	if err := r.first(ctx, &ramType, id); err != nil {
		return nil, err
	}
	return &ramType, nil
}

func (r *GormLookupRepository) CreateRamType(ctx context.Context, ramType *models.RamType) error {
	return r.db.WithContext(ctx).Create(ramType).Error
}

func (r *GormLookupRepository) DeleteRamType(ctx context.Context, id string) error {
	return r.delete(ctx, &models.RamType{}, id)
}

func (r *GormLookupRepository) FindFormFactors(ctx context.Context, kind models.FormFactorKind) ([]models.FormFactor, error) {
	var formFactors []models.FormFactor
	query := r.db.WithContext(ctx).Order("name")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Find(&formFactors).Error; err != nil {
		return nil, err
	}
	return formFactors, nil
}

func (r *GormLookupRepository) FindFormFactorByID(ctx context.Context, id string) (*models.FormFactor, error) {
	var formFactor models.FormFactor
	if err := r.first(ctx, &formFactor, id); err != nil {
		return nil, err
	}
	return &formFactor, nil
}

func (r *GormLookupRepository) CreateFormFactor(ctx context.Context, formFactor *models.FormFactor) error {
	return r.db.WithContext(ctx).Create(formFactor).Error
}

func (r *GormLookupRepository) DeleteFormFactor(ctx context.Context, id string) error {
	return r.delete(ctx, &models.FormFactor{}, id)
}

func (r *GormLookupRepository) FindStorageInterfaces(ctx context.Context) ([]models.StorageInterface, error) {
	var interfaces []models.StorageInterface
	if err := r.db.WithContext(ctx).Order("name").Find(&interfaces).Error; err != nil {
		return nil, err
	}
	return interfaces, nil
}

func (r *GormLookupRepository) FindStorageInterfaceByID(ctx context.Context, id string) (*models.StorageInterface, error) {
	var iface models.StorageInterface
	if err := r.first(ctx, &iface, id); err != nil {
		return nil, err
	}
	return &iface, nil
}

func (r *GormLookupRepository) CreateStorageInterface(ctx context.Context, iface *models.StorageInterface) error {
	return r.db.WithContext(ctx).Create(iface).Error
}

func (r *GormLookupRepository) DeleteStorageInterface(ctx context.Context, id string) error {
	return r.delete(ctx, &models.StorageInterface{}, id)
}

func (r *GormLookupRepository) first(ctx context.Context, dest interface{}, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *GormLookupRepository) delete(ctx context.Context, model interface{}, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
