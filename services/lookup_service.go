package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "pcstore/errors"
	"pcstore/models"
	repositories "pcstore/repository"

	"github.com/google/uuid"
)

// LookupService is the admin CRUD over the compatibility vocabularies.
// Deletion is blocked while any component still embeds the value, so
// denormalized copies never dangle.
type LookupService struct {
	lookups    repositories.LookupRepository
	components repositories.ComponentRepository
}

// NewLookupService creates a new instance of LookupService
func NewLookupService(lookups repositories.LookupRepository, components repositories.ComponentRepository) *LookupService {
	return &LookupService{lookups: lookups, components: components}
}

func (s *LookupService) ListSockets(ctx context.Context) ([]models.Socket, error) {
	return s.lookups.FindSockets(ctx)
}

func (s *LookupService) CreateSocket(ctx context.Context, name, brand string) (*models.Socket, error) {
	if name == "" {
		return nil, apperrors.Validation("socket name is required")
	}
	socket := &models.Socket{ID: uuid.NewString(), Name: name, Brand: brand}
	if err := s.lookups.CreateSocket(ctx, socket); err != nil {
		return nil, err
	}
	return socket, nil
}

func (s *LookupService) DeleteSocket(ctx context.Context, id string) error {
	if err := s.ensureUnreferenced(ctx, id); err != nil {
		return err
	}
	return s.mapNotFound(s.lookups.DeleteSocket(ctx, id), "socket", id)
}

func (s *LookupService) ListRamTypes(ctx context.Context) ([]models.RamType, error) {
	return s.lookups.FindRamTypes(ctx)
}

func (s *LookupService) CreateRamType(ctx context.Context, name string) (*models.RamType, error) {
	if name == "" {
		return nil, apperrors.Validation("ram type name is required")
	}
	ramType := &models.RamType{ID: uuid.NewString(), Name: name}
	if err := s.lookups.CreateRamType(ctx, ramType); err != nil {
		return nil, err
	}
	return ramType, nil
}

func (s *LookupService) DeleteRamType(ctx context.Context, id string) error {
	if err := s.ensureUnreferenced(ctx, id); err != nil {
		return err
	}
	return s.mapNotFound(s.lookups.DeleteRamType(ctx, id), "ram type", id)
}

func (s *LookupService) ListFormFactors(ctx context.Context, kind models.FormFactorKind) ([]models.FormFactor, error) {
	return s.lookups.FindFormFactors(ctx, kind)
}

func (s *LookupService) CreateFormFactor(ctx context.Context, name string, kind models.FormFactorKind) (*models.FormFactor, error) {
	if name == "" {
		return nil, apperrors.Validation("form factor name is required")
	}
	switch kind {
	case models.FormFactorMotherboard, models.FormFactorPsu, models.FormFactorStorage:
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown form factor kind %s", kind))
	}
	formFactor := &models.FormFactor{ID: uuid.NewString(), Name: name, Kind: kind}
	if err := s.lookups.CreateFormFactor(ctx, formFactor); err != nil {
		return nil, err
	}
	return formFactor, nil
}

func (s *LookupService) DeleteFormFactor(ctx context.Context, id string) error {
	if err := s.ensureUnreferenced(ctx, id); err != nil {
		return err
	}
	return s.mapNotFound(s.lookups.DeleteFormFactor(ctx, id), "form factor", id)
}

func (s *LookupService) ListStorageInterfaces(ctx context.Context) ([]models.StorageInterface, error) {
	return s.lookups.FindStorageInterfaces(ctx)
}

func (s *LookupService) CreateStorageInterface(ctx context.Context, name string) (*models.StorageInterface, error) {
	if name == "" {
		return nil, apperrors.Validation("storage interface name is required")
	}
	iface := &models.StorageInterface{ID: uuid.NewString(), Name: name}
	if err := s.lookups.CreateStorageInterface(ctx, iface); err != nil {
		return nil, err
	}
	return iface, nil
}

func (s *LookupService) DeleteStorageInterface(ctx context.Context, id string) error {
	if err := s.ensureUnreferenced(ctx, id); err != nil {
		return err
	}
	return s.mapNotFound(s.lookups.DeleteStorageInterface(ctx, id), "storage interface", id)
}

func (s *LookupService) ensureUnreferenced(ctx context.Context, lookupID string) error {
	count, err := s.components.CountReferencingLookup(ctx, lookupID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"lookup value is referenced by %d components", count))
	}
	return nil
}

func (s *LookupService) mapNotFound(err error, kind, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(fmt.Sprintf("%s %s not found", kind, id))
	}
	return err
}
