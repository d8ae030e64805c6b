package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pcstore/aws"
	apperrors "pcstore/errors"
	"pcstore/logger"
	"pcstore/models"
	repositories "pcstore/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ComponentService is the admin side of the catalog: component CRUD
// with lookup resolution, images on S3, and the stock/price ledger.
type ComponentService struct {
	components repositories.ComponentRepository
	inventory  repositories.InventoryRepository
	lookups    repositories.LookupRepository
	builds     repositories.BuildRepository
	files      aws.FileStorage
}

// NewComponentService creates a new instance of ComponentService
func NewComponentService(
	components repositories.ComponentRepository,
	inventory repositories.InventoryRepository,
	lookups repositories.LookupRepository,
	builds repositories.BuildRepository,
	files aws.FileStorage,
) *ComponentService {
	return &ComponentService{
		components: components,
		inventory:  inventory,
		lookups:    lookups,
		builds:     builds,
		files:      files,
	}
}

// CreateComponent resolves the lookup references, stores the component
// and opens its inventory row. A component created with zero stock
// starts inactive.
func (s *ComponentService) CreateComponent(ctx context.Context, req models.ComponentRequest) (*models.ComponentWithStock, error) {
	if req.Price.IsNegative() {
		return nil, apperrors.Validation("price cannot be negative")
	}

	attrs, err := s.resolveAttrs(ctx, req)
	if err != nil {
		return nil, err
	}

	component := &models.Component{
		ID:          uuid.NewString(),
		Kind:        req.Kind,
		Mpn:         req.Mpn,
		IsActive:    req.Quantity > 0,
		Name:        req.Name,
		Description: req.Description,
		Attrs:       *attrs,
	}
	if err := s.components.Create(ctx, component); err != nil {
		return nil, err
	}

	inventory := &models.Inventory{
		ID:          uuid.NewString(),
		ComponentID: component.ID,
		Quantity:    req.Quantity,
		Price:       req.Price,
	}
	if err := s.inventory.Create(ctx, inventory); err != nil {
		return nil, err
	}

	return &models.ComponentWithStock{
		Component: *component,
		Price:     inventory.Price,
		Quantity:  inventory.Quantity,
	}, nil
}

// UpdateComponent re-resolves the spec and updates the catalog entry
// and its price. Stock changes go through AdjustStock, not here.
func (s *ComponentService) UpdateComponent(ctx context.Context, id string, req models.ComponentRequest) (*models.ComponentWithStock, error) {
	component, err := s.loadComponent(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Kind != component.Kind {
		return nil, apperrors.Validation("component kind cannot change")
	}
	if req.Price.IsNegative() {
		return nil, apperrors.Validation("price cannot be negative")
	}

	attrs, err := s.resolveAttrs(ctx, req)
	if err != nil {
		return nil, err
	}

	component.Mpn = req.Mpn
	component.Name = req.Name
	component.Description = req.Description
	component.Attrs = *attrs
	if err := s.components.Update(ctx, component); err != nil {
		return nil, err
	}

	if err := s.inventory.UpdatePrice(ctx, id, req.Price); err != nil {
		return nil, err
	}

	inventory, err := s.inventory.FindByComponentID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ComponentWithStock{
		Component: *component,
		Price:     inventory.Price,
		Quantity:  inventory.Quantity,
	}, nil
}

// DeleteComponent removes the component, its inventory row and its
// image. Deletion is blocked while any build references the part.
func (s *ComponentService) DeleteComponent(ctx context.Context, id string) error {
	component, err := s.loadComponent(ctx, id)
	if err != nil {
		return err
	}

	references, err := s.builds.CountReferencingComponent(ctx, id)
	if err != nil {
		return err
	}
	if references > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"component %s is used by %d builds", component.Name, references))
	}

	if component.ImageURL != "" {
		if key := objectKeyFromURL(component.ImageURL); key != "" {
			if err := s.files.Delete(ctx, key); err != nil {
				logger.Warn(ctx, "failed to delete component image",
					zap.String("component_id", id), zap.Error(err))
			}
		}
	}

	if err := s.inventory.DeleteByComponentID(ctx, id); err != nil {
		return err
	}
	return s.components.Delete(ctx, id)
}

// SetActive shows or hides the component on the storefront.
func (s *ComponentService) SetActive(ctx context.Context, id string, active bool) error {
	err := s.components.SetActive(ctx, id, active)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(fmt.Sprintf("component %s not found", id))
	}
	return err
}

// UploadImage stores a new product image and deletes the replaced one.
func (s *ComponentService) UploadImage(ctx context.Context, id, contentType string, file io.Reader) (*models.Component, error) {
	component, err := s.loadComponent(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("images/components/%s/%s", id, uuid.NewString())
	imageURL, err := s.files.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, err
	}

	if component.ImageURL != "" {
		if oldKey := objectKeyFromURL(component.ImageURL); oldKey != "" {
			if err := s.files.Delete(ctx, oldKey); err != nil {
				logger.Warn(ctx, "failed to delete replaced image",
					zap.String("component_id", id), zap.String("key", oldKey), zap.Error(err))
			}
		}
	}

	component.ImageURL = imageURL
	if err := s.components.Update(ctx, component); err != nil {
		return nil, err
	}
	return component, nil
}

// GetComponent returns one component with its stock and price.
func (s *ComponentService) GetComponent(ctx context.Context, id string) (*models.ComponentWithStock, error) {
	component, err := s.loadComponent(ctx, id)
	if err != nil {
		return nil, err
	}
	inventory, err := s.inventory.FindByComponentID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.DataInconsistency(fmt.Sprintf(
				"component %s has no inventory record", id))
		}
		return nil, err
	}
	return &models.ComponentWithStock{
		Component: *component,
		Price:     inventory.Price,
		Quantity:  inventory.Quantity,
	}, nil
}

// ListComponents returns a catalog page joined with stock and price.
func (s *ComponentService) ListComponents(ctx context.Context, filter repositories.ComponentFilter, page, limit int) ([]models.ComponentWithStock, int64, error) {
	components, total, err := s.components.FindAll(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(components))
	for _, component := range components {
		ids = append(ids, component.ID)
	}
	inventories, err := s.inventory.FindByComponentIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byComponent := make(map[string]models.Inventory, len(inventories))
	for _, inv := range inventories {
		byComponent[inv.ComponentID] = inv
	}

	result := make([]models.ComponentWithStock, 0, len(components))
	for _, component := range components {
		inv := byComponent[component.ID]
		result = append(result, models.ComponentWithStock{
			Component: component,
			Price:     inv.Price,
			Quantity:  inv.Quantity,
		})
	}
	return result, total, nil
}

// AdjustStock applies an admin stock delta. The component is hidden
// when stock hits zero and shown again when it returns.
func (s *ComponentService) AdjustStock(ctx context.Context, id string, delta int) (*models.Inventory, error) {
	quantity, err := s.inventory.AdjustQuantity(ctx, id, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return nil, apperrors.Conflict("adjustment would take stock below zero")
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("component %s not found", id))
		}
		return nil, err
	}

	if err := s.components.SetActive(ctx, id, quantity > 0); err != nil {
		logger.Warn(ctx, "failed to sync component activation",
			zap.String("component_id", id), zap.Error(err))
	}

	return s.inventory.FindByComponentID(ctx, id)
}

// SetPrice updates the ledger price for a component.
func (s *ComponentService) SetPrice(ctx context.Context, id string, price decimal.Decimal) error {
	if price.IsNegative() {
		return apperrors.Validation("price cannot be negative")
	}
	err := s.inventory.UpdatePrice(ctx, id, price)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(fmt.Sprintf("component %s not found", id))
	}
	return err
}

func (s *ComponentService) loadComponent(ctx context.Context, id string) (*models.Component, error) {
	component, err := s.components.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("component %s not found", id))
		}
		return nil, err
	}
	return component, nil
}

// resolveAttrs turns lookup ids into the denormalized copies stored on
// the component, enforcing that the spec variant matches the kind and
// that every form factor belongs to the right slot vocabulary.
func (s *ComponentService) resolveAttrs(ctx context.Context, req models.ComponentRequest) (*models.ComponentAttrs, error) {
	attrs := &models.ComponentAttrs{}

	switch req.Kind {
	case models.KindCpu:
		if req.Cpu == nil {
			return nil, apperrors.Validation("cpu spec is required for kind cpu")
		}
		socket, err := s.socket(ctx, req.Cpu.SocketID)
		if err != nil {
			return nil, err
		}
		attrs.Cpu = &models.CpuSpec{Socket: *socket, Wattage: req.Cpu.Wattage}

	case models.KindMotherboard:
		if req.Motherboard == nil {
			return nil, apperrors.Validation("motherboard spec is required for kind motherboard")
		}
		socket, err := s.socket(ctx, req.Motherboard.SocketID)
		if err != nil {
			return nil, err
		}
		ramType, err := s.ramType(ctx, req.Motherboard.RamTypeID)
		if err != nil {
			return nil, err
		}
		formFactor, err := s.formFactor(ctx, req.Motherboard.FormFactorID, models.FormFactorMotherboard)
		if err != nil {
			return nil, err
		}
		attrs.Motherboard = &models.MotherboardSpec{
			Socket:           *socket,
			RamType:          *ramType,
			FormFactor:       *formFactor,
			MaxRamGb:         req.Motherboard.MaxRamGb,
			RamSlotCount:     req.Motherboard.RamSlotCount,
			PcieX16SlotCount: req.Motherboard.PcieX16SlotCount,
			M2SlotCount:      req.Motherboard.M2SlotCount,
			SataPortCount:    req.Motherboard.SataPortCount,
			Wattage:          req.Motherboard.Wattage,
		}

	case models.KindRamKit:
		if req.RamKit == nil {
			return nil, apperrors.Validation("ram spec is required for kind ram")
		}
		ramType, err := s.ramType(ctx, req.RamKit.RamTypeID)
		if err != nil {
			return nil, err
		}
		attrs.RamKit = &models.RamKitSpec{
			RamType:     *ramType,
			SizeGb:      req.RamKit.SizeGb,
			ModuleCount: req.RamKit.ModuleCount,
			Wattage:     req.RamKit.Wattage,
		}

	case models.KindGpu:
		if req.Gpu == nil {
			return nil, apperrors.Validation("gpu spec is required for kind gpu")
		}
		attrs.Gpu = &models.GpuSpec{Wattage: req.Gpu.Wattage, LengthMm: req.Gpu.LengthMm}

	case models.KindPsu:
		if req.Psu == nil {
			return nil, apperrors.Validation("psu spec is required for kind psu")
		}
		spec := &models.PsuSpec{Wattage: req.Psu.Wattage}
		if req.Psu.FormFactorID != "" {
			formFactor, err := s.formFactor(ctx, req.Psu.FormFactorID, models.FormFactorPsu)
			if err != nil {
				return nil, err
			}
			spec.FormFactor = formFactor
		}
		attrs.Psu = spec

	case models.KindCase:
		if req.Case == nil {
			return nil, apperrors.Validation("case spec is required for kind case")
		}
		moboFFs, err := s.formFactors(ctx, req.Case.SupportedFormFactorIDs, models.FormFactorMotherboard)
		if err != nil {
			return nil, err
		}
		psuFFs, err := s.formFactors(ctx, req.Case.SupportedPsuFormFactorIDs, models.FormFactorPsu)
		if err != nil {
			return nil, err
		}
		attrs.Case = &models.CaseSpec{
			SupportedFormFactors:     moboFFs,
			SupportedPsuFormFactors:  psuFFs,
			MaxGpuLengthMm:           req.Case.MaxGpuLengthMm,
			MaxCoolerHeightMm:        req.Case.MaxCoolerHeightMm,
			Bays25Inch:               req.Case.Bays25Inch,
			Bays35Inch:               req.Case.Bays35Inch,
			SupportedRadiatorSizesMm: req.Case.SupportedRadiatorSizesMm,
		}

	case models.KindCooler:
		if req.Cooler == nil {
			return nil, apperrors.Validation("cooler spec is required for kind cooler")
		}
		sockets := make([]models.Socket, 0, len(req.Cooler.SupportedSocketIDs))
		for _, socketID := range req.Cooler.SupportedSocketIDs {
			socket, err := s.socket(ctx, socketID)
			if err != nil {
				return nil, err
			}
			sockets = append(sockets, *socket)
		}
		attrs.Cooler = &models.CoolerSpec{
			SupportedSockets: sockets,
			HeightMm:         req.Cooler.HeightMm,
			RadiatorSizeMm:   req.Cooler.RadiatorSizeMm,
			Wattage:          req.Cooler.Wattage,
		}

	case models.KindStorage:
		if req.Storage == nil {
			return nil, apperrors.Validation("storage spec is required for kind storage")
		}
		iface, err := s.lookups.FindStorageInterfaceByID(ctx, req.Storage.InterfaceID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperrors.Validation(fmt.Sprintf(
					"storage interface %s not found", req.Storage.InterfaceID))
			}
			return nil, err
		}
		spec := &models.StorageSpec{Interface: *iface, CapacityGb: req.Storage.CapacityGb}
		if req.Storage.FormFactorID != "" {
			formFactor, err := s.formFactor(ctx, req.Storage.FormFactorID, models.FormFactorStorage)
			if err != nil {
				return nil, err
			}
			spec.FormFactor = formFactor
		}
		attrs.Storage = spec

	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown component kind %s", req.Kind))
	}

	return attrs, nil
}

func (s *ComponentService) socket(ctx context.Context, id string) (*models.Socket, error) {
	socket, err := s.lookups.FindSocketByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Validation(fmt.Sprintf("socket %s not found", id))
		}
		return nil, err
	}
	return socket, nil
}

func (s *ComponentService) ramType(ctx context.Context, id string) (*models.RamType, error) {
	ramType, err := s.lookups.FindRamTypeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Validation(fmt.Sprintf("ram type %s not found", id))
		}
		return nil, err
	}
	return ramType, nil
}

func (s *ComponentService) formFactor(ctx context.Context, id string, kind models.FormFactorKind) (*models.FormFactor, error) {
	formFactor, err := s.lookups.FindFormFactorByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Validation(fmt.Sprintf("form factor %s not found", id))
		}
		return nil, err
	}
	if formFactor.Kind != kind {
		return nil, apperrors.Validation(fmt.Sprintf(
			"form factor %s is a %s form factor, expected %s", formFactor.Name, formFactor.Kind, kind))
	}
	return formFactor, nil
}

func (s *ComponentService) formFactors(ctx context.Context, ids []string, kind models.FormFactorKind) ([]models.FormFactor, error) {
	out := make([]models.FormFactor, 0, len(ids))
	for _, id := range ids {
		formFactor, err := s.formFactor(ctx, id, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, *formFactor)
	}
	return out, nil
}
