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

// BuildService manages saved builds and feeds resolved builds into
// the compatibility engine.
type BuildService struct {
	builds     repositories.BuildRepository
	components repositories.ComponentRepository
	compat     *CompatibilityService
}

// NewBuildService creates a new instance of BuildService
func NewBuildService(
	builds repositories.BuildRepository,
	components repositories.ComponentRepository,
	compat *CompatibilityService,
) *BuildService {
	return &BuildService{
		builds:     builds,
		components: components,
		compat:     compat,
	}
}

// CreateBuild validates every referenced component and saves the build.
func (s *BuildService) CreateBuild(ctx context.Context, userID string, req models.BuildRequest) (*models.ComputerBuild, error) {
	build := &models.ComputerBuild{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		CpuID:         req.CpuID,
		MotherboardID: req.MotherboardID,
		PsuID:         req.PsuID,
		CaseID:        req.CaseID,
		CoolerID:      req.CoolerID,
		RamKits:       req.RamKits,
		Gpus:          req.Gpus,
		StorageDrives: req.StorageDrives,
	}

	if err := s.validateSlots(ctx, build); err != nil {
		return nil, err
	}
	if err := s.builds.Create(ctx, build); err != nil {
		return nil, err
	}
	return build, nil
}

// UpdateBuild replaces the part selection of an owned build.
func (s *BuildService) UpdateBuild(ctx context.Context, userID, buildID string, req models.BuildRequest) (*models.ComputerBuild, error) {
	build, err := s.loadOwnedBuild(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}

	build.Name = req.Name
	build.CpuID = req.CpuID
	build.MotherboardID = req.MotherboardID
	build.PsuID = req.PsuID
	build.CaseID = req.CaseID
	build.CoolerID = req.CoolerID
	build.RamKits = req.RamKits
	build.Gpus = req.Gpus
	build.StorageDrives = req.StorageDrives

	if err := s.validateSlots(ctx, build); err != nil {
		return nil, err
	}
	if err := s.builds.Update(ctx, build); err != nil {
		return nil, err
	}
	return build, nil
}

func (s *BuildService) GetBuild(ctx context.Context, userID, buildID string) (*models.ComputerBuild, error) {
	return s.loadOwnedBuild(ctx, userID, buildID)
}

func (s *BuildService) ListBuilds(ctx context.Context, userID string, page, limit int) ([]models.ComputerBuild, int64, error) {
	return s.builds.FindByUserID(ctx, userID, page, limit)
}

func (s *BuildService) DeleteBuild(ctx context.Context, userID, buildID string) error {
	if _, err := s.loadOwnedBuild(ctx, userID, buildID); err != nil {
		return err
	}
	return s.builds.Delete(ctx, buildID)
}

// CheckCompatibility resolves the owned build and runs the rule set.
func (s *BuildService) CheckCompatibility(ctx context.Context, userID, buildID string) (*models.CompatibilityResult, error) {
	build, err := s.loadOwnedBuild(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}
	resolved, err := s.Resolve(ctx, build)
	if err != nil {
		return nil, err
	}
	result := s.compat.Check(resolved)
	return &result, nil
}

// Resolve fetches every referenced component and assembles the
// in-memory aggregate the engine and order snapshotting consume.
func (s *BuildService) Resolve(ctx context.Context, build *models.ComputerBuild) (*models.ResolvedBuild, error) {
	refs := buildComponentRefs(build)
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ComponentID)
	}

	components, err := s.components.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Component, len(components))
	for i := range components {
		byID[components[i].ID] = &components[i]
	}

	resolved := &models.ResolvedBuild{
		ID:     build.ID,
		UserID: build.UserID,
		Name:   build.Name,
	}

	single := []struct {
		id   string
		kind models.ComponentKind
		dest **models.Component
	}{
		{build.CpuID, models.KindCpu, &resolved.Cpu},
		{build.MotherboardID, models.KindMotherboard, &resolved.Motherboard},
		{build.PsuID, models.KindPsu, &resolved.Psu},
		{build.CaseID, models.KindCase, &resolved.Case},
		{build.CoolerID, models.KindCooler, &resolved.Cooler},
	}
	for _, slot := range single {
		if slot.id == "" {
			continue
		}
		component, err := resolveRef(byID, slot.id, slot.kind)
		if err != nil {
			return nil, err
		}
		*slot.dest = component
	}

	lists := []struct {
		refs models.PartRefs
		kind models.ComponentKind
		dest *[]models.BuildPart
	}{
		{build.RamKits, models.KindRamKit, &resolved.RamKits},
		{build.Gpus, models.KindGpu, &resolved.Gpus},
		{build.StorageDrives, models.KindStorage, &resolved.StorageDrives},
	}
	for _, list := range lists {
		for _, ref := range list.refs {
			component, err := resolveRef(byID, ref.ComponentID, list.kind)
			if err != nil {
				return nil, err
			}
			*list.dest = append(*list.dest, models.BuildPart{Component: component, Quantity: ref.Quantity})
		}
	}

	return resolved, nil
}

func resolveRef(byID map[string]*models.Component, id string, kind models.ComponentKind) (*models.Component, error) {
	component, ok := byID[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("component %s not found", id))
	}
	if component.Kind != kind {
		return nil, apperrors.Validation(fmt.Sprintf(
			"component %s is a %s, expected a %s", id, component.Kind, kind))
	}
	return component, nil
}

// validateSlots checks that every referenced component exists and has
// the kind its slot demands. Resolve does the same work, so a build
// that saves will also resolve.
func (s *BuildService) validateSlots(ctx context.Context, build *models.ComputerBuild) error {
	_, err := s.Resolve(ctx, build)
	return err
}

func (s *BuildService) loadOwnedBuild(ctx context.Context, userID, buildID string) (*models.ComputerBuild, error) {
	build, err := s.builds.FindByID(ctx, buildID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("build %s not found", buildID))
		}
		return nil, err
	}
	if build.UserID != userID {
		return nil, apperrors.Forbidden("build belongs to another user")
	}
	return build, nil
}
