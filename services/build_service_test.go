package services

import (
	"context"
	"net/http"
	"testing"

	"pcstore/models"

	"github.com/stretchr/testify/assert"
)

func newBuildServiceFixture() (*BuildService, *fakeBuildRepo, *fakeComponentRepo) {
	builds := newFakeBuildRepo()
	components := newFakeComponentRepo()
	svc := NewBuildService(builds, components, NewCompatibilityService(testInterfaceIndex()))
	return svc, builds, components
}

func catalogComponent(id string, kind models.ComponentKind) models.Component {
	return models.Component{ID: id, Kind: kind, Mpn: "MPN-" + id, Name: id, IsActive: true}
}

func TestCreateBuild(t *testing.T) {
	t.Run("saves a build with valid references", func(t *testing.T) {
		svc, builds, components := newBuildServiceFixture()
		components.add(catalogComponent("cpu-1", models.KindCpu))
		components.add(catalogComponent("ram-1", models.KindRamKit))

		build, err := svc.CreateBuild(context.Background(), "user-1", models.BuildRequest{
			Name:    "My Rig",
			CpuID:   "cpu-1",
			RamKits: models.PartRefs{{ComponentID: "ram-1", Quantity: 2}},
		})

		assert.NoError(t, err)
		assert.NotEmpty(t, build.ID)
		assert.Equal(t, "user-1", build.UserID)
		assert.Contains(t, builds.builds, build.ID)
	})

	t.Run("an empty build saves fine", func(t *testing.T) {
		svc, _, _ := newBuildServiceFixture()

		build, err := svc.CreateBuild(context.Background(), "user-1", models.BuildRequest{Name: "Empty"})

		assert.NoError(t, err)
		assert.Empty(t, build.CpuID)
	})

	t.Run("missing reference is not found", func(t *testing.T) {
		svc, _, _ := newBuildServiceFixture()

		_, err := svc.CreateBuild(context.Background(), "user-1", models.BuildRequest{
			Name: "Bad", CpuID: "ghost",
		})

		assertAppError(t, err, http.StatusNotFound)
	})

	t.Run("wrong kind in a slot is a validation error", func(t *testing.T) {
		svc, _, components := newBuildServiceFixture()
		components.add(catalogComponent("gpu-1", models.KindGpu))

		_, err := svc.CreateBuild(context.Background(), "user-1", models.BuildRequest{
			Name: "Bad", CpuID: "gpu-1",
		})

		assertAppError(t, err, http.StatusBadRequest)
	})
}

func TestUpdateBuild(t *testing.T) {
	svc, builds, components := newBuildServiceFixture()
	components.add(catalogComponent("cpu-1", models.KindCpu))
	components.add(catalogComponent("cpu-2", models.KindCpu))
	builds.builds["build-1"] = models.ComputerBuild{
		ID: "build-1", UserID: "user-1", Name: "My Rig", CpuID: "cpu-1",
	}

	t.Run("replaces the selection", func(t *testing.T) {
		build, err := svc.UpdateBuild(context.Background(), "user-1", "build-1", models.BuildRequest{
			Name: "My Rig v2", CpuID: "cpu-2",
		})

		assert.NoError(t, err)
		assert.Equal(t, "cpu-2", build.CpuID)
		assert.Equal(t, "My Rig v2", build.Name)
	})

	t.Run("another user's build is forbidden", func(t *testing.T) {
		_, err := svc.UpdateBuild(context.Background(), "user-2", "build-1", models.BuildRequest{
			Name: "Theft", CpuID: "cpu-2",
		})

		assertAppError(t, err, http.StatusForbidden)
	})
}

func TestDeleteBuild(t *testing.T) {
	svc, builds, _ := newBuildServiceFixture()
	builds.builds["build-1"] = models.ComputerBuild{ID: "build-1", UserID: "user-1", Name: "My Rig"}

	assert.NoError(t, svc.DeleteBuild(context.Background(), "user-1", "build-1"))
	assert.NotContains(t, builds.builds, "build-1")

	err := svc.DeleteBuild(context.Background(), "user-1", "build-1")
	assertAppError(t, err, http.StatusNotFound)
}

func TestCheckCompatibility_ResolvesAndRuns(t *testing.T) {
	svc, builds, components := newBuildServiceFixture()

	cpu := testCpu()
	mobo := testMotherboard()
	components.add(*cpu)
	components.add(*mobo)
	builds.builds["build-1"] = models.ComputerBuild{
		ID: "build-1", UserID: "user-1", Name: "Partial",
		CpuID: cpu.ID, MotherboardID: mobo.ID,
	}

	result, err := svc.CheckCompatibility(context.Background(), "user-1", "build-1")

	assert.NoError(t, err)
	// PSU, case and RAM are missing, so the guard reports three errors.
	assert.False(t, result.IsCompatible)
	assert.Len(t, result.Errors, 3)
}

func TestResolve_QuantitiesSurvive(t *testing.T) {
	svc, _, components := newBuildServiceFixture()
	components.add(catalogComponent("ram-1", models.KindRamKit))

	resolved, err := svc.Resolve(context.Background(), &models.ComputerBuild{
		ID: "build-1", UserID: "user-1", Name: "RAM only",
		RamKits: models.PartRefs{{ComponentID: "ram-1", Quantity: 2}},
	})

	assert.NoError(t, err)
	assert.Len(t, resolved.RamKits, 1)
	assert.Equal(t, 2, resolved.RamKits[0].Quantity)
	assert.Equal(t, "ram-1", resolved.RamKits[0].Component.ID)
}
