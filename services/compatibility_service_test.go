package services

import (
	"testing"

	"pcstore/logger"
	"pcstore/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

var (
	socketAM5 = models.Socket{ID: "sock-am5", Name: "AM5", Brand: "AMD"}
	socketAM4 = models.Socket{ID: "sock-am4", Name: "AM4", Brand: "AMD"}

	ddr5 = models.RamType{ID: "ram-ddr5", Name: "DDR5"}
	ddr4 = models.RamType{ID: "ram-ddr4", Name: "DDR4"}

	ffATX    = models.FormFactor{ID: "ff-atx", Name: "ATX", Kind: models.FormFactorMotherboard}
	ffITX    = models.FormFactor{ID: "ff-itx", Name: "Mini-ITX", Kind: models.FormFactorMotherboard}
	ffATXPsu = models.FormFactor{ID: "ff-atx-psu", Name: "ATX", Kind: models.FormFactorPsu}
	ffSFXPsu = models.FormFactor{ID: "ff-sfx-psu", Name: "SFX", Kind: models.FormFactorPsu}
	ff35     = models.FormFactor{ID: "ff-35", Name: "3.5\"", Kind: models.FormFactorStorage}
	ff25     = models.FormFactor{ID: "ff-25", Name: "2.5\"", Kind: models.FormFactorStorage}

	ifaceNvme = models.StorageInterface{ID: "if-nvme", Name: "NVMe"}
	ifaceSata = models.StorageInterface{ID: "if-sata", Name: "SATA III"}
)

func testInterfaceIndex() StorageInterfaceIndex {
	return StorageInterfaceIndex{
		NvmeID:  ifaceNvme.ID,
		SataIDs: map[string]bool{ifaceSata.ID: true},
	}
}

func testCpu() *models.Component {
	return &models.Component{
		ID: "cpu-1", Kind: models.KindCpu, Name: "Ryzen 7 9700X",
		Attrs: models.ComponentAttrs{Cpu: &models.CpuSpec{Socket: socketAM5, Wattage: 105}},
	}
}

func testMotherboard() *models.Component {
	return &models.Component{
		ID: "mobo-1", Kind: models.KindMotherboard, Name: "B650 Tomahawk",
		Attrs: models.ComponentAttrs{Motherboard: &models.MotherboardSpec{
			Socket:           socketAM5,
			RamType:          ddr5,
			FormFactor:       ffATX,
			MaxRamGb:         128,
			RamSlotCount:     4,
			PcieX16SlotCount: 1,
			M2SlotCount:      2,
			SataPortCount:    4,
			Wattage:          30,
		}},
	}
}

func testRamKit() *models.Component {
	return &models.Component{
		ID: "ram-1", Kind: models.KindRamKit, Name: "Fury 32GB Kit",
		Attrs: models.ComponentAttrs{RamKit: &models.RamKitSpec{
			RamType: ddr5, SizeGb: 32, ModuleCount: 2, Wattage: 10,
		}},
	}
}

func testGpu() *models.Component {
	return &models.Component{
		ID: "gpu-1", Kind: models.KindGpu, Name: "RTX 4070 Super",
		Attrs: models.ComponentAttrs{Gpu: &models.GpuSpec{Wattage: 220, LengthMm: 300}},
	}
}

func testPsu() *models.Component {
	ff := ffATXPsu
	return &models.Component{
		ID: "psu-1", Kind: models.KindPsu, Name: "RM750e",
		Attrs: models.ComponentAttrs{Psu: &models.PsuSpec{Wattage: 750, FormFactor: &ff}},
	}
}

func testCase() *models.Component {
	return &models.Component{
		ID: "case-1", Kind: models.KindCase, Name: "Lancool 216",
		Attrs: models.ComponentAttrs{Case: &models.CaseSpec{
			SupportedFormFactors:     []models.FormFactor{ffATX, ffITX},
			SupportedPsuFormFactors:  []models.FormFactor{ffATXPsu},
			MaxGpuLengthMm:           360,
			MaxCoolerHeightMm:        170,
			Bays25Inch:               2,
			Bays35Inch:               2,
			SupportedRadiatorSizesMm: []int{240, 360},
		}},
	}
}

func testCooler() *models.Component {
	return &models.Component{
		ID: "cooler-1", Kind: models.KindCooler, Name: "Peerless Assassin",
		Attrs: models.ComponentAttrs{Cooler: &models.CoolerSpec{
			SupportedSockets: []models.Socket{socketAM5, socketAM4},
			HeightMm:         160,
			Wattage:          5,
		}},
	}
}

func testNvmeDrive() *models.Component {
	return &models.Component{
		ID: "ssd-1", Kind: models.KindStorage, Name: "SN850X 1TB",
		Attrs: models.ComponentAttrs{Storage: &models.StorageSpec{
			Interface: ifaceNvme, CapacityGb: 1000,
		}},
	}
}

func testSataDrive() *models.Component {
	ff := ff25
	return &models.Component{
		ID: "ssd-2", Kind: models.KindStorage, Name: "870 EVO 1TB",
		Attrs: models.ComponentAttrs{Storage: &models.StorageSpec{
			Interface: ifaceSata, CapacityGb: 1000, FormFactor: &ff,
		}},
	}
}

// validBuild draws 105+30+5+10+220+75 = 445W against a 750W PSU.
func validBuild() *models.ResolvedBuild {
	return &models.ResolvedBuild{
		ID:            "build-1",
		Cpu:           testCpu(),
		Motherboard:   testMotherboard(),
		Psu:           testPsu(),
		Case:          testCase(),
		Cooler:        testCooler(),
		RamKits:       []models.BuildPart{{Component: testRamKit(), Quantity: 1}},
		Gpus:          []models.BuildPart{{Component: testGpu(), Quantity: 1}},
		StorageDrives: []models.BuildPart{{Component: testNvmeDrive(), Quantity: 1}},
	}
}

func TestCheck_CompatibleBuild(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	result := svc.Check(validBuild())

	assert.True(t, result.IsCompatible)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 445, result.TotalWattage)
}

func TestCheck_MissingCriticalParts(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	t.Run("each missing part reports one error", func(t *testing.T) {
		build := validBuild()
		build.Cpu = nil
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Len(t, result.Errors, 1)
		assert.Equal(t, 0, result.TotalWattage)
	})

	t.Run("all critical parts missing", func(t *testing.T) {
		result := svc.Check(&models.ResolvedBuild{})

		assert.False(t, result.IsCompatible)
		assert.Len(t, result.Errors, 5)
		assert.Equal(t, 0, result.TotalWattage)
	})

	t.Run("no further rules run after guard", func(t *testing.T) {
		build := validBuild()
		build.Psu = nil
		build.Cooler = nil // would otherwise add a warning
		result := svc.Check(build)

		assert.Len(t, result.Errors, 1)
		assert.Empty(t, result.Warnings)
	})
}

func TestCheck_SocketMismatch(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	build := validBuild()
	build.Motherboard.Attrs.Motherboard.Socket = socketAM4

	result := svc.Check(build)

	assert.False(t, result.IsCompatible)
	assert.Contains(t, result.Errors[0], "socket")
	assert.Contains(t, result.Errors[0], "AM5")
	assert.Contains(t, result.Errors[0], "AM4")
}

func TestCheck_RamRules(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	t.Run("too many sticks", func(t *testing.T) {
		build := validBuild()
		build.RamKits = []models.BuildPart{{Component: testRamKit(), Quantity: 3}} // 6 sticks, 4 slots
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "slots")
	})

	t.Run("too much total size", func(t *testing.T) {
		build := validBuild()
		kit := testRamKit()
		kit.Attrs.RamKit.SizeGb = 96
		kit.Attrs.RamKit.ModuleCount = 2
		build.RamKits = []models.BuildPart{{Component: kit, Quantity: 2}} // 192GB, 128 max
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "maximum")
	})

	t.Run("type mismatch per kit", func(t *testing.T) {
		build := validBuild()
		kit := testRamKit()
		kit.Attrs.RamKit.RamType = ddr4
		build.RamKits = append(build.RamKits, models.BuildPart{Component: kit, Quantity: 1})
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "DDR4")
	})
}

func TestCheck_FormFactorRules(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	t.Run("case rejects motherboard form factor", func(t *testing.T) {
		build := validBuild()
		build.Case.Attrs.Case.SupportedFormFactors = []models.FormFactor{ffITX}
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "motherboard")
	})

	t.Run("case rejects psu form factor", func(t *testing.T) {
		build := validBuild()
		build.Case.Attrs.Case.SupportedPsuFormFactors = []models.FormFactor{ffSFXPsu}
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "power supplies")
	})

	t.Run("psu without form factor is skipped, not an error", func(t *testing.T) {
		build := validBuild()
		build.Psu.Attrs.Psu.FormFactor = nil
		build.Case.Attrs.Case.SupportedPsuFormFactors = []models.FormFactor{ffSFXPsu}
		result := svc.Check(build)

		assert.True(t, result.IsCompatible)
	})
}

func TestCheck_GpuRules(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	t.Run("more gpus than pcie slots", func(t *testing.T) {
		build := validBuild()
		build.Gpus = []models.BuildPart{{Component: testGpu(), Quantity: 2}} // 1 slot
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "PCIe")
	})

	t.Run("gpu too long for case", func(t *testing.T) {
		build := validBuild()
		build.Gpus[0].Component.Attrs.Gpu.LengthMm = 400
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "long")
	})
}

func TestCheck_CoolerRules(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	t.Run("missing cooler is a warning only", func(t *testing.T) {
		build := validBuild()
		build.Cooler = nil
		result := svc.Check(build)

		assert.True(t, result.IsCompatible)
		assert.Len(t, result.Warnings, 1)
		assert.Equal(t, 440, result.TotalWattage)
	})

	t.Run("cooler does not fit socket", func(t *testing.T) {
		build := validBuild()
		build.Cooler.Attrs.Cooler.SupportedSockets = []models.Socket{socketAM4}
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "socket")
	})

	t.Run("air cooler too tall", func(t *testing.T) {
		build := validBuild()
		build.Cooler.Attrs.Cooler.HeightMm = 180
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "tall")
	})

	t.Run("liquid cooler radiator unsupported plus clearance warning", func(t *testing.T) {
		build := validBuild()
		build.Cooler.Attrs.Cooler.RadiatorSizeMm = 280
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "radiator")
		assert.Len(t, result.Warnings, 1)
	})

	t.Run("supported radiator still warns about clearance", func(t *testing.T) {
		build := validBuild()
		build.Cooler.Attrs.Cooler.RadiatorSizeMm = 360
		result := svc.Check(build)

		assert.True(t, result.IsCompatible)
		assert.Len(t, result.Warnings, 1)
	})
}

func TestCheck_StorageRules(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	t.Run("no drives warns about missing OS disk", func(t *testing.T) {
		build := validBuild()
		build.StorageDrives = nil
		result := svc.Check(build)

		assert.True(t, result.IsCompatible)
		assert.Len(t, result.Warnings, 1)
	})

	t.Run("too many nvme drives", func(t *testing.T) {
		build := validBuild()
		build.StorageDrives = []models.BuildPart{{Component: testNvmeDrive(), Quantity: 3}} // 2 m2 slots
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "M.2")
	})

	t.Run("too many sata drives", func(t *testing.T) {
		build := validBuild()
		build.StorageDrives = []models.BuildPart{{Component: testSataDrive(), Quantity: 5}} // 4 ports
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "SATA")
	})

	t.Run("mixing nvme and sata warns", func(t *testing.T) {
		build := validBuild()
		build.StorageDrives = []models.BuildPart{
			{Component: testNvmeDrive(), Quantity: 1},
			{Component: testSataDrive(), Quantity: 1},
		}
		result := svc.Check(build)

		assert.True(t, result.IsCompatible)
		assert.Len(t, result.Warnings, 1)
	})
}

func TestCheck_DriveBays(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	t.Run("too many 2.5 inch drives for the bays", func(t *testing.T) {
		build := validBuild()
		build.StorageDrives = []models.BuildPart{{Component: testSataDrive(), Quantity: 3}} // 2 bays, 4 ports
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "bays")
	})

	t.Run("3.5 inch drives counted separately", func(t *testing.T) {
		build := validBuild()
		hdd := testSataDrive()
		ff := ff35
		hdd.Attrs.Storage.FormFactor = &ff
		build.StorageDrives = []models.BuildPart{{Component: hdd, Quantity: 3}}
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Contains(t, result.Errors[0], "3.5")
	})

	t.Run("m2 drives need no bay", func(t *testing.T) {
		build := validBuild()
		build.StorageDrives = []models.BuildPart{{Component: testNvmeDrive(), Quantity: 2}}
		result := svc.Check(build)

		assert.True(t, result.IsCompatible)
	})
}

func TestCheck_Wattage(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	t.Run("psu below estimated draw is an error", func(t *testing.T) {
		build := validBuild()
		build.Psu.Attrs.Psu.Wattage = 444 // draw is 445
		result := svc.Check(build)

		assert.False(t, result.IsCompatible)
		assert.Equal(t, 445, result.TotalWattage)
	})

	t.Run("psu at exactly the draw warns about headroom", func(t *testing.T) {
		build := validBuild()
		build.Psu.Attrs.Psu.Wattage = 445
		result := svc.Check(build)

		assert.True(t, result.IsCompatible)
		assert.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "headroom")
	})

	t.Run("quantities multiply wattage", func(t *testing.T) {
		build := validBuild()
		build.Motherboard.Attrs.Motherboard.PcieX16SlotCount = 2
		build.Gpus = []models.BuildPart{{Component: testGpu(), Quantity: 2}}
		result := svc.Check(build)

		// 445 + one more 220W GPU
		assert.Equal(t, 665, result.TotalWattage)
	})
}

func TestCheck_IsPure(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	build := validBuild()
	build.Motherboard.Attrs.Motherboard.Socket = socketAM4 // force an error
	build.Cooler = nil                                     // force a warning

	first := svc.Check(build)
	second := svc.Check(build)

	assert.Equal(t, first, second)
}

func TestCheck_CollectsAllProblemsInOnePass(t *testing.T) {
	svc := NewCompatibilityService(testInterfaceIndex())

	build := validBuild()
	build.Motherboard.Attrs.Motherboard.Socket = socketAM4
	build.Psu.Attrs.Psu.Wattage = 100
	build.Gpus[0].Component.Attrs.Gpu.LengthMm = 400

	result := svc.Check(build)

	assert.False(t, result.IsCompatible)
	assert.Len(t, result.Errors, 3)
}
