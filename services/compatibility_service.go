package services

import (
	"context"
	"fmt"
	"strings"

	"pcstore/logger"
	"pcstore/models"
	repositories "pcstore/repository"

	"go.uber.org/zap"
)

// Fixed allowance for fans, USB devices and drives when estimating
// draw.
const peripheralWattage = 75

// psuHeadroomFactor is the recommended margin over estimated draw.
const psuHeadroomFactor = 1.25

// StorageInterfaceIndex classifies storage interfaces into the NVMe id
// and the SATA id set. It is resolved once at startup from the lookup
// catalog and treated as read-only afterwards, which keeps the check
// itself free of database calls.
type StorageInterfaceIndex struct {
	NvmeID  string
	SataIDs map[string]bool
}

// BuildStorageInterfaceIndex resolves the index by name: the interface
// named exactly "NVMe" and every interface whose name contains "SATA"
// case-insensitively (SATA III, SATA 6Gb/s and friends).
func BuildStorageInterfaceIndex(ctx context.Context, lookups repositories.LookupRepository) (StorageInterfaceIndex, error) {
	interfaces, err := lookups.FindStorageInterfaces(ctx)
	if err != nil {
		return StorageInterfaceIndex{}, err
	}

	idx := StorageInterfaceIndex{SataIDs: make(map[string]bool)}
	for _, iface := range interfaces {
		if iface.Name == "NVMe" {
			idx.NvmeID = iface.ID
		}
		if strings.Contains(strings.ToLower(iface.Name), "sata") {
			idx.SataIDs[iface.ID] = true
		}
	}
	return idx, nil
}

// CompatibilityService runs the rule set over a resolved build. Check
// has no side effects; two calls on the same build give identical
// results.
type CompatibilityService struct {
	interfaces StorageInterfaceIndex
}

// NewCompatibilityService creates a new instance of CompatibilityService
func NewCompatibilityService(interfaces StorageInterfaceIndex) *CompatibilityService {
	return &CompatibilityService{interfaces: interfaces}
}

// Check validates the build and estimates its power draw. A build
// missing any critical part fails fast with one error per missing part
// and no further rules run. Otherwise every rule runs even when
// earlier ones fail, so a single pass surfaces every problem.
func (s *CompatibilityService) Check(build *models.ResolvedBuild) models.CompatibilityResult {
	result := models.CompatibilityResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	s.checkCriticalParts(build, &result)
	if len(result.Errors) > 0 {
		return result
	}

	s.checkSocket(build, &result)
	s.checkRam(build, &result)
	s.checkMotherboardFormFactor(build, &result)
	s.checkPsuFormFactor(build, &result)
	s.checkGpus(build, &result)
	s.checkCooler(build, &result)
	s.checkStorageInterfaces(build, &result)
	s.checkDriveBays(build, &result)
	s.checkWattage(build, &result)

	result.IsCompatible = len(result.Errors) == 0
	return result
}

func (s *CompatibilityService) checkCriticalParts(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	if build.Cpu == nil {
		result.Errors = append(result.Errors, "build has no CPU")
	}
	if build.Motherboard == nil {
		result.Errors = append(result.Errors, "build has no motherboard")
	}
	if build.Psu == nil {
		result.Errors = append(result.Errors, "build has no power supply")
	}
	if build.Case == nil {
		result.Errors = append(result.Errors, "build has no case")
	}
	if len(build.RamKits) == 0 {
		result.Errors = append(result.Errors, "build has no RAM")
	}
}

func (s *CompatibilityService) checkSocket(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	cpu := build.Cpu.Attrs.Cpu
	mobo := build.Motherboard.Attrs.Motherboard
	if cpu.Socket.ID != mobo.Socket.ID {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"CPU socket %s does not match motherboard socket %s",
			cpu.Socket.Name, mobo.Socket.Name))
	}
}

func (s *CompatibilityService) checkRam(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	mobo := build.Motherboard.Attrs.Motherboard

	totalSticks := 0
	totalSizeGb := 0
	for _, part := range build.RamKits {
		kit := part.Component.Attrs.RamKit
		totalSticks += kit.ModuleCount * part.Quantity
		totalSizeGb += kit.SizeGb * part.Quantity
		if kit.RamType.ID != mobo.RamType.ID {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"RAM kit %s is %s but the motherboard takes %s",
				part.Component.Name, kit.RamType.Name, mobo.RamType.Name))
		}
	}

	if totalSticks > mobo.RamSlotCount {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%d RAM sticks exceed the motherboard's %d slots",
			totalSticks, mobo.RamSlotCount))
	}
	if totalSizeGb > mobo.MaxRamGb {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%dGB of RAM exceeds the motherboard's %dGB maximum",
			totalSizeGb, mobo.MaxRamGb))
	}
}

func (s *CompatibilityService) checkMotherboardFormFactor(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	mobo := build.Motherboard.Attrs.Motherboard
	caseSpec := build.Case.Attrs.Case

	for _, ff := range caseSpec.SupportedFormFactors {
		if ff.ID == mobo.FormFactor.ID {
			return
		}
	}
	result.Errors = append(result.Errors, fmt.Sprintf(
		"case does not support %s motherboards", mobo.FormFactor.Name))
}

func (s *CompatibilityService) checkPsuFormFactor(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	psu := build.Psu.Attrs.Psu
	caseSpec := build.Case.Attrs.Case

	if psu.FormFactor == nil {
		// Catalog entry with incomplete data. Not the user's problem.
		logger.Log.Info("skipping PSU form factor check, PSU has no form factor",
			zap.String("psu_id", build.Psu.ID))
		return
	}

	for _, ff := range caseSpec.SupportedPsuFormFactors {
		if ff.ID == psu.FormFactor.ID {
			return
		}
	}
	result.Errors = append(result.Errors, fmt.Sprintf(
		"case does not support %s power supplies", psu.FormFactor.Name))
}

func (s *CompatibilityService) checkGpus(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	mobo := build.Motherboard.Attrs.Motherboard
	caseSpec := build.Case.Attrs.Case

	gpuCount := 0
	for _, part := range build.Gpus {
		gpuCount += part.Quantity
		gpu := part.Component.Attrs.Gpu
		if gpu.LengthMm > caseSpec.MaxGpuLengthMm {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"GPU %s is %dmm long but the case fits up to %dmm",
				part.Component.Name, gpu.LengthMm, caseSpec.MaxGpuLengthMm))
		}
	}

	if gpuCount > mobo.PcieX16SlotCount {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%d GPUs exceed the motherboard's %d PCIe x16 slots",
			gpuCount, mobo.PcieX16SlotCount))
	}
}

func (s *CompatibilityService) checkCooler(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	if build.Cooler == nil {
		result.Warnings = append(result.Warnings,
			"no CPU cooler selected, make sure your CPU ships with one")
		return
	}

	cooler := build.Cooler.Attrs.Cooler
	mobo := build.Motherboard.Attrs.Motherboard
	caseSpec := build.Case.Attrs.Case

	supported := false
	for _, socket := range cooler.SupportedSockets {
		if socket.ID == mobo.Socket.ID {
			supported = true
			break
		}
	}
	if !supported {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"cooler %s does not support socket %s",
			build.Cooler.Name, mobo.Socket.Name))
	}

	if cooler.RadiatorSizeMm > 0 {
		fits := false
		for _, size := range caseSpec.SupportedRadiatorSizesMm {
			if size == cooler.RadiatorSizeMm {
				fits = true
				break
			}
		}
		if !fits {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"case has no mount for a %dmm radiator", cooler.RadiatorSizeMm))
		}
		result.Warnings = append(result.Warnings,
			"liquid cooler selected, verify RAM heatsink clearance under the radiator")
	} else if cooler.HeightMm > caseSpec.MaxCoolerHeightMm {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"cooler %s is %dmm tall but the case fits up to %dmm",
			build.Cooler.Name, cooler.HeightMm, caseSpec.MaxCoolerHeightMm))
	}
}

func (s *CompatibilityService) checkStorageInterfaces(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	if len(build.StorageDrives) == 0 {
		result.Warnings = append(result.Warnings,
			"no storage drive selected, the build has nowhere to install an OS")
		return
	}

	mobo := build.Motherboard.Attrs.Motherboard

	nvmeCount := 0
	sataCount := 0
	for _, part := range build.StorageDrives {
		drive := part.Component.Attrs.Storage
		switch {
		case drive.Interface.ID == s.interfaces.NvmeID:
			nvmeCount += part.Quantity
		case s.interfaces.SataIDs[drive.Interface.ID]:
			sataCount += part.Quantity
		}
	}

	if nvmeCount > mobo.M2SlotCount {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%d NVMe drives exceed the motherboard's %d M.2 slots",
			nvmeCount, mobo.M2SlotCount))
	}
	if sataCount > mobo.SataPortCount {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%d SATA drives exceed the motherboard's %d SATA ports",
			sataCount, mobo.SataPortCount))
	}
	if nvmeCount > 0 && sataCount > 0 {
		result.Warnings = append(result.Warnings,
			"mixing M.2 and SATA drives, some boards disable SATA ports when M.2 slots are in use")
	}
}

func (s *CompatibilityService) checkDriveBays(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	caseSpec := build.Case.Attrs.Case

	need35 := 0
	need25 := 0
	for _, part := range build.StorageDrives {
		drive := part.Component.Attrs.Storage
		if drive.FormFactor == nil {
			continue
		}
		// M.2 drives mount on the board and use no bay.
		switch {
		case strings.Contains(drive.FormFactor.Name, "3.5"):
			need35 += part.Quantity
		case strings.Contains(drive.FormFactor.Name, "2.5"):
			need25 += part.Quantity
		}
	}

	if need35 > caseSpec.Bays35Inch {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%d 3.5\" drives exceed the case's %d 3.5\" bays",
			need35, caseSpec.Bays35Inch))
	}
	if need25 > caseSpec.Bays25Inch {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%d 2.5\" drives exceed the case's %d 2.5\" bays",
			need25, caseSpec.Bays25Inch))
	}
}

func (s *CompatibilityService) checkWattage(build *models.ResolvedBuild, result *models.CompatibilityResult) {
	total := build.Cpu.Attrs.Cpu.Wattage + build.Motherboard.Attrs.Motherboard.Wattage
	if build.Cooler != nil {
		total += build.Cooler.Attrs.Cooler.Wattage
	}
	for _, part := range build.RamKits {
		total += part.Component.Attrs.RamKit.Wattage * part.Quantity
	}
	for _, part := range build.Gpus {
		total += part.Component.Attrs.Gpu.Wattage * part.Quantity
	}
	total += peripheralWattage

	result.TotalWattage = total

	psu := build.Psu.Attrs.Psu
	switch {
	case psu.Wattage < total:
		result.Errors = append(result.Errors, fmt.Sprintf(
			"estimated draw is %dW but the power supply delivers %dW",
			total, psu.Wattage))
	case float64(psu.Wattage) < float64(total)*psuHeadroomFactor:
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"power supply delivers %dW against an estimated %dW draw, consider more headroom",
			psu.Wattage, total))
	}
}
