package models

import "github.com/shopspring/decimal"

// The spec requests reference lookup rows by id; the service resolves
// them into the denormalized copies stored on the component.

type CpuSpecRequest struct {
	SocketID string `json:"socket_id" binding:"required"`
	Wattage  int    `json:"wattage" binding:"required,min=1"`
}

type MotherboardSpecRequest struct {
	SocketID         string `json:"socket_id" binding:"required"`
	RamTypeID        string `json:"ram_type_id" binding:"required"`
	FormFactorID     string `json:"form_factor_id" binding:"required"`
	MaxRamGb         int    `json:"max_ram_gb" binding:"required,min=1"`
	RamSlotCount     int    `json:"ram_slot_count" binding:"required,min=1"`
	PcieX16SlotCount int    `json:"pcie_x16_slot_count" binding:"min=0"`
	M2SlotCount      int    `json:"m2_slot_count" binding:"min=0"`
	SataPortCount    int    `json:"sata_port_count" binding:"min=0"`
	Wattage          int    `json:"wattage" binding:"required,min=1"`
}

type RamKitSpecRequest struct {
	RamTypeID   string `json:"ram_type_id" binding:"required"`
	SizeGb      int    `json:"size_gb" binding:"required,min=1"`
	ModuleCount int    `json:"module_count" binding:"required,min=1"`
	Wattage     int    `json:"wattage" binding:"required,min=1"`
}

type GpuSpecRequest struct {
	Wattage  int `json:"wattage" binding:"required,min=1"`
	LengthMm int `json:"length_mm" binding:"required,min=1"`
}

type PsuSpecRequest struct {
	Wattage      int    `json:"wattage" binding:"required,min=1"`
	FormFactorID string `json:"form_factor_id"`
}

type CaseSpecRequest struct {
	SupportedFormFactorIDs    []string `json:"supported_form_factor_ids" binding:"required,min=1"`
	SupportedPsuFormFactorIDs []string `json:"supported_psu_form_factor_ids" binding:"required,min=1"`
	MaxGpuLengthMm            int      `json:"max_gpu_length_mm" binding:"required,min=1"`
	MaxCoolerHeightMm         int      `json:"max_cooler_height_mm" binding:"required,min=1"`
	Bays25Inch                int      `json:"bays_2_5_inch" binding:"min=0"`
	Bays35Inch                int      `json:"bays_3_5_inch" binding:"min=0"`
	SupportedRadiatorSizesMm  []int    `json:"supported_radiator_sizes_mm"`
}

type CoolerSpecRequest struct {
	SupportedSocketIDs []string `json:"supported_socket_ids" binding:"required,min=1"`
	HeightMm           int      `json:"height_mm" binding:"min=0"`
	RadiatorSizeMm     int      `json:"radiator_size_mm" binding:"min=0"`
	Wattage            int      `json:"wattage" binding:"required,min=1"`
}

type StorageSpecRequest struct {
	InterfaceID  string `json:"interface_id" binding:"required"`
	CapacityGb   int    `json:"capacity_gb" binding:"required,min=1"`
	FormFactorID string `json:"form_factor_id"`
}

// ComponentRequest creates or updates a catalog component. Exactly one
// spec field must be set and it must match Kind.
type ComponentRequest struct {
	Kind        ComponentKind   `json:"kind" binding:"required"`
	Mpn         string          `json:"mpn" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    int             `json:"quantity" binding:"min=0"`

	Cpu         *CpuSpecRequest         `json:"cpu,omitempty"`
	Motherboard *MotherboardSpecRequest `json:"motherboard,omitempty"`
	RamKit      *RamKitSpecRequest      `json:"ram,omitempty"`
	Gpu         *GpuSpecRequest         `json:"gpu,omitempty"`
	Psu         *PsuSpecRequest         `json:"psu,omitempty"`
	Case        *CaseSpecRequest        `json:"case,omitempty"`
	Cooler      *CoolerSpecRequest      `json:"cooler,omitempty"`
	Storage     *StorageSpecRequest     `json:"storage,omitempty"`
}

// ComponentWithStock is the catalog read model: a component joined
// with its price and quantity from the inventory ledger.
type ComponentWithStock struct {
	Component
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}
