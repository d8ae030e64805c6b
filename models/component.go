package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ComponentKind discriminates the component variants.
type ComponentKind string

const (
	KindCpu         ComponentKind = "cpu"
	KindMotherboard ComponentKind = "motherboard"
	KindRamKit      ComponentKind = "ram"
	KindGpu         ComponentKind = "gpu"
	KindPsu         ComponentKind = "psu"
	KindCase        ComponentKind = "case"
	KindCooler      ComponentKind = "cooler"
	KindStorage     ComponentKind = "storage"
)

// CpuSpec holds CPU-specific attributes.
type CpuSpec struct {
	Socket  Socket `json:"socket"`
	Wattage int    `json:"wattage"`
}

// MotherboardSpec holds motherboard-specific attributes.
type MotherboardSpec struct {
	Socket           Socket     `json:"socket"`
	RamType          RamType    `json:"ram_type"`
	FormFactor       FormFactor `json:"form_factor"`
	MaxRamGb         int        `json:"max_ram_gb"`
	RamSlotCount     int        `json:"ram_slot_count"`
	PcieX16SlotCount int        `json:"pcie_x16_slot_count"`
	M2SlotCount      int        `json:"m2_slot_count"`
	SataPortCount    int        `json:"sata_port_count"`
	Wattage          int        `json:"wattage"`
}

// RamKitSpec holds RAM-kit-specific attributes. A kit bundles
// ModuleCount sticks totalling SizeGb.
type RamKitSpec struct {
	RamType     RamType `json:"ram_type"`
	SizeGb      int     `json:"size_gb"`
	ModuleCount int     `json:"module_count"`
	Wattage     int     `json:"wattage"`
}

// GpuSpec holds GPU-specific attributes.
type GpuSpec struct {
	Wattage  int `json:"wattage"`
	LengthMm int `json:"length_mm"`
}

// PsuSpec holds PSU-specific attributes. FormFactor may be nil for
// catalog entries with incomplete data; the compatibility engine
// skips the case-fit check in that situation.
type PsuSpec struct {
	Wattage    int         `json:"wattage"`
	FormFactor *FormFactor `json:"form_factor,omitempty"`
}

// CaseSpec holds case-specific attributes.
type CaseSpec struct {
	SupportedFormFactors     []FormFactor `json:"supported_form_factors"`
	SupportedPsuFormFactors  []FormFactor `json:"supported_psu_form_factors"`
	MaxGpuLengthMm           int          `json:"max_gpu_length_mm"`
	MaxCoolerHeightMm        int          `json:"max_cooler_height_mm"`
	Bays25Inch               int          `json:"bays_2_5_inch"`
	Bays35Inch               int          `json:"bays_3_5_inch"`
	SupportedRadiatorSizesMm []int        `json:"supported_radiator_sizes_mm"`
}

// CoolerSpec holds cooler-specific attributes. RadiatorSizeMm > 0
// marks a liquid cooler; air coolers are constrained by HeightMm.
type CoolerSpec struct {
	SupportedSockets []Socket `json:"supported_sockets"`
	HeightMm         int      `json:"height_mm"`
	RadiatorSizeMm   int      `json:"radiator_size_mm"`
	Wattage          int      `json:"wattage"`
}

// StorageSpec holds storage-drive-specific attributes.
type StorageSpec struct {
	Interface  StorageInterface `json:"interface"`
	CapacityGb int              `json:"capacity_gb"`
	FormFactor *FormFactor      `json:"form_factor,omitempty"`
}

// ComponentAttrs carries the variant-specific attributes of a
// component. Exactly one field is non-nil, matching Component.Kind.
// Lookup values are denormalized copies resolved at create time.
type ComponentAttrs struct {
	Cpu         *CpuSpec         `json:"cpu,omitempty"`
	Motherboard *MotherboardSpec `json:"motherboard,omitempty"`
	RamKit      *RamKitSpec      `json:"ram,omitempty"`
	Gpu         *GpuSpec         `json:"gpu,omitempty"`
	Psu         *PsuSpec         `json:"psu,omitempty"`
	Case        *CaseSpec        `json:"case,omitempty"`
	Cooler      *CoolerSpec      `json:"cooler,omitempty"`
	Storage     *StorageSpec     `json:"storage,omitempty"`
}

// Value implements driver.Valuer so attrs persist as jsonb.
func (a ComponentAttrs) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *ComponentAttrs) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported type for ComponentAttrs: %T", value)
	}
}

// Component is a typed catalog part. Kind selects which Attrs variant
// is populated.
type Component struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	Kind        ComponentKind  `json:"kind" gorm:"type:varchar(20);index;not null"`
	Mpn         string         `json:"mpn" gorm:"uniqueIndex;not null"`
	IsActive    bool           `json:"is_active" gorm:"index"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url"`
	Attrs       ComponentAttrs `json:"attrs" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}
