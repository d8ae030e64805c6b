package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PartRef points at a catalog component with a quantity, for the
// slots that allow more than one instance (RAM kits, GPUs, drives).
type PartRef struct {
	ComponentID string `json:"component_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

// PartRefs persists as a jsonb array.
type PartRefs []PartRef

func (p PartRefs) Value() (driver.Value, error) {
	if p == nil {
		p = PartRefs{}
	}
	return json.Marshal(p)
}

func (p *PartRefs) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported type for PartRefs: %T", value)
	}
}

// ComputerBuild is a user's saved part selection. Single-instance
// slots stay empty ("" id) until filled; every referenced component
// must exist at save time.
type ComputerBuild struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"index;not null"`
	Name          string    `json:"name" gorm:"not null"`
	CpuID         string    `json:"cpu_id"`
	MotherboardID string    `json:"motherboard_id"`
	PsuID         string    `json:"psu_id"`
	CaseID        string    `json:"case_id"`
	CoolerID      string    `json:"cooler_id"`
	RamKits       PartRefs  `json:"ram_kits" gorm:"type:jsonb"`
	Gpus          PartRefs  `json:"gpus" gorm:"type:jsonb"`
	StorageDrives PartRefs  `json:"storage_drives" gorm:"type:jsonb"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BuildPart pairs a resolved component with its quantity.
type BuildPart struct {
	Component *Component `json:"component"`
	Quantity  int        `json:"quantity"`
}

// ResolvedBuild is a ComputerBuild with every component reference
// fetched from the catalog. The compatibility engine and the order
// snapshotting both consume this, never the raw id form.
type ResolvedBuild struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Name          string      `json:"name"`
	Cpu           *Component  `json:"cpu,omitempty"`
	Motherboard   *Component  `json:"motherboard,omitempty"`
	Psu           *Component  `json:"psu,omitempty"`
	Case          *Component  `json:"case,omitempty"`
	Cooler        *Component  `json:"cooler,omitempty"`
	RamKits       []BuildPart `json:"ram_kits"`
	Gpus          []BuildPart `json:"gpus"`
	StorageDrives []BuildPart `json:"storage_drives"`
}

// EachComponent visits every component in the build with its
// per-build quantity (single-slot parts count once).
func (b *ResolvedBuild) EachComponent(visit func(c *Component, quantity int)) {
	for _, c := range []*Component{b.Cpu, b.Motherboard, b.Psu, b.Case, b.Cooler} {
		if c != nil {
			visit(c, 1)
		}
	}
	for _, lists := range [][]BuildPart{b.RamKits, b.Gpus, b.StorageDrives} {
		for _, part := range lists {
			visit(part.Component, part.Quantity)
		}
	}
}

// CompatibilityResult is the derived verdict of a compatibility
// check. It is never persisted; every request recomputes it.
type CompatibilityResult struct {
	IsCompatible bool     `json:"is_compatible"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
	TotalWattage int      `json:"total_wattage"`
}
