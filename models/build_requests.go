package models

// BuildRequest creates or replaces a saved build. Slot ids may be
// empty while the build is a work in progress; every non-empty id must
// resolve to a component of the right kind.
type BuildRequest struct {
	Name          string   `json:"name" binding:"required"`
	CpuID         string   `json:"cpu_id"`
	MotherboardID string   `json:"motherboard_id"`
	PsuID         string   `json:"psu_id"`
	CaseID        string   `json:"case_id"`
	CoolerID      string   `json:"cooler_id"`
	RamKits       PartRefs `json:"ram_kits" binding:"dive"`
	Gpus          PartRefs `json:"gpus" binding:"dive"`
	StorageDrives PartRefs `json:"storage_drives" binding:"dive"`
}
