package models

// FormFactorKind says which slot a form factor describes.
type FormFactorKind string

const (
	FormFactorMotherboard FormFactorKind = "MOTHERBOARD"
	FormFactorPsu         FormFactorKind = "PSU"
	FormFactorStorage     FormFactorKind = "STORAGE"
)

// Socket is a CPU socket, e.g. AM5 or LGA1700.
type Socket struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;not null"`
	Brand string `json:"brand"`
}

// RamType is a memory generation, e.g. DDR4 or DDR5.
type RamType struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// FormFactor is a physical size standard (ATX, SFX, 2.5", ...).
// Kind scopes the vocabulary: a motherboard form factor is not
// interchangeable with a PSU or storage one.
type FormFactor struct {
	ID   string         `json:"id" gorm:"primaryKey"`
	Name string         `json:"name" gorm:"index;not null"`
	Kind FormFactorKind `json:"kind" gorm:"type:varchar(20);index;not null"`
}

// StorageInterface is a drive connection standard, e.g. NVMe, SATA III.
type StorageInterface struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}
