package models

import (
	"time"

	"gorm.io/datatypes"
)

// State is the root of the administrative location tree.
type State struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	Name  string         `gorm:"type:text;not null"`             // English name.
	Code  string         `gorm:"type:text;not null;uniqueIndex"` // Short state code.
	Names datatypes.JSON `gorm:"type:jsonb"`                     // Translated names keyed by language code.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// District belongs to exactly one state.
type District struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	StateID string         `gorm:"type:text;not null;index"` // Parent state.
	Name    string         `gorm:"type:text;not null"`       // English name.
	Names   datatypes.JSON `gorm:"type:jsonb"`               // Translated names keyed by language code.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Mandal belongs to exactly one district.
type Mandal struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	DistrictID string         `gorm:"type:text;not null;index"` // Parent district.
	Name       string         `gorm:"type:text;not null"`       // English name.
	Names      datatypes.JSON `gorm:"type:jsonb"`               // Translated names keyed by language code.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// AssemblyConstituency belongs to exactly one district.
type AssemblyConstituency struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	DistrictID string         `gorm:"type:text;not null;index"` // Parent district.
	Name       string         `gorm:"type:text;not null"`       // English name.
	Names      datatypes.JSON `gorm:"type:jsonb"`               // Translated names keyed by language code.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
