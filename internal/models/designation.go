package models

import "time"

// ReporterDesignation is a named role template constraining the level a
// reporter may occupy. TenantID is nil for platform-wide designations.
type ReporterDesignation struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	TenantID *string `gorm:"type:text;index"`    // Owning tenant, nil when global.
	Name     string  `gorm:"type:text;not null"` // Display name, e.g. "District Bureau Chief".
	Level    string  `gorm:"type:text;not null"` // Level this designation is valid for.

	Active bool `gorm:"not null;default:true"` // Whether the designation is assignable.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
