package models

import "time"

// ID card lifecycle states.
const (
	// IDCardStatusIssued marks a card as valid.
	IDCardStatusIssued = "ISSUED"
	// IDCardStatusRevoked marks a card as withdrawn.
	IDCardStatusRevoked = "REVOKED"
)

// IDCard records one press-card issuance for a reporter.
type IDCard struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	ReporterID string `gorm:"type:text;not null;index"`       // Card holder.
	CardNumber string `gorm:"type:text;not null;uniqueIndex"` // Printed card number.

	ChargePaise int64  `gorm:"not null;default:0"`                // Issuance charge in paise.
	Status      string `gorm:"type:text;not null;default:ISSUED"` // Lifecycle state.

	IssuedAt  time.Time `gorm:"not null"` // Issuance timestamp.
	ExpiresAt time.Time `gorm:"not null"` // Validity end.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
