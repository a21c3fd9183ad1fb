package models

import (
	"time"

	"gorm.io/datatypes"
)

// KYC review states for a reporter.
const (
	// KYCStatusPending means documents were submitted but not reviewed.
	KYCStatusPending = "PENDING"
	// KYCStatusVerified means documents passed review.
	KYCStatusVerified = "VERIFIED"
	// KYCStatusRejected means documents failed review.
	KYCStatusRejected = "REJECTED"
	// KYCStatusNone means no documents were submitted yet.
	KYCStatusNone = "NONE"
)

// Reporter is one person's editorial role within one tenant at one
// administrative level. Exactly one of the four location fields is set and
// it always matches Level.
type Reporter struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	TenantID      string `gorm:"type:text;not null;index"` // Owning tenant.
	UserID        string `gorm:"type:text;not null;index"` // Identity row.
	DesignationID string `gorm:"type:text;not null;index"` // Role template.

	Level                  string  `gorm:"type:text;not null"` // STATE, DISTRICT, MANDAL or ASSEMBLY.
	StateID                *string `gorm:"type:text;index"`    // Set when Level is STATE.
	DistrictID             *string `gorm:"type:text;index"`    // Set when Level is DISTRICT.
	MandalID               *string `gorm:"type:text;index"`    // Set when Level is MANDAL.
	AssemblyConstituencyID *string `gorm:"type:text;index"`    // Set when Level is ASSEMBLY.

	SubscriptionActive        bool       `gorm:"not null;default:false"` // Whether the subscription is current.
	SubscriptionPaidFrom      *time.Time `gorm:"index"`                  // Start of the last confirmed paid period.
	SubscriptionPaidUntil     *time.Time `gorm:"index"`                  // End of the last confirmed paid period.
	MonthlySubscriptionAmount int64      `gorm:"not null;default:0"`     // Monthly amount in paise.
	IDCardCharge              int64      `gorm:"not null;default:0"`     // ID-card issuance charge in paise.

	ManualLoginEnabled   bool       `gorm:"not null;default:false"` // Grace-period login without subscription.
	ManualLoginDays      int        `gorm:"not null;default:0"`     // Grace-period length in days.
	ManualLoginExpiresAt *time.Time ``                              // Grace-period expiry, nil when disabled.

	KYCStatus    string         `gorm:"type:text;not null;default:NONE"` // KYC review state.
	KYCDocuments datatypes.JSON `gorm:"type:jsonb"`                      // Submitted document references.

	Active bool `gorm:"not null;default:true"` // Soft-disable flag, rows are never hard-deleted.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// LocationID returns the single populated location id for the reporter level.
func (r *Reporter) LocationID() string {
	switch r.Level {
	case LevelState:
		if r.StateID != nil {
			return *r.StateID
		}
	case LevelDistrict:
		if r.DistrictID != nil {
			return *r.DistrictID
		}
	case LevelMandal:
		if r.MandalID != nil {
			return *r.MandalID
		}
	case LevelAssembly:
		if r.AssemblyConstituencyID != nil {
			return *r.AssemblyConstituencyID
		}
	}
	return ""
}
