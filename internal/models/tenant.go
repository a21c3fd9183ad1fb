package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tenant represents one publishing house hosted on the platform.
type Tenant struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	Name            string `gorm:"type:text;not null"`             // Display name.
	Slug            string `gorm:"type:text;not null;uniqueIndex"` // URL-safe identifier.
	DefaultLanguage string `gorm:"type:text;not null;default:te"`  // Default content language code.

	Active bool `gorm:"not null;default:true"` // Whether the tenant is serving.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Tenant setting keys owned by the tenant configuration surface.
const (
	// TenantSettingReporterLimits holds the reporter quota configuration.
	TenantSettingReporterLimits = "reporter_limits"
	// TenantSettingReporterPricing holds per-designation pricing defaults.
	TenantSettingReporterPricing = "reporter_pricing"
	// TenantSettingSEODefaults holds tenant-wide SEO fallbacks.
	TenantSettingSEODefaults = "seo_defaults"
	// TenantSettingAIRateLimit overrides the platform AI generation rate limit.
	TenantSettingAIRateLimit = "ai_rate_limit"
)

// TenantSetting is one JSON configuration value scoped to a tenant.
type TenantSetting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	TenantID string         `gorm:"type:text;not null;uniqueIndex:idx_tenant_settings_key"` // Owning tenant.
	Key      string         `gorm:"type:text;not null;uniqueIndex:idx_tenant_settings_key"` // Setting key.
	Value    datatypes.JSON `gorm:"type:jsonb"`                                             // JSON value payload.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
