package ratelimit

import (
	"context"
	"errors"

	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/gorm"
)

// ResolveLimit resolves the effective AI generation rate limit for a
// tenant. A tenant-level override wins over the platform default.
func ResolveLimit(ctx context.Context, db *gorm.DB, tenantID string) (Decision, error) {
	if db == nil || tenantID == "" {
		return Decision{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tenantLimit, found, errTenant := loadTenantRateLimit(ctx, db, tenantID)
	if errTenant != nil {
		return Decision{}, errTenant
	}
	if found {
		return Decision{Limit: tenantLimit}, nil
	}
	return Decision{Limit: DefaultSettingsLimit()}, nil
}

func loadTenantRateLimit(ctx context.Context, db *gorm.DB, tenantID string) (int, bool, error) {
	var row models.TenantSetting
	if errFind := db.WithContext(ctx).
		Where("tenant_id = ? AND key = ?", tenantID, models.TenantSettingAIRateLimit).
		Take(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, errFind
	}
	limit, ok := parseNonNegativeInt([]byte(row.Value))
	if !ok {
		return 0, false, nil
	}
	return limit, true, nil
}
