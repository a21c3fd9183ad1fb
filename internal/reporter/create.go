package reporter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/prajanews/newsdesk/internal/apperr"
	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/geography"
	"github.com/prajanews/newsdesk/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor identifies who is attempting a reporter operation.
type Actor struct {
	UserID        string // Identity row of the acting user, empty for platform admins.
	PlatformAdmin bool   // Platform operators skip tenant scope checks.
	TenantAdmin   bool   // Tenant back-office users skip the reporter scope check.
}

// isAdmin reports whether the actor bypasses reporter scope authorization.
func (a Actor) isAdmin() bool { return a.PlatformAdmin || a.TenantAdmin }

// CreateRequest carries the input for reporter creation. Exactly one of the
// location fields must be set and it must match Level.
type CreateRequest struct {
	DesignationID string
	Level         string
	FullName      string
	Mobile        string
	Language      string

	StateID                string
	DistrictID             string
	MandalID               string
	AssemblyConstituencyID string

	SubscriptionActive        *bool
	MonthlySubscriptionAmount *int64
	IDCardCharge              *int64
	ManualLoginEnabled        bool
	ManualLoginDays           int
}

// locationID returns the request location for the given level.
func (r *CreateRequest) locationID(level string) string {
	switch level {
	case models.LevelState:
		return strings.TrimSpace(r.StateID)
	case models.LevelDistrict:
		return strings.TrimSpace(r.DistrictID)
	case models.LevelMandal:
		return strings.TrimSpace(r.MandalID)
	case models.LevelAssembly:
		return strings.TrimSpace(r.AssemblyConstituencyID)
	default:
		return ""
	}
}

// Service executes reporter operations against the database.
type Service struct {
	conn  *gorm.DB
	nowFn func() time.Time
}

// NewService constructs a reporter Service.
func NewService(conn *gorm.DB) *Service {
	return &Service{conn: conn, nowFn: time.Now}
}

// Create validates, authorizes, and atomically creates a reporter. The
// designation check, quota check, identity upsert, and reporter insert run
// inside one serializable transaction retried once on conflict.
func (s *Service) Create(ctx context.Context, actor Actor, tenantID string, req CreateRequest) (*models.Reporter, error) {
	req.DesignationID = strings.TrimSpace(req.DesignationID)
	req.Level = strings.TrimSpace(req.Level)
	req.FullName = strings.TrimSpace(req.FullName)

	if req.DesignationID == "" {
		return nil, apperr.Validation("designationId is required")
	}
	if !models.ValidLevel(req.Level) {
		return nil, apperr.Validation("level must be one of STATE, DISTRICT, MANDAL, ASSEMBLY")
	}
	if req.FullName == "" {
		return nil, apperr.Validation("fullName is required")
	}
	mobile, errMobile := NormalizeMobile(req.Mobile)
	if errMobile != nil {
		return nil, apperr.Validation(errMobile.Error())
	}
	locationID := req.locationID(req.Level)
	if locationID == "" {
		field, _ := models.LocationFieldForLevel(req.Level)
		return nil, apperr.Validation(fmt.Sprintf("location %s is required for level %s", field, req.Level))
	}

	tenant, errTenant := s.loadTenant(ctx, tenantID)
	if errTenant != nil {
		return nil, errTenant
	}

	if !actor.isAdmin() {
		if errScope := s.authorizeReporterActor(ctx, actor, tenantID, req.Level, locationID); errScope != nil {
			return nil, errScope
		}
	}

	locationField, _ := models.LocationFieldForLevel(req.Level)

	var created *models.Reporter
	errTx := db.RunSerializable(ctx, s.conn, func(tx *gorm.DB) error {
		if errDesignation := validateDesignation(ctx, tx, tenantID, req.DesignationID, req.Level); errDesignation != nil {
			return errDesignation
		}

		limitsRaw, errLimits := loadTenantSetting(ctx, tx, tenantID, models.TenantSettingReporterLimits)
		if errLimits != nil {
			return errLimits
		}
		limits, errParse := ParseLimits(limitsRaw)
		if errParse != nil {
			return errParse
		}
		max := ResolveMax(limits, req.DesignationID, req.Level, locationField, locationID)

		current, errCount := countActiveReporters(ctx, tx, tenantID, req.DesignationID, req.Level, locationField, locationID)
		if errCount != nil {
			return errCount
		}
		if current >= max {
			return apperr.QuotaExceeded(current, max)
		}

		userID, errUser := upsertIdentity(ctx, tx, mobile, req.FullName, req.Language, tenant.DefaultLanguage)
		if errUser != nil {
			return errUser
		}

		pricingRaw, errPricing := loadTenantSetting(ctx, tx, tenantID, models.TenantSettingReporterPricing)
		if errPricing != nil {
			return errPricing
		}
		pricing, errParsePricing := ParsePricing(pricingRaw)
		if errParsePricing != nil {
			return errParsePricing
		}

		row := s.buildReporter(tenantID, userID, req, locationID, PricingFor(pricing, req.DesignationID))
		if errCreate := tx.Create(row).Error; errCreate != nil {
			return fmt.Errorf("reporter: insert: %w", errCreate)
		}
		created = row
		return nil
	})
	if errTx != nil {
		if appErr, ok := apperr.As(errTx); ok {
			return nil, appErr
		}
		if db.IsSerializationFailure(errTx) {
			return nil, apperr.Conflict("reporter creation conflicted with a concurrent write, please retry", errTx)
		}
		return nil, errTx
	}

	log.WithFields(log.Fields{
		"tenant":      tenantID,
		"reporter":    created.ID,
		"designation": req.DesignationID,
		"level":       req.Level,
	}).Info("reporter created")
	return created, nil
}

// authorizeReporterActor enforces the acting reporter's subscription and
// geographic scope.
func (s *Service) authorizeReporterActor(ctx context.Context, actor Actor, tenantID, requestedLevel, requestedLocationID string) error {
	var creator models.Reporter
	errFind := s.conn.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND active = ?", tenantID, actor.UserID, true).
		Take(&creator).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return apperr.Authorization("actor has no active reporter scope in this tenant")
		}
		return fmt.Errorf("reporter: load creator scope: %w", errFind)
	}
	if !creator.SubscriptionActive {
		return apperr.Authorization("actor's subscription is not active")
	}

	decision, errScope := CanCreate(ctx, geography.NewStore(s.conn), creator.Level, creator.LocationID(), requestedLevel, requestedLocationID)
	if errScope != nil {
		return errScope
	}
	if !decision.Allowed {
		return apperr.Authorization(decision.Reason)
	}
	return nil
}

// buildReporter assembles the row to insert, applying pricing defaults and
// manual-login expiry.
func (s *Service) buildReporter(tenantID, userID string, req CreateRequest, locationID string, pricing PricingEntry) *models.Reporter {
	row := &models.Reporter{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		UserID:        userID,
		DesignationID: req.DesignationID,
		Level:         req.Level,
		KYCStatus:     models.KYCStatusNone,
		Active:        true,
	}
	switch req.Level {
	case models.LevelState:
		row.StateID = &locationID
	case models.LevelDistrict:
		row.DistrictID = &locationID
	case models.LevelMandal:
		row.MandalID = &locationID
	case models.LevelAssembly:
		row.AssemblyConstituencyID = &locationID
	}

	if req.SubscriptionActive != nil {
		row.SubscriptionActive = *req.SubscriptionActive
	}
	if req.MonthlySubscriptionAmount != nil {
		row.MonthlySubscriptionAmount = *req.MonthlySubscriptionAmount
	} else if pricing.SubscriptionEnabled {
		row.MonthlySubscriptionAmount = pricing.MonthlyAmount
	}
	if req.IDCardCharge != nil {
		row.IDCardCharge = *req.IDCardCharge
	} else {
		row.IDCardCharge = pricing.IDCardCharge
	}

	if req.ManualLoginEnabled && req.ManualLoginDays > 0 {
		expiresAt := s.nowFn().UTC().AddDate(0, 0, req.ManualLoginDays)
		row.ManualLoginEnabled = true
		row.ManualLoginDays = req.ManualLoginDays
		row.ManualLoginExpiresAt = &expiresAt
	}
	return row
}

// loadTenant fetches an active tenant row.
func (s *Service) loadTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	var tenant models.Tenant
	errFind := s.conn.WithContext(ctx).Where("id = ?", tenantID).Take(&tenant).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tenant not found")
		}
		return nil, fmt.Errorf("reporter: load tenant: %w", errFind)
	}
	if !tenant.Active {
		return nil, apperr.Authorization("tenant is disabled")
	}
	return &tenant, nil
}

// validateDesignation checks existence, level match, and tenant ownership.
func validateDesignation(ctx context.Context, tx *gorm.DB, tenantID, designationID, level string) error {
	var designation models.ReporterDesignation
	errFind := tx.WithContext(ctx).Where("id = ?", designationID).Take(&designation).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return apperr.Validation("designation not found")
		}
		return fmt.Errorf("reporter: load designation: %w", errFind)
	}
	if !designation.Active {
		return apperr.Validation("designation is not assignable")
	}
	if designation.Level != level {
		return apperr.Validation(fmt.Sprintf("designation is for level %s, not %s", designation.Level, level))
	}
	if designation.TenantID != nil && *designation.TenantID != tenantID {
		return apperr.Validation("designation belongs to another tenant")
	}
	return nil
}

// loadTenantSetting returns the raw JSON value for a tenant setting key, or
// nil when the key is absent.
func loadTenantSetting(ctx context.Context, tx *gorm.DB, tenantID, key string) ([]byte, error) {
	var row models.TenantSetting
	errFind := tx.WithContext(ctx).Where("tenant_id = ? AND key = ?", tenantID, key).Take(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reporter: load tenant setting %s: %w", key, errFind)
	}
	return []byte(row.Value), nil
}

// countActiveReporters counts active rows in one quota bucket.
func countActiveReporters(ctx context.Context, tx *gorm.DB, tenantID, designationID, level, locationField, locationID string) (int, error) {
	var count int64
	errCount := tx.WithContext(ctx).Model(&models.Reporter{}).
		Where("tenant_id = ? AND designation_id = ? AND level = ? AND active = ?", tenantID, designationID, level, true).
		Where(locationField+" = ?", locationID).
		Count(&count).Error
	if errCount != nil {
		return 0, fmt.Errorf("reporter: count quota bucket: %w", errCount)
	}
	return int(count), nil
}

// upsertIdentity finds or creates the user row by normalized mobile and
// upserts the profile full name. Returns the user id.
func upsertIdentity(ctx context.Context, tx *gorm.DB, mobile, fullName, language, defaultLanguage string) (string, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		language = defaultLanguage
	}

	var user models.User
	errFind := tx.WithContext(ctx).Where("mobile = ?", mobile).Take(&user).Error
	switch {
	case errFind == nil:
		if user.Role == models.RoleCitizen {
			if errRole := tx.WithContext(ctx).Model(&models.User{}).
				Where("id = ?", user.ID).
				Update("role", models.RoleReporter).Error; errRole != nil {
				return "", fmt.Errorf("reporter: correct user role: %w", errRole)
			}
		}
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		user = models.User{
			ID:       uuid.NewString(),
			Mobile:   mobile,
			Role:     models.RoleReporter,
			Language: language,
			Active:   true,
		}
		if errCreate := tx.WithContext(ctx).Create(&user).Error; errCreate != nil {
			return "", fmt.Errorf("reporter: create user: %w", errCreate)
		}
	default:
		return "", fmt.Errorf("reporter: find user by mobile: %w", errFind)
	}

	var profile models.UserProfile
	errProfile := tx.WithContext(ctx).Where("user_id = ?", user.ID).Take(&profile).Error
	switch {
	case errProfile == nil:
		if profile.FullName != fullName {
			if errName := tx.WithContext(ctx).Model(&models.UserProfile{}).
				Where("user_id = ?", user.ID).
				Update("full_name", fullName).Error; errName != nil {
				return "", fmt.Errorf("reporter: update profile name: %w", errName)
			}
		}
	case errors.Is(errProfile, gorm.ErrRecordNotFound):
		profile = models.UserProfile{UserID: user.ID, FullName: fullName}
		if errCreate := tx.WithContext(ctx).Create(&profile).Error; errCreate != nil {
			return "", fmt.Errorf("reporter: create profile: %w", errCreate)
		}
	default:
		return "", fmt.Errorf("reporter: find profile: %w", errProfile)
	}

	return user.ID, nil
}

// NormalizeMobile strips formatting from a mobile number and validates it
// has at least ten digits.
func NormalizeMobile(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	normalized := digits.String()
	if len(normalized) < 10 {
		return "", errors.New("mobileNumber must contain at least 10 digits")
	}
	return normalized, nil
}
