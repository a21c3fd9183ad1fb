package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/notify"
	"github.com/prajanews/newsdesk/internal/reporter"
	"gorm.io/gorm"
)

// ReporterHandler manages the tenant reporter endpoints.
type ReporterHandler struct {
	db       *gorm.DB               // Database handle.
	service  *reporter.Service      // Creation transaction orchestrator.
	notifier *notify.WhatsAppSender // Outbound delivery, nil when unconfigured.
}

// NewReporterHandler constructs a reporter handler.
func NewReporterHandler(db *gorm.DB, notifier *notify.WhatsAppSender) *ReporterHandler {
	return &ReporterHandler{db: db, service: reporter.NewService(db), notifier: notifier}
}

// createReporterRequest captures the payload for creating a reporter.
type createReporterRequest struct {
	DesignationID string `json:"designationId"` // Role template.
	Level         string `json:"level"`         // Administrative level.
	FullName      string `json:"fullName"`      // Person's display name.
	MobileNumber  string `json:"mobileNumber"`  // Identity mobile.
	Language      string `json:"language"`      // Optional content language.

	StateID                string `json:"stateId"`                // Set when level is STATE.
	DistrictID             string `json:"districtId"`             // Set when level is DISTRICT.
	MandalID               string `json:"mandalId"`               // Set when level is MANDAL.
	AssemblyConstituencyID string `json:"assemblyConstituencyId"` // Set when level is ASSEMBLY.

	SubscriptionActive        *bool  `json:"subscriptionActive"`        // Optional explicit subscription state.
	MonthlySubscriptionAmount *int64 `json:"monthlySubscriptionAmount"` // Optional amount in paise.
	IDCardCharge              *int64 `json:"idCardCharge"`              // Optional charge in paise.
	ManualLoginEnabled        bool   `json:"manualLoginEnabled"`        // Grace-period login flag.
	ManualLoginDays           int    `json:"manualLoginDays"`           // Grace-period length in days.
}

// Create runs the reporter creation transaction.
func (h *ReporterHandler) Create(c *gin.Context) {
	tenant := tenantFrom(c)
	var body createReporterRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	created, errCreate := h.service.Create(c.Request.Context(), actorFrom(c), tenant.ID, reporter.CreateRequest{
		DesignationID:             body.DesignationID,
		Level:                     body.Level,
		FullName:                  body.FullName,
		Mobile:                    body.MobileNumber,
		Language:                  body.Language,
		StateID:                   body.StateID,
		DistrictID:                body.DistrictID,
		MandalID:                  body.MandalID,
		AssemblyConstituencyID:    body.AssemblyConstituencyID,
		SubscriptionActive:        body.SubscriptionActive,
		MonthlySubscriptionAmount: body.MonthlySubscriptionAmount,
		IDCardCharge:              body.IDCardCharge,
		ManualLoginEnabled:        body.ManualLoginEnabled,
		ManualLoginDays:           body.ManualLoginDays,
	})
	if errCreate != nil {
		writeAppError(c, errCreate)
		return
	}

	if h.notifier != nil {
		var user models.User
		if errFind := h.db.WithContext(c.Request.Context()).Take(&user, "id = ?", created.UserID).Error; errFind == nil {
			h.notifier.SendAsync(notify.Message{
				To:       user.Mobile,
				Template: "reporter_welcome",
				Params: map[string]any{
					"tenantName":   tenant.Name,
					"reporterName": body.FullName,
				},
			})
		}
	}
	c.JSON(http.StatusCreated, formatReporter(created))
}

// List returns the tenant's reporters, optionally filtered by designation,
// level, or location.
func (h *ReporterHandler) List(c *gin.Context) {
	tenant := tenantFrom(c)
	query := h.db.WithContext(c.Request.Context()).Model(&models.Reporter{}).
		Where("tenant_id = ?", tenant.ID)

	if designationID := strings.TrimSpace(c.Query("designationId")); designationID != "" {
		query = query.Where("designation_id = ?", designationID)
	}
	if level := strings.TrimSpace(c.Query("level")); level != "" {
		if !models.ValidLevel(level) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level"})
			return
		}
		query = query.Where("level = ?", level)
		if locationID := strings.TrimSpace(c.Query("locationId")); locationID != "" {
			field, _ := models.LocationFieldForLevel(level)
			query = query.Where(field+" = ?", locationID)
		}
	}
	if active := strings.TrimSpace(c.Query("active")); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var rows []models.Reporter
	if errFind := query.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list reporters failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatReporter(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"reporters": out})
}

// Get returns one reporter.
func (h *ReporterHandler) Get(c *gin.Context) {
	row, ok := h.loadReporter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, formatReporter(row))
}

// updateReporterRequest captures mutable reporter fields.
type updateReporterRequest struct {
	Active             *bool `json:"active"`             // Soft-disable flag.
	ManualLoginEnabled *bool `json:"manualLoginEnabled"` // Grace-period login flag.
	ManualLoginDays    *int  `json:"manualLoginDays"`    // Grace-period length in days.
}

// Update changes mutable reporter fields. Level and location are immutable;
// a move is a deactivate plus a fresh creation so quota checks rerun.
func (h *ReporterHandler) Update(c *gin.Context) {
	row, ok := h.loadReporter(c)
	if !ok {
		return
	}
	var body updateReporterRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if body.ManualLoginEnabled != nil {
		updates["manual_login_enabled"] = *body.ManualLoginEnabled
		if !*body.ManualLoginEnabled {
			updates["manual_login_expires_at"] = nil
		}
	}
	if body.ManualLoginDays != nil {
		if *body.ManualLoginDays < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "manualLoginDays cannot be negative"})
			return
		}
		updates["manual_login_days"] = *body.ManualLoginDays
		expiresAt := time.Now().UTC().AddDate(0, 0, *body.ManualLoginDays)
		updates["manual_login_expires_at"] = &expiresAt
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, formatReporter(row))
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(row).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update reporter failed"})
		return
	}
	c.JSON(http.StatusOK, formatReporter(row))
}

// updateSubscriptionRequest captures the subscription payload.
type updateSubscriptionRequest struct {
	Active        *bool      `json:"active"`        // New subscription state.
	MonthlyAmount *int64     `json:"monthlyAmount"` // Optional new amount in paise.
	PaidFrom      *time.Time `json:"paidFrom"`      // Optional confirmed paid period start.
	PaidUntil     *time.Time `json:"paidUntil"`     // Optional confirmed paid period end.
}

// UpdateSubscription records a subscription state change, normally after a
// payment confirmation.
func (h *ReporterHandler) UpdateSubscription(c *gin.Context) {
	row, ok := h.loadReporter(c)
	if !ok {
		return
	}
	var body updateSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Active == nil && body.PaidFrom == nil && body.PaidUntil == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active or a paid period is required"})
		return
	}

	updates := map[string]any{}
	if body.Active != nil {
		updates["subscription_active"] = *body.Active
	}
	if body.PaidFrom != nil {
		updates["subscription_paid_from"] = body.PaidFrom
	}
	if body.PaidUntil != nil {
		if body.PaidFrom != nil && body.PaidUntil.Before(*body.PaidFrom) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "paidUntil cannot precede paidFrom"})
			return
		}
		updates["subscription_paid_until"] = body.PaidUntil
	}
	if body.MonthlyAmount != nil {
		if *body.MonthlyAmount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "monthlyAmount cannot be negative"})
			return
		}
		updates["monthly_subscription_amount"] = *body.MonthlyAmount
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(row).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update subscription failed"})
		return
	}
	c.JSON(http.StatusOK, formatReporter(row))
}

// loadReporter fetches the reporter named in the path within the tenant.
func (h *ReporterHandler) loadReporter(c *gin.Context) (*models.Reporter, bool) {
	return loadTenantReporter(c, h.db)
}

// loadTenantReporter fetches a tenant-scoped reporter row by path id.
func loadTenantReporter(c *gin.Context, db *gorm.DB) (*models.Reporter, bool) {
	tenant := tenantFrom(c)
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var row models.Reporter
	errFind := db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND id = ?", tenant.ID, id).
		Take(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &row, true
}

func formatReporter(r *models.Reporter) gin.H {
	return gin.H{
		"id":                        r.ID,
		"tenantId":                  r.TenantID,
		"userId":                    r.UserID,
		"designationId":             r.DesignationID,
		"level":                     r.Level,
		"stateId":                   r.StateID,
		"districtId":                r.DistrictID,
		"mandalId":                  r.MandalID,
		"assemblyConstituencyId":    r.AssemblyConstituencyID,
		"subscriptionActive":        r.SubscriptionActive,
		"subscriptionPaidFrom":      r.SubscriptionPaidFrom,
		"subscriptionPaidUntil":     r.SubscriptionPaidUntil,
		"monthlySubscriptionAmount": r.MonthlySubscriptionAmount,
		"idCardCharge":              r.IDCardCharge,
		"manualLoginEnabled":        r.ManualLoginEnabled,
		"manualLoginDays":           r.ManualLoginDays,
		"manualLoginExpiresAt":      r.ManualLoginExpiresAt,
		"kycStatus":                 r.KYCStatus,
		"active":                    r.Active,
		"createdAt":                 r.CreatedAt,
	}
}
