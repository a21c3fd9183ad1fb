package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	dbutil "github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TenantHandler manages admin CRUD for tenants and their settings.
type TenantHandler struct {
	db *gorm.DB // Database handle for tenant records.
}

// NewTenantHandler constructs a tenant handler.
func NewTenantHandler(db *gorm.DB) *TenantHandler {
	return &TenantHandler{db: db}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// createTenantRequest captures the payload for creating a tenant.
type createTenantRequest struct {
	Name            string `json:"name"`            // Display name.
	Slug            string `json:"slug"`            // URL-safe identifier.
	DefaultLanguage string `json:"defaultLanguage"` // Default content language.
}

// Create validates input and inserts a new tenant.
func (h *TenantHandler) Create(c *gin.Context) {
	var body createTenantRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(body.Name)
	slug := strings.ToLower(strings.TrimSpace(body.Slug))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if !slugPattern.MatchString(slug) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug must be lowercase letters, digits, and hyphens"})
		return
	}

	var existing models.Tenant
	if errFind := h.db.WithContext(c.Request.Context()).Where("slug = ?", slug).First(&existing).Error; errFind == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
		return
	}

	language := strings.TrimSpace(body.DefaultLanguage)
	if language == "" {
		language = "te"
	}

	tenant := models.Tenant{
		ID:              uuid.NewString(),
		Name:            name,
		Slug:            slug,
		DefaultLanguage: language,
		Active:          true,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&tenant).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create tenant failed"})
		return
	}
	c.JSON(http.StatusCreated, formatTenant(&tenant))
}

// List returns all tenants sorted by slug, filtered by ?q= over name and
// slug when present.
func (h *TenantHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Tenant{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+q+"%")
		query = query.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "slug"),
			pattern,
			pattern,
		)
	}

	var rows []models.Tenant
	if errFind := query.Order("slug ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tenants failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatTenant(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tenants": out})
}

// Get returns a tenant by id.
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, ok := h.loadTenant(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, formatTenant(tenant))
}

// updateTenantRequest captures the payload for updating a tenant.
type updateTenantRequest struct {
	Name            *string `json:"name"`            // Optional new display name.
	DefaultLanguage *string `json:"defaultLanguage"` // Optional new default language.
}

// Update changes mutable tenant fields. The slug is immutable.
func (h *TenantHandler) Update(c *gin.Context) {
	tenant, ok := h.loadTenant(c)
	if !ok {
		return
	}
	var body updateTenantRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = name
	}
	if body.DefaultLanguage != nil {
		language := strings.TrimSpace(*body.DefaultLanguage)
		if language == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "defaultLanguage cannot be empty"})
			return
		}
		updates["default_language"] = language
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, formatTenant(tenant))
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(tenant).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update tenant failed"})
		return
	}
	c.JSON(http.StatusOK, formatTenant(tenant))
}

// Disable marks a tenant as not serving.
func (h *TenantHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

// Enable marks a tenant as serving.
func (h *TenantHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

func (h *TenantHandler) setActive(c *gin.Context, active bool) {
	tenant, ok := h.loadTenant(c)
	if !ok {
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(tenant).Update("active", active).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update tenant failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// putTenantSettingRequest captures the payload for writing a tenant setting.
type putTenantSettingRequest struct {
	Value json.RawMessage `json:"value"` // JSON value payload.
}

// tenantSettingKeys are the keys the platform recognizes.
var tenantSettingKeys = map[string]struct{}{
	models.TenantSettingReporterLimits:  {},
	models.TenantSettingReporterPricing: {},
	models.TenantSettingSEODefaults:     {},
	models.TenantSettingAIRateLimit:     {},
}

// PutSetting creates or replaces one tenant setting value.
func (h *TenantHandler) PutSetting(c *gin.Context) {
	tenant, ok := h.loadTenant(c)
	if !ok {
		return
	}
	key := strings.TrimSpace(c.Param("key"))
	if _, known := tenantSettingKeys[key]; !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown setting key"})
		return
	}
	var body putTenantSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	var setting models.TenantSetting
	errFind := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND key = ?", tenant.ID, key).
		Take(&setting).Error
	switch {
	case errFind == nil:
		if errUpdate := h.db.WithContext(c.Request.Context()).Model(&setting).
			Update("value", datatypes.JSON(body.Value)).Error; errUpdate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update setting failed"})
			return
		}
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		setting = models.TenantSetting{TenantID: tenant.ID, Key: key, Value: datatypes.JSON(body.Value)}
		if errCreate := h.db.WithContext(c.Request.Context()).Create(&setting).Error; errCreate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create setting failed"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListSettings returns all settings for one tenant.
func (h *TenantHandler) ListSettings(c *gin.Context) {
	tenant, ok := h.loadTenant(c)
	if !ok {
		return
	}
	var rows []models.TenantSetting
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ?", tenant.ID).
		Order("key ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{"key": row.Key, "value": json.RawMessage(row.Value)})
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

func (h *TenantHandler) loadTenant(c *gin.Context) (*models.Tenant, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var tenant models.Tenant
	if errFind := h.db.WithContext(c.Request.Context()).Where("id = ?", id).Take(&tenant).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &tenant, true
}

func formatTenant(t *models.Tenant) gin.H {
	return gin.H{
		"id":              t.ID,
		"name":            t.Name,
		"slug":            t.Slug,
		"defaultLanguage": t.DefaultLanguage,
		"active":          t.Active,
		"createdAt":       t.CreatedAt,
		"updatedAt":       t.UpdatedAt,
	}
}
