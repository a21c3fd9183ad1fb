package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	dbutil "github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/gorm"
)

// DesignationHandler manages admin CRUD for reporter designations.
type DesignationHandler struct {
	db *gorm.DB // Database handle for designation records.
}

// NewDesignationHandler constructs a designation handler.
func NewDesignationHandler(db *gorm.DB) *DesignationHandler {
	return &DesignationHandler{db: db}
}

// createDesignationRequest captures the payload for creating a designation.
type createDesignationRequest struct {
	Name     string  `json:"name" binding:"required"`        // Display name.
	Level    string  `json:"level" binding:"required,level"` // Administrative level the role works at.
	TenantID *string `json:"tenantId"`                       // Owning tenant, nil for platform-global.
}

// Create validates input and inserts a new designation.
func (h *DesignationHandler) Create(c *gin.Context) {
	var body createDesignationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and a level of STATE, DISTRICT, MANDAL, or ASSEMBLY are required"})
		return
	}

	name := strings.TrimSpace(body.Name)
	level := strings.TrimSpace(body.Level)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	var tenantID *string
	if body.TenantID != nil && strings.TrimSpace(*body.TenantID) != "" {
		trimmed := strings.TrimSpace(*body.TenantID)
		var tenant models.Tenant
		if errFind := h.db.WithContext(c.Request.Context()).Where("id = ?", trimmed).First(&tenant).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "tenant not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		tenantID = &trimmed
	}

	designation := models.ReporterDesignation{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Name:     name,
		Level:    level,
		Active:   true,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&designation).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create designation failed"})
		return
	}
	c.JSON(http.StatusCreated, formatDesignation(&designation))
}

// List returns designations, optionally filtered by tenant or level.
func (h *DesignationHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.ReporterDesignation{})
	if tenantID := strings.TrimSpace(c.Query("tenantId")); tenantID != "" {
		// Tenants see their own designations plus the global set.
		query = query.Where("tenant_id = ? OR tenant_id IS NULL", tenantID)
	}
	if level := strings.TrimSpace(c.Query("level")); level != "" {
		query = query.Where("level = ?", level)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+q+"%")
		query = query.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}

	var rows []models.ReporterDesignation
	if errFind := query.Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list designations failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatDesignation(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"designations": out})
}

// updateDesignationRequest captures the payload for updating a designation.
type updateDesignationRequest struct {
	Name   *string `json:"name"`   // Optional new display name.
	Active *bool   `json:"active"` // Optional assignability flag.
}

// Update changes mutable designation fields. The level is immutable since
// existing reporters depend on it.
func (h *DesignationHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var designation models.ReporterDesignation
	if errFind := h.db.WithContext(c.Request.Context()).Where("id = ?", id).Take(&designation).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	var body updateDesignationRequest
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
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, formatDesignation(&designation))
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&designation).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update designation failed"})
		return
	}
	c.JSON(http.StatusOK, formatDesignation(&designation))
}

// Delete deactivates a designation. Rows with reporters stay for history.
func (h *DesignationHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	res := h.db.WithContext(c.Request.Context()).Model(&models.ReporterDesignation{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete designation failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func formatDesignation(d *models.ReporterDesignation) gin.H {
	return gin.H{
		"id":       d.ID,
		"tenantId": d.TenantID,
		"name":     d.Name,
		"level":    d.Level,
		"active":   d.Active,
	}
}
