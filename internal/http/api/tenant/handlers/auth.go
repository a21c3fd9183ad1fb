// Package handlers implements the tenant API endpoints.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/config"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/reporter"
	"github.com/prajanews/newsdesk/internal/security"
	"gorm.io/gorm"
)

// AuthHandler issues tenant actor tokens.
type AuthHandler struct {
	db     *gorm.DB         // Database handle.
	jwtCfg config.JWTConfig // Token secret and expiry.
}

// NewAuthHandler constructs a tenant auth handler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// tenantLoginRequest captures the login payload.
type tenantLoginRequest struct {
	Mobile string `json:"mobile" binding:"required,mobile"` // Registered mobile number.
}

// Login issues an actor token for a tenant admin, or for a reporter whose
// subscription is active or whose manual-login window has not expired.
func (h *AuthHandler) Login(c *gin.Context) {
	var body tenantLoginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a mobile number with at least 10 digits is required"})
		return
	}
	mobile, errMobile := reporter.NormalizeMobile(body.Mobile)
	if errMobile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMobile.Error()})
		return
	}

	slug := strings.TrimSpace(c.Param("slug"))
	var tenant models.Tenant
	if errFind := h.db.WithContext(c.Request.Context()).Where("slug = ?", slug).Take(&tenant).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !tenant.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "tenant disabled"})
		return
	}

	var user models.User
	errUser := h.db.WithContext(c.Request.Context()).Where("mobile = ?", mobile).Take(&user).Error
	if errUser != nil {
		if errors.Is(errUser, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown mobile"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "user disabled"})
		return
	}

	if user.Role != models.RoleTenantAdmin {
		var row models.Reporter
		errReporter := h.db.WithContext(c.Request.Context()).
			Where("tenant_id = ? AND user_id = ? AND active = ?", tenant.ID, user.ID, true).
			Take(&row).Error
		if errReporter != nil {
			if errors.Is(errReporter, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusForbidden, gin.H{"error": "no reporter role in this tenant"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		if !canSignIn(&row, time.Now()) {
			c.JSON(http.StatusForbidden, gin.H{"error": "subscription inactive and manual login expired"})
			return
		}
	}

	token, errSign := security.SignActorToken(h.jwtCfg.Secret, user.ID, tenant.ID, user.Role, h.jwtCfg.Expiry)
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role})
}

// canSignIn reports whether a reporter may sign in right now.
func canSignIn(row *models.Reporter, now time.Time) bool {
	if row.SubscriptionActive {
		return true
	}
	if row.ManualLoginEnabled && row.ManualLoginExpiresAt != nil && now.Before(*row.ManualLoginExpiresAt) {
		return true
	}
	return false
}
