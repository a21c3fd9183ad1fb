package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/security"
	"github.com/prajanews/newsdesk/internal/settings"
	"gorm.io/gorm"
)

// MFAHandler serves TOTP enrollment for the signed-in admin.
type MFAHandler struct {
	db *gorm.DB // Database handle for admin records.
}

// NewMFAHandler constructs an MFA handler.
func NewMFAHandler(db *gorm.DB) *MFAHandler {
	return &MFAHandler{db: db}
}

// Status reports whether the signed-in admin has TOTP enabled.
func (h *MFAHandler) Status(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"totpEnabled": admin.TOTPSecret != ""})
}

// PrepareTOTP generates a fresh secret and provisioning URI. The secret stays
// pending until a valid code confirms the authenticator captured it.
func (h *MFAHandler) PrepareTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	if admin.TOTPSecret != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "totp already enabled"})
		return
	}

	issuer := settings.StringValue(settings.SiteNameKey, settings.DefaultSiteName)
	secret, url, errGenerate := security.GenerateTOTPSecret(issuer, admin.Username)
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate secret failed"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(admin).
		Update("totp_pending_secret", secret).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update admin failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": secret, "url": url})
}

// confirmTOTPRequest captures the enrollment confirmation payload.
type confirmTOTPRequest struct {
	Code string `json:"code"` // Current TOTP code from the authenticator.
}

// ConfirmTOTP promotes the pending secret once a valid code proves the
// authenticator holds it.
func (h *MFAHandler) ConfirmTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if admin.TOTPPendingSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no pending enrollment"})
		return
	}
	if !security.ValidateTOTPCode(admin.TOTPPendingSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	updates := map[string]any{
		"totp_secret":         admin.TOTPPendingSecret,
		"totp_pending_secret": "",
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(admin).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update admin failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totpEnabled": true})
}

// disableTOTPRequest captures the disable payload.
type disableTOTPRequest struct {
	Code string `json:"code"` // Current TOTP code confirming possession.
}

// DisableTOTP clears the enrolled secret after a valid code.
func (h *MFAHandler) DisableTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	var body disableTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if admin.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp not enrolled"})
		return
	}
	if !security.ValidateTOTPCode(admin.TOTPSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	updates := map[string]any{
		"totp_secret":         "",
		"totp_pending_secret": "",
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(admin).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update admin failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totpEnabled": false})
}

// currentAdmin reloads the signed-in admin row from the auth context.
func (h *MFAHandler) currentAdmin(c *gin.Context) (*models.Admin, bool) {
	id, exists := c.Get("adminID")
	adminID, okCast := id.(uint64)
	if !exists || !okCast {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing admin context"})
		return nil, false
	}
	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, adminID).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
		return nil, false
	}
	return &admin, true
}
