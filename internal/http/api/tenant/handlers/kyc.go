package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KYCHandler manages reporter KYC submission and review.
type KYCHandler struct {
	db *gorm.DB // Database handle.
}

// NewKYCHandler constructs a KYC handler.
func NewKYCHandler(db *gorm.DB) *KYCHandler {
	return &KYCHandler{db: db}
}

// kycDocument is one submitted document reference.
type kycDocument struct {
	Type   string `json:"type"`   // Document kind, e.g. "aadhaar", "pan".
	Number string `json:"number"` // Masked document number.
	URL    string `json:"url"`    // Uploaded document URL.
}

// submitKYCRequest captures the document submission payload.
type submitKYCRequest struct {
	Documents []kycDocument `json:"documents"` // Submitted documents.
}

// Submit records KYC documents and moves the reporter to PENDING review.
func (h *KYCHandler) Submit(c *gin.Context) {
	row, ok := loadTenantReporter(c, h.db)
	if !ok {
		return
	}
	var body submitKYCRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Documents) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "documents are required"})
		return
	}
	for _, doc := range body.Documents {
		if strings.TrimSpace(doc.Type) == "" || strings.TrimSpace(doc.URL) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "each document needs type and url"})
			return
		}
	}
	if row.KYCStatus == models.KYCStatusVerified {
		c.JSON(http.StatusConflict, gin.H{"error": "kyc already verified"})
		return
	}

	raw, errMarshal := json.Marshal(body.Documents)
	if errMarshal != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode documents failed"})
		return
	}
	updates := map[string]any{
		"kyc_status":    models.KYCStatusPending,
		"kyc_documents": datatypes.JSON(raw),
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(row).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit kyc failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kycStatus": models.KYCStatusPending})
}

// reviewKYCRequest captures the review decision payload.
type reviewKYCRequest struct {
	Decision string `json:"decision"` // VERIFIED or REJECTED.
	Reason   string `json:"reason"`   // Required when rejecting.
}

// Review records a review decision. Only tenant admins may review.
func (h *KYCHandler) Review(c *gin.Context) {
	if !actorFrom(c).TenantAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only tenant admins may review kyc"})
		return
	}
	row, ok := loadTenantReporter(c, h.db)
	if !ok {
		return
	}
	var body reviewKYCRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	decision := strings.ToUpper(strings.TrimSpace(body.Decision))
	if decision != models.KYCStatusVerified && decision != models.KYCStatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be VERIFIED or REJECTED"})
		return
	}
	if decision == models.KYCStatusRejected && strings.TrimSpace(body.Reason) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required when rejecting"})
		return
	}
	if row.KYCStatus != models.KYCStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "no pending kyc submission"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(row).
		Update("kyc_status", decision).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "review kyc failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kycStatus": decision})
}
