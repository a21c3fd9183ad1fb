package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/notify"
	"gorm.io/gorm"
)

// cardValidity is how long an issued press card stays valid.
const cardValidity = 365 * 24 * time.Hour

// IDCardHandler manages press-card issuance.
type IDCardHandler struct {
	db       *gorm.DB               // Database handle.
	notifier *notify.WhatsAppSender // Delivery channel, nil when unconfigured.
}

// NewIDCardHandler constructs an ID card handler.
func NewIDCardHandler(db *gorm.DB, notifier *notify.WhatsAppSender) *IDCardHandler {
	return &IDCardHandler{db: db, notifier: notifier}
}

// Issue creates a press card for a KYC-verified reporter and sends the
// card details over WhatsApp when a gateway is configured.
func (h *IDCardHandler) Issue(c *gin.Context) {
	row, ok := loadTenantReporter(c, h.db)
	if !ok {
		return
	}
	if !row.Active {
		c.JSON(http.StatusConflict, gin.H{"error": "reporter is inactive"})
		return
	}
	if row.KYCStatus != models.KYCStatusVerified {
		c.JSON(http.StatusConflict, gin.H{"error": "kyc must be verified before issuing a card"})
		return
	}

	var existing models.IDCard
	errFind := h.db.WithContext(c.Request.Context()).
		Where("reporter_id = ? AND status = ?", row.ID, models.IDCardStatusIssued).
		Take(&existing).Error
	if errFind == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "an issued card already exists"})
		return
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	now := time.Now().UTC()
	card := models.IDCard{
		ID:          uuid.NewString(),
		ReporterID:  row.ID,
		CardNumber:  strings.ToUpper(uuid.NewString()[:8]),
		ChargePaise: row.IDCardCharge,
		Status:      models.IDCardStatusIssued,
		IssuedAt:    now,
		ExpiresAt:   now.Add(cardValidity),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&card).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue card failed"})
		return
	}

	h.deliverCard(c, row, &card)
	c.JSON(http.StatusCreated, formatIDCard(&card))
}

// deliverCard sends the card details to the reporter's mobile, best effort.
func (h *IDCardHandler) deliverCard(c *gin.Context, row *models.Reporter, card *models.IDCard) {
	if h.notifier == nil {
		return
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("id = ?", row.UserID).Take(&user).Error; errFind != nil {
		return
	}
	h.notifier.SendAsync(notify.Message{
		To:       user.Mobile,
		Template: "id_card_issued",
		Params: map[string]any{
			"cardNumber": card.CardNumber,
			"expiresAt":  card.ExpiresAt.Format("2006-01-02"),
			"charge":     fmt.Sprintf("%.2f", float64(card.ChargePaise)/100),
		},
	})
}

// Get returns the reporter's current card.
func (h *IDCardHandler) Get(c *gin.Context) {
	row, ok := loadTenantReporter(c, h.db)
	if !ok {
		return
	}
	var card models.IDCard
	errFind := h.db.WithContext(c.Request.Context()).
		Where("reporter_id = ?", row.ID).
		Order("created_at DESC").
		Take(&card).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatIDCard(&card))
}

// Revoke withdraws the reporter's issued card. Only tenant admins may
// revoke.
func (h *IDCardHandler) Revoke(c *gin.Context) {
	if !actorFrom(c).TenantAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only tenant admins may revoke cards"})
		return
	}
	row, ok := loadTenantReporter(c, h.db)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.IDCard{}).
		Where("reporter_id = ? AND status = ?", row.ID, models.IDCardStatusIssued).
		Update("status", models.IDCardStatusRevoked)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke card failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no issued card"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func formatIDCard(card *models.IDCard) gin.H {
	return gin.H{
		"id":          card.ID,
		"reporterId":  card.ReporterID,
		"cardNumber":  card.CardNumber,
		"chargePaise": card.ChargePaise,
		"status":      card.Status,
		"issuedAt":    card.IssuedAt,
		"expiresAt":   card.ExpiresAt,
	}
}
