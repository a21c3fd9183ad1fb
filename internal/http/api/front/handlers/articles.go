// Package handlers implements the public API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/seo"
	"gorm.io/gorm"
)

// PublicArticleHandler serves published articles with resolved SEO.
type PublicArticleHandler struct {
	db *gorm.DB // Database handle.
}

// NewPublicArticleHandler constructs a public article handler.
func NewPublicArticleHandler(db *gorm.DB) *PublicArticleHandler {
	return &PublicArticleHandler{db: db}
}

// List returns recent published articles for a tenant.
func (h *PublicArticleHandler) List(c *gin.Context) {
	tenant, ok := h.loadTenant(c)
	if !ok {
		return
	}

	limit := 20
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var rows []models.Article
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND status = ?", tenant.ID, models.ArticleStatusPublished).
		Order("published_at DESC").
		Limit(limit).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list articles failed"})
		return
	}

	defaults := h.loadSEODefaults(c, tenant.ID)
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatArticle(&rows[i], defaults))
	}
	c.JSON(http.StatusOK, gin.H{"articles": out})
}

// Get returns one published article.
func (h *PublicArticleHandler) Get(c *gin.Context) {
	tenant, ok := h.loadTenant(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	var article models.Article
	errFind := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND id = ? AND status = ?", tenant.ID, id, models.ArticleStatusPublished).
		Take(&article).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatArticle(&article, h.loadSEODefaults(c, tenant.ID)))
}

func (h *PublicArticleHandler) loadTenant(c *gin.Context) (*models.Tenant, bool) {
	slug := strings.TrimSpace(c.Param("slug"))
	var tenant models.Tenant
	errFind := h.db.WithContext(c.Request.Context()).
		Where("slug = ? AND active = ?", slug, true).
		Take(&tenant).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &tenant, true
}

// loadSEODefaults reads the tenant's seo_defaults setting, tolerating its
// absence.
func (h *PublicArticleHandler) loadSEODefaults(c *gin.Context, tenantID string) seo.Defaults {
	var row models.TenantSetting
	errFind := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND key = ?", tenantID, models.TenantSettingSEODefaults).
		Take(&row).Error
	if errFind != nil {
		return seo.Defaults{}
	}
	defaults, errParse := seo.ParseDefaults([]byte(row.Value))
	if errParse != nil {
		return seo.Defaults{}
	}
	return defaults
}

func (h *PublicArticleHandler) formatArticle(a *models.Article, defaults seo.Defaults) gin.H {
	var keywords []string
	if len(a.SEOKeywords) > 0 {
		_ = json.Unmarshal(a.SEOKeywords, &keywords)
	}
	meta := seo.Resolve(a.Headline, a.SEOTitle, a.SEODescription, keywords, defaults)
	return gin.H{
		"id":          a.ID,
		"headline":    a.Headline,
		"summary":     a.Summary,
		"body":        a.Body,
		"language":    a.Language,
		"publishedAt": a.PublishedAt,
		"seo":         meta,
	}
}
