package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prajanews/newsdesk/internal/aigen"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/ratelimit"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ArticleHandler manages tenant articles and AI-assisted metadata.
type ArticleHandler struct {
	db      *gorm.DB           // Database handle.
	ai      aigen.Provider     // Suggestion backend, nil when unconfigured.
	limiter *ratelimit.Manager // AI generation rate limiter.
}

// NewArticleHandler constructs an article handler.
func NewArticleHandler(db *gorm.DB, ai aigen.Provider, limiter *ratelimit.Manager) *ArticleHandler {
	return &ArticleHandler{db: db, ai: ai, limiter: limiter}
}

// createArticleRequest captures the payload for filing an article.
type createArticleRequest struct {
	Headline string `json:"headline"` // Display headline.
	Summary  string `json:"summary"`  // Short summary.
	Body     string `json:"body"`     // Full article body.
	Language string `json:"language"` // Optional language, tenant default otherwise.
}

// Create files a new draft article for the acting reporter.
func (h *ArticleHandler) Create(c *gin.Context) {
	tenant := tenantFrom(c)
	filer, ok := h.actingReporter(c)
	if !ok {
		return
	}
	var body createArticleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	headline := strings.TrimSpace(body.Headline)
	if headline == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "headline is required"})
		return
	}
	language := strings.TrimSpace(body.Language)
	if language == "" {
		language = tenant.DefaultLanguage
	}

	article := models.Article{
		ID:         uuid.NewString(),
		TenantID:   tenant.ID,
		ReporterID: filer.ID,
		Headline:   headline,
		Summary:    strings.TrimSpace(body.Summary),
		Body:       body.Body,
		Language:   language,
		Status:     models.ArticleStatusDraft,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&article).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create article failed"})
		return
	}
	c.JSON(http.StatusCreated, formatArticle(&article))
}

// List returns the tenant's articles, newest first.
func (h *ArticleHandler) List(c *gin.Context) {
	tenant := tenantFrom(c)
	query := h.db.WithContext(c.Request.Context()).Model(&models.Article{}).
		Where("tenant_id = ?", tenant.ID)
	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		query = query.Where("status = ?", status)
	}
	if reporterID := strings.TrimSpace(c.Query("reporterId")); reporterID != "" {
		query = query.Where("reporter_id = ?", reporterID)
	}

	limit := 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	var rows []models.Article
	if errFind := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list articles failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatArticle(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"articles": out})
}

// Get returns one article.
func (h *ArticleHandler) Get(c *gin.Context) {
	article, ok := h.loadArticle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, formatArticle(article))
}

// updateArticleRequest captures mutable article fields.
type updateArticleRequest struct {
	Headline       *string  `json:"headline"`       // New headline.
	Summary        *string  `json:"summary"`        // New summary.
	Body           *string  `json:"body"`           // New body.
	SEOTitle       *string  `json:"seoTitle"`       // SEO title override.
	SEODescription *string  `json:"seoDescription"` // SEO description override.
	SEOKeywords    []string `json:"seoKeywords"`    // SEO keyword list.
}

// Update edits a draft or published article.
func (h *ArticleHandler) Update(c *gin.Context) {
	article, ok := h.loadArticle(c)
	if !ok {
		return
	}
	if !h.mayEdit(c, article) {
		return
	}
	var body updateArticleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Headline != nil {
		headline := strings.TrimSpace(*body.Headline)
		if headline == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "headline cannot be empty"})
			return
		}
		updates["headline"] = headline
	}
	if body.Summary != nil {
		updates["summary"] = strings.TrimSpace(*body.Summary)
	}
	if body.Body != nil {
		updates["body"] = *body.Body
	}
	if body.SEOTitle != nil {
		updates["seo_title"] = strings.TrimSpace(*body.SEOTitle)
	}
	if body.SEODescription != nil {
		updates["seo_description"] = strings.TrimSpace(*body.SEODescription)
	}
	if body.SEOKeywords != nil {
		raw, errMarshal := json.Marshal(body.SEOKeywords)
		if errMarshal != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seoKeywords"})
			return
		}
		updates["seo_keywords"] = datatypes.JSON(raw)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, formatArticle(article))
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(article).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update article failed"})
		return
	}
	c.JSON(http.StatusOK, formatArticle(article))
}

// Publish moves an article to PUBLISHED and stamps the publication time.
func (h *ArticleHandler) Publish(c *gin.Context) {
	article, ok := h.loadArticle(c)
	if !ok {
		return
	}
	if !h.mayEdit(c, article) {
		return
	}
	if article.Status == models.ArticleStatusPublished {
		c.JSON(http.StatusConflict, gin.H{"error": "already published"})
		return
	}

	now := time.Now().UTC()
	updates := map[string]any{"status": models.ArticleStatusPublished, "published_at": &now}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(article).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "publish article failed"})
		return
	}
	c.JSON(http.StatusOK, formatArticle(article))
}

// generateHeadlinesRequest captures the AI headline payload.
type generateHeadlinesRequest struct {
	Body     string `json:"body"`     // Article body to headline.
	Language string `json:"language"` // Optional target language.
	Count    int    `json:"count"`    // Optional suggestion count.
}

// GenerateHeadlines returns AI headline suggestions, rate limited per
// tenant and user.
func (h *ArticleHandler) GenerateHeadlines(c *gin.Context) {
	tenant := tenantFrom(c)
	if !h.allowAI(c) {
		return
	}
	var body generateHeadlinesRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body is required"})
		return
	}
	language := strings.TrimSpace(body.Language)
	if language == "" {
		language = tenant.DefaultLanguage
	}

	result, errGenerate := h.ai.GenerateHeadlines(c.Request.Context(), aigen.HeadlineRequest{
		Body:     body.Body,
		Language: language,
		Count:    body.Count,
	})
	if errGenerate != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "headline generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": result.Suggestions})
}

// GenerateSEO fills an article's SEO fields from the AI backend, rate
// limited per tenant and user.
func (h *ArticleHandler) GenerateSEO(c *gin.Context) {
	article, ok := h.loadArticle(c)
	if !ok {
		return
	}
	if !h.mayEdit(c, article) {
		return
	}
	if !h.allowAI(c) {
		return
	}

	result, errGenerate := h.ai.GenerateSEO(c.Request.Context(), aigen.SEORequest{
		Headline: article.Headline,
		Body:     article.Body,
		Language: article.Language,
	})
	if errGenerate != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "seo generation failed"})
		return
	}

	rawKeywords, errMarshal := json.Marshal(result.Keywords)
	if errMarshal != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode keywords failed"})
		return
	}
	updates := map[string]any{
		"seo_title":       result.Title,
		"seo_description": result.Description,
		"seo_keywords":    datatypes.JSON(rawKeywords),
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(article).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store seo failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"seoTitle":       result.Title,
		"seoDescription": result.Description,
		"seoKeywords":    result.Keywords,
	})
}

// allowAI enforces the AI generation rate limit and the provider presence.
func (h *ArticleHandler) allowAI(c *gin.Context) bool {
	if h.ai == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ai generation is not configured"})
		return false
	}
	tenant := tenantFrom(c)
	ctx := c.Request.Context()

	decision, errResolve := ratelimit.ResolveLimit(ctx, h.db, tenant.ID)
	if errResolve != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve rate limit failed"})
		return false
	}
	key := ratelimit.KeyForActor(tenant.ID, c.GetString("actorUserID"))
	result, errAllow := h.limiter.Allow(ctx, key, decision.Limit)
	if errAllow != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate limit check failed"})
		return false
	}
	if !result.Allowed {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return false
	}
	return true
}

// mayEdit allows tenant admins, or the reporter who filed the article.
func (h *ArticleHandler) mayEdit(c *gin.Context, article *models.Article) bool {
	if actorFrom(c).TenantAdmin {
		return true
	}
	filer, ok := h.actingReporter(c)
	if !ok {
		return false
	}
	if filer.ID != article.ReporterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your article"})
		return false
	}
	return true
}

// actingReporter loads the active reporter row of the acting user.
func (h *ArticleHandler) actingReporter(c *gin.Context) (*models.Reporter, bool) {
	tenant := tenantFrom(c)
	var row models.Reporter
	errFind := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND user_id = ? AND active = ?", tenant.ID, c.GetString("actorUserID"), true).
		Take(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "no active reporter role in this tenant"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &row, true
}

func formatArticle(a *models.Article) gin.H {
	var keywords []string
	if len(a.SEOKeywords) > 0 {
		_ = json.Unmarshal(a.SEOKeywords, &keywords)
	}
	return gin.H{
		"id":             a.ID,
		"tenantId":       a.TenantID,
		"reporterId":     a.ReporterID,
		"headline":       a.Headline,
		"summary":        a.Summary,
		"body":           a.Body,
		"language":       a.Language,
		"seoTitle":       a.SEOTitle,
		"seoDescription": a.SEODescription,
		"seoKeywords":    keywords,
		"status":         a.Status,
		"publishedAt":    a.PublishedAt,
		"createdAt":      a.CreatedAt,
	}
}

// loadArticle fetches the article named in the path within the tenant.
func (h *ArticleHandler) loadArticle(c *gin.Context) (*models.Article, bool) {
	tenant := tenantFrom(c)
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var article models.Article
	errFind := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND id = ?", tenant.ID, id).
		Take(&article).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &article, true
}
