// Package tenant wires the tenant-facing API: reporter onboarding, KYC,
// subscriptions, ID cards, and articles with AI-assisted metadata.
package tenant

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/aigen"
	"github.com/prajanews/newsdesk/internal/config"
	handlers "github.com/prajanews/newsdesk/internal/http/api/tenant/handlers"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/notify"
	"github.com/prajanews/newsdesk/internal/ratelimit"
	"github.com/prajanews/newsdesk/internal/security"
	"gorm.io/gorm"
)

// Deps carries the optional service dependencies of the tenant API.
type Deps struct {
	Limiter  *ratelimit.Manager     // AI generation rate limiter.
	AI       aigen.Provider         // Suggestion backend, nil when unconfigured.
	Notifier *notify.WhatsAppSender // Outbound delivery, nil when unconfigured.
}

// RegisterTenantRoutes registers tenant routes, middleware, and handlers.
func RegisterTenantRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, deps Deps) {
	if r == nil || db == nil {
		return
	}

	tenantGroup := r.Group("/v1/:slug")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	tenantGroup.POST("/auth/login", authHandler.Login)

	authed := tenantGroup.Group("")
	authed.Use(actorAuthMiddleware(db, jwtCfg))

	reporterHandler := handlers.NewReporterHandler(db, deps.Notifier)
	authed.POST("/reporters", reporterHandler.Create)
	authed.GET("/reporters", reporterHandler.List)
	authed.GET("/reporters/:id", reporterHandler.Get)
	authed.PUT("/reporters/:id", reporterHandler.Update)
	authed.PUT("/reporters/:id/subscription", reporterHandler.UpdateSubscription)

	kycHandler := handlers.NewKYCHandler(db)
	authed.POST("/reporters/:id/kyc", kycHandler.Submit)
	authed.POST("/reporters/:id/kyc/review", kycHandler.Review)

	idCardHandler := handlers.NewIDCardHandler(db, deps.Notifier)
	authed.POST("/reporters/:id/id-card", idCardHandler.Issue)
	authed.GET("/reporters/:id/id-card", idCardHandler.Get)
	authed.POST("/reporters/:id/id-card/revoke", idCardHandler.Revoke)

	articleHandler := handlers.NewArticleHandler(db, deps.AI, deps.Limiter)
	authed.POST("/articles", articleHandler.Create)
	authed.GET("/articles", articleHandler.List)
	authed.GET("/articles/:id", articleHandler.Get)
	authed.PUT("/articles/:id", articleHandler.Update)
	authed.POST("/articles/:id/publish", articleHandler.Publish)
	authed.POST("/ai/headlines", articleHandler.GenerateHeadlines)
	authed.POST("/articles/:id/seo/generate", articleHandler.GenerateSEO)
}

// actorAuthMiddleware validates actor JWTs, resolves the tenant by slug,
// and loads actor context.
func actorAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, errJWT := security.ParseActorToken(jwtCfg.Secret, strings.TrimSpace(token))
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		slug := strings.TrimSpace(c.Param("slug"))
		var tenant models.Tenant
		errFind := db.WithContext(c.Request.Context()).Where("slug = ?", slug).Take(&tenant).Error
		if errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		if !tenant.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant disabled"})
			return
		}
		if claims.TenantID != tenant.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token is for another tenant"})
			return
		}

		var user models.User
		if errUser := db.WithContext(c.Request.Context()).Where("id = ?", claims.UserID).Take(&user).Error; errUser != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user disabled"})
			return
		}

		c.Set("tenant", &tenant)
		c.Set("actorUserID", user.ID)
		c.Set("actorRole", claims.Role)
		c.Next()
	}
}
