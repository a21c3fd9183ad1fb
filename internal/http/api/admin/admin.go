// Package admin wires the platform administration API: tenant onboarding,
// geography management, designations, and platform settings.
package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/aigen"
	"github.com/prajanews/newsdesk/internal/config"
	handlers "github.com/prajanews/newsdesk/internal/http/api/admin/handlers"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers. The
// AI provider backs the machine-translation fallback for geography names and
// may be nil.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, ai aigen.Provider) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	adminGroup.POST("/login", authHandler.Login)
	adminGroup.POST("/login/totp", authHandler.LoginTOTP)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg))

	mfaHandler := handlers.NewMFAHandler(db)
	authed.GET("/mfa/status", mfaHandler.Status)
	authed.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	authed.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	authed.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)

	tenantHandler := handlers.NewTenantHandler(db)
	authed.POST("/tenants", tenantHandler.Create)
	authed.GET("/tenants", tenantHandler.List)
	authed.GET("/tenants/:id", tenantHandler.Get)
	authed.PUT("/tenants/:id", tenantHandler.Update)
	authed.POST("/tenants/:id/disable", tenantHandler.Disable)
	authed.POST("/tenants/:id/enable", tenantHandler.Enable)
	authed.PUT("/tenants/:id/settings/:key", tenantHandler.PutSetting)
	authed.GET("/tenants/:id/settings", tenantHandler.ListSettings)

	geoHandler := handlers.NewGeographyHandler(db, ai)
	authed.POST("/states", geoHandler.CreateState)
	authed.GET("/states", geoHandler.ListStates)
	authed.POST("/districts", geoHandler.CreateDistrict)
	authed.GET("/states/:id/districts", geoHandler.ListDistricts)
	authed.POST("/mandals", geoHandler.CreateMandal)
	authed.GET("/districts/:id/mandals", geoHandler.ListMandals)
	authed.POST("/assembly-constituencies", geoHandler.CreateAssembly)
	authed.GET("/districts/:id/assembly-constituencies", geoHandler.ListAssemblies)

	designationHandler := handlers.NewDesignationHandler(db)
	authed.POST("/designations", designationHandler.Create)
	authed.GET("/designations", designationHandler.List)
	authed.PUT("/designations/:id", designationHandler.Update)
	authed.DELETE("/designations/:id", designationHandler.Delete)

	settingHandler := handlers.NewSettingHandler(db)
	authed.POST("/settings", settingHandler.Create)
	authed.GET("/settings", settingHandler.List)
	authed.GET("/settings/:key", settingHandler.Get)
	authed.PUT("/settings/:key", settingHandler.Update)
	authed.DELETE("/settings/:key", settingHandler.Delete)
}

// adminAuthMiddleware validates admin JWTs and loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminUsername", admin.Username)
		c.Set("adminIsSuperAdmin", admin.IsSuperAdmin)
		c.Next()
	}
}
