// Package front wires the public read-only API for published articles.
package front

import (
	"github.com/gin-gonic/gin"
	handlers "github.com/prajanews/newsdesk/internal/http/api/front/handlers"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers the public routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB) {
	if r == nil || db == nil {
		return
	}
	articleHandler := handlers.NewPublicArticleHandler(db)
	r.GET("/public/:slug/articles", articleHandler.List)
	r.GET("/public/:slug/articles/:id", articleHandler.Get)
}
