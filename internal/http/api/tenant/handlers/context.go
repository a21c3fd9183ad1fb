package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/apperr"
	"github.com/prajanews/newsdesk/internal/models"
	"github.com/prajanews/newsdesk/internal/reporter"
	log "github.com/sirupsen/logrus"
)

// tenantFrom returns the tenant loaded by the auth middleware.
func tenantFrom(c *gin.Context) *models.Tenant {
	value, ok := c.Get("tenant")
	if !ok {
		return nil
	}
	tenant, _ := value.(*models.Tenant)
	return tenant
}

// actorFrom builds the domain actor from the auth middleware context.
func actorFrom(c *gin.Context) reporter.Actor {
	return reporter.Actor{
		UserID:      c.GetString("actorUserID"),
		TenantAdmin: c.GetString("actorRole") == models.RoleTenantAdmin,
	}
}

// writeAppError renders a typed domain error, or a 500 for everything else.
func writeAppError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		body := gin.H{"code": appErr.Code, "error": appErr.Message}
		if len(appErr.Params) > 0 {
			body["params"] = appErr.Params
		}
		c.JSON(appErr.HTTPStatus, body)
		return
	}
	log.WithError(err).Error("tenant api: internal error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
