// Package app boots the newsdesk server: it opens the database, runs
// migrations, wires the HTTP APIs, and starts the background sweeps.
package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prajanews/newsdesk/internal/aigen"
	"github.com/prajanews/newsdesk/internal/config"
	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/http/api/admin"
	"github.com/prajanews/newsdesk/internal/http/api/front"
	tenantapi "github.com/prajanews/newsdesk/internal/http/api/tenant"
	"github.com/prajanews/newsdesk/internal/jobs"
	"github.com/prajanews/newsdesk/internal/notify"
	"github.com/prajanews/newsdesk/internal/ratelimit"
	internalsettings "github.com/prajanews/newsdesk/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the newsdesk API server with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := internalsettings.RefreshDBConfig(ctx, conn); errRefresh != nil {
		return errRefresh
	}

	initialized, errInit := HasAdminInitialized(conn)
	if errInit != nil {
		return errInit
	}
	var initState atomic.Bool
	initState.Store(initialized)

	jwtConfig, _ := config.LoadJWTConfig(configPath)
	if strings.TrimSpace(jwtConfig.Secret) == "" {
		log.Warn("jwt secret is empty, tokens will not survive scrutiny; set jwt.secret in the config file")
	}

	aiProvider := buildAIProvider(ctx)
	notifier := buildNotifier()
	limiter := ratelimit.NewManager(nil, nil, nil)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	admin.RegisterAdminRoutes(engine, conn, jwtConfig, aiProvider)
	tenantapi.RegisterTenantRoutes(engine, conn, jwtConfig, tenantapi.Deps{
		Limiter:  limiter,
		AI:       aiProvider,
		Notifier: notifier,
	})
	front.RegisterFrontRoutes(engine, conn)

	engine.GET("/v0/init/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, InitStatusResponse{Initialized: initState.Load()})
	})
	engine.GET("/v0/init/prefill", func(c *gin.Context) {
		prefill, errPrefill := initPrefillFromDSN(dsn)
		if errPrefill != nil {
			c.JSON(http.StatusOK, gin.H{"locked": true})
			return
		}
		c.JSON(http.StatusOK, struct {
			Locked bool `json:"locked"`
			initPrefill
		}{Locked: true, initPrefill: prefill})
	})
	engine.POST("/v0/init/setup", func(c *gin.Context) {
		if ok, errCheck := HasAdminInitialized(conn); errCheck != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "check admin status failed"})
			return
		} else if ok {
			initState.Store(true)
			c.JSON(http.StatusBadRequest, gin.H{"error": "System already initialized"})
			return
		}

		var req InitRequest
		if errBind := c.ShouldBindJSON(&req); errBind != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errBind.Error()})
			return
		}
		if errValidate := validateAdminCredentials(&req); errValidate != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
			return
		}

		if errAdmin := CreateAdminUserWithConn(conn, req.AdminUsername, req.AdminPassword, req.SiteName); errAdmin != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
			return
		}
		initState.Store(true)
		c.JSON(http.StatusOK, gin.H{"message": "Initialization successful"})
	})

	jobs.NewSubscriptionPoller(conn).Start(ctx)

	addr := config.LoadListenAddr(configPath)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting newsdesk server on %s with config=%s", addr, configPath)
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}
	return nil
}

// buildAIProvider resolves the Gemini provider from platform settings. A
// nil return disables the AI generation endpoints rather than failing boot.
func buildAIProvider(ctx context.Context) aigen.Provider {
	provider, errBuild := aigen.NewGeminiFromSettings(ctx)
	if errBuild != nil {
		if errors.Is(errBuild, aigen.ErrNotConfigured) {
			log.Info("gemini is not configured, AI generation endpoints are disabled")
		} else {
			log.WithError(errBuild).Warn("gemini setup failed, AI generation endpoints are disabled")
		}
		return nil
	}
	return provider
}

// buildNotifier resolves the WhatsApp sender from platform settings. A nil
// return makes outbound notifications a no-op.
func buildNotifier() *notify.WhatsAppSender {
	sender, errBuild := notify.NewWhatsAppFromSettings()
	if errBuild != nil {
		if errors.Is(errBuild, notify.ErrNotConfigured) {
			log.Info("whatsapp gateway is not configured, notifications are disabled")
		} else {
			log.WithError(errBuild).Warn("whatsapp setup failed, notifications are disabled")
		}
		return nil
	}
	return sender
}
