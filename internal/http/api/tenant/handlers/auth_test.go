package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prajanews/newsdesk/internal/config"
	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/gorm"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + filepath.Join(t.TempDir(), "newsdesk-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	jwtCfg := config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}
	router := gin.New()
	router.POST("/v1/:slug/auth/login", NewAuthHandler(conn, jwtCfg).Login)
	return router, conn
}

func seedLoginTenant(t *testing.T, conn *gorm.DB) *models.Tenant {
	t.Helper()
	tenant := models.Tenant{
		ID:              uuid.NewString(),
		Name:            "Praja News",
		Slug:            "praja",
		DefaultLanguage: "te",
		Active:          true,
	}
	if errCreate := conn.Create(&tenant).Error; errCreate != nil {
		t.Fatalf("seed tenant: %v", errCreate)
	}
	return &tenant
}

func seedLoginUser(t *testing.T, conn *gorm.DB, mobile, role string) *models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.NewString(),
		Mobile:   mobile,
		Role:     role,
		Language: "te",
		Active:   true,
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("seed user: %v", errCreate)
	}
	return &user
}

func postLogin(t *testing.T, router *gin.Engine, slug, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/"+slug+"/auth/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLogin_TenantAdmin(t *testing.T) {
	router, conn := newAuthTestRouter(t)
	seedLoginTenant(t, conn)
	seedLoginUser(t, conn, "919876543210", models.RoleTenantAdmin)

	rec := postLogin(t, router, "praja", `{"mobile":"+91 98765 43210"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if body.Token == "" {
		t.Fatalf("expected a token in the response")
	}
	if body.Role != models.RoleTenantAdmin {
		t.Fatalf("expected role %q, got %q", models.RoleTenantAdmin, body.Role)
	}
}

func TestLogin_ReporterNeedsSubscriptionOrManualLogin(t *testing.T) {
	router, conn := newAuthTestRouter(t)
	tenant := seedLoginTenant(t, conn)
	user := seedLoginUser(t, conn, "919876543210", models.RoleReporter)

	stateID := uuid.NewString()
	row := models.Reporter{
		ID:            uuid.NewString(),
		TenantID:      tenant.ID,
		UserID:        user.ID,
		DesignationID: uuid.NewString(),
		Level:         models.LevelState,
		StateID:       &stateID,
		KYCStatus:     models.KYCStatusNone,
		Active:        true,
	}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		t.Fatalf("seed reporter: %v", errCreate)
	}

	rec := postLogin(t, router, "praja", `{"mobile":"919876543210"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without subscription, got %d: %s", rec.Code, rec.Body.String())
	}

	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	updates := map[string]any{
		"manual_login_enabled":    true,
		"manual_login_expires_at": &expiresAt,
	}
	if errUpdate := conn.Model(&models.Reporter{}).Where("id = ?", row.ID).Updates(updates).Error; errUpdate != nil {
		t.Fatalf("enable manual login: %v", errUpdate)
	}

	rec = postLogin(t, router, "praja", `{"mobile":"919876543210"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 within manual-login window, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogin_Rejections(t *testing.T) {
	router, conn := newAuthTestRouter(t)
	seedLoginTenant(t, conn)
	seedLoginUser(t, conn, "919876543210", models.RoleTenantAdmin)

	rec := postLogin(t, router, "praja", `{"mobile":"12345"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short mobile, got %d", rec.Code)
	}

	rec = postLogin(t, router, "praja", `{"mobile":"910000000000"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown mobile, got %d", rec.Code)
	}

	rec = postLogin(t, router, "unknown", `{"mobile":"919876543210"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown tenant, got %d", rec.Code)
	}
}
