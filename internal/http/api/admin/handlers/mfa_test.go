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
	"github.com/pquerna/otp/totp"
	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/gorm"
)

func newAdminTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "admin-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open database: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate database: %v", errMigrate)
	}
	return conn
}

// newMFATestRouter mounts the MFA routes behind a stub that injects the
// admin id the auth middleware would set.
func newMFATestRouter(conn *gorm.DB, adminID uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("adminID", adminID)
		c.Next()
	})
	handler := NewMFAHandler(conn)
	router.GET("/mfa/status", handler.Status)
	router.POST("/mfa/totp/prepare", handler.PrepareTOTP)
	router.POST("/mfa/totp/confirm", handler.ConfirmTOTP)
	router.POST("/mfa/totp/disable", handler.DisableTOTP)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTOTPEnrollmentFlow(t *testing.T) {
	conn := newAdminTestDB(t)
	admin := models.Admin{Username: "root", Password: "hash", Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("seed admin: %v", errCreate)
	}
	router := newMFATestRouter(conn, admin.ID)

	rec := doJSON(t, router, http.MethodGet, "/mfa/status", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"totpEnabled":false`) {
		t.Fatalf("expected totp disabled before enrollment, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/mfa/totp/prepare", "{}")
	if rec.Code != http.StatusOK {
		t.Fatalf("prepare: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var prepared struct {
		Secret string `json:"secret"`
		URL    string `json:"url"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &prepared); errDecode != nil {
		t.Fatalf("decode prepare response: %v", errDecode)
	}
	if prepared.Secret == "" || !strings.HasPrefix(prepared.URL, "otpauth://") {
		t.Fatalf("expected secret and provisioning uri, got %+v", prepared)
	}

	// A wrong code must not promote the pending secret.
	rec = doJSON(t, router, http.MethodPost, "/mfa/totp/confirm", `{"code":"000000"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("confirm with bad code: expected 401, got %d", rec.Code)
	}

	code, errCode := totp.GenerateCode(prepared.Secret, time.Now())
	if errCode != nil {
		t.Fatalf("generate code: %v", errCode)
	}
	rec = doJSON(t, router, http.MethodPost, "/mfa/totp/confirm", `{"code":"`+code+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stored models.Admin
	if errFind := conn.First(&stored, admin.ID).Error; errFind != nil {
		t.Fatalf("reload admin: %v", errFind)
	}
	if stored.TOTPSecret != prepared.Secret {
		t.Fatalf("expected pending secret promoted, got %q", stored.TOTPSecret)
	}
	if stored.TOTPPendingSecret != "" {
		t.Fatalf("expected pending secret cleared, got %q", stored.TOTPPendingSecret)
	}

	// A second prepare now conflicts with the enrolled secret.
	rec = doJSON(t, router, http.MethodPost, "/mfa/totp/prepare", "{}")
	if rec.Code != http.StatusConflict {
		t.Fatalf("prepare after enrollment: expected 409, got %d", rec.Code)
	}

	code, errCode = totp.GenerateCode(stored.TOTPSecret, time.Now())
	if errCode != nil {
		t.Fatalf("generate disable code: %v", errCode)
	}
	rec = doJSON(t, router, http.MethodPost, "/mfa/totp/disable", `{"code":"`+code+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("disable: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if errFind := conn.First(&stored, admin.ID).Error; errFind != nil {
		t.Fatalf("reload admin: %v", errFind)
	}
	if stored.TOTPSecret != "" {
		t.Fatalf("expected secret cleared after disable, got %q", stored.TOTPSecret)
	}
}

func TestConfirmTOTPWithoutPrepare(t *testing.T) {
	conn := newAdminTestDB(t)
	admin := models.Admin{Username: "root", Password: "hash", Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("seed admin: %v", errCreate)
	}
	router := newMFATestRouter(conn, admin.ID)

	rec := doJSON(t, router, http.MethodPost, "/mfa/totp/confirm", `{"code":"123456"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a pending enrollment, got %d", rec.Code)
	}
}
