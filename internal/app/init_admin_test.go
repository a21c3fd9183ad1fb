package app

import (
	"path/filepath"
	"testing"

	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	internalsettings "github.com/prajanews/newsdesk/internal/settings"
)

func TestCreateAdminUserWithConn_SetsSuperAdmin(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "newsdesk-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	if errCreate := CreateAdminUserWithConn(conn, "admin", "password", "Praja News"); errCreate != nil {
		t.Fatalf("CreateAdminUserWithConn: %v", errCreate)
	}

	var admin models.Admin
	if errFind := conn.First(&admin).Error; errFind != nil {
		t.Fatalf("find admin: %v", errFind)
	}
	if !admin.IsSuperAdmin {
		t.Fatalf("expected first admin to be super admin")
	}

	var setting models.Setting
	if errFind := conn.Where("key = ?", internalsettings.SiteNameKey).First(&setting).Error; errFind != nil {
		t.Fatalf("find site name setting: %v", errFind)
	}
	if string(setting.Value) != `"Praja News"` {
		t.Fatalf("expected site name %q, got %s", "Praja News", setting.Value)
	}
}

func TestValidateAdminCredentials(t *testing.T) {
	req := InitRequest{AdminUsername: " admin ", AdminPassword: "password", SiteName: ""}
	if err := validateAdminCredentials(&req); err != nil {
		t.Fatalf("validateAdminCredentials: %v", err)
	}
	if req.AdminUsername != "admin" {
		t.Fatalf("expected trimmed username, got %q", req.AdminUsername)
	}
	if req.SiteName != internalsettings.DefaultSiteName {
		t.Fatalf("expected default site name, got %q", req.SiteName)
	}

	short := InitRequest{AdminUsername: "admin", AdminPassword: "12345"}
	if err := validateAdminCredentials(&short); err == nil {
		t.Fatalf("expected error for short password")
	}
}
