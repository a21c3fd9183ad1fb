package reporter

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prajanews/newsdesk/internal/apperr"
	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "reporter-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open database: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate database: %v", errMigrate)
	}
	return conn
}

// seedTenantTree creates one tenant and a small geography tree:
// state S1 -> district D1 -> mandal M1, assembly A1, plus a second
// state S2 -> district D2 -> mandal M2. Returns the tenant id.
func seedTenantTree(t *testing.T, conn *gorm.DB) string {
	t.Helper()
	tenant := models.Tenant{ID: "T1", Name: "Praja News", Slug: "praja", DefaultLanguage: "te", Active: true}
	if err := conn.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	rows := []any{
		&models.State{ID: "S1", Name: "Telangana", Code: "TS"},
		&models.State{ID: "S2", Name: "Andhra Pradesh", Code: "AP"},
		&models.District{ID: "D1", StateID: "S1", Name: "Warangal"},
		&models.District{ID: "D2", StateID: "S2", Name: "Guntur"},
		&models.Mandal{ID: "M1", DistrictID: "D1", Name: "Hanamkonda"},
		&models.Mandal{ID: "M2", DistrictID: "D2", Name: "Tenali"},
		&models.AssemblyConstituency{ID: "A1", DistrictID: "D1", Name: "Warangal East"},
	}
	for _, row := range rows {
		if err := conn.Create(row).Error; err != nil {
			t.Fatalf("seed geography: %v", err)
		}
	}
	return tenant.ID
}

func seedDesignation(t *testing.T, conn *gorm.DB, id, level string) {
	t.Helper()
	row := models.ReporterDesignation{ID: id, Name: id, Level: level, Active: true}
	if err := conn.Create(&row).Error; err != nil {
		t.Fatalf("seed designation: %v", err)
	}
}

func setTenantSetting(t *testing.T, conn *gorm.DB, tenantID, key, value string) {
	t.Helper()
	row := models.TenantSetting{TenantID: tenantID, Key: key, Value: datatypes.JSON([]byte(value))}
	if err := conn.Create(&row).Error; err != nil {
		t.Fatalf("seed tenant setting %s: %v", key, err)
	}
}

func adminActor() Actor { return Actor{PlatformAdmin: true} }

func TestCreate_AdminHappyPath(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	svc := NewService(conn)

	created, errCreate := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "Ravi Kumar",
		Mobile:        "+91 98765 43210",
		MandalID:      "M1",
	})
	if errCreate != nil {
		t.Fatalf("create reporter: %v", errCreate)
	}
	if created.ID == "" {
		t.Fatal("expected generated reporter id")
	}
	if created.MandalID == nil || *created.MandalID != "M1" {
		t.Fatalf("expected mandal M1, got %+v", created)
	}
	if created.StateID != nil || created.DistrictID != nil || created.AssemblyConstituencyID != nil {
		t.Fatalf("expected exactly one location column set, got %+v", created)
	}
	if created.KYCStatus != models.KYCStatusNone {
		t.Fatalf("expected KYC status NONE, got %s", created.KYCStatus)
	}

	var user models.User
	if err := conn.Where("mobile = ?", "919876543210").Take(&user).Error; err != nil {
		t.Fatalf("expected user upserted by normalized mobile: %v", err)
	}
	if user.Role != models.RoleReporter {
		t.Fatalf("expected reporter role, got %s", user.Role)
	}
	if user.Language != "te" {
		t.Fatalf("expected tenant default language, got %s", user.Language)
	}
	var profile models.UserProfile
	if err := conn.Where("user_id = ?", user.ID).Take(&profile).Error; err != nil {
		t.Fatalf("expected profile row: %v", err)
	}
	if profile.FullName != "Ravi Kumar" {
		t.Fatalf("expected full name persisted, got %q", profile.FullName)
	}
}

func TestCreate_IdentityUpsertReusesUser(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	existing := models.User{ID: "U1", Mobile: "9876543210", Role: models.RoleCitizen, Language: "en", Active: true}
	if err := conn.Create(&existing).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := conn.Create(&models.UserProfile{UserID: "U1", FullName: "Old Name"}).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	svc := NewService(conn)

	created, errCreate := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "New Name",
		Mobile:        "98765-43210",
		MandalID:      "M1",
	})
	if errCreate != nil {
		t.Fatalf("create reporter: %v", errCreate)
	}
	if created.UserID != "U1" {
		t.Fatalf("expected existing user reused, got %s", created.UserID)
	}

	var user models.User
	if err := conn.Take(&user, "id = ?", "U1").Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.Role != models.RoleReporter {
		t.Fatalf("expected citizen role corrected to reporter, got %s", user.Role)
	}
	var profile models.UserProfile
	if err := conn.Where("user_id = ?", "U1").Take(&profile).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if profile.FullName != "New Name" {
		t.Fatalf("expected profile name updated, got %q", profile.FullName)
	}
	var userCount int64
	if err := conn.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 1 {
		t.Fatalf("expected no duplicate user rows, got %d", userCount)
	}
}

func TestCreate_QuotaExceeded(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	setTenantSetting(t, conn, tenantID, models.TenantSettingReporterLimits,
		`{"rules":[{"designationId":"mandal-reporter","level":"MANDAL","mandalId":"M1","max":2}]}`)
	svc := NewService(conn)

	for i, mobile := range []string{"9000000001", "9000000002"} {
		if _, err := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
			DesignationID: "mandal-reporter",
			Level:         models.LevelMandal,
			FullName:      "Reporter",
			Mobile:        mobile,
			MandalID:      "M1",
		}); err != nil {
			t.Fatalf("create reporter %d: %v", i+1, err)
		}
	}

	_, errCreate := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "One Too Many",
		Mobile:        "9000000003",
		MandalID:      "M1",
	})
	appErr, ok := apperr.As(errCreate)
	if !ok || appErr.Code != apperr.CodeQuotaExceeded {
		t.Fatalf("expected quota error, got %v", errCreate)
	}
	if appErr.Params["current"] != 2 || appErr.Params["max"] != 2 {
		t.Fatalf("expected current=2 max=2 params, got %v", appErr.Params)
	}

	// A different mandal is a separate quota bucket and falls back to the
	// implicit limit of one.
	if _, err := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "Elsewhere",
		Mobile:        "9000000004",
		MandalID:      "M2",
	}); err != nil {
		t.Fatalf("create reporter in separate bucket: %v", err)
	}
}

func TestCreate_DefaultQuotaIsOne(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "district-reporter", models.LevelDistrict)
	svc := NewService(conn)

	if _, err := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "district-reporter",
		Level:         models.LevelDistrict,
		FullName:      "First",
		Mobile:        "9000000001",
		DistrictID:    "D1",
	}); err != nil {
		t.Fatalf("create first reporter: %v", err)
	}

	_, errCreate := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "district-reporter",
		Level:         models.LevelDistrict,
		FullName:      "Second",
		Mobile:        "9000000002",
		DistrictID:    "D1",
	})
	appErr, ok := apperr.As(errCreate)
	if !ok || appErr.Code != apperr.CodeQuotaExceeded {
		t.Fatalf("expected quota error without configured limits, got %v", errCreate)
	}
}

func TestCreate_ConcurrentCreatesNeverOvershootQuota(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	svc := NewService(conn)

	// Same mandal bucket with the implicit limit of one. Both writers race
	// the count-then-insert window inside the serializable transaction.
	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			_, errs[n] = svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
				DesignationID: "mandal-reporter",
				Level:         models.LevelMandal,
				FullName:      fmt.Sprintf("Racer %d", n),
				Mobile:        fmt.Sprintf("900000000%d", n),
				MandalID:      "M1",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded int
	for _, errCreate := range errs {
		if errCreate == nil {
			succeeded++
			continue
		}
		appErr, ok := apperr.As(errCreate)
		if !ok {
			t.Fatalf("expected typed error for losing writer, got %v", errCreate)
		}
		if appErr.Code != apperr.CodeQuotaExceeded && appErr.Code != apperr.CodeConflict {
			t.Fatalf("expected quota or conflict code for losing writer, got %s", appErr.Code)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one create to commit, got %d (errors: %v)", succeeded, errs)
	}

	var count int64
	if err := conn.Model(&models.Reporter{}).
		Where("tenant_id = ? AND designation_id = ? AND mandal_id = ? AND active = ?", tenantID, "mandal-reporter", "M1", true).
		Count(&count).Error; err != nil {
		t.Fatalf("count bucket: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the bucket capped at one row, got %d", count)
	}
}

func TestCreate_ScopeDeniedAcrossState(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "state-head", models.LevelState)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	svc := NewService(conn)

	head, errHead := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID:      "state-head",
		Level:              models.LevelState,
		FullName:           "State Head",
		Mobile:             "9111111111",
		StateID:            "S1",
		SubscriptionActive: boolPtr(true),
	})
	if errHead != nil {
		t.Fatalf("create state head: %v", errHead)
	}
	actor := Actor{UserID: head.UserID}

	// M2 belongs to state S2, outside the creator's S1 scope.
	_, errCreate := svc.Create(context.Background(), actor, tenantID, CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "Out Of Scope",
		Mobile:        "9222222222",
		MandalID:      "M2",
	})
	appErr, ok := apperr.As(errCreate)
	if !ok || appErr.Code != apperr.CodeAuthorization {
		t.Fatalf("expected authorization error, got %v", errCreate)
	}

	// M1 is inside S1 and succeeds.
	if _, err := svc.Create(context.Background(), actor, tenantID, CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "In Scope",
		Mobile:        "9333333333",
		MandalID:      "M1",
	}); err != nil {
		t.Fatalf("create in-scope reporter: %v", err)
	}
}

func TestCreate_ReporterActorNeedsActiveSubscription(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "state-head", models.LevelState)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	svc := NewService(conn)

	head, errHead := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "state-head",
		Level:         models.LevelState,
		FullName:      "Lapsed Head",
		Mobile:        "9111111111",
		StateID:       "S1",
	})
	if errHead != nil {
		t.Fatalf("create state head: %v", errHead)
	}

	_, errCreate := svc.Create(context.Background(), Actor{UserID: head.UserID}, tenantID, CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "Blocked",
		Mobile:        "9222222222",
		MandalID:      "M1",
	})
	appErr, ok := apperr.As(errCreate)
	if !ok || appErr.Code != apperr.CodeAuthorization {
		t.Fatalf("expected authorization error for inactive subscription, got %v", errCreate)
	}
}

func TestCreate_DesignationLevelMismatch(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "district-reporter", models.LevelDistrict)
	svc := NewService(conn)

	_, errCreate := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "district-reporter",
		Level:         models.LevelMandal,
		FullName:      "Wrong Level",
		Mobile:        "9000000001",
		MandalID:      "M1",
	})
	appErr, ok := apperr.As(errCreate)
	if !ok || appErr.Code != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", errCreate)
	}
}

func TestCreate_PricingDefaultsApplied(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	setTenantSetting(t, conn, tenantID, models.TenantSettingReporterPricing,
		`{"default":{"subscriptionEnabled":true,"monthlyAmount":49900,"idCardCharge":25000}}`)
	svc := NewService(conn)

	created, errCreate := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "Priced",
		Mobile:        "9000000001",
		MandalID:      "M1",
	})
	if errCreate != nil {
		t.Fatalf("create reporter: %v", errCreate)
	}
	if created.MonthlySubscriptionAmount != 49900 {
		t.Fatalf("expected default monthly amount 49900, got %d", created.MonthlySubscriptionAmount)
	}
	if created.IDCardCharge != 25000 {
		t.Fatalf("expected default id-card charge 25000, got %d", created.IDCardCharge)
	}
	if created.SubscriptionActive {
		t.Fatal("expected subscription inactive until payment")
	}

	// Explicit values win over tenant defaults.
	override, errOverride := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID:             "mandal-reporter",
		Level:                     models.LevelMandal,
		FullName:                  "Custom",
		Mobile:                    "9000000002",
		MandalID:                  "M2",
		MonthlySubscriptionAmount: int64Ptr(9900),
		IDCardCharge:              int64Ptr(0),
	})
	if errOverride != nil {
		t.Fatalf("create reporter with overrides: %v", errOverride)
	}
	if override.MonthlySubscriptionAmount != 9900 || override.IDCardCharge != 0 {
		t.Fatalf("expected explicit pricing kept, got %+v", override)
	}
}

func TestCreate_ManualLoginExpiry(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	svc := NewService(conn)

	created, errCreate := svc.Create(context.Background(), adminActor(), tenantID, CreateRequest{
		DesignationID:      "mandal-reporter",
		Level:              models.LevelMandal,
		FullName:           "Grace",
		Mobile:             "9000000001",
		MandalID:           "M1",
		ManualLoginEnabled: true,
		ManualLoginDays:    30,
	})
	if errCreate != nil {
		t.Fatalf("create reporter: %v", errCreate)
	}
	if !created.ManualLoginEnabled || created.ManualLoginDays != 30 {
		t.Fatalf("expected manual login persisted, got %+v", created)
	}
	if created.ManualLoginExpiresAt == nil {
		t.Fatal("expected manual login expiry set")
	}
	days := created.ManualLoginExpiresAt.Sub(created.CreatedAt).Hours() / 24
	if days < 29 || days > 31 {
		t.Fatalf("expected expiry about 30 days out, got %.1f days", days)
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	conn := newTestDB(t)
	tenantID := seedTenantTree(t, conn)
	seedDesignation(t, conn, "mandal-reporter", models.LevelMandal)
	svc := NewService(conn)

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing designation", CreateRequest{Level: models.LevelMandal, FullName: "X", Mobile: "9000000001", MandalID: "M1"}},
		{"invalid level", CreateRequest{DesignationID: "mandal-reporter", Level: "VILLAGE", FullName: "X", Mobile: "9000000001", MandalID: "M1"}},
		{"missing name", CreateRequest{DesignationID: "mandal-reporter", Level: models.LevelMandal, Mobile: "9000000001", MandalID: "M1"}},
		{"short mobile", CreateRequest{DesignationID: "mandal-reporter", Level: models.LevelMandal, FullName: "X", Mobile: "12345", MandalID: "M1"}},
		{"missing location", CreateRequest{DesignationID: "mandal-reporter", Level: models.LevelMandal, FullName: "X", Mobile: "9000000001"}},
		{"unknown designation", CreateRequest{DesignationID: "nope", Level: models.LevelMandal, FullName: "X", Mobile: "9000000001", MandalID: "M1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errCreate := svc.Create(context.Background(), adminActor(), tenantID, tc.req)
			appErr, ok := apperr.As(errCreate)
			if !ok || appErr.Code != apperr.CodeValidation {
				t.Fatalf("expected validation error, got %v", errCreate)
			}
		})
	}
}

func TestCreate_UnknownTenant(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)

	_, errCreate := svc.Create(context.Background(), adminActor(), "missing", CreateRequest{
		DesignationID: "mandal-reporter",
		Level:         models.LevelMandal,
		FullName:      "X",
		Mobile:        "9000000001",
		MandalID:      "M1",
	})
	appErr, ok := apperr.As(errCreate)
	if !ok || appErr.Code != apperr.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", errCreate)
	}
}

func TestNormalizeMobile(t *testing.T) {
	got, errNorm := NormalizeMobile(" +91 (98765) 43-210 ")
	if errNorm != nil {
		t.Fatalf("normalize: %v", errNorm)
	}
	if got != "919876543210" {
		t.Fatalf("expected digits only, got %q", got)
	}
	if _, err := NormalizeMobile("98-76"); err == nil {
		t.Fatal("expected error for short mobile")
	}
}

func boolPtr(v bool) *bool    { return &v }
func int64Ptr(v int64) *int64 { return &v }
