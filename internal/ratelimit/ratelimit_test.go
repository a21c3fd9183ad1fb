package ratelimit

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/prajanews/newsdesk/internal/db"
	"github.com/prajanews/newsdesk/internal/models"
	internalsettings "github.com/prajanews/newsdesk/internal/settings"
	"gorm.io/datatypes"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1700000000, 0)

	for i := 0; i < 2; i++ {
		result, errAllow := limiter.Allow(context.Background(), "t:T1:u:U1", 2, now)
		if errAllow != nil {
			t.Fatalf("allow %d: %v", i+1, errAllow)
		}
		if !result.Allowed {
			t.Fatalf("expected request %d allowed", i+1)
		}
	}

	result, errAllow := limiter.Allow(context.Background(), "t:T1:u:U1", 2, now)
	if errAllow != nil {
		t.Fatalf("allow over limit: %v", errAllow)
	}
	if result.Allowed {
		t.Fatal("expected third request in the same second denied")
	}

	next, errNext := limiter.Allow(context.Background(), "t:T1:u:U1", 2, now.Add(time.Second))
	if errNext != nil {
		t.Fatalf("allow next window: %v", errNext)
	}
	if !next.Allowed {
		t.Fatal("expected request allowed in the next window")
	}
}

func TestMemoryLimiter_ZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter()
	result, errAllow := limiter.Allow(context.Background(), "t:T1:u:U1", 0, time.Now())
	if errAllow != nil {
		t.Fatalf("allow: %v", errAllow)
	}
	if !result.Allowed {
		t.Fatal("expected zero limit to disable limiting")
	}
}

func TestManager_MemoryFallbackWithoutRedis(t *testing.T) {
	manager := NewManager(func() SettingsConfig {
		return SettingsConfig{Limit: 1}
	}, nil, nil)

	first, errFirst := manager.Allow(context.Background(), "t:T1:u:U1", 1)
	if errFirst != nil {
		t.Fatalf("first allow: %v", errFirst)
	}
	if !first.Allowed {
		t.Fatal("expected first request allowed")
	}
	second, errSecond := manager.Allow(context.Background(), "t:T1:u:U1", 1)
	if errSecond != nil {
		t.Fatalf("second allow: %v", errSecond)
	}
	if second.Allowed {
		t.Fatal("expected second request in the same second denied")
	}
}

func TestKeyForActor(t *testing.T) {
	if got := KeyForActor("T1", "U1"); got != "t:T1:u:U1" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := KeyForActor("", "U1"); got != "" {
		t.Fatalf("expected empty key for missing tenant, got %q", got)
	}
}

func TestResolveLimit_TenantOverrideWins(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "ratelimit-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open database: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate database: %v", errMigrate)
	}

	internalsettings.StoreDBConfig(time.Now(), map[string]json.RawMessage{
		internalsettings.AIGenerateRateLimitKey: json.RawMessage(`5`),
	})
	t.Cleanup(func() { internalsettings.StoreDBConfig(time.Time{}, nil) })

	decision, errResolve := ResolveLimit(context.Background(), conn, "T1")
	if errResolve != nil {
		t.Fatalf("resolve without override: %v", errResolve)
	}
	if decision.Limit != 5 {
		t.Fatalf("expected platform default 5, got %d", decision.Limit)
	}

	override := models.TenantSetting{TenantID: "T1", Key: models.TenantSettingAIRateLimit, Value: datatypes.JSON([]byte(`3`))}
	if err := conn.Create(&override).Error; err != nil {
		t.Fatalf("seed tenant override: %v", err)
	}

	decision, errResolve = ResolveLimit(context.Background(), conn, "T1")
	if errResolve != nil {
		t.Fatalf("resolve with override: %v", errResolve)
	}
	if decision.Limit != 3 {
		t.Fatalf("expected tenant override 3, got %d", decision.Limit)
	}
}

func TestLoadSettingsConfig_Defaults(t *testing.T) {
	internalsettings.StoreDBConfig(time.Time{}, nil)
	cfg := LoadSettingsConfig()
	if cfg.Limit != internalsettings.DefaultAIGenerateRateLimit {
		t.Fatalf("expected default limit, got %d", cfg.Limit)
	}
	if cfg.RedisPrefix != internalsettings.DefaultAIRateLimitRedisPrefix {
		t.Fatalf("expected default prefix, got %q", cfg.RedisPrefix)
	}
	if cfg.RedisEnabled {
		t.Fatal("expected redis disabled by default")
	}
}
