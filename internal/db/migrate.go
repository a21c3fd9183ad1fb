package db

import (
	"encoding/json"
	"fmt"

	"github.com/prajanews/newsdesk/internal/models"
	internalsettings "github.com/prajanews/newsdesk/internal/settings"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migrate applies the schema and seeds default settings rows.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.Tenant{},
		&models.TenantSetting{},
		&models.User{},
		&models.UserProfile{},
		&models.State{},
		&models.District{},
		&models.Mandal{},
		&models.AssemblyConstituency{},
		&models.ReporterDesignation{},
		&models.Reporter{},
		&models.IDCard{},
		&models.Article{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureDefaultSetting(conn, internalsettings.AIGenerateRateLimitKey, internalsettings.DefaultAIGenerateRateLimit); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureDefaultSetting(conn, internalsettings.SubscriptionPollIntervalSecondsKey, internalsettings.DefaultSubscriptionPollIntervalSeconds); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureDefaultSetting(conn, internalsettings.DefaultLanguageKey, internalsettings.DefaultDefaultLanguage); errSeed != nil {
		return errSeed
	}
	return nil
}

// ensureDefaultSetting inserts a settings row when the key is absent.
func ensureDefaultSetting(conn *gorm.DB, key string, value any) error {
	var count int64
	if errCount := conn.Model(&models.Setting{}).Where("key = ?", key).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: check setting %s: %w", key, errCount)
	}
	if count > 0 {
		return nil
	}
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: marshal default setting %s: %w", key, errMarshal)
	}
	row := models.Setting{Key: key, Value: datatypes.JSON(payload)}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		return fmt.Errorf("db: seed setting %s: %w", key, errCreate)
	}
	return nil
}
