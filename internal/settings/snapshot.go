package settings

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prajanews/newsdesk/internal/models"
	"gorm.io/gorm"
)

// dbConfig is the in-memory snapshot of the settings table.
type dbConfig struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

var (
	dbConfigMu      sync.RWMutex
	dbConfigCurrent dbConfig
)

// StoreDBConfig replaces the settings snapshot.
func StoreDBConfig(updatedAt time.Time, values map[string]json.RawMessage) {
	dbConfigMu.Lock()
	dbConfigCurrent = dbConfig{updatedAt: updatedAt, values: values}
	dbConfigMu.Unlock()
}

// DBConfigValue returns the raw JSON value for a settings key.
func DBConfigValue(key string) (json.RawMessage, bool) {
	dbConfigMu.RLock()
	defer dbConfigMu.RUnlock()
	if dbConfigCurrent.values == nil {
		return nil, false
	}
	value, ok := dbConfigCurrent.values[key]
	return value, ok
}

// RefreshDBConfig rebuilds the snapshot from the settings table.
func RefreshDBConfig(ctx context.Context, conn *gorm.DB) error {
	var rows []models.Setting
	if errFind := conn.WithContext(ctx).
		Select("key", "value", "updated_at").
		Order("key ASC").
		Find(&rows).Error; errFind != nil {
		return errFind
	}

	values := make(map[string]json.RawMessage, len(rows))
	maxUpdatedAt := time.Time{}
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			continue
		}
		values[key] = json.RawMessage(row.Value)
		if rowUpdatedAt := row.UpdatedAt.UTC(); rowUpdatedAt.After(maxUpdatedAt) {
			maxUpdatedAt = rowUpdatedAt
		}
	}

	StoreDBConfig(maxUpdatedAt, values)
	return nil
}

// IntValue returns a settings value parsed as a non-negative integer,
// accepting either a JSON number or a numeric string.
func IntValue(key string, fallback int) int {
	raw, ok := DBConfigValue(key)
	if !ok {
		return fallback
	}
	var number int
	if errUnmarshal := json.Unmarshal(raw, &number); errUnmarshal == nil {
		if number >= 0 {
			return number
		}
		return fallback
	}
	var text string
	if errUnmarshal := json.Unmarshal(raw, &text); errUnmarshal == nil {
		if parsed, errParse := strconv.Atoi(strings.TrimSpace(text)); errParse == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

// StringValue returns a settings value parsed as a trimmed string.
func StringValue(key, fallback string) string {
	raw, ok := DBConfigValue(key)
	if !ok {
		return fallback
	}
	var parsed string
	if errUnmarshal := json.Unmarshal(raw, &parsed); errUnmarshal != nil {
		return fallback
	}
	parsed = strings.TrimSpace(parsed)
	if parsed == "" {
		return fallback
	}
	return parsed
}
