package models

import (
	"time"

	"gorm.io/datatypes"
)

// Article publication states.
const (
	// ArticleStatusDraft marks an unpublished article.
	ArticleStatusDraft = "DRAFT"
	// ArticleStatusPublished marks a live article.
	ArticleStatusPublished = "PUBLISHED"
)

// Article is one news item filed by a reporter within a tenant.
type Article struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	TenantID   string `gorm:"type:text;not null;index"` // Owning tenant.
	ReporterID string `gorm:"type:text;not null;index"` // Filing reporter.

	Headline string `gorm:"type:text;not null"` // Display headline.
	Summary  string `gorm:"type:text"`          // Short summary.
	Body     string `gorm:"type:text"`          // Full article body.
	Language string `gorm:"type:text;not null"` // Content language code.

	SEOTitle       string         `gorm:"type:text"`  // SEO title override.
	SEODescription string         `gorm:"type:text"`  // SEO description override.
	SEOKeywords    datatypes.JSON `gorm:"type:jsonb"` // SEO keyword list.

	Status      string     `gorm:"type:text;not null;default:DRAFT"` // Publication state.
	PublishedAt *time.Time ``                                        // Publication timestamp.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
