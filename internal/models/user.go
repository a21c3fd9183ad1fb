package models

import "time"

// User roles assigned by the identity layer.
const (
	// RoleCitizen is the default role for newly created accounts.
	RoleCitizen = "citizen"
	// RoleReporter marks accounts holding at least one reporter row.
	RoleReporter = "reporter"
	// RoleTenantAdmin marks tenant back-office accounts.
	RoleTenantAdmin = "tenant_admin"
)

// User represents one person's identity, keyed externally by mobile number.
type User struct {
	ID string `gorm:"type:text;primaryKey"` // Primary key (UUID).

	Mobile   string `gorm:"type:text;not null;uniqueIndex"`     // Normalized mobile number.
	Role     string `gorm:"type:text;not null;default:citizen"` // Account role.
	Language string `gorm:"type:text;not null;default:te"`      // Preferred language code.

	Active bool `gorm:"not null;default:true"` // Whether the account can sign in.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// UserProfile holds display data for a user.
type UserProfile struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID   string `gorm:"type:text;not null;uniqueIndex"` // Owning user.
	FullName string `gorm:"type:text;not null"`             // Display name.
	Email    string `gorm:"type:text"`                      // Optional email address.
	PhotoURL string `gorm:"type:text"`                      // Profile photo location.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
