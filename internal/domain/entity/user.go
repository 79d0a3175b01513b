package entity

import "time"

// User is a local account created on the first social login of an external identity.
// (Provider, ExternalID) identifies at most one row; the login flow never updates it.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ExternalID  string    `gorm:"column:external_id;size:64;not null;uniqueIndex:idx_users_provider_external_id,priority:2" json:"external_id"`
	Provider    string    `gorm:"size:20;not null;uniqueIndex:idx_users_provider_external_id,priority:1" json:"provider"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	DisplayName string    `gorm:"column:nickname;size:100;not null;default:''" json:"nickname"`
	AvatarURL   string    `gorm:"column:profile_image;size:512;not null;default:''" json:"profile_image"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// TableName sets the GORM table name.
func (User) TableName() string {
	return "users"
}
