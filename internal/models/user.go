// Package models contains the persisted domain types and API error values.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the local profile of an identity-provider account.
// The primary key is the provider's subject so no local credentials exist.
type User struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username          string     `gorm:"size:32;uniqueIndex;not null" json:"username"`
	Email             string     `gorm:"size:255" json:"-"`
	DisplayName       string     `gorm:"size:64" json:"display_name"`
	Bio               string     `gorm:"size:500" json:"bio"`
	AvatarURL         string     `json:"avatar_url"`
	MinecraftUsername string     `gorm:"size:16" json:"minecraft_username"`
	IsAdmin           bool       `gorm:"not null;default:false" json:"is_admin"`
	IsBanned          bool       `gorm:"not null;default:false" json:"is_banned"`
	BanReason         string     `gorm:"size:500" json:"ban_reason,omitempty"`
	BannedAt          *time.Time `json:"banned_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	LinkedAccounts []LinkedAccount `gorm:"foreignKey:UserID" json:"linked_accounts,omitempty"`
}

// LinkedAccount is a third-party identity (Riot and similar) attached to a profile.
type LinkedAccount struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_linked_user_provider" json:"user_id"`
	Provider    string    `gorm:"size:32;not null;uniqueIndex:idx_linked_user_provider;uniqueIndex:idx_linked_provider_external" json:"provider"`
	ExternalID  string    `gorm:"size:128;not null;uniqueIndex:idx_linked_provider_external" json:"external_id"`
	DisplayName string    `gorm:"size:128" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
