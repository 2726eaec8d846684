package models

import (
	"time"

	"github.com/google/uuid"
)

// ForumCategory groups threads on the forum index.
type ForumCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"size:80;uniqueIndex;not null" json:"slug"`
	Name        string    `gorm:"size:80;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ForumThread is a discussion topic. Its first post holds the opening message.
type ForumThread struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CategoryID     uint           `gorm:"not null;index" json:"category_id"`
	Category       *ForumCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title          string         `gorm:"size:150;not null" json:"title"`
	Pinned         bool           `gorm:"not null;default:false" json:"pinned"`
	Locked         bool           `gorm:"not null;default:false" json:"locked"`
	ReplyCount     int            `gorm:"not null;default:0" json:"reply_count"`
	ViewCount      int            `gorm:"not null;default:0" json:"view_count"`
	LastActivityAt time.Time      `gorm:"index" json:"last_activity_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName keeps the historical table name used by the public site.
func (ForumThread) TableName() string {
	return "foro_hilos"
}

// ForumPost is a message inside a thread.
type ForumPost struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ThreadID  uint       `gorm:"not null;index" json:"thread_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
