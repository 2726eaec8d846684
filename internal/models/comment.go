package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment targets.
const (
	CommentTargetNews = "news"
	CommentTargetMod  = "mod"
)

// Comment is a threaded reply attached to a news article or a mod.
type Comment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TargetType string     `gorm:"size:16;not null;index:idx_comment_target" json:"target_type"`
	TargetID   uint       `gorm:"not null;index:idx_comment_target" json:"target_id"`
	ParentID   *uint      `gorm:"index" json:"parent_id,omitempty"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsDeleted  bool       `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Replies    []*Comment `gorm:"-" json:"replies"`
}
