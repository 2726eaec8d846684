package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationForumReply     = "forum_reply"
	NotificationCommentReply   = "comment_reply"
	NotificationAnalysisDone   = "analysis_completed"
	NotificationAnalysisFailed = "analysis_failed"
	NotificationModeration     = "moderation"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string     `gorm:"size:32;not null" json:"type"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Body      string     `gorm:"size:1000" json:"body"`
	Link      string     `json:"link"`
	ReadAt    *time.Time `gorm:"index" json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
