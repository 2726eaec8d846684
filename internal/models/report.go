package models

import (
	"time"

	"github.com/google/uuid"
)

// Report targets.
const (
	ReportTargetComment     = "comment"
	ReportTargetForumPost   = "forum_post"
	ReportTargetForumThread = "forum_thread"
)

// Report statuses.
const (
	ReportStatusOpen      = "open"
	ReportStatusDismissed = "dismissed"
	ReportStatusRemoved   = "removed"
)

// Report is a user complaint about a piece of content awaiting moderation.
type Report struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ReporterID uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	TargetType string     `gorm:"size:20;not null;index:idx_report_target" json:"target_type"`
	TargetID   uint       `gorm:"not null;index:idx_report_target" json:"target_id"`
	Reason     string     `gorm:"size:500;not null" json:"reason"`
	Status     string     `gorm:"size:16;not null;default:open;index" json:"status"`
	ResolvedBy *uuid.UUID `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
