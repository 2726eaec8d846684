package models

import (
	"time"

	"github.com/google/uuid"
)

// Analysis job statuses.
const (
	AnalysisPending    = "pending"
	AnalysisProcessing = "processing"
	AnalysisCompleted  = "completed"
	AnalysisFailed     = "failed"
)

// WeaponStats is the normalized result of one analysis.
type WeaponStats struct {
	Name         string         `json:"name,omitempty"`
	WeaponType   string         `json:"weapon_type,omitempty"`
	Rarity       string         `json:"rarity,omitempty"`
	Damage       *float64       `json:"damage,omitempty"`
	AttackSpeed  *float64       `json:"attack_speed,omitempty"`
	FireRate     *float64       `json:"fire_rate,omitempty"`
	MagazineSize *float64       `json:"magazine_size,omitempty"`
	Durability   *float64       `json:"durability,omitempty"`
	Range        *float64       `json:"range,omitempty"`
	Enchantments []string       `json:"enchantments,omitempty"`
	Description  string         `json:"description,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// WeaponAnalysisJob is one uploaded image moving through the analysis pipeline.
type WeaponAnalysisJob struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Status      string       `gorm:"size:16;not null;index:idx_analysis_status_created" json:"status"`
	ImageKey    string       `gorm:"size:255;not null" json:"-"`
	PreviewKey  string       `gorm:"size:255" json:"-"`
	MimeType    string       `gorm:"size:64;not null" json:"mime_type"`
	Result      *WeaponStats `gorm:"type:text;serializer:json" json:"result,omitempty"`
	Error       string       `gorm:"type:text" json:"error,omitempty"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `gorm:"index:idx_analysis_status_created" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName keeps the historical table name used by the public site.
func (WeaponAnalysisJob) TableName() string {
	return "weapon_analysis_jobs"
}

// IsTerminal reports whether the job will not change state again.
func (j *WeaponAnalysisJob) IsTerminal() bool {
	return j.Status == AnalysisCompleted || j.Status == AnalysisFailed
}
