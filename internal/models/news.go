package models

import (
	"time"

	"github.com/google/uuid"
)

// News is a published or draft article.
type News struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Slug          string     `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	SlugPinned    bool       `gorm:"not null;default:false" json:"slug_pinned"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Summary       string     `gorm:"size:500" json:"summary"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	CoverImageURL string     `json:"cover_image_url"`
	Category      string     `gorm:"size:50;index" json:"category"`
	AuthorID      uuid.UUID  `gorm:"type:uuid;index" json:"author_id"`
	Author        *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Published     bool       `gorm:"not null;default:false;index" json:"published"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at,omitempty"`
	Featured      bool       `gorm:"not null;default:false" json:"featured"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName keeps the historical table name used by the public site.
func (News) TableName() string {
	return "noticias"
}

// TickerItem is one line of the scrolling news ticker.
type TickerItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:280;not null" json:"text"`
	URL       string    `json:"url"`
	Position  int       `gorm:"not null;index" json:"position"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
