package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Mod sources.
const (
	ModSourceManual     = "manual"
	ModSourceModrinth   = "modrinth"
	ModSourceCurseForge = "curseforge"
)

// StringList is persisted as a comma separated column and serialized as a JSON array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported StringList source %T", value)
	}

	out := StringList{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// Mod is a catalog entry, either curated by hand or synced from a mod host.
type Mod struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Slug         string     `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Name         string     `gorm:"size:120;not null" json:"name"`
	Summary      string     `gorm:"size:500" json:"summary"`
	Description  string     `gorm:"type:text" json:"description"`
	IconURL      string     `json:"icon_url"`
	Author       string     `gorm:"size:120" json:"author"`
	Categories   StringList `gorm:"type:text" json:"categories"`
	Loaders      StringList `gorm:"type:text" json:"loaders"`
	GameVersions StringList `gorm:"type:text" json:"game_versions"`
	Downloads    int64      `gorm:"not null;default:0;index" json:"downloads"`
	Source       string     `gorm:"size:20;not null;default:manual;uniqueIndex:idx_mod_source_external" json:"source"`
	ExternalID   *string    `gorm:"size:64;uniqueIndex:idx_mod_source_external" json:"external_id,omitempty"`
	ExternalURL  string     `json:"external_url"`
	Featured     bool       `gorm:"not null;default:false" json:"featured"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `gorm:"index" json:"updated_at"`
}
