package seed

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"craftnexus/internal/models"
	"craftnexus/internal/slug"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed seed.yml
var defaultFixtures []byte

// CategoryFixture is a permanent forum category.
type CategoryFixture struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Position    int    `yaml:"position"`
}

// TickerFixture is a ticker line seeded once.
type TickerFixture struct {
	Text string `yaml:"text"`
	URL  string `yaml:"url"`
}

// Fixtures is the content of a seed.yml file.
type Fixtures struct {
	Categories []CategoryFixture `yaml:"categories"`
	Ticker     []TickerFixture   `yaml:"ticker"`
}

// DefaultFixtures returns the fixtures bundled with the binary.
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

// LoadFixtures reads fixtures from path.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures decodes and validates fixture YAML. Unknown keys are rejected.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	seen := make(map[string]bool, len(fx.Categories))
	for i := range fx.Categories {
		c := &fx.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("category %d: name is required", i)
		}
		if strings.TrimSpace(c.Slug) == "" {
			c.Slug = c.Name
		}
		c.Slug = slug.Make(c.Slug)
		if seen[c.Slug] {
			return nil, fmt.Errorf("category %q defined twice", c.Slug)
		}
		seen[c.Slug] = true
	}
	for i, t := range fx.Ticker {
		if strings.TrimSpace(t.Text) == "" {
			return nil, fmt.Errorf("ticker line %d: text is required", i)
		}
	}
	return &fx, nil
}

// ApplyFixtures upserts fixture categories by slug and appends missing ticker
// lines. Running it twice changes nothing.
func ApplyFixtures(db *gorm.DB, fx *Fixtures) error {
	if fx == nil {
		return errors.New("no fixtures")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, item := range fx.Categories {
			category := models.ForumCategory{
				Slug:        item.Slug,
				Name:        item.Name,
				Description: item.Description,
				Position:    item.Position,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "position", "updated_at"}),
			}).Create(&category).Error; err != nil {
				return fmt.Errorf("category %s: %w", item.Slug, err)
			}
		}

		var maxPos sql.NullInt64
		if err := tx.Model(&models.TickerItem{}).Select("MAX(position)").Row().Scan(&maxPos); err != nil {
			return err
		}
		next := 0
		if maxPos.Valid {
			next = int(maxPos.Int64) + 1
		}
		for _, line := range fx.Ticker {
			var count int64
			if err := tx.Model(&models.TickerItem{}).Where("text = ?", line.Text).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			item := models.TickerItem{Text: line.Text, URL: line.URL, Position: next, Active: true}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("ticker %q: %w", line.Text, err)
			}
			next++
		}
		return nil
	})
}
