package seed

import (
	"os"
	"path/filepath"
	"testing"

	"craftnexus/internal/models"
	"craftnexus/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixtures(t *testing.T) {
	fx, err := DefaultFixtures()
	require.NoError(t, err)
	assert.NotEmpty(t, fx.Categories)
	assert.NotEmpty(t, fx.Ticker)
	assert.Equal(t, "announcements", fx.Categories[0].Slug)
}

func TestParseFixtures_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "unknown key", yaml: "servers: []\n", wantErr: "parse fixtures"},
		{name: "missing name", yaml: "categories:\n  - slug: x\n", wantErr: "name is required"},
		{name: "duplicate slug", yaml: "categories:\n  - name: Builds\n  - name: builds\n", wantErr: "defined twice"},
		{name: "empty ticker", yaml: "ticker:\n  - url: /x\n", wantErr: "text is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixtures([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseFixtures_DerivesSlug(t *testing.T) {
	fx, err := ParseFixtures([]byte("categories:\n  - name: Redstone & Técnica\n"))
	require.NoError(t, err)
	assert.Equal(t, "redstone-tecnica", fx.Categories[0].Slug)
}

func TestApplyFixtures_Idempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx, err := DefaultFixtures()
	require.NoError(t, err)

	require.NoError(t, ApplyFixtures(db, fx))
	require.NoError(t, ApplyFixtures(db, fx))

	var categories, ticker int64
	require.NoError(t, db.Model(&models.ForumCategory{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.TickerItem{}).Count(&ticker).Error)
	assert.Equal(t, int64(len(fx.Categories)), categories)
	assert.Equal(t, int64(len(fx.Ticker)), ticker)

	var items []models.TickerItem
	require.NoError(t, db.Order("position ASC").Find(&items).Error)
	for i, item := range items {
		assert.Equal(t, i, item.Position)
		assert.True(t, item.Active)
	}
}

func TestApplyFixtures_UpdatesCategoryBySlug(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, db.Create(&models.ForumCategory{Slug: "general", Name: "Old", Position: 9}).Error)

	path := filepath.Join(t.TempDir(), "seed.yml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - slug: general\n    name: General Discussion\n    position: 1\n"), 0o600))
	fx, err := LoadFixtures(path)
	require.NoError(t, err)
	require.NoError(t, ApplyFixtures(db, fx))

	var got models.ForumCategory
	require.NoError(t, db.Where("slug = ?", "general").First(&got).Error)
	assert.Equal(t, "General Discussion", got.Name)
	assert.Equal(t, 1, got.Position)
}

func TestLoadFixtures_MissingFile(t *testing.T) {
	_, err := LoadFixtures(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
