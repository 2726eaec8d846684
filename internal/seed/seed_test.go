package seed

import (
	"testing"

	"craftnexus/internal/models"
	"craftnexus/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	return Options{
		Users:            4,
		News:             3,
		Mods:             5,
		Threads:          2,
		RepliesPerThread: 2,
		CommentsPerItem:  2,
		Seed:             42,
	}
}

func TestRun_CreatesContent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	res, err := Run(db, smallOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Users)
	assert.Equal(t, 3, res.News)
	assert.Equal(t, 5, res.Mods)
	assert.Equal(t, 2, res.Threads)
	// two top-level comments per item, the first with one reply
	assert.Equal(t, (3+5)*3, res.Comments)

	var posts int64
	require.NoError(t, db.Model(&models.ForumPost{}).Count(&posts).Error)
	assert.Equal(t, int64(2*3), posts)

	var thread models.ForumThread
	require.NoError(t, db.First(&thread).Error)
	assert.Equal(t, 2, thread.ReplyCount)
	assert.False(t, thread.LastActivityAt.Before(thread.CreatedAt))

	var published int64
	require.NoError(t, db.Model(&models.News{}).Where("published = ?", true).Count(&published).Error)
	assert.Equal(t, int64(3), published)
}

func TestRun_CleanResetsData(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	_, err := Run(db, smallOptions())
	require.NoError(t, err)

	opts := smallOptions()
	opts.Clean = true
	opts.Seed = 7
	_, err = Run(db, opts)
	require.NoError(t, err)

	var users, mods int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Mod{}).Count(&mods).Error)
	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(5), mods)
}

func TestRun_NoUsersStopsAfterFixtures(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	res, err := Run(db, Options{News: 5})
	require.NoError(t, err)
	assert.Zero(t, res.News)

	var categories int64
	require.NoError(t, db.Model(&models.ForumCategory{}).Count(&categories).Error)
	assert.Positive(t, categories)
}

func TestFactory_UniqueSlugs(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	f := NewFactory(db, 1, 30)
	author, err := f.CreateUser()
	require.NoError(t, err)

	a, err := f.CreateNews(author, func(n *models.News) { n.Title = "Caves & Cliffs" })
	require.NoError(t, err)
	b, err := f.CreateNews(author, func(n *models.News) { n.Title = "Caves & Cliffs" })
	require.NoError(t, err)
	assert.Equal(t, "caves-cliffs", a.Slug)
	assert.Equal(t, "caves-cliffs-2", b.Slug)

	mod, err := f.CreateMod(func(m *models.Mod) { m.Name = "Sodium" })
	require.NoError(t, err)
	assert.Equal(t, "sodium", mod.Slug)
	assert.NotEmpty(t, mod.Loaders)
}
