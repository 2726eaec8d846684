// Package seed fills a development database with fixtures and fake content.
package seed

import (
	"fmt"
	"log/slog"

	"craftnexus/internal/database"
	"craftnexus/internal/models"

	"gorm.io/gorm"
)

// Options controls how much fake content Run creates.
type Options struct {
	Users            int
	News             int
	Mods             int
	Threads          int
	RepliesPerThread int
	CommentsPerItem  int
	// Clean deletes every row before seeding.
	Clean bool
	// Seed makes the fake content reproducible when non-zero.
	Seed     int64
	MaxDays  int
	Fixtures *Fixtures
}

// DefaultOptions is a small but browsable dataset.
func DefaultOptions() Options {
	return Options{
		Users:            20,
		News:             12,
		Mods:             30,
		Threads:          25,
		RepliesPerThread: 4,
		CommentsPerItem:  3,
	}
}

// Result counts the rows Run created.
type Result struct {
	Users    int
	News     int
	Mods     int
	Threads  int
	Comments int
}

// Run applies fixtures and then generates fake content.
func Run(db *gorm.DB, opts Options) (*Result, error) {
	slog.Info("seeding database",
		slog.Int("users", opts.Users),
		slog.Int("news", opts.News),
		slog.Int("mods", opts.Mods),
		slog.Int("threads", opts.Threads))

	if opts.Clean {
		if err := ClearAll(db); err != nil {
			return nil, err
		}
	}

	fx := opts.Fixtures
	if fx == nil {
		var err error
		if fx, err = DefaultFixtures(); err != nil {
			return nil, err
		}
	}
	if err := ApplyFixtures(db, fx); err != nil {
		return nil, fmt.Errorf("apply fixtures: %w", err)
	}

	f := NewFactory(db, opts.Seed, opts.MaxDays)
	res := &Result{}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return res, err
		}
		users = append(users, u)
	}
	res.Users = len(users)
	slog.Info("users created", slog.Int("count", res.Users))
	if len(users) == 0 {
		return res, nil
	}

	var articles []*models.News
	for i := 0; i < opts.News; i++ {
		item, err := f.CreateNews(users[i%len(users)])
		if err != nil {
			return res, err
		}
		articles = append(articles, item)
	}
	res.News = len(articles)

	var mods []*models.Mod
	for i := 0; i < opts.Mods; i++ {
		mod, err := f.CreateMod()
		if err != nil {
			return res, err
		}
		mods = append(mods, mod)
	}
	res.Mods = len(mods)

	var categories []models.ForumCategory
	if err := db.Order("position ASC").Find(&categories).Error; err != nil {
		return res, err
	}
	if len(categories) > 0 {
		for i := 0; i < opts.Threads; i++ {
			author := users[f.faker.Number(0, len(users)-1)]
			if _, err := f.CreateThread(&categories[i%len(categories)], author, users, opts.RepliesPerThread); err != nil {
				return res, err
			}
			res.Threads++
		}
	}

	for _, item := range articles {
		n, err := f.commentTree(users, models.CommentTargetNews, item.ID, opts.CommentsPerItem)
		res.Comments += n
		if err != nil {
			return res, err
		}
	}
	for _, mod := range mods {
		n, err := f.commentTree(users, models.CommentTargetMod, mod.ID, opts.CommentsPerItem)
		res.Comments += n
		if err != nil {
			return res, err
		}
	}

	slog.Info("seeding complete",
		slog.Int("users", res.Users),
		slog.Int("news", res.News),
		slog.Int("mods", res.Mods),
		slog.Int("threads", res.Threads),
		slog.Int("comments", res.Comments))
	return res, nil
}

// commentTree adds count top-level comments, every other one with a reply.
func (f *Factory) commentTree(users []*models.User, targetType string, targetID uint, count int) (int, error) {
	created := 0
	for i := 0; i < count; i++ {
		root, err := f.CreateComment(users[f.faker.Number(0, len(users)-1)], targetType, targetID, nil)
		if err != nil {
			return created, err
		}
		created++
		if i%2 == 0 {
			if _, err := f.CreateComment(users[f.faker.Number(0, len(users)-1)], targetType, targetID, root); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// ClearAll deletes every row from the application tables, children first.
func ClearAll(db *gorm.DB) error {
	slog.Info("clearing existing data")
	all := database.PersistentModels()
	session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(all) - 1; i >= 0; i-- {
		if err := session.Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	return nil
}
