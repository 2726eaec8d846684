package seed

import (
	"fmt"
	"strings"
	"time"

	"craftnexus/internal/models"
	"craftnexus/internal/slug"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var (
	newsCategories = []string{"update", "event", "community", "maintenance"}
	modCategories  = []string{"adventure", "technology", "magic", "storage", "optimization", "worldgen", "decoration", "utility"}
	modLoaders     = []string{"forge", "fabric", "neoforge", "quilt"}
	gameVersions   = []string{"1.18.2", "1.19.2", "1.19.4", "1.20.1", "1.20.4", "1.21", "1.21.1"}

	titleCase = cases.Title(language.English)
)

// Factory builds domain rows with plausible fake content and persists them.
// Every Create method accepts overrides applied before the insert.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	// spread of created_at values, in days before now
	maxDays int
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{db: db, faker: gofakeit.New(seed), maxDays: maxDays}
}

func (f *Factory) pastTime() time.Time {
	offset := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().Add(-offset).UTC()
}

func (f *Factory) pick(values []string) string {
	return values[f.faker.Number(0, len(values)-1)]
}

func (f *Factory) pickSome(values []string, max int) models.StringList {
	n := f.faker.Number(1, max)
	shuffled := append([]string(nil), values...)
	f.faker.ShuffleStrings(shuffled)
	return models.StringList(shuffled[:n])
}

func (f *Factory) uniqueSlug(model any, base string) (string, error) {
	return slug.Unique(slug.Make(base), func(candidate string) (bool, error) {
		var count int64
		err := f.db.Model(model).Where("slug = ?", candidate).Count(&count).Error
		return count > 0, err
	})
}

// CreateUser inserts a profile with a random identity-provider subject.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := strings.ToLower(f.faker.Username())
	if len(username) > 24 {
		username = username[:24]
	}
	user := &models.User{
		ID:                uuid.New(),
		Username:          fmt.Sprintf("%s%d", username, f.faker.Number(10, 9999)),
		Email:             f.faker.Email(),
		DisplayName:       f.faker.Name(),
		Bio:               f.faker.Sentence(12),
		AvatarURL:         fmt.Sprintf("https://mc-heads.net/avatar/%s", f.faker.UUID()),
		MinecraftUsername: f.faker.Username(),
		CreatedAt:         f.pastTime(),
	}
	if len(user.MinecraftUsername) > 16 {
		user.MinecraftUsername = user.MinecraftUsername[:16]
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// CreateNews inserts a published article written by author.
func (f *Factory) CreateNews(author *models.User, overrides ...func(*models.News)) (*models.News, error) {
	title := fmt.Sprintf("%s %s in the %s", f.faker.HackerVerb(), f.faker.MinecraftOre(), f.faker.MinecraftBiome())
	publishedAt := f.pastTime()
	item := &models.News{
		Title:         title,
		Summary:       f.faker.Sentence(15),
		Content:       f.faker.Paragraph(3, 4, 12, "\n\n"),
		CoverImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", f.faker.UUID()),
		Category:      f.pick(newsCategories),
		AuthorID:      author.ID,
		Published:     true,
		PublishedAt:   &publishedAt,
		Featured:      f.faker.Number(1, 10) == 1,
		CreatedAt:     publishedAt,
	}
	for _, o := range overrides {
		o(item)
	}
	if item.Slug == "" {
		s, err := f.uniqueSlug(&models.News{}, item.Title)
		if err != nil {
			return nil, err
		}
		item.Slug = s
	}
	if err := f.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("create news %s: %w", item.Slug, err)
	}
	return item, nil
}

// CreateMod inserts a manually curated catalog entry.
func (f *Factory) CreateMod(overrides ...func(*models.Mod)) (*models.Mod, error) {
	name := fmt.Sprintf("%s %s", titleCase.String(f.faker.MinecraftWood()), f.pick([]string{"Tweaks", "Core", "Expansion", "Utilities", "Plus", "Reforged"}))
	mod := &models.Mod{
		Name:         name,
		Summary:      f.faker.Sentence(10),
		Description:  f.faker.Paragraph(2, 3, 10, "\n\n"),
		IconURL:      fmt.Sprintf("https://picsum.photos/seed/%s/128/128", f.faker.UUID()),
		Author:       f.faker.Username(),
		Categories:   f.pickSome(modCategories, 3),
		Loaders:      f.pickSome(modLoaders, 2),
		GameVersions: f.pickSome(gameVersions, 3),
		Downloads:    int64(f.faker.Number(100, 5_000_000)),
		Source:       models.ModSourceManual,
		CreatedAt:    f.pastTime(),
	}
	for _, o := range overrides {
		o(mod)
	}
	if mod.Slug == "" {
		s, err := f.uniqueSlug(&models.Mod{}, mod.Name)
		if err != nil {
			return nil, err
		}
		mod.Slug = s
	}
	if err := f.db.Create(mod).Error; err != nil {
		return nil, fmt.Errorf("create mod %s: %w", mod.Slug, err)
	}
	return mod, nil
}

// CreateThread opens a thread in category with its first post and the given
// number of replies drawn from participants.
func (f *Factory) CreateThread(category *models.ForumCategory, author *models.User, participants []*models.User, replies int) (*models.ForumThread, error) {
	created := f.pastTime()
	thread := &models.ForumThread{
		CategoryID:     category.ID,
		UserID:         author.ID,
		Title:          fmt.Sprintf("Best way to find %s near a %s?", f.faker.MinecraftOre(), f.faker.MinecraftVillagerStation()),
		LastActivityAt: created,
		CreatedAt:      created,
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		first := &models.ForumPost{ThreadID: thread.ID, UserID: author.ID, Content: f.faker.Paragraph(1, 3, 10, "\n"), CreatedAt: created}
		if err := tx.Create(first).Error; err != nil {
			return err
		}

		last := created
		for i := 0; i < replies && len(participants) > 0; i++ {
			last = last.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute)
			poster := participants[f.faker.Number(0, len(participants)-1)]
			post := &models.ForumPost{ThreadID: thread.ID, UserID: poster.ID, Content: f.faker.Paragraph(1, 2, 12, "\n"), CreatedAt: last}
			if err := tx.Create(post).Error; err != nil {
				return err
			}
		}

		thread.ReplyCount = replies
		if len(participants) == 0 {
			thread.ReplyCount = 0
		}
		thread.LastActivityAt = last
		return tx.Model(thread).Updates(map[string]any{
			"reply_count":      thread.ReplyCount,
			"last_activity_at": thread.LastActivityAt,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return thread, nil
}

// CreateComment attaches a comment to a news article or mod. Pass a parent to
// make it a reply.
func (f *Factory) CreateComment(user *models.User, targetType string, targetID uint, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		TargetType: targetType,
		TargetID:   targetID,
		UserID:     user.ID,
		Content:    f.faker.Sentence(f.faker.Number(5, 25)),
		CreatedAt:  f.pastTime(),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
		if comment.CreatedAt.Before(parent.CreatedAt) {
			comment.CreatedAt = parent.CreatedAt.Add(time.Minute)
		}
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}
