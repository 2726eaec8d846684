package service

import (
	"context"
	"strings"
	"time"

	"craftnexus/internal/cache"
	"craftnexus/internal/models"
	"craftnexus/internal/repository"
	"craftnexus/internal/slug"

	"github.com/google/uuid"
)

// NewsInput carries the editable fields of an article.
type NewsInput struct {
	Title         string
	Slug          string
	Summary       string
	Content       string
	CoverImageURL string
	Category      string
	Featured      bool
	Publish       bool
}

// ListNewsInput filters article listings.
type ListNewsInput struct {
	Category string
	Query    string
	Featured bool
	PageInput
}

// NewsService manages articles.
type NewsService struct {
	repo repository.NewsRepository
	now  func() time.Time
}

func NewNewsService(repo repository.NewsRepository) *NewsService {
	return &NewsService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// ListPublished returns published articles, newest first.
func (s *NewsService) ListPublished(ctx context.Context, in ListNewsInput) ([]models.News, int64, error) {
	return s.repo.List(ctx, repository.NewsFilter{
		Category:      strings.TrimSpace(in.Category),
		Query:         in.Query,
		FeaturedOnly:  in.Featured,
		PublishedOnly: true,
	}, in.repo())
}

// ListAll includes drafts for the admin view.
func (s *NewsService) ListAll(ctx context.Context, in ListNewsInput) ([]models.News, int64, error) {
	return s.repo.List(ctx, repository.NewsFilter{
		Category:     strings.TrimSpace(in.Category),
		Query:        in.Query,
		FeaturedOnly: in.Featured,
	}, in.repo())
}

// GetPublished returns a published article by slug. Drafts look missing.
func (s *NewsService) GetPublished(ctx context.Context, slugValue string) (*models.News, error) {
	var item models.News
	err := cache.Aside(ctx, cache.NewsKey(slugValue), &item, cache.NewsTTL, func() error {
		found, err := s.repo.GetBySlug(ctx, slugValue)
		if err != nil {
			return notFound(err, "News", slugValue)
		}
		if !found.Published {
			return models.NewNotFoundError("News", slugValue)
		}
		item = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *NewsService) GetByID(ctx context.Context, id uint) (*models.News, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "News", id)
	}
	return item, nil
}

func (s *NewsService) Create(ctx context.Context, authorID uuid.UUID, in NewsInput) (*models.News, error) {
	in = normalizeNewsInput(in)
	if err := validateNewsInput(in); err != nil {
		return nil, err
	}

	item := &models.News{
		Title:         in.Title,
		Summary:       in.Summary,
		Content:       in.Content,
		CoverImageURL: in.CoverImageURL,
		Category:      in.Category,
		Featured:      in.Featured,
		AuthorID:      authorID,
	}

	base := slug.Make(in.Title)
	if in.Slug != "" {
		base = slug.Make(in.Slug)
		item.SlugPinned = true
	}
	unique, err := s.uniqueSlug(ctx, base, 0)
	if err != nil {
		return nil, err
	}
	item.Slug = unique

	if in.Publish {
		now := s.now()
		item.Published = true
		item.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("Slug already in use")
		}
		return nil, err
	}
	return item, nil
}

// Update edits an article. The slug follows the title unless it was set explicitly.
func (s *NewsService) Update(ctx context.Context, id uint, in NewsInput) (*models.News, error) {
	in = normalizeNewsInput(in)
	if err := validateNewsInput(in); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "News", id)
	}
	oldSlug := item.Slug

	switch {
	case in.Slug != "":
		wanted := slug.Make(in.Slug)
		if wanted != item.Slug {
			if item.Slug, err = s.uniqueSlug(ctx, wanted, item.ID); err != nil {
				return nil, err
			}
		}
		item.SlugPinned = true
	case in.Title != item.Title && !item.SlugPinned:
		if item.Slug, err = s.uniqueSlug(ctx, slug.Make(in.Title), item.ID); err != nil {
			return nil, err
		}
	}

	item.Title = in.Title
	item.Summary = in.Summary
	item.Content = in.Content
	item.CoverImageURL = in.CoverImageURL
	item.Category = in.Category
	item.Featured = in.Featured
	item.Author = nil

	if err := s.repo.Update(ctx, item); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("Slug already in use")
		}
		return nil, err
	}
	cache.Invalidate(ctx, cache.NewsKey(oldSlug), cache.NewsKey(item.Slug))
	return item, nil
}

// SetPublished publishes or unpublishes an article. Publishing stamps published_at.
func (s *NewsService) SetPublished(ctx context.Context, id uint, published bool) (*models.News, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "News", id)
	}
	if item.Published == published {
		return item, nil
	}
	item.Published = published
	if published {
		now := s.now()
		item.PublishedAt = &now
	} else {
		item.PublishedAt = nil
	}
	item.Author = nil
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.NewsKey(item.Slug))
	return item, nil
}

func (s *NewsService) Delete(ctx context.Context, id uint) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "News", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "News", id)
	}
	cache.Invalidate(ctx, cache.NewsKey(item.Slug))
	return nil
}

func (s *NewsService) uniqueSlug(ctx context.Context, base string, excludeID uint) (string, error) {
	return slug.Unique(base, func(candidate string) (bool, error) {
		return s.repo.SlugTaken(ctx, candidate, excludeID)
	})
}

func normalizeNewsInput(in NewsInput) NewsInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Summary = strings.TrimSpace(in.Summary)
	in.Content = strings.TrimSpace(in.Content)
	in.CoverImageURL = strings.TrimSpace(in.CoverImageURL)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	return in
}

func validateNewsInput(in NewsInput) error {
	if err := checkLength("title", in.Title, 3, 200); err != nil {
		return err
	}
	if err := checkLength("content", in.Content, 1, 100000); err != nil {
		return err
	}
	if err := checkLength("summary", in.Summary, 0, 500); err != nil {
		return err
	}
	if err := checkLength("category", in.Category, 0, 50); err != nil {
		return err
	}
	if in.CoverImageURL != "" && !isHTTPURL(in.CoverImageURL) {
		return models.NewValidationError("cover_image_url must be an http(s) URL")
	}
	return nil
}
