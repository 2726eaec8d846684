package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"craftnexus/internal/cache"
	"craftnexus/internal/models"
	"craftnexus/internal/repository"
	"craftnexus/internal/slug"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxThreadTitleLen = 150
	maxPostLen        = 20000
)

// CategoryInput holds the editable fields of a forum category.
type CategoryInput struct {
	Slug        string
	Name        string
	Description string
	Position    int
}

// CreateThreadInput opens a thread with its first post.
type CreateThreadInput struct {
	UserID       uuid.UUID
	CategorySlug string
	Title        string
	Content      string
}

// ReplyInput adds a post to a thread.
type ReplyInput struct {
	UserID   uuid.UUID
	ThreadID uint
	Content  string
}

// EditPostInput replaces the content of an own post.
type EditPostInput struct {
	UserID  uuid.UUID
	PostID  uint
	Content string
}

// ThreadView is a thread with one page of its posts.
type ThreadView struct {
	Thread     *models.ForumThread `json:"thread"`
	Posts      []models.ForumPost  `json:"posts"`
	TotalPosts int64               `json:"total_posts"`
}

// ForumService implements categories, threads and posts.
type ForumService struct {
	repo    repository.ForumRepository
	notify  Notifier
	isAdmin AdminChecker
}

func NewForumService(repo repository.ForumRepository, notify Notifier, isAdmin AdminChecker) *ForumService {
	return &ForumService{repo: repo, notify: notify, isAdmin: isAdmin}
}

func (s *ForumService) ListCategories(ctx context.Context) ([]models.ForumCategory, error) {
	var categories []models.ForumCategory
	err := cache.Aside(ctx, cache.ForumCategoriesKey(), &categories, cache.ForumCategoryTTL, func() error {
		var err error
		categories, err = s.repo.ListCategories(ctx)
		return err
	})
	return categories, err
}

func (s *ForumService) CreateCategory(ctx context.Context, in CategoryInput) (*models.ForumCategory, error) {
	name := strings.TrimSpace(in.Name)
	if err := checkLength("name", name, 2, 80); err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(in.Description)
	if err := checkLength("description", desc, 0, 500); err != nil {
		return nil, err
	}
	slugValue := slug.Make(name)
	if strings.TrimSpace(in.Slug) != "" {
		slugValue = slug.Make(in.Slug)
	}

	category := &models.ForumCategory{Slug: slugValue, Name: name, Description: desc, Position: in.Position}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("Category slug already in use")
		}
		return nil, err
	}
	cache.Invalidate(ctx, cache.ForumCategoriesKey())
	return category, nil
}

func (s *ForumService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.ForumCategory, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Category", id)
	}
	name := strings.TrimSpace(in.Name)
	if err := checkLength("name", name, 2, 80); err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(in.Description)
	if err := checkLength("description", desc, 0, 500); err != nil {
		return nil, err
	}
	category.Name = name
	category.Description = desc
	category.Position = in.Position
	if strings.TrimSpace(in.Slug) != "" {
		category.Slug = slug.Make(in.Slug)
	}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("Category slug already in use")
		}
		return nil, err
	}
	cache.Invalidate(ctx, cache.ForumCategoriesKey())
	return category, nil
}

// ListThreads returns a category's threads, pinned first then most recently active.
func (s *ForumService) ListThreads(ctx context.Context, categorySlug string, page PageInput) (*models.ForumCategory, []models.ForumThread, int64, error) {
	category, err := s.repo.GetCategory(ctx, categorySlug)
	if err != nil {
		return nil, nil, 0, notFound(err, "Category", categorySlug)
	}
	threads, total, err := s.repo.ListThreads(ctx, category.ID, page.repo())
	if err != nil {
		return nil, nil, 0, err
	}
	return category, threads, total, nil
}

func (s *ForumService) CreateThread(ctx context.Context, in CreateThreadInput) (*models.ForumThread, error) {
	title := strings.TrimSpace(in.Title)
	if err := checkLength("title", title, 3, maxThreadTitleLen); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if err := checkLength("content", content, 1, maxPostLen); err != nil {
		return nil, err
	}
	category, err := s.repo.GetCategory(ctx, in.CategorySlug)
	if err != nil {
		return nil, notFound(err, "Category", in.CategorySlug)
	}

	now := time.Now().UTC()
	thread := &models.ForumThread{
		CategoryID:     category.ID,
		UserID:         in.UserID,
		Title:          title,
		LastActivityAt: now,
	}
	first := &models.ForumPost{UserID: in.UserID, Content: content, CreatedAt: now}
	if err := s.repo.CreateThread(ctx, thread, first); err != nil {
		return nil, err
	}
	return s.repo.GetThread(ctx, thread.ID)
}

// GetThread returns the thread with a page of posts and counts the view.
func (s *ForumService) GetThread(ctx context.Context, id uint, page PageInput) (*ThreadView, error) {
	thread, err := s.repo.GetThread(ctx, id)
	if err != nil {
		return nil, notFound(err, "Thread", id)
	}
	if err := s.repo.IncrementViews(ctx, id); err == nil {
		thread.ViewCount++
	}
	posts, total, err := s.repo.ListPosts(ctx, id, page.repo())
	if err != nil {
		return nil, err
	}
	return &ThreadView{Thread: thread, Posts: posts, TotalPosts: total}, nil
}

// Reply adds a post to an unlocked thread and notifies the thread author.
func (s *ForumService) Reply(ctx context.Context, in ReplyInput) (*models.ForumPost, error) {
	content := strings.TrimSpace(in.Content)
	if err := checkLength("content", content, 1, maxPostLen); err != nil {
		return nil, err
	}
	thread, err := s.repo.GetThread(ctx, in.ThreadID)
	if err != nil {
		return nil, notFound(err, "Thread", in.ThreadID)
	}
	if thread.Locked {
		return nil, models.NewValidationError("Thread is locked")
	}

	post := &models.ForumPost{
		ThreadID:  thread.ID,
		UserID:    in.UserID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddReply(ctx, post); err != nil {
		return nil, err
	}

	if thread.UserID != in.UserID {
		notifyQuietly(ctx, s.notify, NotifyInput{
			UserID: thread.UserID,
			Type:   models.NotificationForumReply,
			Title:  "New reply in " + thread.Title,
			Body:   excerpt(content, 140),
			Link:   fmt.Sprintf("/forum/threads/%d", thread.ID),
		})
	}
	return s.repo.GetPost(ctx, post.ID)
}

func (s *ForumService) EditPost(ctx context.Context, in EditPostInput) (*models.ForumPost, error) {
	content := strings.TrimSpace(in.Content)
	if err := checkLength("content", content, 1, maxPostLen); err != nil {
		return nil, err
	}
	post, err := s.repo.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, notFound(err, "Post", in.PostID)
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	now := time.Now().UTC()
	post.Content = content
	post.EditedAt = &now
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a reply. The opening post goes only with its thread.
func (s *ForumService) DeletePost(ctx context.Context, actor uuid.UUID, postID uint) error {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return notFound(err, "Post", postID)
	}
	if err := ensureOwnerOrAdmin(ctx, s.isAdmin, actor, post.UserID, "You can only delete your own posts"); err != nil {
		return err
	}
	return s.removePost(ctx, post)
}

func (s *ForumService) removePost(ctx context.Context, post *models.ForumPost) error {
	firstID, err := s.repo.FirstPostID(ctx, post.ThreadID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if firstID == post.ID {
		return models.NewValidationError("The first post cannot be deleted; delete the thread instead")
	}
	return notFound(s.repo.DeletePost(ctx, post), "Post", post.ID)
}

func (s *ForumService) DeleteThread(ctx context.Context, actor uuid.UUID, threadID uint) error {
	thread, err := s.repo.GetThread(ctx, threadID)
	if err != nil {
		return notFound(err, "Thread", threadID)
	}
	if err := ensureOwnerOrAdmin(ctx, s.isAdmin, actor, thread.UserID, "You can only delete your own threads"); err != nil {
		return err
	}
	return notFound(s.repo.DeleteThread(ctx, threadID), "Thread", threadID)
}

func (s *ForumService) SetPinned(ctx context.Context, threadID uint, pinned bool) error {
	return notFound(s.repo.SetThreadFlag(ctx, threadID, "pinned", pinned), "Thread", threadID)
}

func (s *ForumService) SetLocked(ctx context.Context, threadID uint, locked bool) error {
	return notFound(s.repo.SetThreadFlag(ctx, threadID, "locked", locked), "Thread", threadID)
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
