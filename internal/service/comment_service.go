package service

import (
	"context"
	"fmt"
	"strings"

	"craftnexus/internal/models"
	"craftnexus/internal/repository"

	"github.com/google/uuid"
)

const maxCommentLen = 5000

// CreateCommentInput adds a comment to a news article or a mod.
type CreateCommentInput struct {
	UserID     uuid.UUID
	TargetType string
	TargetID   uint
	ParentID   *uint
	Content    string
}

// UpdateCommentInput replaces the content of an own comment.
type UpdateCommentInput struct {
	UserID    uuid.UUID
	CommentID uint
	Content   string
}

// CommentService implements threaded comments on news and mods.
type CommentService struct {
	repo    repository.CommentRepository
	notify  Notifier
	isAdmin AdminChecker
}

func NewCommentService(repo repository.CommentRepository, notify Notifier, isAdmin AdminChecker) *CommentService {
	return &CommentService{repo: repo, notify: notify, isAdmin: isAdmin}
}

// ListTree returns root comments oldest first with replies nested at any depth.
func (s *CommentService) ListTree(ctx context.Context, targetType string, targetID uint) ([]*models.Comment, error) {
	if err := s.ensureTarget(ctx, targetType, targetID); err != nil {
		return nil, err
	}
	flat, err := s.repo.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(flat), nil
}

// BuildCommentTree nests a flat, oldest-first list. Orphans are promoted to roots.
func BuildCommentTree(flat []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(flat))
	for _, c := range flat {
		c.Replies = []*models.Comment{}
		byID[c.ID] = c
	}
	roots := make([]*models.Comment, 0)
	for _, c := range flat {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent != c {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if err := checkLength("content", content, 1, maxCommentLen); err != nil {
		return nil, err
	}
	if err := s.ensureTarget(ctx, in.TargetType, in.TargetID); err != nil {
		return nil, err
	}

	var parent *models.Comment
	if in.ParentID != nil {
		p, err := s.repo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, notFound(err, "Comment", *in.ParentID)
		}
		if p.TargetType != in.TargetType || p.TargetID != in.TargetID {
			return nil, models.NewValidationError("Parent comment belongs to a different item")
		}
		parent = p
	}

	comment := &models.Comment{
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		ParentID:   in.ParentID,
		UserID:     in.UserID,
		Content:    content,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if parent != nil && !parent.IsDeleted && parent.UserID != in.UserID {
		notifyQuietly(ctx, s.notify, NotifyInput{
			UserID: parent.UserID,
			Type:   models.NotificationCommentReply,
			Title:  "Someone replied to your comment",
			Body:   excerpt(content, 140),
			Link:   fmt.Sprintf("/%s/%d#comment-%d", in.TargetType, in.TargetID, comment.ID),
		})
	}
	return s.repo.GetByID(ctx, comment.ID)
}

func (s *CommentService) Update(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if err := checkLength("content", content, 1, maxCommentLen); err != nil {
		return nil, err
	}
	comment, err := s.repo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, notFound(err, "Comment", in.CommentID)
	}
	if comment.IsDeleted {
		return nil, models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	comment.Content = content
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete tombstones a comment that has replies and removes a leaf outright.
func (s *CommentService) Delete(ctx context.Context, actor uuid.UUID, id uint) error {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Comment", id)
	}
	if comment.IsDeleted {
		return models.NewNotFoundError("Comment", id)
	}
	if err := ensureOwnerOrAdmin(ctx, s.isAdmin, actor, comment.UserID, "You can only delete your own comments"); err != nil {
		return err
	}
	return s.remove(ctx, comment)
}

func (s *CommentService) remove(ctx context.Context, comment *models.Comment) error {
	return notFound(removeComment(ctx, s.repo, comment), "Comment", comment.ID)
}

// removeComment tombstones a comment that has replies and deletes a leaf,
// then prunes tombstoned ancestors left without replies. Moderation removes
// reported comments through here too.
func removeComment(ctx context.Context, repo repository.CommentRepository, comment *models.Comment) error {
	hasReplies, err := repo.HasReplies(ctx, comment.ID)
	if err != nil {
		return err
	}
	if hasReplies {
		return repo.Tombstone(ctx, comment.ID)
	}
	if err := repo.Delete(ctx, comment.ID); err != nil {
		return err
	}
	return pruneTombstones(ctx, repo, comment.ParentID)
}

func pruneTombstones(ctx context.Context, repo repository.CommentRepository, parentID *uint) error {
	for parentID != nil {
		parent, err := repo.GetByID(ctx, *parentID)
		if err != nil {
			return nil
		}
		if !parent.IsDeleted {
			return nil
		}
		hasReplies, err := repo.HasReplies(ctx, parent.ID)
		if err != nil || hasReplies {
			return err
		}
		if err := repo.Delete(ctx, parent.ID); err != nil {
			return err
		}
		parentID = parent.ParentID
	}
	return nil
}

func (s *CommentService) ensureTarget(ctx context.Context, targetType string, targetID uint) error {
	if targetType != models.CommentTargetNews && targetType != models.CommentTargetMod {
		return models.NewValidationError("Invalid comment target")
	}
	ok, err := s.repo.TargetExists(ctx, targetType, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError(targetType, targetID)
	}
	return nil
}
