package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"craftnexus/internal/cache"
	"craftnexus/internal/models"
	"craftnexus/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolution actions.
const (
	ResolveDismiss = "dismiss"
	ResolveRemove  = "remove"
)

// CreateReportInput files a complaint about a piece of content.
type CreateReportInput struct {
	ReporterID uuid.UUID
	TargetType string
	TargetID   uint
	Reason     string
}

// ResolveReportInput closes a report.
type ResolveReportInput struct {
	AdminID  uuid.UUID
	ReportID uint
	Action   string
}

// BanInput bans or unbans a user.
type BanInput struct {
	AdminID uuid.UUID
	UserID  uuid.UUID
	Banned  bool
	Reason  string
}

// ModerationService handles reports and bans.
type ModerationService struct {
	reports  repository.ReportRepository
	comments repository.CommentRepository
	forum    repository.ForumRepository
	users    repository.UserRepository
	notify   Notifier
}

func NewModerationService(
	reports repository.ReportRepository,
	comments repository.CommentRepository,
	forum repository.ForumRepository,
	users repository.UserRepository,
	notify Notifier,
) *ModerationService {
	return &ModerationService{reports: reports, comments: comments, forum: forum, users: users, notify: notify}
}

func (s *ModerationService) CreateReport(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	reason := strings.TrimSpace(in.Reason)
	if err := checkLength("reason", reason, 3, 500); err != nil {
		return nil, err
	}
	if err := s.ensureReportTarget(ctx, in.TargetType, in.TargetID); err != nil {
		return nil, err
	}
	dup, err := s.reports.ExistsOpen(ctx, in.ReporterID, in.TargetType, in.TargetID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, models.NewConflictError("You already reported this content")
	}

	report := &models.Report{
		ReporterID: in.ReporterID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Reason:     reason,
		Status:     models.ReportStatusOpen,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ModerationService) ListReports(ctx context.Context, status string, page PageInput) ([]models.Report, int64, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", models.ReportStatusOpen, models.ReportStatusDismissed, models.ReportStatusRemoved:
	default:
		return nil, 0, models.NewValidationError("status must be one of open, dismissed, removed")
	}
	return s.reports.List(ctx, status, page.repo())
}

// Resolve dismisses a report or removes the reported content. Removing closes
// every other open report against the same content.
func (s *ModerationService) Resolve(ctx context.Context, in ResolveReportInput) (*models.Report, error) {
	report, err := s.reports.GetByID(ctx, in.ReportID)
	if err != nil {
		return nil, notFound(err, "Report", in.ReportID)
	}
	if report.Status != models.ReportStatusOpen {
		return nil, models.NewConflictError("Report is already resolved")
	}

	switch in.Action {
	case ResolveDismiss:
		if err := s.reports.Resolve(ctx, report.ID, models.ReportStatusDismissed, in.AdminID); err != nil {
			return nil, notFound(err, "Report", report.ID)
		}
	case ResolveRemove:
		owner, err := s.removeTarget(ctx, report.TargetType, report.TargetID)
		if err != nil {
			return nil, err
		}
		if err := s.reports.Resolve(ctx, report.ID, models.ReportStatusRemoved, in.AdminID); err != nil {
			return nil, notFound(err, "Report", report.ID)
		}
		if err := s.reports.ResolveTarget(ctx, report.TargetType, report.TargetID, models.ReportStatusRemoved, in.AdminID); err != nil {
			slog.WarnContext(ctx, "failed to close sibling reports", slog.Uint64("report_id", uint64(report.ID)), slog.String("error", err.Error()))
		}
		if owner != uuid.Nil {
			notifyQuietly(ctx, s.notify, NotifyInput{
				UserID: owner,
				Type:   models.NotificationModeration,
				Title:  "Your content was removed by a moderator",
				Body:   "It was reported and found to break the community rules.",
			})
		}
	default:
		return nil, models.NewValidationError("action must be dismiss or remove")
	}

	return s.reports.GetByID(ctx, report.ID)
}

// removeTarget deletes the reported content and returns its author.
// Content that is already gone counts as removed.
func (s *ModerationService) removeTarget(ctx context.Context, targetType string, targetID uint) (uuid.UUID, error) {
	switch targetType {
	case models.ReportTargetComment:
		comment, err := s.comments.GetByID(ctx, targetID)
		if err != nil {
			return uuid.Nil, ignoreNotFound(err)
		}
		return comment.UserID, ignoreNotFound(removeComment(ctx, s.comments, comment))
	case models.ReportTargetForumPost:
		post, err := s.forum.GetPost(ctx, targetID)
		if err != nil {
			return uuid.Nil, ignoreNotFound(err)
		}
		firstID, err := s.forum.FirstPostID(ctx, post.ThreadID)
		if err != nil {
			return uuid.Nil, ignoreNotFound(err)
		}
		if firstID == post.ID {
			err = s.forum.DeleteThread(ctx, post.ThreadID)
		} else {
			err = s.forum.DeletePost(ctx, post)
		}
		return post.UserID, ignoreNotFound(err)
	case models.ReportTargetForumThread:
		thread, err := s.forum.GetThread(ctx, targetID)
		if err != nil {
			return uuid.Nil, ignoreNotFound(err)
		}
		return thread.UserID, ignoreNotFound(s.forum.DeleteThread(ctx, targetID))
	}
	return uuid.Nil, models.NewValidationError("Invalid report target")
}

func (s *ModerationService) ensureReportTarget(ctx context.Context, targetType string, targetID uint) error {
	var err error
	switch targetType {
	case models.ReportTargetComment:
		var c *models.Comment
		if c, err = s.comments.GetByID(ctx, targetID); err == nil && c.IsDeleted {
			return models.NewNotFoundError("Comment", targetID)
		}
	case models.ReportTargetForumPost:
		_, err = s.forum.GetPost(ctx, targetID)
	case models.ReportTargetForumThread:
		_, err = s.forum.GetThread(ctx, targetID)
	default:
		return models.NewValidationError("target_type must be one of comment, forum_post, forum_thread")
	}
	return notFound(err, targetType, targetID)
}

// SetBan bans or unbans a user. Admins cannot ban themselves.
func (s *ModerationService) SetBan(ctx context.Context, in BanInput) (*models.User, error) {
	if in.Banned && in.AdminID == in.UserID {
		return nil, models.NewValidationError("You cannot ban yourself")
	}
	reason := strings.TrimSpace(in.Reason)
	if in.Banned {
		if err := checkLength("reason", reason, 3, 500); err != nil {
			return nil, err
		}
	}
	if err := s.users.SetBan(ctx, in.UserID, in.Banned, reason); err != nil {
		return nil, notFound(err, "User", in.UserID)
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.ProfileKey(user.Username))
	return user, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
