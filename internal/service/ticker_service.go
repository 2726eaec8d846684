package service

import (
	"context"
	"strings"

	"craftnexus/internal/cache"
	"craftnexus/internal/models"
	"craftnexus/internal/repository"
)

// TickerInput holds the editable fields of a ticker line.
type TickerInput struct {
	Text   string
	URL    string
	Active *bool
}

// TickerService manages the scrolling news ticker.
type TickerService struct {
	repo repository.TickerRepository
}

func NewTickerService(repo repository.TickerRepository) *TickerService {
	return &TickerService{repo: repo}
}

// ListActive returns the public ticker lines in display order.
func (s *TickerService) ListActive(ctx context.Context) ([]models.TickerItem, error) {
	var items []models.TickerItem
	err := cache.Aside(ctx, cache.TickerKey(), &items, cache.TickerTTL, func() error {
		var err error
		items, err = s.repo.List(ctx, true)
		return err
	})
	return items, err
}

func (s *TickerService) ListAll(ctx context.Context) ([]models.TickerItem, error) {
	return s.repo.List(ctx, false)
}

// Create appends a line at the end of the ticker. Lines are active unless stated otherwise.
func (s *TickerService) Create(ctx context.Context, in TickerInput) (*models.TickerItem, error) {
	text, link, err := validateTickerInput(in)
	if err != nil {
		return nil, err
	}
	pos, err := s.repo.NextPosition(ctx)
	if err != nil {
		return nil, err
	}
	item := &models.TickerItem{Text: text, URL: link, Position: pos, Active: true}
	if in.Active != nil {
		item.Active = *in.Active
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.TickerKey())
	return item, nil
}

func (s *TickerService) Update(ctx context.Context, id uint, in TickerInput) (*models.TickerItem, error) {
	text, link, err := validateTickerInput(in)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Ticker item", id)
	}
	item.Text = text
	item.URL = link
	if in.Active != nil {
		item.Active = *in.Active
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.TickerKey())
	return item, nil
}

func (s *TickerService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "Ticker item", id)
	}
	cache.Invalidate(ctx, cache.TickerKey())
	return nil
}

// Reorder applies a drag-and-drop order. ids must list every ticker line exactly once.
func (s *TickerService) Reorder(ctx context.Context, ids []uint) ([]models.TickerItem, error) {
	existing, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(existing) {
		return nil, models.NewValidationError("order must contain every ticker item exactly once")
	}
	known := make(map[uint]bool, len(existing))
	for _, item := range existing {
		known[item.ID] = true
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !known[id] || seen[id] {
			return nil, models.NewValidationError("order must contain every ticker item exactly once")
		}
		seen[id] = true
	}

	if err := s.repo.Reorder(ctx, ids); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.TickerKey())
	return s.repo.List(ctx, false)
}

func validateTickerInput(in TickerInput) (string, string, error) {
	text := strings.TrimSpace(in.Text)
	if err := checkLength("text", text, 1, 280); err != nil {
		return "", "", err
	}
	link := strings.TrimSpace(in.URL)
	if link != "" && !isHTTPURL(link) && !strings.HasPrefix(link, "/") {
		return "", "", models.NewValidationError("url must be an http(s) URL or a site path")
	}
	return text, link, nil
}
