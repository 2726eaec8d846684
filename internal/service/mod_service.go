package service

import (
	"context"
	"strings"

	"craftnexus/internal/cache"
	"craftnexus/internal/models"
	"craftnexus/internal/repository"
	"craftnexus/internal/slug"
)

const maxImportBatch = 500

// ModInput carries the editable fields of a catalog entry.
type ModInput struct {
	Slug         string
	Name         string
	Summary      string
	Description  string
	IconURL      string
	Author       string
	Categories   []string
	Loaders      []string
	GameVersions []string
	Downloads    int64
	Source       string
	ExternalID   string
	ExternalURL  string
	Featured     bool
}

// ListModsInput filters the public catalog.
type ListModsInput struct {
	Query    string
	Category string
	Loader   string
	Version  string
	Sort     string
	PageInput
}

// ModService manages the mod catalog.
type ModService struct {
	repo repository.ModRepository
}

func NewModService(repo repository.ModRepository) *ModService {
	return &ModService{repo: repo}
}

func (s *ModService) List(ctx context.Context, in ListModsInput) ([]models.Mod, int64, error) {
	sort := strings.ToLower(strings.TrimSpace(in.Sort))
	switch sort {
	case "", repository.ModSortDownloads, repository.ModSortUpdated, repository.ModSortName:
	default:
		return nil, 0, models.NewValidationError("sort must be one of downloads, updated, name")
	}
	return s.repo.List(ctx, repository.ModFilter{
		Query:    in.Query,
		Category: in.Category,
		Loader:   in.Loader,
		Version:  in.Version,
		Sort:     sort,
	}, in.repo())
}

func (s *ModService) GetBySlug(ctx context.Context, slugValue string) (*models.Mod, error) {
	var mod models.Mod
	err := cache.Aside(ctx, cache.ModKey(slugValue), &mod, cache.ModTTL, func() error {
		found, err := s.repo.GetBySlug(ctx, slugValue)
		if err != nil {
			return notFound(err, "Mod", slugValue)
		}
		mod = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

func (s *ModService) Create(ctx context.Context, in ModInput) (*models.Mod, error) {
	mod := &models.Mod{}
	if err := applyModInput(mod, in); err != nil {
		return nil, err
	}
	base := slug.Make(in.Name)
	if strings.TrimSpace(in.Slug) != "" {
		base = slug.Make(in.Slug)
	}
	unique, err := slug.Unique(base, func(candidate string) (bool, error) {
		return s.repo.SlugTaken(ctx, candidate, 0)
	})
	if err != nil {
		return nil, err
	}
	mod.Slug = unique

	if err := s.repo.Create(ctx, mod); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("A mod with this slug or external id already exists")
		}
		return nil, err
	}
	return mod, nil
}

func (s *ModService) Update(ctx context.Context, id uint, in ModInput) (*models.Mod, error) {
	mod, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Mod", id)
	}
	oldSlug := mod.Slug
	if err := applyModInput(mod, in); err != nil {
		return nil, err
	}
	if wanted := strings.TrimSpace(in.Slug); wanted != "" && slug.Make(wanted) != mod.Slug {
		unique, err := slug.Unique(slug.Make(wanted), func(candidate string) (bool, error) {
			return s.repo.SlugTaken(ctx, candidate, mod.ID)
		})
		if err != nil {
			return nil, err
		}
		mod.Slug = unique
	}
	if err := s.repo.Update(ctx, mod); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("A mod with this slug or external id already exists")
		}
		return nil, err
	}
	cache.Invalidate(ctx, cache.ModKey(oldSlug), cache.ModKey(mod.Slug))
	return mod, nil
}

func (s *ModService) Delete(ctx context.Context, id uint) error {
	mod, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Mod", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "Mod", id)
	}
	cache.Invalidate(ctx, cache.ModKey(mod.Slug))
	return nil
}

// Import upserts records produced by an external catalog sync, keyed by
// (source, external_id). Existing rows keep their slug and featured flag.
func (s *ModService) Import(ctx context.Context, records []ModInput) (repository.ModImportResult, error) {
	if len(records) == 0 {
		return repository.ModImportResult{}, models.NewValidationError("No records to import")
	}
	if len(records) > maxImportBatch {
		return repository.ModImportResult{}, models.NewValidationError("Too many records in one import (max 500)")
	}

	bySource := map[string][]string{}
	seen := map[string]bool{}
	for i := range records {
		records[i].Source = strings.ToLower(strings.TrimSpace(records[i].Source))
		records[i].ExternalID = strings.TrimSpace(records[i].ExternalID)
		r := records[i]
		if r.Source != models.ModSourceModrinth && r.Source != models.ModSourceCurseForge {
			return repository.ModImportResult{}, models.NewValidationError("Imported records must come from modrinth or curseforge")
		}
		if r.ExternalID == "" {
			return repository.ModImportResult{}, models.NewValidationError("Imported records need an external_id")
		}
		key := r.Source + "\x00" + r.ExternalID
		if seen[key] {
			return repository.ModImportResult{}, models.NewValidationError("Duplicate record " + r.Source + "/" + r.ExternalID)
		}
		seen[key] = true
		bySource[r.Source] = append(bySource[r.Source], r.ExternalID)
	}

	existing := map[string]*models.Mod{}
	for source, ids := range bySource {
		found, err := s.repo.FindByExternal(ctx, source, ids)
		if err != nil {
			return repository.ModImportResult{}, err
		}
		for extID, m := range found {
			existing[source+"\x00"+extID] = m
		}
	}
	slugs, err := s.repo.AllSlugs(ctx)
	if err != nil {
		return repository.ModImportResult{}, err
	}

	var creates, updates []*models.Mod
	var touched []string
	for _, r := range records {
		if mod, ok := existing[r.Source+"\x00"+r.ExternalID]; ok {
			featured := mod.Featured
			if err := applyModInput(mod, r); err != nil {
				return repository.ModImportResult{}, err
			}
			mod.Featured = featured
			updates = append(updates, mod)
			touched = append(touched, cache.ModKey(mod.Slug))
			continue
		}
		mod := &models.Mod{}
		if err := applyModInput(mod, r); err != nil {
			return repository.ModImportResult{}, err
		}
		unique, _ := slug.Unique(slug.Make(r.Name), func(candidate string) (bool, error) {
			return slugs[candidate], nil
		})
		slugs[unique] = true
		mod.Slug = unique
		creates = append(creates, mod)
	}

	result, err := s.repo.Import(ctx, creates, updates)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return repository.ModImportResult{}, models.NewConflictError("Import conflicts with an existing mod")
		}
		return repository.ModImportResult{}, err
	}
	cache.Invalidate(ctx, touched...)
	return result, nil
}

func applyModInput(mod *models.Mod, in ModInput) error {
	name := strings.TrimSpace(in.Name)
	if err := checkLength("name", name, 2, 120); err != nil {
		return err
	}
	summary := strings.TrimSpace(in.Summary)
	if err := checkLength("summary", summary, 0, 500); err != nil {
		return err
	}
	author := strings.TrimSpace(in.Author)
	if err := checkLength("author", author, 0, 120); err != nil {
		return err
	}
	if in.Downloads < 0 {
		return models.NewValidationError("downloads must not be negative")
	}
	source := strings.ToLower(strings.TrimSpace(in.Source))
	if source == "" {
		source = models.ModSourceManual
	}
	switch source {
	case models.ModSourceManual, models.ModSourceModrinth, models.ModSourceCurseForge:
	default:
		return models.NewValidationError("source must be one of manual, modrinth, curseforge")
	}
	for _, u := range []string{in.IconURL, in.ExternalURL} {
		if u = strings.TrimSpace(u); u != "" && !isHTTPURL(u) {
			return models.NewValidationError("icon_url and external_url must be http(s) URLs")
		}
	}

	mod.Name = name
	mod.Summary = summary
	mod.Description = strings.TrimSpace(in.Description)
	mod.IconURL = strings.TrimSpace(in.IconURL)
	mod.Author = author
	mod.Categories = cleanList(in.Categories)
	mod.Loaders = cleanList(in.Loaders)
	mod.GameVersions = cleanList(in.GameVersions)
	mod.Downloads = in.Downloads
	mod.Source = source
	mod.ExternalURL = strings.TrimSpace(in.ExternalURL)
	mod.Featured = in.Featured
	mod.ExternalID = nil
	if ext := strings.TrimSpace(in.ExternalID); ext != "" {
		mod.ExternalID = &ext
	}
	return nil
}

// cleanList lowercases, trims and dedupes tags. Commas are dropped because the
// column is comma separated.
func cleanList(in []string) models.StringList {
	out := models.StringList{}
	seen := map[string]bool{}
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(v, ",", " ")))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
