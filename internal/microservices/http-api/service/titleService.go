package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/validators"
)

// TitleInput carries a create or a patch. On patch, nil fields keep their
// stored value; Genres == nil keeps the links, an empty slice clears them.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string // slug, "" detaches the category
	Genres      []string
}

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, in TitleInput) (*models.Title, error)
	Update(ctx context.Context, id int64, in TitleInput) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.VocabularyRepository[models.Category]
	genreRepo    repository.VocabularyRepository[models.Genre]
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.VocabularyRepository[models.Category],
	genreRepo repository.VocabularyRepository[models.Genre],
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachRatings(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, titleLookupError(err, id)
	}
	titles := []models.Title{*title}
	if err := s.attachRatings(ctx, titles); err != nil {
		return nil, err
	}
	return &titles[0], nil
}

func (s *titleService) Create(ctx context.Context, in TitleInput) (*models.Title, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Year == nil {
		return nil, apperr.Validation("year is required")
	}

	title := &models.Title{}
	genreIDs, err := s.apply(ctx, title, in)
	if err != nil {
		return nil, err
	}
	if genreIDs == nil {
		genreIDs = []int64{}
	}

	if err := s.titleRepo.Create(ctx, title, genreIDs); err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}
	return s.Get(ctx, title.ID)
}

func (s *titleService) Update(ctx context.Context, id int64, in TitleInput) (*models.Title, error) {
	title, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, titleLookupError(err, id)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name must not be empty")
	}

	genreIDs, err := s.apply(ctx, title, in)
	if err != nil {
		return nil, err
	}
	// the preloaded associations must not leak into the update
	title.Category = nil
	title.Genres = nil

	if err := s.titleRepo.Update(ctx, title, genreIDs); err != nil {
		return nil, titleLookupError(err, id)
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		return titleLookupError(err, id)
	}
	return nil
}

// apply validates in and copies it onto title, resolving slugs to ids. It
// returns the genre ids to link, nil when genres are untouched.
func (s *titleService) apply(ctx context.Context, title *models.Title, in TitleInput) ([]int64, error) {
	if in.Year != nil {
		if err := validators.ValidateYear(*in.Year); err != nil {
			return nil, err
		}
		title.Year = *in.Year
	}
	if in.Name != nil {
		title.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		title.Description = in.Description
	}

	if in.Category != nil {
		if *in.Category == "" {
			title.CategoryID = nil
		} else {
			found, err := s.categoryRepo.FindBySlugs(ctx, []string{*in.Category})
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				return nil, apperr.Validation("unknown category %q", *in.Category)
			}
			title.CategoryID = &found[0].ID
		}
	}

	if in.Genres == nil {
		return nil, nil
	}
	slugs := uniqueSlugs(in.Genres)
	found, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(slugs) {
		return nil, apperr.Validation("unknown genre in %s", strings.Join(missingSlugs(slugs, found), ", "))
	}
	ids := make([]int64, 0, len(found))
	for _, g := range found {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// attachRatings fills Rating from the review aggregate. Titles nobody has
// reviewed keep a nil rating rather than zero.
func (s *titleService) attachRatings(ctx context.Context, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}
	ids := make([]int64, len(titles))
	for i := range titles {
		ids[i] = titles[i].ID
	}

	averages, err := s.titleRepo.AverageScores(ctx, ids)
	if err != nil {
		return err
	}
	for i := range titles {
		if avg, ok := averages[titles[i].ID]; ok {
			titles[i].Rating = &avg
		} else {
			titles[i].Rating = nil
		}
	}
	return nil
}

func uniqueSlugs(slugs []string) []string {
	seen := make(map[string]bool, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			out = append(out, slug)
		}
	}
	return out
}

func missingSlugs(wanted []string, found []models.Genre) []string {
	have := make(map[string]bool, len(found))
	for _, g := range found {
		have[g.Slug] = true
	}
	var missing []string
	for _, slug := range wanted {
		if !have[slug] {
			missing = append(missing, slug)
		}
	}
	sort.Strings(missing)
	return missing
}

func titleLookupError(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("title %d not found", id)
	}
	return fmt.Errorf("title %d: %w", id, err)
}
