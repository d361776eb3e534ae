package service

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
)

// VocabularyService manages categories or genres.
type VocabularyService[T models.Vocabulary] interface {
	List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error)
	Create(ctx context.Context, item *T) error
	Delete(ctx context.Context, slug string) error
}

type vocabularyService[T models.Vocabulary] struct {
	repo repository.VocabularyRepository[T]
	kind string
}

func NewCategoryService(repo repository.VocabularyRepository[models.Category]) VocabularyService[models.Category] {
	return &vocabularyService[models.Category]{repo: repo, kind: "category"}
}

func NewGenreService(repo repository.VocabularyRepository[models.Genre]) VocabularyService[models.Genre] {
	return &vocabularyService[models.Genre]{repo: repo, kind: "genre"}
}

func (s *vocabularyService[T]) List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error) {
	return s.repo.List(ctx, search, page, pageSize)
}

func (s *vocabularyService[T]) Create(ctx context.Context, item *T) error {
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("%s with this slug already exists", s.kind)
		}
		return fmt.Errorf("create %s: %w", s.kind, err)
	}
	return nil
}

// Delete leaves titles in place: a removed category is nulled out on them and
// a removed genre only loses its links.
func (s *vocabularyService[T]) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("%s %q not found", s.kind, slug)
		}
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}
	return nil
}
