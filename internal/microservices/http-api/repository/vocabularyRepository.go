package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"reviewhub/internal/microservices/http-api/models"
)

// VocabularyRepository serves the slug-addressed classifiers, categories and
// genres, which share one table layout.
type VocabularyRepository[T models.Vocabulary] interface {
	List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error)
	Create(ctx context.Context, item *T) error
	DeleteBySlug(ctx context.Context, slug string) error
	// FindBySlugs returns the rows that exist; callers compare lengths to
	// detect unknown slugs.
	FindBySlugs(ctx context.Context, slugs []string) ([]T, error)
}

type vocabularyRepository[T models.Vocabulary] struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) VocabularyRepository[models.Category] {
	return &vocabularyRepository[models.Category]{db: db}
}

func NewGenreRepository(db *gorm.DB) VocabularyRepository[models.Genre] {
	return &vocabularyRepository[models.Genre]{db: db}
}

func (r *vocabularyRepository[T]) List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error) {
	var items []T
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			return db.Where("name ILIKE ?", "%"+search+"%")
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(new(T)).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	err := r.db.WithContext(ctx).Scopes(scope).
		Order("name").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	return items, total, nil
}

func (r *vocabularyRepository[T]) Create(ctx context.Context, item *T) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}

func (r *vocabularyRepository[T]) DeleteBySlug(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(new(T))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *vocabularyRepository[T]) FindBySlugs(ctx context.Context, slugs []string) ([]T, error) {
	var items []T
	if len(slugs) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("find by slugs: %w", err)
	}
	return items, nil
}
