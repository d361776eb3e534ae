package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reviewhub/internal/microservices/http-api/models"
)

// TitleFilter narrows a title listing. Zero fields are ignored.
type TitleFilter struct {
	Name     string // case-insensitive substring
	Search   string // case-insensitive substring, kept apart from Name for clients that send both
	Genre    string // genre slug
	Category string // category slug
	Year     *int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	// Create inserts the title and its genre links in one transaction.
	Create(ctx context.Context, title *models.Title, genreIDs []int64) error
	// Update rewrites the scalar columns; a nil genreIDs keeps the links.
	Update(ctx context.Context, title *models.Title, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
	// AverageScores groups reviews by title and averages their scores.
	// Titles without reviews are absent from the result.
	AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (f TitleFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Name != "" {
		db = db.Where("titles.name ILIKE ?", "%"+f.Name+"%")
	}
	if f.Search != "" {
		db = db.Where("titles.name ILIKE ?", "%"+f.Search+"%")
	}
	if f.Year != nil {
		db = db.Where("titles.year = ?", *f.Year)
	}
	if f.Category != "" {
		db = db.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Genre != "" {
		db = db.Where(`EXISTS (
			SELECT 1 FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
			WHERE gt.title_id = titles.id AND g.slug = ?)`, f.Genre)
	}
	return db
}

func withCatalog(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Genres", func(db *gorm.DB) *gorm.DB {
		return db.Order("genres.name")
	})
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var titles []models.Title
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Title{}).Scopes(filter.apply).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	err := r.db.WithContext(ctx).
		Scopes(filter.apply, withCatalog).
		Order("titles.name").
		Order("titles.id").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&titles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return titles, total, nil
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var title models.Title
	if err := r.db.WithContext(ctx).Scopes(withCatalog).First(&title, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &title, nil
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(title).Error; err != nil {
			return translateError(err)
		}
		return replaceGenres(tx, title.ID, genreIDs)
	})
}

func (r *titleRepository) Update(ctx context.Context, title *models.Title, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(title).
			Select("name", "year", "description", "category_id").
			Omit(clause.Associations).
			Updates(title)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if genreIDs == nil {
			return nil
		}
		return replaceGenres(tx, title.ID, genreIDs)
	})
}

// replaceGenres swaps the title's link rows for exactly genreIDs.
func replaceGenres(tx *gorm.DB, titleID int64, genreIDs []int64) error {
	if err := tx.Where("title_id = ?", titleID).Delete(&models.GenreTitle{}).Error; err != nil {
		return fmt.Errorf("clear genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]models.GenreTitle, 0, len(genreIDs))
	for _, id := range genreIDs {
		links = append(links, models.GenreTitle{TitleID: titleID, GenreID: id})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE: reviews and genre links go with the
// title, comments go with their reviews.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *titleRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	averages := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return averages, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score)::float8 AS average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("average scores: %w", err)
	}

	for _, row := range rows {
		averages[row.TitleID] = row.Average
	}
	return averages, nil
}
