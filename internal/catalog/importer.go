package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/validators"
)

// Summary counts what an import touched. Skipped holds one line per entry
// that failed validation or referenced an unknown slug.
type Summary struct {
	Categories int
	Genres     int
	Created    int
	Updated    int
	Links      int
	Skipped    []string
}

type Importer struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewImporter(db *gorm.DB, logger *zap.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// Import writes the whole file in one transaction. Bad entries are skipped,
// database errors roll everything back.
func (im *Importer) Import(ctx context.Context, f *File) (*Summary, error) {
	sum := &Summary{}
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if sum.Categories, err = upsertVocabulary(tx, f.Categories, dto.VocabularyRequest.ToCategory, "category", sum); err != nil {
			return err
		}
		if sum.Genres, err = upsertVocabulary(tx, f.Genres, dto.VocabularyRequest.ToGenre, "genre", sum); err != nil {
			return err
		}
		return im.importTitles(tx, f.Titles, sum)
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("catalog imported",
		zap.Int("categories", sum.Categories),
		zap.Int("genres", sum.Genres),
		zap.Int("titles_created", sum.Created),
		zap.Int("titles_updated", sum.Updated),
		zap.Int("genre_links", sum.Links),
		zap.Int("skipped", len(sum.Skipped)),
	)
	return sum, nil
}

func upsertVocabulary[T models.Vocabulary](tx *gorm.DB, entries []Vocabulary, build func(dto.VocabularyRequest) T, kind string, sum *Summary) (int, error) {
	count := 0
	for _, v := range entries {
		req := dto.VocabularyRequest{Name: v.Name, Slug: v.Slug}
		if err := req.Validate(); err != nil {
			sum.Skipped = append(sum.Skipped, fmt.Sprintf("%s %q: %v", kind, v.Name, err))
			continue
		}

		item := build(req)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&item).Error
		if err != nil {
			return count, fmt.Errorf("failed to upsert %s %q: %w", kind, v.Slug, err)
		}
		count++
	}
	return count, nil
}

func slugIDs[T models.Vocabulary](tx *gorm.DB, slugs []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(slugs))
	if len(slugs) == 0 {
		return ids, nil
	}

	var rows []struct {
		ID   int64
		Slug string
	}
	if err := tx.Model(new(T)).Select("id", "slug").Where("slug IN ?", slugs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		ids[r.Slug] = r.ID
	}
	return ids, nil
}

func referencedSlugs(titles []Title) (categories, genres []string) {
	seenC, seenG := map[string]bool{}, map[string]bool{}
	for _, t := range titles {
		if t.Category != "" && !seenC[t.Category] {
			seenC[t.Category] = true
			categories = append(categories, t.Category)
		}
		for _, g := range t.Genres {
			if !seenG[g] {
				seenG[g] = true
				genres = append(genres, g)
			}
		}
	}
	return categories, genres
}

func validateTitle(t Title) error {
	if t.Name == "" {
		return errors.New("name is required")
	}
	if t.Year == 0 {
		return errors.New("year is required")
	}
	return validators.ValidateYear(t.Year)
}

func (im *Importer) importTitles(tx *gorm.DB, titles []Title, sum *Summary) error {
	categorySlugs, genreSlugs := referencedSlugs(titles)
	categoryIDs, err := slugIDs[models.Category](tx, categorySlugs)
	if err != nil {
		return fmt.Errorf("failed to resolve categories: %w", err)
	}
	genreIDs, err := slugIDs[models.Genre](tx, genreSlugs)
	if err != nil {
		return fmt.Errorf("failed to resolve genres: %w", err)
	}

	for i, t := range titles {
		if err := validateTitle(t); err != nil {
			sum.Skipped = append(sum.Skipped, fmt.Sprintf("title %q: %v", t.Name, err))
			continue
		}

		var categoryID *int64
		if t.Category != "" {
			id, ok := categoryIDs[t.Category]
			if !ok {
				sum.Skipped = append(sum.Skipped, fmt.Sprintf("title %q: unknown category %q", t.Name, t.Category))
				continue
			}
			categoryID = &id
		}

		links, missing := make([]models.GenreTitle, 0, len(t.Genres)), ""
		for _, slug := range t.Genres {
			id, ok := genreIDs[slug]
			if !ok {
				missing = slug
				break
			}
			links = append(links, models.GenreTitle{GenreID: id})
		}
		if missing != "" {
			sum.Skipped = append(sum.Skipped, fmt.Sprintf("title %q: unknown genre %q", t.Name, missing))
			continue
		}

		titleID, created, err := upsertTitle(tx, t, categoryID)
		if err != nil {
			return err
		}
		if created {
			sum.Created++
		} else {
			sum.Updated++
		}

		if len(links) > 0 {
			for j := range links {
				links[j].TitleID = titleID
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links)
			if res.Error != nil {
				return fmt.Errorf("failed to link genres of %q: %w", t.Name, res.Error)
			}
			sum.Links += int(res.RowsAffected)
		}

		if (i+1)%10 == 0 || i == len(titles)-1 {
			im.logger.Debug("titles imported", zap.Int("done", i+1), zap.Int("total", len(titles)))
		}
	}
	return nil
}

func upsertTitle(tx *gorm.DB, t Title, categoryID *int64) (int64, bool, error) {
	var existing models.Title
	err := tx.Where("name = ? AND year = ?", t.Name, t.Year).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		title := models.Title{Name: t.Name, Year: t.Year, Description: t.Description, CategoryID: categoryID}
		if err := tx.Omit(clause.Associations).Create(&title).Error; err != nil {
			return 0, false, fmt.Errorf("failed to create title %q: %w", t.Name, err)
		}
		return title.ID, true, nil
	case err != nil:
		return 0, false, fmt.Errorf("failed to look up title %q: %w", t.Name, err)
	}

	err = tx.Model(&existing).Select("description", "category_id").Updates(map[string]any{
		"description": t.Description,
		"category_id": categoryID,
	}).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to update title %q: %w", t.Name, err)
	}
	return existing.ID, false, nil
}
