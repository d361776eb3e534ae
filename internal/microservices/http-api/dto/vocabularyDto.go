package dto

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"reviewhub/internal/microservices/http-api/models"
)

const (
	MaxVocabularyNameLength = 256
	MaxSlugLength           = 50
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// VocabularyRequest creates a category or a genre.
type VocabularyRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (r VocabularyRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, MaxVocabularyNameLength)),
		validation.Field(&r.Slug,
			validation.Required,
			validation.Length(1, MaxSlugLength),
			validation.Match(slugPattern).Error("may contain only letters, digits, hyphens and underscores"),
		),
	))
}

type VocabularyResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (r VocabularyRequest) ToCategory() models.Category {
	return models.Category{Name: r.Name, Slug: r.Slug}
}

func (r VocabularyRequest) ToGenre() models.Genre {
	return models.Genre{Name: r.Name, Slug: r.Slug}
}

func FromCategory(c models.Category) VocabularyResponse {
	return VocabularyResponse{Name: c.Name, Slug: c.Slug}
}

func FromGenre(g models.Genre) VocabularyResponse {
	return VocabularyResponse{Name: g.Name, Slug: g.Slug}
}
