package dto

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/microservices/http-api/validators"
)

const MaxTitleNameLength = 256

// TitleRequest is used for both create and PATCH. Category and genres are
// given as slugs.
type TitleRequest struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Genres      []string `json:"genre"`
}

func (r TitleRequest) validate(create bool) error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.When(create, validation.Required).Else(validation.NilOrNotEmpty),
			validation.Length(1, MaxTitleNameLength),
		),
		validation.Field(&r.Year,
			validation.When(create, validation.NotNil),
			validators.YearRule,
		),
		validation.Field(&r.Genres, validation.Each(validation.Required, validation.Length(1, MaxSlugLength))),
	))
}

// ValidateCreate requires name and year.
func (r TitleRequest) ValidateCreate() error { return r.validate(true) }

func (r TitleRequest) ValidatePatch() error { return r.validate(false) }

func (r TitleRequest) ToInput() service.TitleInput {
	return service.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genres:      r.Genres,
	}
}

// TitleQuery binds the list filters from the query string.
type TitleQuery struct {
	Name     string `form:"name"`
	Search   string `form:"search"`
	Genre    string `form:"genre"`
	Category string `form:"category"`
	Year     *int   `form:"year"`
}

func (q TitleQuery) ToFilter() repository.TitleFilter {
	return repository.TitleFilter{
		Name:     q.Name,
		Search:   q.Search,
		Genre:    q.Genre,
		Category: q.Category,
		Year:     q.Year,
	}
}

type TitleResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Year        int                  `json:"year"`
	Rating      *float64             `json:"rating"` // mean score, fractional; null without reviews
	Description *string              `json:"description"`
	Genre       []VocabularyResponse `json:"genre"`
	Category    *VocabularyResponse  `json:"category"`
}

func ToTitleResponse(t models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]VocabularyResponse, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, FromGenre(g))
	}
	if t.Category != nil {
		c := FromCategory(*t.Category)
		resp.Category = &c
	}
	return resp
}
